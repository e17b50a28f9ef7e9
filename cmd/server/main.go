package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/ghostpin/ghostpin/internal/config"
	"github.com/ghostpin/ghostpin/internal/gallery"
	"github.com/ghostpin/ghostpin/internal/logger"
	"github.com/ghostpin/ghostpin/internal/mediastore"
	"github.com/ghostpin/ghostpin/internal/server"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string `short:"c" long:"config" env:"CONFIG_FILE"    description:"Path to configuration file" default:"config.yaml"`
	Addr       string `short:"a" long:"addr"   env:"LISTEN_ADDRESS" description:"Address to listen on"       default:"127.0.0.1"`
	Port       int    `short:"p" long:"port"   env:"LISTEN_PORT"    description:"Port to listen on"          default:"8080"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	// Setup Logging
	opts.Logger.Setup()

	// Load Config
	cfg, err := config.LoadOrDefault(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	media := mediastore.NewFileStore(cfg.MediaRoot)
	index := gallery.NewIndex(media)

	srvCtx := server.NewServerContext(context.Background(), index, media)

	// Routes
	mux := http.NewServeMux()
	mux.HandleFunc("/api/photos", srvCtx.HandlePhotosList)
	mux.HandleFunc("/photos/", srvCtx.HandlePhoto)
	mux.HandleFunc("/", srvCtx.HandleIndex)

	handler := server.RequestLogger(mux)

	listenAddr := fmt.Sprintf("%s:%d", opts.Addr, opts.Port)
	log.Info().
		Str("addr", listenAddr).
		Str("album", gallery.AlbumName).
		Msg("Gallery viewer started")

	if err := http.ListenAndServe(listenAddr, handler); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
