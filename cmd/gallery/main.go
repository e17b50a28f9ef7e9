package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ghostpin/ghostpin/internal/config"
	"github.com/ghostpin/ghostpin/internal/gallery"
	"github.com/ghostpin/ghostpin/internal/logger"
	"github.com/ghostpin/ghostpin/internal/mediastore"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string `short:"c" long:"config" env:"CONFIG_FILE" description:"Path to configuration file" default:"config.yaml"`
	Delete     string `short:"d" long:"delete" description:"Delete the exported photo with this id"`
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

	opts.Logger.Setup()

	cfg, err := config.LoadOrDefault(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx := context.Background()
	index := gallery.NewIndex(mediastore.NewFileStore(cfg.MediaRoot))

	if opts.Delete != "" {
		ok, err := index.DeleteAsset(ctx, opts.Delete)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to delete photo")
		}
		if !ok {
			log.Warn().Str("id", opts.Delete).Msg("No such photo")
		}
	}

	assets, err := index.ListAppPhotos(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list album")
	}

	if len(assets) == 0 {
		fmt.Println("Album is empty.")
		return
	}

	for _, a := range assets {
		fmt.Printf("%s  %s  %d bytes\n", a.CreatedAt.Format("2006-01-02 15:04:05"), a.ID, a.Size)
	}
}
