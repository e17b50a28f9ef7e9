package main

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/ghostpin/ghostpin/internal/capture"
	"github.com/ghostpin/ghostpin/internal/compose"
	"github.com/ghostpin/ghostpin/internal/config"
	"github.com/ghostpin/ghostpin/internal/logger"
	"github.com/ghostpin/ghostpin/internal/mediastore"
	"github.com/ghostpin/ghostpin/internal/repository"
	"github.com/ghostpin/ghostpin/internal/staticmap"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string  `short:"c" long:"config" env:"CONFIG_FILE" description:"Path to configuration file" default:"config.yaml"`
	Photo      string  `short:"i" long:"photo"  env:"PHOTO_FILE"  description:"Image file the camera device captures from" required:"true"`
	Front      bool    `long:"front"       description:"Use the front-facing device"`
	Flash      int     `long:"flash"       description:"Flash toggle presses before capture" default:"0"`
	Zoom       float64 `short:"z" long:"zoom" description:"Zoom value, clamped to the device range" default:"0"`
	Share      bool    `short:"s" long:"share"  description:"Hand the stamped photo to the share target"`
	NoSave     bool    `long:"no-save"     description:"Skip writing to the album (share only)"`
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

	repo, err := repository.Open(ctx, repository.NewFileStore(cfg.DataDir))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open location repository")
	}

	client := &http.Client{
		Transport: &http.Transport{
			TLSNextProto:        make(map[string]func(string, *tls.Conn) http.RoundTripper),
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
		},
		Timeout: 15 * time.Second,
	}

	maps := staticmap.NewClient(client, cfg.StaticMap.URL, cfg.StaticMap.Key)
	media := mediastore.NewFileStore(cfg.MediaRoot)
	sharer := compose.DirSharer{Dir: cfg.ShareDir}

	engine := compose.NewEngine(maps, media, sharer, compose.Options{
		Format:  compose.Format(cfg.Export.Format),
		Quality: cfg.Export.Quality,
	})

	// One file-backed device per facing; both read the staged photo.
	resolver := capture.StaticResolver{Devices: map[capture.Facing]capture.Device{
		capture.FacingBack:  capture.NewFileDevice(capture.FacingBack, opts.Photo),
		capture.FacingFront: capture.NewFileDevice(capture.FacingFront, opts.Photo),
	}}

	pipeline := capture.NewPipeline(resolver, capture.GrantedGate{Granted: true})

	if err := pipeline.Start(ctx); err != nil {
		if errors.Is(err, capture.ErrPermissionDenied) {
			log.Fatal().Msg("Camera permission denied")
		}
		log.Fatal().Err(err).Msg("Failed to start camera")
	}

	if opts.Front {
		if err := pipeline.ToggleFacing(); err != nil {
			log.Fatal().Err(err).Msg("Failed to switch camera facing")
		}
	}
	for i := 0; i < opts.Flash; i++ {
		pipeline.ToggleFlash()
	}
	if opts.Zoom > 0 {
		pipeline.SetZoom(opts.Zoom)
	}

	log.Info().
		Stringer("facing", pipeline.Facing()).
		Stringer("flash", pipeline.Flash()).
		Float64("zoom", pipeline.Zoom()).
		Msg("Capturing")

	if _, err := pipeline.Capture(ctx); err != nil {
		log.Fatal().Err(err).Msg("Capture failed")
	}

	photo, err := pipeline.Advance()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to advance to preview")
	}

	session := compose.NewSession(engine, repo, photo)

	if selected := repo.SelectedLocation(); selected != nil {
		log.Info().
			Str("coords", selected.CoordinateString()).
			Str("address", selected.Address).
			Msg("Stamping with selected location")
	} else {
		log.Info().Msg("No location selected, exporting without overlay")
	}

	if !opts.NoSave {
		asset, err := session.Save(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Export failed")
		}
		log.Info().Str("uri", asset.URI).Msg("Saved to album")
	}

	if opts.Share {
		if err := session.Share(ctx); err != nil {
			log.Fatal().Err(err).Msg("Share failed")
		}
	}
}
