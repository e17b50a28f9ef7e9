package main

import (
	"bufio"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ghostpin/ghostpin/internal/config"
	"github.com/ghostpin/ghostpin/internal/geocode"
	"github.com/ghostpin/ghostpin/internal/location"
	"github.com/ghostpin/ghostpin/internal/logger"
	"github.com/ghostpin/ghostpin/internal/picker"
	"github.com/ghostpin/ghostpin/internal/repository"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string `short:"c" long:"config" env:"CONFIG_FILE" description:"Path to configuration file" default:"config.yaml"`

	Add      string `short:"a" long:"add"      description:"Add a location as \"lat,lng\""`
	Here     bool   `long:"here"               description:"Add the current position (requires --position or POSITION)"`
	Position string `long:"position" env:"POSITION" description:"Device position stand-in as \"lat,lng\""`
	Address  string `long:"address"            description:"Address for --add, skips the reverse-geocode lookup"`
	Search   string `short:"q" long:"search"   description:"Filter the listing by address or coordinate substring"`
	Select   string `short:"s" long:"select"   description:"Select the location with this id"`
	Deselect bool   `short:"d" long:"deselect" description:"Clear the current selection"`
	Remove   string `short:"r" long:"remove"   description:"Remove the location with this id"`
	Yes      bool   `short:"y" long:"yes"      description:"Skip the removal confirmation prompt"`
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
	geocoder := geocode.NewClient(client, cfg.Geocoder.URL, cfg.Geocoder.Key)

	pick := picker.New(repo, confirmPrompt(opts.Yes), nil)

	switch {
	case opts.Add != "" || opts.Here:
		var positioner geocode.Positioner
		if opts.Here {
			if opts.Position == "" {
				log.Fatal().Msg("--here needs --position (or POSITION) as the GPS stand-in")
			}
			lat, lng, err := parseCoords(opts.Position)
			if err != nil {
				log.Fatal().Err(err).Msg("Could not parse position")
			}
			positioner = geocode.StaticPositioner{Position: geocode.Position{Latitude: lat, Longitude: lng}}
		}

		loc, err := addLocation(ctx, repo, positioner, geocoder, opts)
		if err != nil {
			if errors.Is(err, location.ErrInvalidCoordinates) {
				log.Fatal().Err(err).Msg("Latitude must be in [-90, 90], longitude in [-180, 180], and (0, 0) is rejected")
			}
			log.Fatal().Err(err).Msg("Failed to add location")
		}

		log.Info().Str("id", loc.ID).Str("coords", loc.CoordinateString()).Msg("Location added")

	case opts.Select != "":
		selectLocation(ctx, repo, pick, opts.Select)

	case opts.Deselect:
		if err := pick.Deselect(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to clear selection")
		}
		log.Info().Msg("Selection cleared")

	case opts.Remove != "":
		if err := pick.Delete(ctx, opts.Remove); err != nil {
			log.Fatal().Err(err).Msg("Failed to remove location")
		}
	}

	printLocations(pick.Locations(opts.Search), repo.SelectedLocation())
}

// addLocation resolves coordinates from the positioner (--here) or the --add
// argument, fills the address via reverse geocode unless one was given, and
// commits the new location.
func addLocation(ctx context.Context, repo *repository.Repository, positioner geocode.Positioner, geocoder geocode.Geocoder, opts Options) (location.Location, error) {
	var lat, lng float64

	if opts.Here {
		pos, err := positioner.CurrentPosition(ctx)
		if err != nil {
			return location.Location{}, fmt.Errorf("current position: %w", err)
		}
		lat, lng = pos.Latitude, pos.Longitude
	} else {
		var err error
		lat, lng, err = parseCoords(opts.Add)
		if err != nil {
			return location.Location{}, err
		}
	}

	address := opts.Address
	if address == "" {
		resolved, err := geocoder.ReverseGeocode(ctx, lat, lng)
		if err != nil {
			// Non-fatal: the location is still usable without an address.
			log.Warn().Err(err).Msg("Address lookup failed, adding without address")
		} else {
			address = resolved
		}
	}

	return repo.AddLocation(ctx, location.Candidate{
		Latitude:  lat,
		Longitude: lng,
		Address:   strings.TrimSpace(address),
	})
}

func selectLocation(ctx context.Context, repo *repository.Repository, pick *picker.Picker, id string) {
	for _, loc := range repo.Locations() {
		if loc.ID == id {
			if err := pick.Select(ctx, loc); err != nil {
				log.Fatal().Err(err).Msg("Failed to select location")
			}
			return
		}
	}

	log.Fatal().Str("id", id).Msg("No such location")
}

func parseCoords(s string) (lat, lng float64, err error) {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected \"lat,lng\", got %q", s)
	}

	lat, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, err
	}
	lng, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, err
	}

	return lat, lng, nil
}

// confirmPrompt gates removals on a y/N answer from stdin, unless --yes.
func confirmPrompt(skip bool) picker.ConfirmFunc {
	return func(prompt string) bool {
		if skip {
			return true
		}

		fmt.Fprintf(os.Stderr, "%s [y/N]: ", prompt)

		reader := bufio.NewReader(os.Stdin)
		answer, err := reader.ReadString('\n')
		if err != nil {
			return false
		}

		answer = strings.ToLower(strings.TrimSpace(answer))
		return answer == "y" || answer == "yes"
	}
}

func printLocations(locs []location.Location, selected *location.Location) {
	if len(locs) == 0 {
		fmt.Println("No locations added yet.")
		return
	}

	for _, loc := range locs {
		marker := " "
		if selected != nil && selected.ID == loc.ID {
			marker = "*"
		}

		line := fmt.Sprintf("%s %s  %s", marker, loc.ID, loc.CoordinateString())
		if loc.Address != "" {
			line += "  " + loc.Address
		}
		fmt.Println(line)
	}
}
