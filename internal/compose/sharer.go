package compose

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// DirSharer stands in for the OS share sheet by dropping the flattened image
// into an outbox directory.
type DirSharer struct {
	Dir string
}

// Share implements Sharer.
func (d DirSharer) Share(_ context.Context, name string, data []byte) error {
	if err := os.MkdirAll(d.Dir, 0755); err != nil {
		return err
	}

	path := filepath.Join(d.Dir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}

	log.Info().Str("path", path).Msg("Photo handed to share target")

	return nil
}
