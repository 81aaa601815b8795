package localstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service stores uploaded files on the local filesystem under a base
// directory. Stored names are prefixed with a random id so concurrent
// uploads of the same filename never collide.
type Service struct {
	dir    string
	logger zerolog.Logger
}

// New constructs a local file store rooted at dir, creating it if needed.
func New(dir string, logger zerolog.Logger) (*Service, error) {
	if dir == "" {
		return nil, fmt.Errorf("upload directory must be provided")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	return &Service{
		dir:    dir,
		logger: logger.With().Str("component", "localstore").Logger(),
	}, nil
}

// Upload writes the file under the base directory and returns its path.
func (s *Service) Upload(ctx context.Context, name string, reader io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	stored := fmt.Sprintf("%s-%s", uuid.NewString(), filepath.Base(name))
	path := filepath.Join(s.dir, stored)

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(file, reader); err != nil {
		file.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to close file: %w", err)
	}

	s.logger.Info().Str("path", path).Msg("file stored")

	return path, nil
}
