package file

import (
	"fmt"
	"os"
	"path/filepath"
	"whalegen/internal/core/domain"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const (
	dirPermissions  os.FileMode = 0o755
	filePermissions os.FileMode = 0o644
)

// Store persists artifacts below a root directory of the given filesystem.
type Store struct {
	fs afero.Fs
}

// NewStore returns a Store rooted at root. An empty root or "." uses the filesystem as-is; afero's BasePathFs
// rejects every relative path below ".".
func NewStore(fs afero.Fs, root string) *Store {
	if root != "" && filepath.Clean(root) != "." {
		fs = afero.NewBasePathFs(fs, root)
	}

	return &Store{fs: fs}
}

// Fs exposes the rooted filesystem so other adapters can read back persisted artifacts.
func (s *Store) Fs() afero.Fs {
	return s.fs
}

// PersistLocal writes the artifact to path, creating parent directories and replacing previous content.
func (s *Store) PersistLocal(artifact []byte, path string) error {
	if err := s.fs.MkdirAll(filepath.Dir(path), dirPermissions); err != nil {
		err = fmt.Errorf("%w: error creating directory for %s: %w", domain.ErrPersist, path, err)
		log.Error().Err(err).Send()
		return err
	}

	log.Debug().Int("bytes", len(artifact)).Str("path", path).Msg("writing artifact")

	if err := afero.WriteFile(s.fs, path, artifact, filePermissions); err != nil {
		err = fmt.Errorf("%w: error writing %s: %w", domain.ErrPersist, path, err)
		log.Error().Err(err).Send()
		return err
	}

	return nil
}

// Read retrieves an artifact previously written with PersistLocal.
func (s *Store) Read(path string) ([]byte, error) {
	buf, err := afero.ReadFile(s.fs, path)
	if err != nil {
		err = fmt.Errorf("error reading artifact %s: %w", path, err)
		log.Error().Err(err).Send()
		return nil, err
	}

	return buf, nil
}
