package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileStorage is the single-node reference Storage implementation: every
// record is one JSON document under dataDir, and each capability has its own
// in-process mutex. Sequence files are additionally guarded by an OS advisory
// lock on the file handle; config files are not OS-locked, so only the
// in-process mutex serializes access to them. The in-process
// mutex exists because an OS advisory lock (flock) only serializes across
// independently-opened file descriptors; two goroutines racing to open the
// same path would otherwise both succeed in opening before either flocks,
// which is harmless here but would make the error paths (stat-then-act)
// racy. Mirrors storage/file/sequence.rs's tokio::sync::Mutex<()> layering.
type FileStorage struct {
	dataDir string

	sequencesDir string
	configsDir   string
	locksDir     string

	seqMu  sync.Mutex
	cfgMu  sync.Mutex
	lockMu sync.Mutex
}

// NewFileStorage creates the directory layout under dataDir:
//
//	data/sequences/
//	data/configs/{increment,snowflake,formatted}/
//	data/locks/
func NewFileStorage(dataDir string) (*FileStorage, error) {
	fs := &FileStorage{
		dataDir:      dataDir,
		sequencesDir: filepath.Join(dataDir, "sequences"),
		configsDir:   filepath.Join(dataDir, "configs"),
		locksDir:     filepath.Join(dataDir, "locks"),
	}

	dirs := []string{
		fs.sequencesDir,
		filepath.Join(fs.configsDir, "increment"),
		filepath.Join(fs.configsDir, "snowflake"),
		filepath.Join(fs.configsDir, "formatted"),
		fs.locksDir,
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("creating storage directory %q: %w", d, err)
		}
	}

	return fs, nil
}

// HealthCheck verifies write access to the storage root by writing and
// removing a small probe file.
func (s *FileStorage) HealthCheck(_ context.Context) error {
	probe := filepath.Join(s.dataDir, fmt.Sprintf(".health-%d", time.Now().UnixNano()))
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		return fmt.Errorf("health check write: %w", err)
	}
	return os.Remove(probe)
}
