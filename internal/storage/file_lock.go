package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const (
	lockMaxAttempts = 100
	lockRetryDelay  = 50 * time.Millisecond
)

func (s *FileStorage) lockPath(key string) string {
	return filepath.Join(s.locksDir, sanitizeName(key)+".lock")
}

// fileLockGuard releases the advisory lock and best-effort removes the lock
// file on Release. Mirrors storage/file/lock.rs's LockInfo/release_internal.
type fileLockGuard struct {
	fl   *flock.Flock
	path string
}

func (g *fileLockGuard) Release(_ context.Context) error {
	err := g.fl.Unlock()
	_ = os.Remove(g.path)
	return err
}

func (s *FileStorage) writeLockDiagnostics(fl *flock.Flock, ttl time.Duration) {
	payload := map[string]any{
		"pid":           os.Getpid(),
		"acquired_at_ms": time.Now().UnixMilli(),
		"ttl_ms":         ttl.Milliseconds(),
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	f := fl.Fh()
	_, _ = f.Seek(0, 0)
	_ = f.Truncate(0)
	_, _ = f.Write(data)
	_, _ = f.Write([]byte("\n"))
	_ = f.Sync()
}

// Acquire blocks with bounded retries (~100 attempts * 50ms ≈ 5s) until the
// lock is obtained, or returns a timeout error.
func (s *FileStorage) Acquire(ctx context.Context, key string, ttl time.Duration) (LockGuard, error) {
	path := s.lockPath(key)
	if err := os.MkdirAll(s.locksDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating locks dir: %w", err)
	}

	for attempt := 0; attempt < lockMaxAttempts; attempt++ {
		fl := flock.New(path)
		ok, err := fl.TryLock()
		if err != nil {
			return nil, fmt.Errorf("acquiring lock %q: %w", key, err)
		}
		if ok {
			s.writeLockDiagnostics(fl, ttl)
			return &fileLockGuard{fl: fl, path: path}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockRetryDelay):
		}
	}

	return nil, fmt.Errorf("lock timeout: failed to acquire %q after %d attempts", key, lockMaxAttempts)
}

// TryAcquire attempts the lock once, non-blocking.
func (s *FileStorage) TryAcquire(_ context.Context, key string, ttl time.Duration) (LockGuard, error) {
	path := s.lockPath(key)
	if err := os.MkdirAll(s.locksDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating locks dir: %w", err)
	}

	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquiring lock %q: %w", key, err)
	}
	if !ok {
		return nil, nil
	}
	s.writeLockDiagnostics(fl, ttl)
	return &fileLockGuard{fl: fl, path: path}, nil
}

// IsLocked reports whether key is currently held by probing with a
// non-blocking try-lock and immediately releasing if it succeeds.
func (s *FileStorage) IsLocked(_ context.Context, key string) (bool, error) {
	path := s.lockPath(key)
	if _, err := os.Stat(path); err != nil {
		return false, nil
	}

	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return false, nil
	}
	if ok {
		_ = fl.Unlock()
		return false, nil
	}
	return true, nil
}
