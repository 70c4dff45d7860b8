package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/idbuilder/worker/internal/domain"
)

func (s *FileStorage) sequencePath(name string) string {
	return filepath.Join(s.sequencesDir, sanitizeName(name)+".json")
}

// updateSequence reads the current state, applies update under an OS
// exclusive advisory lock, and writes it back. It is the single
// read-modify-write critical section every sequence mutation funnels
// through. If update
// returns an error, nothing is written and the durable value is left
// unmodified (this is how GetAndIncrementBounded avoids moving the counter
// past its configured max, unlike the Rust reference).
func (s *FileStorage) updateSequence(name string, update func(*domain.SequenceState) error) (domain.SequenceState, error) {
	path := s.sequencePath(name)

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return domain.SequenceState{}, ErrNotFound
		}
		return domain.SequenceState{}, fmt.Errorf("stat sequence %q: %w", name, err)
	}

	fl := flock.New(path)
	if err := fl.Lock(); err != nil {
		return domain.SequenceState{}, fmt.Errorf("locking sequence %q: %w", name, err)
	}
	defer fl.Unlock()

	f := fl.Fh()

	var state domain.SequenceState
	if err := json.NewDecoder(f).Decode(&state); err != nil {
		return domain.SequenceState{}, fmt.Errorf("decoding sequence %q: %w", name, err)
	}

	if err := update(&state); err != nil {
		return domain.SequenceState{}, err
	}

	state.Version++
	state.UpdatedAtMs = time.Now().UnixMilli()

	if err := rewriteJSON(f, state); err != nil {
		return domain.SequenceState{}, fmt.Errorf("writing sequence %q: %w", name, err)
	}

	return state, nil
}

func (s *FileStorage) readSequence(name string) (*domain.SequenceState, error) {
	path := s.sequencePath(name)

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat sequence %q: %w", name, err)
	}

	fl := flock.New(path)
	if err := fl.Lock(); err != nil {
		return nil, fmt.Errorf("locking sequence %q: %w", name, err)
	}
	defer fl.Unlock()

	var state domain.SequenceState
	if err := json.NewDecoder(fl.Fh()).Decode(&state); err != nil {
		return nil, fmt.Errorf("decoding sequence %q: %w", name, err)
	}
	return &state, nil
}

func (s *FileStorage) GetAndIncrement(_ context.Context, name string, count uint32, step int64) (domain.SequenceRange, error) {
	s.seqMu.Lock()
	defer s.seqMu.Unlock()

	countI64 := int64(count)
	var start, end int64

	_, err := s.updateSequence(name, func(state *domain.SequenceState) error {
		start = state.CurrentValue
		end = start + step*(countI64-1)
		state.CurrentValue = start + step*countI64
		return nil
	})
	if err != nil {
		return domain.SequenceRange{}, err
	}

	return domain.NewSequenceRange(start, end, step), nil
}

func (s *FileStorage) GetAndIncrementBounded(_ context.Context, name string, count uint32, step, min, max int64) (domain.SequenceRange, error) {
	s.seqMu.Lock()
	defer s.seqMu.Unlock()

	countI64 := int64(count)
	var start, end int64

	_, err := s.updateSequence(name, func(state *domain.SequenceState) error {
		start = state.CurrentValue
		end = start + step*(countI64-1)

		if step > 0 && end > max {
			return ErrSequenceExceedsBounds
		}
		if step < 0 && end < min {
			return ErrSequenceExceedsBounds
		}

		state.CurrentValue = start + step*countI64
		return nil
	})
	if err != nil {
		return domain.SequenceRange{}, err
	}

	return domain.NewSequenceRange(start, end, step), nil
}

func (s *FileStorage) GetCurrent(_ context.Context, name string) (int64, error) {
	s.seqMu.Lock()
	defer s.seqMu.Unlock()

	state, err := s.readSequence(name)
	if err != nil {
		return 0, err
	}
	if state == nil {
		return 0, ErrNotFound
	}
	return state.CurrentValue, nil
}

func (s *FileStorage) Initialize(_ context.Context, name string, idType domain.IDType, start int64) error {
	s.seqMu.Lock()
	defer s.seqMu.Unlock()

	path := s.sequencePath(name)
	if _, err := os.Stat(path); err == nil {
		// Idempotent: leave an existing sequence untouched.
		return nil
	}

	state := domain.NewSequenceState(name, idType, start)
	return s.writeNewSequence(path, state)
}

func (s *FileStorage) writeNewSequence(path string, state domain.SequenceState) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("creating sequence file: %w", err)
	}
	defer f.Close()

	fl := flock.New(path)
	if err := fl.Lock(); err != nil {
		return fmt.Errorf("locking new sequence file: %w", err)
	}
	defer fl.Unlock()

	return rewriteJSON(fl.Fh(), state)
}

func (s *FileStorage) Exists(_ context.Context, name string) (bool, error) {
	_, err := os.Stat(s.sequencePath(name))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func (s *FileStorage) GetState(_ context.Context, name string) (*domain.SequenceState, error) {
	s.seqMu.Lock()
	defer s.seqMu.Unlock()
	return s.readSequence(name)
}

func (s *FileStorage) Delete(_ context.Context, name string) error {
	s.seqMu.Lock()
	defer s.seqMu.Unlock()

	err := os.Remove(s.sequencePath(name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting sequence %q: %w", name, err)
	}
	return nil
}

// rewriteJSON truncates f to the start and writes v as pretty-printed JSON,
// fsyncing before returning so the write survives a crash.
func rewriteJSON(f *os.File, v any) error {
	if _, err := f.Seek(0, 0); err != nil {
		return err
	}
	if err := f.Truncate(0); err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	return f.Sync()
}
