// Package store implements C1: a key→JSON-blob persistent store with
// debounced write-behind, atomic on-disk writes, and opt-in
// AES-256-GCM at-rest encryption.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/uzzalhcse/patterncore/internal/logger"
	"github.com/uzzalhcse/patterncore/pkg/patternmodel"
)

func zapPath(path string) zap.Field { return zap.String("path", path) }

// Store is a single-file key→JSON-blob persistent store. One Store
// instance owns one file; callers wanting multiple independent blobs
// (patterns, sessions) construct one Store per file path, matching the
// two file paths named in config (pattern_file_path, session_file_path).
type Store struct {
	path       string
	debounce   time.Duration
	box        *cipherBox // nil when encryption is disabled

	mu      sync.Mutex
	pending []byte
	dirty   bool
	timer   *time.Timer
}

// New constructs a Store writing to path. If encryptionEnvVar names a
// set environment variable, at-rest AES-256-GCM encryption is enabled.
func New(path string, debounce time.Duration, encryptionEnvVar string) *Store {
	s := &Store{path: path, debounce: debounce}
	if key := os.Getenv(encryptionEnvVar); key != "" {
		s.box = newCipherBox(key)
	}
	return s
}

// Load reads the current on-disk blob, transparently decrypting it if
// it carries the encrypted header, and transparently re-encrypting a
// plaintext file on read if encryption is now configured ("migration
// on read", per spec §4.1). Returns (nil, nil) if no file exists yet.
func (s *Store) Load() ([]byte, error) {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if isEncrypted(raw) {
		if s.box == nil {
			return nil, patternmodel.ErrPersistenceFailed
		}
		return s.box.open(raw)
	}

	if s.box != nil {
		logger.Info("store: migrating plaintext file to encrypted at-rest format", zapPath(s.path))
		if err := s.writeAtomic(raw); err != nil {
			logger.Warn("store: migration-on-read write failed, serving plaintext anyway", zapPath(s.path))
		}
	}
	return raw, nil
}

// Save schedules blob for write-behind. Multiple calls within the
// debounce window coalesce into a single on-disk write.
func (s *Store) Save(blob []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = blob
	s.dirty = true

	if s.debounce <= 0 {
		s.flushLocked()
		return
	}

	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.flushLocked()
	})
}

// Flush forces any pending write to disk immediately.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	return s.flushLocked()
}

func (s *Store) flushLocked() error {
	if !s.dirty {
		return nil
	}
	blob := s.pending
	s.dirty = false

	if err := s.writeAtomic(blob); err != nil {
		logger.Error("store: write failed", zapPath(s.path))
		return err
	}
	return nil
}

// writeAtomic serializes the blob to a unique temp file in the target
// directory, then renames it onto the destination, per spec §4.1. On
// failure the temp file is removed.
func (s *Store) writeAtomic(blob []byte) error {
	payload := blob
	if s.box != nil {
		sealed, err := s.box.seal(blob)
		if err != nil {
			return err
		}
		payload = sealed
	}

	dir := filepath.Dir(s.path)
	tmp := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(s.path), uuid.NewString()))

	if err := os.WriteFile(tmp, payload, 0o600); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: %w", patternmodel.ErrPersistenceFailed, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: %w", patternmodel.ErrPersistenceFailed, err)
	}
	return nil
}
