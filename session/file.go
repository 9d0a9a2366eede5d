package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/kbukum/bookstore/logger"
)

// FileStore keeps the session in a JSON file readable only by the owner.
// Every write replaces the file atomically. A file that cannot be parsed
// fails reads, while writes replace it with a fresh one.
type FileStore struct {
	mu   sync.Mutex
	path string
	ttl  time.Duration
	log  *logger.Logger
}

type fileEntry struct {
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

// NewFileStore creates a FileStore at path, creating parent directories.
// A nil log discards warnings.
func NewFileStore(path string, ttl time.Duration, log *logger.Logger) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("session: file path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("session: create dir: %w", err)
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &FileStore{path: path, ttl: ttl, log: log}, nil
}

// Path returns the session file location.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return "", false, err
	}
	e, ok := entries[key]
	if !ok {
		return "", false, nil
	}
	if !e.ExpiresAt.IsZero() && time.Now().After(e.ExpiresAt) {
		delete(entries, key)
		return "", false, s.save(entries)
	}
	return e.Value, true, nil
}

func (s *FileStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, _, err := s.loadForWrite(ctx)
	if err != nil {
		return err
	}
	e := fileEntry{Value: value}
	if s.ttl > 0 {
		e.ExpiresAt = time.Now().Add(s.ttl)
	}
	entries[key] = e
	return s.save(entries)
}

func (s *FileStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, reset, err := s.loadForWrite(ctx)
	if err != nil {
		return err
	}
	if _, ok := entries[key]; !ok && !reset {
		return nil
	}
	delete(entries, key)
	return s.save(entries)
}

func (s *FileStore) Close() error { return nil }

// errCorrupt marks a session file whose content is not valid JSON.
var errCorrupt = errors.New("session: corrupt file")

func (s *FileStore) load() (map[string]fileEntry, error) {
	entries := make(map[string]fileEntry)
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return entries, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: read %s: %w", s.path, err)
	}
	if len(b) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(b, &entries); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", errCorrupt, s.path, err)
	}
	return entries, nil
}

// loadForWrite is load for the write paths. A corrupt file yields an empty
// map and reset=true, so the caller's save replaces it.
func (s *FileStore) loadForWrite(ctx context.Context) (entries map[string]fileEntry, reset bool, err error) {
	entries, err = s.load()
	if errors.Is(err, errCorrupt) {
		s.log.WithContext(ctx).Warn("discarding unreadable session file", logger.ErrorFields("session_load", err))
		return make(map[string]fileEntry), true, nil
	}
	return entries, false, err
}

func (s *FileStore) save(entries map[string]fileEntry) error {
	b, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("session: encode: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".session-*")
	if err != nil {
		return fmt.Errorf("session: write: %w", err)
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("session: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("session: write: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("session: replace %s: %w", s.path, err)
	}
	return nil
}

var _ Backend = (*FileStore)(nil)
