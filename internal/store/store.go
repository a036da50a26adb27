// Package store is the client-side persistence for the salesperson profile
// and the conversation threads. Values are JSON text under two fixed keys in
// a pluggable key/value backend.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"replyai/internal/domain"
)

const (
	ProfileKey = "replyAI_profile"
	ThreadsKey = "replyAI_threads"
)

// Backend is a string key/value store with no expiry.
type Backend interface {
	// Get returns ok=false when the key has never been set.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// Store implements domain.LocalStore on top of a Backend.
type Store struct {
	backend Backend
	logger  *slog.Logger
}

var _ domain.LocalStore = (*Store)(nil)

func New(backend Backend, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{backend: backend, logger: logger}
}

// Config selects and locates a backend.
type Config struct {
	Backend string // file | sqlite | memory
	Path    string // directory for file, database file for sqlite
	Logger  *slog.Logger
}

// Open builds a Store for cfg.
func Open(cfg Config) (*Store, error) {
	var (
		b   Backend
		err error
	)
	switch cfg.Backend {
	case "file", "":
		b, err = NewFileBackend(cfg.Path)
	case "sqlite":
		b, err = NewSQLiteBackend(cfg.Path, cfg.Logger)
	case "memory":
		b = NewMemoryBackend()
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return New(b, cfg.Logger), nil
}

func (s *Store) Close() error {
	return s.backend.Close()
}

// LoadProfile returns the stored profile, or an empty one when nothing is
// stored or the stored value is unreadable.
func (s *Store) LoadProfile(ctx context.Context) domain.Profile {
	var p domain.Profile
	if !s.load(ctx, ProfileKey, &p) {
		return domain.Profile{}.Normalize()
	}
	return p.Normalize()
}

func (s *Store) SaveProfile(ctx context.Context, p domain.Profile) error {
	return s.save(ctx, ProfileKey, p.Normalize())
}

// LoadThreads returns all stored threads, or an empty map on any read
// problem.
func (s *Store) LoadThreads(ctx context.Context) domain.Threads {
	var raw map[string]domain.Thread
	if !s.load(ctx, ThreadsKey, &raw) || raw == nil {
		return domain.Threads{}
	}
	threads := make(domain.Threads, len(raw))
	for name, th := range raw {
		if th.Name == "" {
			th.Name = name
		}
		if th.Messages == nil {
			th.Messages = []domain.Message{}
		}
		threads[name] = th
	}
	return threads
}

func (s *Store) SaveThreads(ctx context.Context, threads domain.Threads) error {
	if threads == nil {
		threads = domain.Threads{}
	}
	return s.save(ctx, ThreadsKey, threads)
}

// load decodes key into v. It reports false for absent or unreadable data,
// logging the latter.
func (s *Store) load(ctx context.Context, key string, v any) bool {
	raw, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		s.logger.Warn("cannot read local data", "key", key, "err", fmt.Errorf("%w: %w", domain.ErrPersistenceRead, err))
		return false
	}
	if !ok || raw == "" {
		return false
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		s.logger.Warn("cannot parse local data", "key", key, "err", fmt.Errorf("%w: %w", domain.ErrPersistenceRead, err))
		return false
	}
	return true
}

func (s *Store) save(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.backend.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
