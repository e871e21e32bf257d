// Package store persists tour completion flags.
//
// Three backends share the Store interface: the YAML registry from the config
// package, a SQLite database (modernc.org/sqlite, no cgo) for hosts that keep
// many tours or many users, and an in-memory map for previews and tests.
package store

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/muurk/tourguide/internal/config"
	"github.com/muurk/tourguide/internal/tour"
)

// Record is one finished tour.
type Record struct {
	Key        string       `json:"key"`
	Outcome    tour.Outcome `json:"outcome"`
	FinishedAt time.Time    `json:"finished_at"`
	Runs       int          `json:"runs"`
}

// Store is a completion store the CLI can also inspect and reset.
type Store interface {
	tour.Store
	Records() ([]Record, error)
	Reset(key string) (bool, error)
	Close() error
}

// Backend names accepted by Open.
const (
	BackendYAML   = "yaml"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Open opens the named backend. path is the SQLite database file; empty
// selects tourguide.db next to the registry.
func Open(backend string, reg *config.Registry, path string) (Store, error) {
	switch backend {
	case "", BackendYAML:
		if reg == nil {
			return nil, fmt.Errorf("yaml store needs a registry")
		}
		return FromRegistry(reg), nil
	case BackendSQLite:
		if path == "" {
			dir, err := config.GetConfigDir()
			if err != nil {
				return nil, fmt.Errorf("failed to get config directory: %w", err)
			}
			path = filepath.Join(dir, "tourguide.db")
		}
		return OpenSQLite(path)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store %q (want yaml, sqlite or memory)", backend)
	}
}

// registryStore adapts the YAML registry.
type registryStore struct {
	*config.Registry
}

// FromRegistry wraps a registry as a Store.
func FromRegistry(reg *config.Registry) Store {
	return registryStore{reg}
}

func (s registryStore) Records() ([]Record, error) {
	keys := s.TourKeys()
	out := make([]Record, 0, len(keys))
	for _, k := range keys {
		rec := s.GetTour(k)
		if rec == nil {
			continue
		}
		out = append(out, Record{Key: k, Outcome: rec.Outcome, FinishedAt: rec.FinishedAt, Runs: rec.Runs})
	}
	return out, nil
}

func (s registryStore) Close() error { return nil }

func sortRecords(recs []Record) {
	sort.Slice(recs, func(i, j int) bool { return recs[i].Key < recs[j].Key })
}
