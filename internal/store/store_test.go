package store

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/muurk/tourguide/internal/config"
	"github.com/muurk/tourguide/internal/tour"
)

func openBackends(t *testing.T) map[string]Store {
	t.Helper()

	sqliteStore, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	t.Cleanup(func() { sqliteStore.Close() })

	reg, err := config.LoadRegistryFrom(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("LoadRegistryFrom() error = %v", err)
	}

	return map[string]Store{
		"sqlite": sqliteStore,
		"memory": NewMemory(),
		"yaml":   FromRegistry(reg),
	}
}

func TestStoreContract(t *testing.T) {
	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			done, err := s.IsCompleted("onboarding")
			if err != nil || done {
				t.Fatalf("IsCompleted() on empty store = %v, %v", done, err)
			}

			if err := s.MarkCompleted("onboarding", tour.OutcomeSkipped); err != nil {
				t.Fatalf("MarkCompleted() error = %v", err)
			}
			if err := s.MarkCompleted("onboarding", tour.OutcomeCompleted); err != nil {
				t.Fatalf("MarkCompleted() error = %v", err)
			}
			if err := s.MarkCompleted("billing", tour.OutcomeSkipped); err != nil {
				t.Fatalf("MarkCompleted() error = %v", err)
			}

			if done, _ := s.IsCompleted("onboarding"); !done {
				t.Error("IsCompleted() = false after MarkCompleted()")
			}

			recs, err := s.Records()
			if err != nil {
				t.Fatalf("Records() error = %v", err)
			}
			if len(recs) != 2 || recs[0].Key != "billing" || recs[1].Key != "onboarding" {
				t.Fatalf("Records() = %+v, want billing and onboarding", recs)
			}
			if recs[1].Outcome != tour.OutcomeCompleted || recs[1].Runs != 2 {
				t.Errorf("onboarding record = %+v, want completed with 2 runs", recs[1])
			}
			if time.Since(recs[1].FinishedAt) > time.Minute {
				t.Errorf("FinishedAt = %v, want about now", recs[1].FinishedAt)
			}

			removed, err := s.Reset("onboarding")
			if err != nil || !removed {
				t.Fatalf("Reset() = %v, %v; want true, nil", removed, err)
			}
			if removed, _ := s.Reset("onboarding"); removed {
				t.Error("second Reset() = true")
			}
			if done, _ := s.IsCompleted("onboarding"); done {
				t.Error("IsCompleted() = true after Reset()")
			}
		})
	}
}

func TestSQLiteSharedConnection(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	s, err := NewSQLite(db)
	if err != nil {
		t.Fatalf("NewSQLite() error = %v", err)
	}
	s.now = func() time.Time { return time.UnixMilli(1700000000000) }
	s.MarkCompleted("onboarding", tour.OutcomeCompleted)
	s.Close()

	var ms int64
	if err := db.QueryRow(`SELECT finished_at FROM tour_completions WHERE key = 'onboarding'`).Scan(&ms); err != nil {
		t.Fatalf("connection closed by Close() or row missing: %v", err)
	}
	if ms != 1700000000000 {
		t.Errorf("finished_at = %d, want 1700000000000", ms)
	}
}

func TestSQLiteFilePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db", "tourguide.db")
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	s.MarkCompleted("onboarding", tour.OutcomeSkipped)
	s.Close()

	again, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer again.Close()
	if done, _ := again.IsCompleted("onboarding"); !done {
		t.Error("completion lost across reopen")
	}
}

func TestOpen(t *testing.T) {
	reg := config.NewRegistry()
	tests := []struct {
		backend string
		reg     *config.Registry
		wantErr bool
	}{
		{"", reg, false},
		{"yaml", reg, false},
		{"yaml", nil, true},
		{"memory", nil, false},
		{"sqlite", nil, false},
		{"redis", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			path := ""
			if tt.backend == "sqlite" {
				path = filepath.Join(t.TempDir(), "t.db")
			}
			s, err := Open(tt.backend, tt.reg, path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Open(%q) error = %v, wantErr %v", tt.backend, err, tt.wantErr)
			}
			if s != nil {
				s.Close()
			}
		})
	}
}
