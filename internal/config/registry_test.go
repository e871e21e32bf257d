package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/muurk/tourguide/internal/tour"
)

func TestGetConfigDir(t *testing.T) {
	t.Setenv(ConfigDirEnvVar, "")
	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if !strings.Contains(configDir, "tourguide") {
		t.Errorf("GetConfigDir() = %v, should contain 'tourguide'", configDir)
	}

	if runtime.GOOS == "linux" {
		t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
		dir, _ := GetConfigDir()
		if dir != "/tmp/xdg/tourguide" {
			t.Errorf("GetConfigDir() with XDG_CONFIG_HOME = %v, want /tmp/xdg/tourguide", dir)
		}
	}

	t.Setenv(ConfigDirEnvVar, "/tmp/tg-override")
	if dir, _ := GetConfigDir(); dir != "/tmp/tg-override" {
		t.Errorf("GetConfigDir() with %s = %v, want /tmp/tg-override", ConfigDirEnvVar, dir)
	}
}

func TestGetConfigPath(t *testing.T) {
	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}

	if filepath.Base(configPath) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", configPath)
	}
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()

	if reg.Version != 1 {
		t.Errorf("NewRegistry().Version = %v, want 1", reg.Version)
	}
	if reg.Tours == nil || reg.Bridges == nil {
		t.Error("NewRegistry() maps should not be nil")
	}
	if reg.Preferences == nil {
		t.Fatal("NewRegistry().Preferences should not be nil")
	}
	if reg.Preferences.Store != "yaml" {
		t.Errorf("NewRegistry().Preferences.Store = %q, want yaml", reg.Preferences.Store)
	}
	if reg.Preferences.ListenAddr != ":8787" {
		t.Errorf("NewRegistry().Preferences.ListenAddr = %q, want :8787", reg.Preferences.ListenAddr)
	}
}

func TestRegistryRecordOutcome(t *testing.T) {
	reg := NewRegistry()
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	reg.RecordOutcome("onboarding", tour.OutcomeSkipped, at)
	reg.RecordOutcome("onboarding", tour.OutcomeCompleted, at.Add(time.Hour))

	rec := reg.GetTour("onboarding")
	if rec == nil {
		t.Fatal("GetTour() = nil after RecordOutcome()")
	}
	if rec.Outcome != tour.OutcomeCompleted {
		t.Errorf("Outcome = %v, want %v", rec.Outcome, tour.OutcomeCompleted)
	}
	if rec.Runs != 2 {
		t.Errorf("Runs = %d, want 2", rec.Runs)
	}
	if !rec.FinishedAt.Equal(at.Add(time.Hour)) {
		t.Errorf("FinishedAt = %v, want %v", rec.FinishedAt, at.Add(time.Hour))
	}

	if !reg.ResetTour("onboarding") {
		t.Error("ResetTour() = false for a recorded tour")
	}
	if reg.ResetTour("onboarding") {
		t.Error("ResetTour() = true for a missing tour")
	}
}

func TestRegistryImplementsStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	reg, err := LoadRegistryFrom(path)
	if err != nil {
		t.Fatalf("LoadRegistryFrom() error = %v", err)
	}

	var store tour.Store = reg
	done, err := store.IsCompleted("onboarding")
	if err != nil || done {
		t.Fatalf("IsCompleted() = %v, %v; want false, nil", done, err)
	}

	if err := store.MarkCompleted("onboarding", tour.OutcomeSkipped); err != nil {
		t.Fatalf("MarkCompleted() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("MarkCompleted() did not save: %v", err)
	}

	reloaded, err := LoadRegistryFrom(path)
	if err != nil {
		t.Fatalf("LoadRegistryFrom() after save error = %v", err)
	}
	if done, _ := reloaded.IsCompleted("onboarding"); !done {
		t.Error("IsCompleted() = false after reload, want true")
	}
	if rec := reloaded.GetTour("onboarding"); rec.Outcome != tour.OutcomeSkipped {
		t.Errorf("Outcome after reload = %v, want %v", rec.Outcome, tour.OutcomeSkipped)
	}

	removed, err := reloaded.Reset("onboarding")
	if err != nil || !removed {
		t.Fatalf("Reset() = %v, %v; want true, nil", removed, err)
	}
	again, _ := LoadRegistryFrom(path)
	if done, _ := again.IsCompleted("onboarding"); done {
		t.Error("tour still completed after Reset()")
	}
}

func TestRegistrySaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	reg, _ := LoadRegistryFrom(path)
	reg.Preferences.Store = "sqlite"
	reg.UpdateBridgeLastSeen("kitchen-tablet", "192.168.1.20:8787", "onboarding")

	if err := reg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file left behind after Save()")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.HasPrefix(string(data), "# tourguide Configuration File") {
		t.Error("saved file is missing the header comment")
	}

	loaded, err := LoadRegistryFrom(path)
	if err != nil {
		t.Fatalf("LoadRegistryFrom() error = %v", err)
	}
	if loaded.Preferences.Store != "sqlite" {
		t.Errorf("Preferences.Store = %q, want sqlite", loaded.Preferences.Store)
	}
	if b := loaded.Bridges["kitchen-tablet"]; b == nil || b.LastAddr != "192.168.1.20:8787" {
		t.Errorf("Bridges[kitchen-tablet] = %+v", b)
	}
}

func TestLoadRegistryRejectsUnknownVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("version: 7\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadRegistryFrom(path); err == nil {
		t.Error("LoadRegistryFrom() accepted version 7")
	}
}

func TestTourKeysSorted(t *testing.T) {
	reg := NewRegistry()
	for _, k := range []string{"zeta", "alpha", "mid"} {
		reg.RecordOutcome(k, tour.OutcomeCompleted, time.Now())
	}
	got := strings.Join(reg.TourKeys(), ",")
	if got != "alpha,mid,zeta" {
		t.Errorf("TourKeys() = %v, want alpha,mid,zeta", got)
	}
}
