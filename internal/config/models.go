package config

import (
	"sort"
	"sync"
	"time"

	"github.com/muurk/tourguide/internal/tour"
)

// Registry represents the entire user configuration file.
type Registry struct {
	Version     int                    `yaml:"version"`
	Tours       map[string]*TourRecord `yaml:"tours,omitempty"`   // Keyed by tour storage key
	Bridges     map[string]*BridgeMeta `yaml:"bridges,omitempty"` // Keyed by mDNS instance name
	Preferences *Preferences           `yaml:"preferences,omitempty"`

	mu   sync.Mutex
	path string
}

// TourRecord is the persisted "do not show again" flag for one tour.
type TourRecord struct {
	Outcome    tour.Outcome `yaml:"outcome"`     // completed or skipped
	FinishedAt time.Time    `yaml:"finished_at"` // When the outcome was recorded
	Runs       int          `yaml:"runs"`        // Number of finished runs, replays included
}

// BridgeMeta remembers a tour bridge found on the LAN.
type BridgeMeta struct {
	LastAddr string    `yaml:"last_addr"`
	LastSeen time.Time `yaml:"last_seen"`
	Tour     string    `yaml:"tour,omitempty"`
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	Store           string `yaml:"store"`            // Completion store: yaml or sqlite
	ListenAddr      string `yaml:"listen_addr"`      // Default bridge listen address
	Advertise       bool   `yaml:"advertise"`        // Advertise the bridge over mDNS
	DiscoverTimeout int    `yaml:"discover_timeout"` // mDNS discovery timeout in seconds
	Headless        bool   `yaml:"headless"`         // Launch the browser headless
}

func defaultPreferences() *Preferences {
	return &Preferences{
		Store:           "yaml",
		ListenAddr:      ":8787",
		DiscoverTimeout: 5,
	}
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:     1,
		Tours:       make(map[string]*TourRecord),
		Bridges:     make(map[string]*BridgeMeta),
		Preferences: defaultPreferences(),
	}
}

// GetTour returns the record for a storage key, or nil.
func (r *Registry) GetTour(key string) *TourRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Tours[key]
}

// RecordOutcome marks a tour finished in memory.
func (r *Registry) RecordOutcome(key string, outcome tour.Outcome, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Tours == nil {
		r.Tours = make(map[string]*TourRecord)
	}
	rec, ok := r.Tours[key]
	if !ok {
		rec = &TourRecord{}
		r.Tours[key] = rec
	}
	rec.Outcome = outcome
	rec.FinishedAt = at
	rec.Runs++
}

// ResetTour forgets a tour's outcome. Reports whether a record existed.
func (r *Registry) ResetTour(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Tours[key]; !ok {
		return false
	}
	delete(r.Tours, key)
	return true
}

// TourKeys returns the recorded storage keys, sorted.
func (r *Registry) TourKeys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]string, 0, len(r.Tours))
	for k := range r.Tours {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// UpdateBridgeLastSeen records a bridge seen on the LAN.
func (r *Registry) UpdateBridgeLastSeen(instance, addr, tourName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Bridges == nil {
		r.Bridges = make(map[string]*BridgeMeta)
	}
	r.Bridges[instance] = &BridgeMeta{LastAddr: addr, LastSeen: time.Now(), Tour: tourName}
}

// IsCompleted implements tour.Store. Completed and skipped are both done.
func (r *Registry) IsCompleted(key string) (bool, error) {
	return r.GetTour(key) != nil, nil
}

// MarkCompleted implements tour.Store: it records the outcome and saves.
func (r *Registry) MarkCompleted(key string, outcome tour.Outcome) error {
	r.RecordOutcome(key, outcome, time.Now())
	return r.Save()
}

// Reset implements the store reset used by the CLI.
func (r *Registry) Reset(key string) (bool, error) {
	if !r.ResetTour(key) {
		return false, nil
	}
	return true, r.Save()
}
