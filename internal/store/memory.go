package store

import (
	"sync"
	"time"

	"github.com/muurk/tourguide/internal/tour"
)

// Memory keeps records for the life of the process.
type Memory struct {
	mu      sync.Mutex
	records map[string]Record
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]Record)}
}

func (m *Memory) IsCompleted(key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.records[key]
	return ok, nil
}

func (m *Memory) MarkCompleted(key string, outcome tour.Outcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.records[key]
	r.Key = key
	r.Outcome = outcome
	r.FinishedAt = time.Now()
	r.Runs++
	m.records[key] = r
	return nil
}

func (m *Memory) Records() ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Record, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, r)
	}
	sortRecords(out)
	return out, nil
}

func (m *Memory) Reset(key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.records[key]
	delete(m.records, key)
	return ok, nil
}

func (m *Memory) Close() error { return nil }
