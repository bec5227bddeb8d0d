// Package cache provides the in-process response caches of the HTTP
// layer and their cleanup lifecycle.
package cache

import (
	"log/slog"
	"time"
)

// Cleaner is implemented by caches that support expiry sweeps.
type Cleaner interface {
	CleanExpired() int
}

// Manager runs the periodic expiry sweep over registered caches.
type Manager struct {
	caches      []Cleaner
	stopCleanup chan struct{}
}

func NewManager() *Manager {
	return &Manager{
		stopCleanup: make(chan struct{}),
	}
}

// Register adds a cache to the sweep. Not safe to call after Start.
func (m *Manager) Register(cache Cleaner) {
	m.caches = append(m.caches, cache)
}

// Start begins the periodic cleanup goroutine.
func (m *Manager) Start(interval time.Duration) {
	go m.run(interval)
}

// Stop ends the cleanup goroutine.
func (m *Manager) Stop() {
	close(m.stopCleanup)
}

func (m *Manager) run(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			removed := 0
			for _, c := range m.caches {
				removed += c.CleanExpired()
			}
			if removed > 0 {
				slog.Debug("Cache cleanup completed", "entries_removed", removed)
			}
		case <-m.stopCleanup:
			return
		}
	}
}
