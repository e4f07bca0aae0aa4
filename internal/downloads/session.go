// Package downloads owns download sessions: one subprocess, one cancellation
// token and one progress record per in-flight download id.
package downloads

import (
	"context"
	"sync"

	"grabarr/internal/models"
)

// Session tracks one in-flight or just-finished download.
type Session struct {
	ID       string
	URL      string
	Title    string
	Quality  string
	Format   string
	Duration float64 // seconds, from external metadata; 0 when unknown

	OutputPath   string
	ProgressPath string

	cancel context.CancelFunc

	mu        sync.Mutex
	record    models.ProgressRecord
	cancelled bool
}

func newSession(id string, req models.DownloadRequest, cancel context.CancelFunc) *Session {
	return &Session{
		ID:       id,
		URL:      req.URL,
		Title:    req.Title,
		Quality:  req.Quality,
		Format:   req.Format,
		Duration: req.Duration,
		cancel:   cancel,
		record: models.ProgressRecord{
			Phase:      models.PhaseStarting,
			Percent:    0,
			Downloaded: "0MB",
			Total:      "0MB",
			Speed:      "0MB/s",
			Eta:        "00:00",
		},
	}
}

// Snapshot returns a copy of the current progress record.
func (s *Session) Snapshot() models.ProgressRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record
}

// Update applies mutate to the record under the session lock, then enforces
// the progress invariants: phase transitions only move forward (error and
// cancelled are absorbing), and percent never regresses within the
// downloading phase.
func (s *Session) Update(mutate func(*models.ProgressRecord)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.record
	next := prev
	mutate(&next)

	if next.Phase != prev.Phase && !prev.Phase.CanTransition(next.Phase) {
		return
	}
	if next.Phase == models.PhaseDownloading && prev.Phase == models.PhaseDownloading &&
		next.Percent >= 0 && next.Percent < prev.Percent {
		next.Percent = prev.Percent
	}
	s.record = next
}

// Cancel triggers the session's cancellation token, force-terminating the
// subprocess bound to it.
func (s *Session) Cancel() {
	if s.cancel != nil {
		s.cancel()
	}
}

// markCancelled flags the session as user-cancelled so the exit path can
// distinguish cancellation from subprocess failure.
func (s *Session) markCancelled() {
	s.mu.Lock()
	s.cancelled = true
	s.mu.Unlock()
}

func (s *Session) userCancelled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelled
}
