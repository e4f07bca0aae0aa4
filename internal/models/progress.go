// Package models holds the data models shared across Grabarr.
package models

import "encoding/json"

// DownloadPhase represents the lifecycle phase of a download session.
// The declaration order is the only legal forward ordering; Cancelled and
// Error are absorbing and reachable from any non-terminal phase.
type DownloadPhase int

const (
	PhaseStarting DownloadPhase = iota
	PhaseDownloading
	PhaseMerging
	PhaseStreaming
	PhaseComplete
	PhaseCancelled
	PhaseError
)

var phaseNames = map[DownloadPhase]string{
	PhaseStarting:    "starting",
	PhaseDownloading: "downloading",
	PhaseMerging:     "merging",
	PhaseStreaming:   "streaming",
	PhaseComplete:    "complete",
	PhaseCancelled:   "cancelled",
	PhaseError:       "error",
}

func (p DownloadPhase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether no further phase transitions are possible.
func (p DownloadPhase) Terminal() bool {
	return p == PhaseComplete || p == PhaseCancelled || p == PhaseError
}

// CanTransition reports whether moving from p to next is a legal forward
// transition.
func (p DownloadPhase) CanTransition(next DownloadPhase) bool {
	if p.Terminal() {
		return false
	}
	if next == PhaseCancelled || next == PhaseError {
		return true
	}
	return next >= p
}

// MarshalJSON serializes the phase as its string name.
func (p DownloadPhase) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON restores a phase from its string name.
func (p *DownloadPhase) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	for phase, name := range phaseNames {
		if name == s {
			*p = phase
			return nil
		}
	}
	*p = PhaseStarting
	return nil
}

// PercentUnknown is the sentinel for indeterminate progress.
const PercentUnknown = -1.0

// ProgressRecord is the normalized progress model pushed to clients. The
// size, speed and ETA fields are human-readable labels parsed from free-text
// tool output, not exact byte counts.
type ProgressRecord struct {
	Phase         DownloadPhase `json:"status"`
	Percent       float64       `json:"percent"`
	Downloaded    string        `json:"downloaded"`
	Total         string        `json:"total"`
	Speed         string        `json:"speed"`
	Eta           string        `json:"eta"`
	MergedSeconds int           `json:"mergedSeconds,omitempty"`
	Error         string        `json:"error,omitempty"`
}
