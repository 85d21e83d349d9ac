package panel

import (
	"fmt"

	"github.com/thruflo/recpanel/internal/backend"
)

// Phase is the operator-facing state of the recording session. It is always
// derived from the remote status and never stored.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRecording
	PhaseProcessing
)

// PhaseOf derives the phase from status. Recording wins when the backend
// reports both flags.
func PhaseOf(status backend.RemoteStatus) Phase {
	switch {
	case status.Recording():
		return PhaseRecording
	case status.Processing():
		return PhaseProcessing
	default:
		return PhaseIdle
	}
}

// String returns the string representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRecording:
		return "recording"
	case PhaseProcessing:
		return "processing"
	default:
		return "unknown"
	}
}

// Label is the badge text shown to the operator.
func (p Phase) Label() string {
	switch p {
	case PhaseRecording:
		return "● Recording"
	case PhaseProcessing:
		return "⚡ Processing"
	default:
		return "● Idle"
	}
}

// MarshalText encodes the phase as its string form.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase from its string form.
func (p *Phase) UnmarshalText(text []byte) error {
	switch string(text) {
	case "idle":
		*p = PhaseIdle
	case "recording":
		*p = PhaseRecording
	case "processing":
		*p = PhaseProcessing
	default:
		return fmt.Errorf("unknown phase %q", string(text))
	}
	return nil
}
