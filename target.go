package progresso

import (
	"encoding/xml"
	"strings"
)

// ServiceTarget describes one managed service and its desired end state.
// The checkpoints are filled in while the entry is processed.
type ServiceTarget struct {
	// Name identifies the service on the control backend
	Name string `xml:"name,omitempty" yaml:"name,omitempty"`
	// Description is free text carried through unchanged
	Description string `xml:"description,omitempty" yaml:"description,omitempty"`
	// Status is the observed status snapshot recorded with the target list
	Status string `xml:"status,omitempty" yaml:"status,omitempty"`
	// StartMode is the declared start mode
	StartMode string `xml:"start_mode,omitempty" yaml:"start_mode,omitempty"`
	// EndMode is the desired end state
	EndMode string `xml:"end_mode,omitempty" yaml:"end_mode,omitempty"`
	// LogOnAs is the account the service runs as
	LogOnAs string `xml:"log_on_as,omitempty" yaml:"log_on_as,omitempty"`
	// Path is the service executable path
	Path string `xml:"path,omitempty" yaml:"path,omitempty"`

	// StartProcessingAt is when the orchestrator picked the entry up
	StartProcessingAt Checkpoint `xml:"start_processing_time" yaml:"start_processing_time,omitempty"`
	// StopIssuedAt is when a stop was verified (or the stop phase was passed)
	StopIssuedAt Checkpoint `xml:"stop_time" yaml:"stop_time,omitempty"`
	// CompletedAt is when a start was verified (or the start phase was passed)
	CompletedAt Checkpoint `xml:"end_time" yaml:"end_time,omitempty"`
	// LoadStableAt is when the pacing gate released the entry
	LoadStableAt Checkpoint `xml:"cpu_responsive_time" yaml:"cpu_responsive_time,omitempty"`
}

// Intent is the action derived from a desired end state
type Intent int

const (
	// IntentNone means no end state was declared
	IntentNone Intent = iota
	// IntentStart means the service should end up running
	IntentStart
	// IntentStop means the service should end up stopped
	IntentStop
)

// Intent string constants
const (
	intentNoneStr  = "none"
	intentStartStr = "start"
	intentStopStr  = "stop"
)

// String returns the string representation of the intent
func (i Intent) String() string {
	switch i {
	case IntentStart:
		return intentStartStr
	case IntentStop:
		return intentStopStr
	default:
		return intentNoneStr
	}
}

// HasName reports whether the entry carries a usable identifier
func (s *ServiceTarget) HasName() bool {
	return strings.TrimSpace(s.Name) != ""
}

// Intent derives the action from EndMode. Any mention of "automatic"
// means start; any other non-empty value means stop.
func (s *ServiceTarget) Intent() Intent {
	mode := strings.TrimSpace(s.EndMode)
	switch {
	case mode == "":
		return IntentNone
	case strings.Contains(strings.ToLower(mode), "automatic"):
		return IntentStart
	default:
		return IntentStop
	}
}

// TargetDocument is the ordered list of services to drive, read once per run
type TargetDocument struct {
	XMLName  xml.Name        `xml:"OrdemTargets" yaml:"-"`
	Services []ServiceTarget `xml:"Service" yaml:"services"`
}

// Len returns the number of entries
func (d *TargetDocument) Len() int {
	return len(d.Services)
}

// ProgressDocument accumulates processed entries. It only grows.
type ProgressDocument struct {
	XMLName  xml.Name        `xml:"OrdemTargets" yaml:"-"`
	Services []ServiceTarget `xml:"Service" yaml:"services"`
}

// NewProgressDocument creates an empty progress document sized for n entries
func NewProgressDocument(n int) *ProgressDocument {
	return &ProgressDocument{Services: make([]ServiceTarget, 0, n)}
}

// Append records a fully processed entry
func (d *ProgressDocument) Append(s ServiceTarget) {
	d.Services = append(d.Services, s)
}

// Len returns the number of recorded entries
func (d *ProgressDocument) Len() int {
	return len(d.Services)
}
