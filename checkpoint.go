package progresso

import (
	"encoding/xml"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Checkpoint is a two-phase timestamp. Mark records a provisional value when a
// phase is entered and Settle overwrites it with the authoritative value when
// the phase exits. Only the time is serialized.
type Checkpoint struct {
	at    time.Time
	final bool
}

// Mark records a provisional value
func (c *Checkpoint) Mark(now time.Time) {
	c.at = now
	c.final = false
}

// Settle records the authoritative value
func (c *Checkpoint) Settle(now time.Time) {
	c.at = now
	c.final = true
}

// Time returns the recorded value, provisional or not
func (c Checkpoint) Time() time.Time {
	return c.at
}

// Final reports whether the recorded value is authoritative
func (c Checkpoint) Final() bool {
	return c.final
}

// IsZero reports whether nothing has been recorded. yaml.v3 consults it for omitempty.
func (c Checkpoint) IsZero() bool {
	return c.at.IsZero()
}

// MarshalXML writes the timestamp as RFC 3339; an unset checkpoint writes nothing.
func (c Checkpoint) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	if c.IsZero() {
		return nil
	}
	return e.EncodeElement(c.at.Format(time.RFC3339Nano), start)
}

// UnmarshalXML reads an RFC 3339 timestamp. Values read back are authoritative.
func (c *Checkpoint) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var s string
	if err := d.DecodeElement(&s, &start); err != nil {
		return err
	}
	return c.parse(s)
}

// MarshalYAML writes the timestamp as RFC 3339
func (c Checkpoint) MarshalYAML() (interface{}, error) {
	if c.IsZero() {
		return nil, nil
	}
	return c.at.Format(time.RFC3339Nano), nil
}

// UnmarshalYAML reads an RFC 3339 timestamp
func (c *Checkpoint) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	return c.parse(s)
}

func (c *Checkpoint) parse(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		*c = Checkpoint{}
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return err
	}
	c.Settle(t)
	return nil
}
