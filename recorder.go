package progresso

import (
	"fmt"
	"path/filepath"
	"time"
)

// Recorder persists the progress document after every processed entry.
// Each flush replaces the whole artifact, so readers see a complete snapshot.
type Recorder struct {
	path   string
	format Format
}

// NewRecorder creates a Recorder writing <dir>/<prefix>.<YYYYMMDD.HHMMSS>.<ext>,
// the name fixed once from the run start time.
func NewRecorder(dir, prefix string, format Format, started time.Time) *Recorder {
	if prefix == "" {
		prefix = DefaultOutputPrefix
	}
	name := fmt.Sprintf("%s.%s%s", prefix, started.Format(OutputTimeLayout), format.Ext())
	return &Recorder{
		path:   filepath.Join(dir, name),
		format: format,
	}
}

// Path returns the artifact path
func (r *Recorder) Path() string {
	return r.path
}

// Format returns the artifact encoding
func (r *Recorder) Format() Format {
	return r.format
}

// Create writes an empty progress document. Failure is fatal to the run.
func (r *Recorder) Create() error {
	if err := r.write(NewProgressDocument(0)); err != nil {
		return &OpError{Op: OpWrite, Target: r.path, Err: fmt.Errorf("%w: %w", ErrOutputCreate, err)}
	}
	return nil
}

// Flush rewrites the artifact with the full accumulated document
func (r *Recorder) Flush(doc *ProgressDocument) error {
	if err := r.write(doc); err != nil {
		return &OpError{Op: OpWrite, Target: r.path, Err: fmt.Errorf("%w: %w", ErrOutputWrite, err)}
	}
	return nil
}

func (r *Recorder) write(doc *ProgressDocument) error {
	data, err := EncodeProgress(doc, r.format)
	if err != nil {
		return err
	}
	return writeArtifact(r.path, data)
}
