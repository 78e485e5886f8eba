package progresso

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format identifies the document encoding
type Format int

const (
	// FormatXML is the <OrdemTargets> XML layout
	FormatXML Format = iota
	// FormatYAML is a YAML mapping with a services list
	FormatYAML
)

// Format string constants
const (
	formatXMLStr  = "xml"
	formatYAMLStr = "yaml"
)

// String returns the string representation of the format
func (f Format) String() string {
	if f == FormatYAML {
		return formatYAMLStr
	}
	return formatXMLStr
}

// Ext returns the file extension used for progress artifacts
func (f Format) Ext() string {
	return "." + f.String()
}

// Header returns the standard document header written before the body
func (f Format) Header() string {
	if f == FormatYAML {
		return "---\n"
	}
	return `<?xml version="1.0" encoding="utf-8"?>` + "\n"
}

// FormatFromPath picks the format from a file extension. Unknown extensions are XML.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatXML
	}
}

// DecodeTargets parses a target document. Blank input yields an empty document.
func DecodeTargets(data []byte, format Format) (*TargetDocument, error) {
	doc := &TargetDocument{}
	if len(bytes.TrimSpace(data)) == 0 {
		return doc, nil
	}

	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, doc)
	default:
		err = xml.Unmarshal(data, doc)
	}
	if err != nil {
		return &TargetDocument{}, fmt.Errorf("%w: %s document: %w", ErrDecode, format, err)
	}
	return doc, nil
}

// EncodeProgress renders the whole progress document, header included
func EncodeProgress(doc *ProgressDocument, format Format) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(format.Header())

	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("encoding yaml progress: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encoding yaml progress: %w", err)
		}
	default:
		enc := xml.NewEncoder(&buf)
		enc.Indent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("encoding xml progress: %w", err)
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// LoadOptions control how a target document is loaded
type LoadOptions struct {
	// Strict turns a parse failure into an error instead of an empty document
	Strict bool
	// Logger receives the fail-open warning
	Logger *slog.Logger
}

// LoadTargets reads and parses the target document at path. A read failure is
// fatal. A parse failure degrades to an empty document unless opts.Strict is set.
func LoadTargets(path string, opts LoadOptions) (*TargetDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &OpError{Op: OpRead, Target: path, Err: fmt.Errorf("%w: %w", ErrInputRead, err)}
	}

	doc, err := DecodeTargets(data, FormatFromPath(path))
	if err != nil {
		if opts.Strict {
			return nil, &OpError{Op: OpRead, Target: path, Err: fmt.Errorf("%w: %w", ErrInputRead, err)}
		}
		logger := opts.Logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.Warn("target document is malformed; continuing with no entries",
			"path", path, "error", err)
		return &TargetDocument{}, nil
	}
	return doc, nil
}
