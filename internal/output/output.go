// Package output provides output formatters for stored notifications.
package output

import (
	"fmt"
	"io"

	"github.com/hushd/hush/internal/store"
)

// Formatter renders persisted notification records for CLI output.
type Formatter interface {
	// Format writes formatted records to the writer.
	Format(w io.Writer, records []store.Record) error
}

// FormatType represents an output format type.
type FormatType string

const (
	FormatPlain FormatType = "plain"
	FormatJSON  FormatType = "json"
	FormatYAML  FormatType = "yaml"
)

// NewFormatter creates a formatter for the specified format type.
func NewFormatter(format FormatType) (Formatter, error) {
	switch format {
	case FormatPlain:
		return &PlainFormatter{}, nil
	case FormatJSON:
		return &JSONFormatter{}, nil
	case FormatYAML:
		return &YAMLFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}
