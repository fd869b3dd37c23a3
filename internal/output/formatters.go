package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/hushd/hush/internal/model"
	"github.com/hushd/hush/internal/store"
)

// PlainFormatter renders one line per notification.
type PlainFormatter struct{}

// Format writes records as plain text, one per line.
func (f *PlainFormatter) Format(w io.Writer, records []store.Record) error {
	for _, r := range records {
		sec := int64(r.Time)
		when := humanize.Time(time.Unix(sec, 0))

		var sb strings.Builder
		fmt.Fprintf(&sb, "[%d] <%s> %s", r.ID, r.AppName, r.Summary)
		if body := strings.Join(strings.Fields(r.Body), " "); body != "" {
			fmt.Fprintf(&sb, " | %s", body)
		}
		fmt.Fprintf(&sb, " (%s, %s)", model.UrgencyNames[r.Urgency], when)

		if _, err := fmt.Fprintln(w, sb.String()); err != nil {
			return err
		}
	}
	return nil
}

// JSONFormatter renders records as an indented JSON array.
type JSONFormatter struct{}

// Format writes records as JSON.
func (f *JSONFormatter) Format(w io.Writer, records []store.Record) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(records)
}

// YAMLFormatter renders records as a YAML document.
type YAMLFormatter struct{}

// yamlRecord mirrors store.Record with yaml field names.
type yamlRecord struct {
	ID      uint32   `yaml:"id"`
	AppName string   `yaml:"app_name"`
	Icon    string   `yaml:"icon,omitempty"`
	Summary string   `yaml:"summary"`
	Body    string   `yaml:"body,omitempty"`
	Actions []string `yaml:"actions,omitempty"`
	Timeout int32    `yaml:"timeout"`
	Time    float64  `yaml:"time"`
	Urgency int      `yaml:"urgency"`
}

// Format writes records as YAML.
func (f *YAMLFormatter) Format(w io.Writer, records []store.Record) error {
	out := make([]yamlRecord, len(records))
	for i, r := range records {
		out[i] = yamlRecord(r)
	}
	encoder := yaml.NewEncoder(w)
	defer encoder.Close()
	return encoder.Encode(out)
}
