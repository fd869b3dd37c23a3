package output

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/hushd/hush/internal/store"
)

func sampleRecords() []store.Record {
	return []store.Record{
		{
			ID:      3,
			AppName: "mail",
			Summary: "New message",
			Body:    "line one\nline two",
			Actions: []string{"default", "Open"},
			Timeout: 5000,
			Time:    float64(time.Now().Add(-time.Minute).Unix()),
			Urgency: 1,
		},
		{ID: 1, AppName: "player", Summary: "Track changed", Urgency: 0},
	}
}

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		format  FormatType
		want    Formatter
		wantErr bool
	}{
		{FormatPlain, &PlainFormatter{}, false},
		{FormatJSON, &JSONFormatter{}, false},
		{FormatYAML, &YAMLFormatter{}, false},
		{FormatType("xml"), nil, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			f, err := NewFormatter(tt.format)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, f)
		})
	}
}

func TestPlainFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&PlainFormatter{}).Format(&buf, sampleRecords()))

	out := buf.String()
	assert.Contains(t, out, "[3] <mail> New message")
	assert.Contains(t, out, "line one line two", "body newlines collapse to spaces")
	assert.Contains(t, out, "(normal,")
	assert.Contains(t, out, "[1] <player> Track changed")
	assert.Contains(t, out, "(low,")
}

func TestPlainFormatOmitsEmptyBody(t *testing.T) {
	var buf bytes.Buffer
	records := []store.Record{{ID: 1, AppName: "a", Summary: "s", Urgency: 1}}
	require.NoError(t, (&PlainFormatter{}).Format(&buf, records))

	assert.NotContains(t, buf.String(), "|")
}

func TestJSONFormatRoundTrips(t *testing.T) {
	records := sampleRecords()

	var buf bytes.Buffer
	require.NoError(t, (&JSONFormatter{}).Format(&buf, records))

	var decoded []store.Record
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, records, decoded)
}

func TestYAMLFormatRoundTrips(t *testing.T) {
	records := sampleRecords()

	var buf bytes.Buffer
	require.NoError(t, (&YAMLFormatter{}).Format(&buf, records))

	var decoded []yamlRecord
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, yamlRecord(records[0]), decoded[0])
	assert.Equal(t, yamlRecord(records[1]), decoded[1])
}
