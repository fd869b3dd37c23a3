package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	records := []Record{
		{
			ID:      1,
			AppName: "mail",
			Icon:    "/tmp/1.png",
			Summary: "New message",
			Body:    "hello",
			Actions: []string{"default", "Open", "archive", "Archive"},
			Timeout: 5000,
			Time:    1700000000.25,
			Urgency: 2,
		},
		{ID: 2, AppName: "player", Summary: "Track changed"},
	}

	data, err := Encode(7, records)
	require.NoError(t, err)

	nextID, decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, uint32(7), nextID)
	assert.Equal(t, records, decoded)
}

func TestEncodeNilRecords(t *testing.T) {
	data, err := Encode(0, nil)
	require.NoError(t, err)

	// The document must carry an empty array, not null.
	assert.Contains(t, string(data), `"notifications": []`)
}

func TestEncodeEmptyDecodes(t *testing.T) {
	nextID, records, err := Decode(EncodeEmpty())
	require.NoError(t, err)
	assert.Equal(t, uint32(0), nextID)
	assert.Empty(t, records)
}

func TestDecodeCorrupt(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "{{{{"},
		{"truncated", `{"next_id": 3, "notifications": [`},
		{"array root", `[1, 2, 3]`},
		{"mistyped next_id", `{"next_id": "three", "notifications": []}`},
		{"mistyped record field", `{"next_id": 1, "notifications": [{"id": "one"}]}`},
		{"unpaired action", `{"next_id": 1, "notifications": [{"id": 1, "actions": ["default"]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Decode([]byte(tt.data))
			assert.ErrorIs(t, err, ErrCorrupt)
		})
	}
}
