// Package store persists the notification collection to disk and manages
// the sibling icon image cache.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrCorrupt indicates the persisted state is structurally invalid. The
// daemon treats this as "reset to an empty store"; it never propagates
// partial state.
var ErrCorrupt = errors.New("corrupt notification state")

// Record is the flat persisted form of one notification. Actions are
// flattened to an alternating id/label sequence; the in-process timer and
// bus reference are not persisted.
type Record struct {
	ID      uint32   `json:"id"`
	AppName string   `json:"app_name"`
	Icon    string   `json:"icon"`
	Summary string   `json:"summary"`
	Body    string   `json:"body"`
	Actions []string `json:"actions"`
	Timeout int32    `json:"timeout"`
	Time    float64  `json:"time"`
	Urgency int      `json:"urgency"`
}

// state is the on-disk document: {next_id, notifications}.
type state struct {
	NextID        uint32   `json:"next_id"`
	Notifications []Record `json:"notifications"`
}

// Encode serializes the collection to the canonical JSON document.
func Encode(nextID uint32, records []Record) ([]byte, error) {
	if records == nil {
		records = []Record{}
	}
	data, err := json.MarshalIndent(state{NextID: nextID, Notifications: records}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode notification state: %w", err)
	}
	return data, nil
}

// EncodeEmpty returns the canonical empty document, written back when a
// corrupt file is reset.
func EncodeEmpty() []byte {
	data, _ := Encode(0, nil)
	return data
}

// Decode parses a persisted document. Any structural invalidity - bad
// JSON, a non-object root, mistyped fields, or an unpaired action entry -
// is reported as ErrCorrupt rather than as partial state.
func Decode(data []byte) (uint32, []Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	var st state
	if err := dec.Decode(&st); err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	for _, r := range st.Notifications {
		if len(r.Actions)%2 != 0 {
			return 0, nil, fmt.Errorf("%w: notification %d has unpaired action entry", ErrCorrupt, r.ID)
		}
	}

	return st.NextID, st.Notifications, nil
}
