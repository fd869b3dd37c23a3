package dbus

import (
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hushd/hush/internal/model"
)

func TestCloseReasonString(t *testing.T) {
	tests := []struct {
		reason   CloseReason
		expected string
	}{
		{CloseReasonExpired, "expired"},
		{CloseReasonDismissed, "dismissed"},
		{CloseReasonClosed, "closed"},
		{CloseReasonUndefined, "undefined"},
		{CloseReason(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.reason.String())
		})
	}
}

func TestNotifyRequestUrgency(t *testing.T) {
	tests := []struct {
		name     string
		hints    map[string]dbus.Variant
		expected int
	}{
		{
			name:     "no hint",
			hints:    nil,
			expected: model.UrgencyNormal,
		},
		{
			name:     "low",
			hints:    map[string]dbus.Variant{"urgency": dbus.MakeVariant(byte(0))},
			expected: model.UrgencyLow,
		},
		{
			name:     "critical",
			hints:    map[string]dbus.Variant{"urgency": dbus.MakeVariant(byte(2))},
			expected: model.UrgencyCritical,
		},
		{
			name:     "mistyped hint falls back to normal",
			hints:    map[string]dbus.Variant{"urgency": dbus.MakeVariant("high")},
			expected: model.UrgencyNormal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &NotifyRequest{Hints: tt.hints}
			assert.Equal(t, tt.expected, r.Urgency())
		})
	}
}

func validImageHint() []any {
	return []any{
		int32(2), int32(2), int32(6), false, int32(8), int32(3),
		make([]byte, 12),
	}
}

func TestNotifyRequestImageData(t *testing.T) {
	t.Run("absent", func(t *testing.T) {
		r := &NotifyRequest{}
		_, ok, err := r.ImageData()
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("valid image-data", func(t *testing.T) {
		r := &NotifyRequest{Hints: map[string]dbus.Variant{
			"image-data": dbus.MakeVariant(validImageHint()),
		}}
		img, ok, err := r.ImageData()
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, int32(2), img.Width)
		assert.Equal(t, int32(2), img.Height)
		assert.Equal(t, int32(6), img.Rowstride)
		assert.False(t, img.HasAlpha)
		assert.Equal(t, int32(8), img.BitsPerSample)
		assert.Equal(t, int32(3), img.Channels)
		assert.Len(t, img.Data, 12)
	})

	t.Run("deprecated image_data name", func(t *testing.T) {
		r := &NotifyRequest{Hints: map[string]dbus.Variant{
			"image_data": dbus.MakeVariant(validImageHint()),
		}}
		_, ok, err := r.ImageData()
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("preferred name wins", func(t *testing.T) {
		old := validImageHint()
		old[0] = int32(1)
		r := &NotifyRequest{Hints: map[string]dbus.Variant{
			"image-data": dbus.MakeVariant(validImageHint()),
			"image_data": dbus.MakeVariant(old),
		}}
		img, ok, err := r.ImageData()
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, int32(2), img.Width)
	})

	t.Run("wrong field count", func(t *testing.T) {
		r := &NotifyRequest{Hints: map[string]dbus.Variant{
			"image-data": dbus.MakeVariant([]any{int32(2), int32(2)}),
		}}
		_, _, err := r.ImageData()
		assert.Error(t, err)
	})

	t.Run("mistyped field", func(t *testing.T) {
		hint := validImageHint()
		hint[3] = "yes" // has_alpha must be a bool
		r := &NotifyRequest{Hints: map[string]dbus.Variant{
			"image-data": dbus.MakeVariant(hint),
		}}
		_, _, err := r.ImageData()
		assert.Error(t, err)
	})

	t.Run("not a struct", func(t *testing.T) {
		r := &NotifyRequest{Hints: map[string]dbus.Variant{
			"image-data": dbus.MakeVariant("not-an-image"),
		}}
		_, _, err := r.ImageData()
		assert.Error(t, err)
	})
}

func TestDefaultServerInfo(t *testing.T) {
	info := DefaultServerInfo()
	assert.Equal(t, "hushd", info.Name)
	assert.Equal(t, "1.2", info.SpecVersion)
}
