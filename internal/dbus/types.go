package dbus

import (
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/hushd/hush/internal/imaging"
	"github.com/hushd/hush/internal/model"
)

const (
	// NotificationsInterface is the freedesktop notification interface name.
	NotificationsInterface = "org.freedesktop.Notifications"
	// NotificationsPath is the notification object path.
	NotificationsPath = dbus.ObjectPath("/org/freedesktop/Notifications")
	// NotificationsBusName is the well-known name to claim.
	NotificationsBusName = "org.freedesktop.Notifications"
)

// CloseReason represents the reason carried by NotificationClosed.
// These values are defined by the freedesktop notification specification.
type CloseReason uint32

const (
	// CloseReasonExpired indicates the notification timeout was reached.
	CloseReasonExpired CloseReason = 1
	// CloseReasonDismissed indicates the notification was dismissed, via
	// CloseNotification or a clear.
	CloseReasonDismissed CloseReason = 2
	// CloseReasonClosed indicates an explicit close by the sending client.
	CloseReasonClosed CloseReason = 3
	// CloseReasonUndefined is reserved per the spec.
	CloseReasonUndefined CloseReason = 4
)

// String returns the string representation of the close reason.
func (r CloseReason) String() string {
	switch r {
	case CloseReasonExpired:
		return "expired"
	case CloseReasonDismissed:
		return "dismissed"
	case CloseReasonClosed:
		return "closed"
	case CloseReasonUndefined:
		return "undefined"
	default:
		return "unknown"
	}
}

// ServerCapabilities is the fixed capability set advertised by hushd.
var ServerCapabilities = []string{
	"actions",
	"body",
	"icon-static",
	"persistence",
}

// ServerInfo is the descriptive data returned by GetServerInformation.
type ServerInfo struct {
	Name        string
	Vendor      string
	Version     string
	SpecVersion string
}

// DefaultServerInfo returns the default server information.
func DefaultServerInfo() ServerInfo {
	return ServerInfo{
		Name:        "hushd",
		Vendor:      "hush",
		Version:     "0.0.1",
		SpecVersion: "1.2",
	}
}

// NotifyRequest carries the raw parameters of one inbound Notify call.
type NotifyRequest struct {
	AppName       string
	ReplacesID    uint32
	AppIcon       string
	Summary       string
	Body          string
	Actions       []string // alternating id, label pairs
	Hints         map[string]dbus.Variant
	ExpireTimeout int32 // -1 = server default, 0 = never expire
}

// Urgency extracts the urgency hint, defaulting to normal when absent or
// mistyped.
func (r *NotifyRequest) Urgency() int {
	if v, ok := r.Hints["urgency"]; ok {
		if b, ok := v.Value().(byte); ok {
			return int(b)
		}
	}
	return model.UrgencyNormal
}

// ImageData extracts the raw image-data hint. The second return is false
// when no hint is present; a present but malformed hint is an error so the
// call can fail with a decode error instead of producing a partial icon.
func (r *NotifyRequest) ImageData() (imaging.ImageData, bool, error) {
	v, ok := r.Hints["image-data"]
	if !ok {
		// Older clients use the deprecated name.
		v, ok = r.Hints["image_data"]
		if !ok {
			return imaging.ImageData{}, false, nil
		}
	}

	fields, ok := v.Value().([]any)
	if !ok || len(fields) != 7 {
		return imaging.ImageData{}, false, fmt.Errorf("image-data hint is not a 7-field struct")
	}

	width, ok0 := fields[0].(int32)
	height, ok1 := fields[1].(int32)
	rowstride, ok2 := fields[2].(int32)
	hasAlpha, ok3 := fields[3].(bool)
	bits, ok4 := fields[4].(int32)
	channels, ok5 := fields[5].(int32)
	data, ok6 := fields[6].([]byte)
	if !ok0 || !ok1 || !ok2 || !ok3 || !ok4 || !ok5 || !ok6 {
		return imaging.ImageData{}, false, fmt.Errorf("image-data hint has mistyped fields")
	}

	return imaging.ImageData{
		Width:         width,
		Height:        height,
		Rowstride:     rowstride,
		HasAlpha:      hasAlpha,
		BitsPerSample: bits,
		Channels:      channels,
		Data:          data,
	}, true, nil
}
