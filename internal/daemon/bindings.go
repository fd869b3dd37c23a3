package daemon

import (
	godbus "github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	bus "github.com/hushd/hush/internal/dbus"
)

// Control endpoint identity: hushd's own surface, used by hushctl and
// anything else that wants to steer the daemon rather than send
// notifications.
const (
	ControlBusName   = "net.hush.Daemon1"
	ControlPath      = godbus.ObjectPath("/net/hush/Daemon1")
	ControlInterface = "net.hush.Daemon1"
)

// NewNotificationsEndpoint creates the org.freedesktop.Notifications
// endpoint with the service's handlers registered.
func NewNotificationsEndpoint(s *Service) *bus.Endpoint {
	ep := bus.NewEndpoint(bus.NotificationsBusName, bus.NotificationsPath, bus.NotificationsInterface, s.logger)
	s.SetEmitter(ep)

	ep.RegisterMethod("GetServerInformation", []introspect.Arg{
		{Name: "name", Type: "s", Direction: "out"},
		{Name: "vendor", Type: "s", Direction: "out"},
		{Name: "version", Type: "s", Direction: "out"},
		{Name: "spec_version", Type: "s", Direction: "out"},
	}, func() (string, string, string, string, *godbus.Error) {
		name, vendor, version, specVersion := s.ServerInformation()
		return name, vendor, version, specVersion, nil
	})

	ep.RegisterMethod("GetCapabilities", []introspect.Arg{
		{Name: "capabilities", Type: "as", Direction: "out"},
	}, func() ([]string, *godbus.Error) {
		return s.Capabilities(), nil
	})

	ep.RegisterMethod("Notify", []introspect.Arg{
		{Name: "app_name", Type: "s", Direction: "in"},
		{Name: "replaces_id", Type: "u", Direction: "in"},
		{Name: "app_icon", Type: "s", Direction: "in"},
		{Name: "summary", Type: "s", Direction: "in"},
		{Name: "body", Type: "s", Direction: "in"},
		{Name: "actions", Type: "as", Direction: "in"},
		{Name: "hints", Type: "a{sv}", Direction: "in"},
		{Name: "expire_timeout", Type: "i", Direction: "in"},
		{Name: "id", Type: "u", Direction: "out"},
	}, func(sender godbus.Sender, appName string, replacesID uint32, appIcon, summary, body string,
		actions []string, hints map[string]godbus.Variant, expireTimeout int32) (uint32, *godbus.Error) {
		id, err := s.Notify(&bus.NotifyRequest{
			AppName:       appName,
			ReplacesID:    replacesID,
			AppIcon:       appIcon,
			Summary:       summary,
			Body:          body,
			Actions:       actions,
			Hints:         hints,
			ExpireTimeout: expireTimeout,
		})
		if err != nil {
			s.logger.Warn("Notify failed", "sender", string(sender), "app", appName, "error", err)
			return 0, bus.DecodeError(err)
		}
		return id, nil
	})

	ep.RegisterMethod("CloseNotification", []introspect.Arg{
		{Name: "id", Type: "u", Direction: "in"},
	}, func(id uint32) *godbus.Error {
		s.CloseNotification(id)
		return nil
	})

	ep.RegisterSignal("NotificationClosed", []introspect.Arg{
		{Name: "id", Type: "u"},
		{Name: "reason", Type: "u"},
	})
	ep.RegisterSignal("ActionInvoked", []introspect.Arg{
		{Name: "id", Type: "u"},
		{Name: "action_key", Type: "s"},
	})

	return ep
}

// NewControlEndpoint creates the net.hush.Daemon1 endpoint exposing the
// daemon's own operations and properties.
func NewControlEndpoint(s *Service) *bus.Endpoint {
	ep := bus.NewEndpoint(ControlBusName, ControlPath, ControlInterface, s.logger)

	ep.RegisterMethod("ClearAll", nil, func() *godbus.Error {
		s.ClearAll()
		return nil
	})

	ep.RegisterMethod("SetDoNotDisturb", []introspect.Arg{
		{Name: "enabled", Type: "b", Direction: "in"},
	}, func(enabled bool) *godbus.Error {
		if err := s.SetDoNotDisturb(enabled); err != nil {
			return godbus.MakeFailedError(err)
		}
		return nil
	})

	ep.RegisterMethod("InvokeAction", []introspect.Arg{
		{Name: "id", Type: "u", Direction: "in"},
		{Name: "action_key", Type: "s", Direction: "in"},
	}, func(id uint32, key string) *godbus.Error {
		if err := s.InvokeAction(id, key); err != nil {
			return godbus.MakeFailedError(err)
		}
		return nil
	})

	ep.RegisterProperty("DoNotDisturb", "b", func() any { return s.DoNotDisturb() })
	ep.RegisterProperty("PopupTimeout", "i", func() any { return int32(s.PopupTimeout()) })
	ep.RegisterProperty("MaxPopupsCount", "i", func() any { return int32(s.MaxPopupsCount()) })
	ep.RegisterProperty("NotificationCount", "u", func() any { return uint32(s.NotificationCount()) })
	ep.RegisterProperty("PopupCount", "u", func() any { return uint32(s.PopupCount()) })

	return ep
}
