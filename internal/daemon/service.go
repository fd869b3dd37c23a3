package daemon

import (
	"fmt"
	"log/slog"
	"time"

	bus "github.com/hushd/hush/internal/dbus"
	"github.com/hushd/hush/internal/event"
	"github.com/hushd/hush/internal/imaging"
	"github.com/hushd/hush/internal/model"
	"github.com/hushd/hush/internal/options"
	"github.com/hushd/hush/internal/store"
)

// Option keys consulted in the options store. The daemon creates them with
// defaults on startup but does not own them; anything may change them at
// runtime.
const (
	OptionDnD          = "dnd"
	OptionPopupTimeout = "notification_timeout"
	OptionMaxPopups    = "notification_max_popups_count"
)

// Defaults applied when an option is absent.
const (
	DefaultPopupTimeout = 5000
	DefaultMaxPopups    = 3
)

// Signals emitted on the service's event hub. Payload is the
// *model.Notification concerned.
const (
	SignalNotified = "notified"
	SignalNewPopup = "new-popup"
)

// Property names reported to the change sink when a collection changes.
const (
	changeObject      = "notifications-service"
	propNotifications = "notifications"
	propPopups        = "popups"
)

// noopEmitter stands in for the bus endpoint until one is bound.
type noopEmitter struct{}

func (noopEmitter) EmitSignal(string, ...any) error { return nil }

// Service is the notification registry. It owns the full notification
// collection and the bounded popup subset, implements the protocol
// operations, and persists state through the file store.
//
// All mutation happens on the dispatch loop; the exported operations are
// safe to call from transport goroutines.
type Service struct {
	logger  *slog.Logger
	loop    *Loop
	workers *Pool
	opts    *options.Store
	files   *store.FileStore
	events  *event.Hub
	sink    event.ChangeSink
	emitter model.SignalEmitter
	info    bus.ServerInfo

	// Registry state, touched only on the loop (or before it runs).
	nextID uint32
	order  []*model.Notification
	index  map[uint32]*model.Notification
	popups []*model.Notification // newest first; eviction takes the last
}

// Params collects the service's collaborators.
type Params struct {
	Logger  *slog.Logger
	Loop    *Loop
	Workers *Pool
	Options *options.Store
	Files   *store.FileStore
	Sink    event.ChangeSink
	Info    bus.ServerInfo
}

// NewService creates the registry and seeds the options it consults.
func NewService(p Params) (*Service, error) {
	if p.Logger == nil {
		p.Logger = slog.Default()
	}

	s := &Service{
		logger:  p.Logger,
		loop:    p.Loop,
		workers: p.Workers,
		opts:    p.Options,
		files:   p.Files,
		events:  event.NewHub(),
		sink:    p.Sink,
		emitter: noopEmitter{},
		info:    p.Info,
		index:   make(map[uint32]*model.Notification),
	}
	if s.sink == nil {
		s.sink = event.NewHubSink(s.events)
	}
	if s.info == (bus.ServerInfo{}) {
		s.info = bus.DefaultServerInfo()
	}

	for _, opt := range []struct {
		key string
		def any
	}{
		{OptionDnD, false},
		{OptionPopupTimeout, int64(DefaultPopupTimeout)},
		{OptionMaxPopups, int64(DefaultMaxPopups)},
	} {
		if err := s.opts.CreateIfAbsent(opt.key, opt.def); err != nil {
			return nil, fmt.Errorf("seed option %s: %w", opt.key, err)
		}
	}

	return s, nil
}

// Events returns the service's hub. Subscribers receive SignalNotified and
// SignalNewPopup with the notification as payload.
func (s *Service) Events() *event.Hub {
	return s.events
}

// SetEmitter sets the bus signal emitter used for NotificationClosed and
// ActionInvoked. BindNotifications does this for the real endpoint.
func (s *Service) SetEmitter(emitter model.SignalEmitter) {
	s.emitter = emitter
}

// Restore loads the persisted collection. Must run before the loop starts.
// Corrupt state was already reduced to an empty store by the file layer;
// restored notifications are plain history: no popup flag, no timer.
func (s *Service) Restore() error {
	nextID, records, err := s.files.Load()
	if err != nil {
		return fmt.Errorf("load notification state: %w", err)
	}

	s.nextID = nextID
	for _, rec := range records {
		n := model.New(s.emitter, rec.ID, rec.AppName, rec.Icon, rec.Summary, rec.Body,
			rec.Actions, rec.Urgency, rec.Timeout, rec.Time, false)
		s.add(n)
	}

	s.logger.Info("notification state restored", "count", len(records), "next_id", nextID)
	return nil
}

// ServerInformation returns fixed descriptive data. Pure; cannot fail.
func (s *Service) ServerInformation() (string, string, string, string) {
	return s.info.Name, s.info.Vendor, s.info.Version, s.info.SpecVersion
}

// Capabilities returns the fixed capability set. Pure; cannot fail.
func (s *Service) Capabilities() []string {
	return bus.ServerCapabilities
}

// Notify implements the protocol Notify call and returns the assigned id.
//
// When the request carries a raw image buffer, PNG materialization runs on
// the worker pool and the reply is produced when it completes; a decode
// failure fails this call only and leaves no partial notification behind.
func (s *Service) Notify(req *bus.NotifyRequest) (uint32, error) {
	img, hasImage, err := req.ImageData()
	if err != nil {
		return 0, err
	}

	type outcome struct {
		id  uint32
		err error
	}
	done := make(chan outcome, 1)

	finish := func(iconData []byte, decodeErr error) {
		if decodeErr != nil {
			done <- outcome{err: decodeErr}
			return
		}
		done <- outcome{id: s.notifyOnLoop(req, iconData)}
	}

	if hasImage && req.AppIcon == "" {
		s.workers.Submit(func() {
			data, encErr := imaging.EncodePNG(img)
			s.loop.Submit(func() { finish(data, encErr) })
		})
	} else {
		s.loop.Submit(func() { finish(nil, nil) })
	}

	out := <-done
	return out.id, out.err
}

// notifyOnLoop resolves the target id and constructs the notification.
// Runs on the loop.
func (s *Service) notifyOnLoop(req *bus.NotifyRequest, iconData []byte) uint32 {
	var id uint32
	if req.ReplacesID == 0 {
		s.nextID++
		id = s.nextID
		s.initNotification(id, req, iconData)
		return id
	}

	// Replace-by-id: reuse the given id even when it is stale. A live
	// target is closed first; construction of the replacement is deferred
	// until the close has run, so listeners see close then creation.
	id = req.ReplacesID
	if old, ok := s.index[id]; ok {
		old.OnClosed(func(*model.Notification) {
			s.initNotification(id, req, iconData)
		})
		old.Close()
	} else {
		s.initNotification(id, req, iconData)
	}
	return id
}

// initNotification constructs, admits, and records one notification.
// Runs on the loop.
func (s *Service) initNotification(id uint32, req *bus.NotifyRequest, iconData []byte) {
	icon := req.AppIcon
	if icon == "" && iconData != nil {
		path, err := s.files.WriteImage(id, iconData)
		if err != nil {
			s.logger.Warn("failed to write notification image", "id", id, "error", err)
		} else {
			icon = path
		}
	}

	timeout := req.ExpireTimeout
	if timeout == -1 {
		timeout = int32(s.PopupTimeout())
	}

	// Do-not-disturb suppresses presentation entirely; a zero max means
	// popups are never shown. Either way the notification is still
	// recorded in the full collection.
	maxPopups := s.MaxPopupsCount()
	popup := !s.DoNotDisturb() && maxPopups != 0

	n := model.New(
		s.emitter,
		id,
		req.AppName,
		icon,
		req.Summary,
		req.Body,
		req.Actions,
		req.Urgency(),
		timeout,
		float64(time.Now().UnixNano())/1e9,
		popup,
	)

	if n.Popup {
		// Admission is enforced here, at insertion, and only here: the
		// oldest popup is dismissed to make room.
		if len(s.popups) >= maxPopups {
			s.popups[len(s.popups)-1].Dismiss()
		}
		s.popups = append([]*model.Notification{n}, s.popups...)
		s.events.Emit(SignalNewPopup, n)
		s.sink.NotifyChanged(changeObject, propPopups)
	}

	s.add(n)
	s.persist()
	s.events.Emit(SignalNotified, n)
	s.sink.NotifyChanged(changeObject, propNotifications)

	n.ScheduleDismiss(s.loop.Submit)

	s.logger.Debug("notification created",
		"id", id, "app", n.AppName, "popup", n.Popup, "timeout_ms", n.Timeout)
}

// add wires the lifecycle handlers and records the notification in the
// full collection. Runs on the loop (or before it starts, during Restore).
func (s *Service) add(n *model.Notification) {
	n.OnClosed(s.handleClosed)
	n.OnDismissed(s.handleDismissed)
	s.order = append(s.order, n)
	s.index[n.ID] = n
}

// handleClosed removes a closed notification from the registry, emits the
// NotificationClosed bus signal, and persists. Runs on the loop.
func (s *Service) handleClosed(n *model.Notification) {
	if _, ok := s.index[n.ID]; !ok {
		return
	}
	delete(s.index, n.ID)
	for i, other := range s.order {
		if other == n {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	if n.Popup {
		n.Dismiss()
	}

	s.files.RemoveImage(n.ID)
	s.persist()

	if err := s.emitter.EmitSignal("NotificationClosed", n.ID, uint32(bus.CloseReasonDismissed)); err != nil {
		s.logger.Warn("failed to emit NotificationClosed", "id", n.ID, "error", err)
	}

	s.sink.NotifyChanged(changeObject, propNotifications)
}

// handleDismissed drops a dismissed notification from the popup subset.
// The notification itself stays in the full collection. Runs on the loop.
func (s *Service) handleDismissed(n *model.Notification) {
	for i, p := range s.popups {
		if p == n {
			s.popups = append(s.popups[:i], s.popups[i+1:]...)
			s.sink.NotifyChanged(changeObject, propPopups)
			return
		}
	}
}

// CloseNotification closes the notification with the given id. A missing
// id is a no-op, not an error.
func (s *Service) CloseNotification(id uint32) {
	s.loop.Call(func() {
		if n, ok := s.index[id]; ok {
			n.Close()
		}
	})
}

// ClearAll closes every notification in current iteration order.
func (s *Service) ClearAll() {
	s.loop.Call(func() {
		snapshot := make([]*model.Notification, len(s.order))
		copy(snapshot, s.order)
		for _, n := range snapshot {
			n.Close()
		}
	})
}

// InvokeAction emits ActionInvoked for the named action of a notification.
func (s *Service) InvokeAction(id uint32, key string) error {
	var action *model.Action
	s.loop.Call(func() {
		n, ok := s.index[id]
		if !ok {
			return
		}
		for _, a := range n.Actions {
			if a.ID == key {
				action = a
				return
			}
		}
	})
	if action == nil {
		return fmt.Errorf("no action %q on notification %d", key, id)
	}
	return action.Invoke()
}

// persist writes the full collection through the codec. Persistence
// failures are operator-visible but never unwind registry mutations.
// Runs on the loop.
func (s *Service) persist() {
	records := make([]store.Record, 0, len(s.order))
	for _, n := range s.order {
		records = append(records, store.Record{
			ID:      n.ID,
			AppName: n.AppName,
			Icon:    n.Icon,
			Summary: n.Summary,
			Body:    n.Body,
			Actions: n.FlatActions(),
			Timeout: n.Timeout,
			Time:    n.Time,
			Urgency: n.Urgency,
		})
	}
	if err := s.files.Save(s.nextID, records); err != nil {
		s.logger.Error("failed to persist notification state", "error", err)
	}
}

// DoNotDisturb reads the dnd flag from the options store.
func (s *Service) DoNotDisturb() bool {
	return s.opts.Bool(OptionDnD)
}

// SetDoNotDisturb writes the dnd flag to the options store.
func (s *Service) SetDoNotDisturb(v bool) error {
	return s.opts.Set(OptionDnD, v)
}

// PopupTimeout reads the default popup timeout in milliseconds.
func (s *Service) PopupTimeout() int {
	return s.opts.Int(OptionPopupTimeout)
}

// MaxPopupsCount reads the maximum concurrent popup count.
func (s *Service) MaxPopupsCount() int {
	return s.opts.Int(OptionMaxPopups)
}

// Notifications returns a snapshot of the full collection in insertion
// order.
func (s *Service) Notifications() []*model.Notification {
	var out []*model.Notification
	s.loop.Call(func() {
		out = make([]*model.Notification, len(s.order))
		copy(out, s.order)
	})
	return out
}

// Popups returns a snapshot of the popup subset, newest first.
func (s *Service) Popups() []*model.Notification {
	var out []*model.Notification
	s.loop.Call(func() {
		out = make([]*model.Notification, len(s.popups))
		copy(out, s.popups)
	})
	return out
}

// NotificationCount returns the size of the full collection.
func (s *Service) NotificationCount() int {
	var count int
	s.loop.Call(func() { count = len(s.order) })
	return count
}

// PopupCount returns the size of the popup subset.
func (s *Service) PopupCount() int {
	var count int
	s.loop.Call(func() { count = len(s.popups) })
	return count
}
