// Package model defines the core notification data structures for hush.
package model

import (
	"time"

	"github.com/hushd/hush/internal/event"
)

// Urgency levels matching the freedesktop spec.
const (
	UrgencyLow      = 0
	UrgencyNormal   = 1
	UrgencyCritical = 2
)

// UrgencyNames maps urgency levels to human-readable names.
var UrgencyNames = map[int]string{
	UrgencyLow:      "low",
	UrgencyNormal:   "normal",
	UrgencyCritical: "critical",
}

// Signal names emitted on a Notification's event hub.
const (
	SignalClosed    = "closed"
	SignalDismissed = "dismissed"
)

// SignalEmitter emits a named signal with a positional payload on the bus.
// It is the narrow slice of the bus endpoint that entities need.
type SignalEmitter interface {
	EmitSignal(name string, values ...any) error
}

// Notification is a single notification tracked by the daemon.
//
// ID is immutable after construction. Popup transitions true -> false
// exactly once, via Dismiss, and never back. All mutation happens on the
// daemon dispatch loop; the dismissal timer re-enters that loop before
// touching state.
type Notification struct {
	ID      uint32
	AppName string
	Icon    string
	Summary string
	Body    string
	Urgency int
	Timeout int32   // milliseconds until auto-dismiss; 0 = never
	Time    float64 // creation instant, fractional seconds since epoch
	Popup   bool
	Actions []*Action

	events *event.Hub
}

// Action is an id/label pair bound to exactly one notification. Invoking it
// signals ActionInvoked back through the bus endpoint.
type Action struct {
	ID    string
	Label string

	notification *Notification
	emitter      SignalEmitter
}

// New constructs a Notification. The actions slice holds alternating
// id/label pairs as received on the wire; an unpaired trailing id is
// ignored.
func New(
	emitter SignalEmitter,
	id uint32,
	appName, icon, summary, body string,
	actions []string,
	urgency int,
	timeout int32,
	timestamp float64,
	popup bool,
) *Notification {
	n := &Notification{
		ID:      id,
		AppName: appName,
		Icon:    icon,
		Summary: summary,
		Body:    body,
		Urgency: urgency,
		Timeout: timeout,
		Time:    timestamp,
		Popup:   popup,
		events:  event.NewHub(),
	}

	for i := 0; i+1 < len(actions); i += 2 {
		n.Actions = append(n.Actions, &Action{
			ID:           actions[i],
			Label:        actions[i+1],
			notification: n,
			emitter:      emitter,
		})
	}

	return n
}

// OnClosed registers a handler invoked when the notification is closed.
func (n *Notification) OnClosed(fn func(*Notification)) event.Token {
	return n.events.Subscribe(SignalClosed, func(any) { fn(n) })
}

// OnDismissed registers a handler invoked when the notification is
// dismissed from the popup queue.
func (n *Notification) OnDismissed(fn func(*Notification)) event.Token {
	return n.events.Subscribe(SignalDismissed, func(any) { fn(n) })
}

// Close emits the closed signal. The registry's closed handler removes the
// notification from the collection; there is no transition back.
func (n *Notification) Close() {
	n.events.Emit(SignalClosed, n)
}

// Dismiss flips Popup to false and emits the dismissed signal. It is
// idempotent: a second call, or a call on a notification that was never a
// popup, is a no-op. The notification stays in the full collection.
func (n *Notification) Dismiss() {
	if !n.Popup {
		return
	}
	n.Popup = false
	n.events.Emit(SignalDismissed, n)
}

// ScheduleDismiss arms the auto-dismissal timer. The run callback must
// execute its argument on the daemon dispatch loop. A zero timeout never
// expires; non-popup notifications (restored history, dnd) get no timer.
// The timer is not cancelled on close: a late fire lands on Dismiss, which
// no-ops once Popup is false.
func (n *Notification) ScheduleDismiss(run func(func())) {
	if n.Timeout <= 0 || !n.Popup {
		return
	}
	time.AfterFunc(time.Duration(n.Timeout)*time.Millisecond, func() {
		run(n.Dismiss)
	})
}

// FlatActions returns the actions as the wire-format alternating id/label
// sequence.
func (n *Notification) FlatActions() []string {
	flat := make([]string, 0, len(n.Actions)*2)
	for _, a := range n.Actions {
		flat = append(flat, a.ID, a.Label)
	}
	return flat
}

// UrgencyName returns the human-readable urgency level.
func (n *Notification) UrgencyName() string {
	if name, ok := UrgencyNames[n.Urgency]; ok {
		return name
	}
	return "unknown"
}

// TimeStamp returns the creation instant as a time.Time.
func (n *Notification) TimeStamp() time.Time {
	sec := int64(n.Time)
	nsec := int64((n.Time - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}

// Invoke emits the ActionInvoked signal for this action on the bus.
func (a *Action) Invoke() error {
	return a.emitter.EmitSignal("ActionInvoked", a.notification.ID, a.ID)
}

// Notification returns the owning notification.
func (a *Action) Notification() *Notification {
	return a.notification
}
