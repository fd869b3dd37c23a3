package dbus

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/hushd/hush/internal/event"
)

// SignalHandler receives the positional payload of a remote signal.
type SignalHandler func(values []any)

// Proxy invokes operations and reads properties on a remote service. The
// remote interface's declared operation and property names are resolved
// once, at construction, via introspection; all invocation goes through
// the generic Invoke/ReadProperty entry points.
type Proxy struct {
	conn  *dbus.Conn
	obj   dbus.BusObject
	dest  string
	path  dbus.ObjectPath
	iface string

	methods    map[string]struct{}
	properties map[string]struct{}

	mu      sync.Mutex
	hub     *event.Hub
	matched map[string]bool
	sigCh   chan *dbus.Signal
}

// NewProxy resolves the remote service's interface on conn (the session
// bus when nil) and returns a proxy bound to it.
func NewProxy(conn *dbus.Conn, dest string, path dbus.ObjectPath, iface string) (*Proxy, error) {
	if conn == nil {
		var err error
		conn, err = dbus.SessionBus()
		if err != nil {
			return nil, fmt.Errorf("connect to session bus: %w", err)
		}
	}

	obj := conn.Object(dest, path)
	node, err := introspect.Call(obj)
	if err != nil {
		return nil, fmt.Errorf("introspect %s at %s: %w", dest, path, err)
	}

	p := &Proxy{
		conn:       conn,
		obj:        obj,
		dest:       dest,
		path:       path,
		iface:      iface,
		methods:    make(map[string]struct{}),
		properties: make(map[string]struct{}),
		hub:        event.NewHub(),
		matched:    make(map[string]bool),
	}

	found := false
	for _, in := range node.Interfaces {
		if in.Name != iface {
			continue
		}
		found = true
		for _, m := range in.Methods {
			p.methods[m.Name] = struct{}{}
		}
		for _, prop := range in.Properties {
			p.properties[prop.Name] = struct{}{}
		}
	}
	if !found {
		return nil, fmt.Errorf("service %s does not declare interface %s", dest, iface)
	}

	return p, nil
}

// Methods returns the declared operation names, sorted.
func (p *Proxy) Methods() []string {
	names := make([]string, 0, len(p.methods))
	for name := range p.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Properties returns the declared property names, sorted.
func (p *Proxy) Properties() []string {
	names := make([]string, 0, len(p.properties))
	for name := range p.properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoke calls a declared remote operation with typed positional arguments
// and returns the positional result. Unknown names fail locally without a
// bus round trip.
func (p *Proxy) Invoke(name string, args ...any) ([]any, error) {
	if _, ok := p.methods[name]; !ok {
		return nil, fmt.Errorf("unknown method %s on %s", name, p.iface)
	}

	call := p.obj.Call(p.iface+"."+name, 0, args...)
	if call.Err != nil {
		return nil, fmt.Errorf("call %s.%s: %w", p.iface, name, call.Err)
	}
	return call.Body, nil
}

// ReadProperty returns the current value of a declared remote property.
// Any remote failure yields (zero, false) rather than an error.
func (p *Proxy) ReadProperty(name string) (dbus.Variant, bool) {
	if _, ok := p.properties[name]; !ok {
		return dbus.Variant{}, false
	}
	v, err := p.obj.GetProperty(p.iface + "." + name)
	if err != nil {
		return dbus.Variant{}, false
	}
	return v, true
}

// HasOwner reports whether the remote service name currently has an
// owning process.
func (p *Proxy) HasOwner() (bool, error) {
	var owned bool
	err := p.conn.BusObject().Call("org.freedesktop.DBus.NameHasOwner", 0, p.dest).Store(&owned)
	if err != nil {
		return false, fmt.Errorf("NameHasOwner %s: %w", p.dest, err)
	}
	return owned, nil
}

// SubscribeSignal registers a handler for a remote signal and returns an
// opaque token for Unsubscribe. Handlers for the same subscriber fire in
// registration order; no ordering is guaranteed across subscribers.
func (p *Proxy) SubscribeSignal(member string, handler SignalHandler) (event.Token, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.matched[member] {
		err := p.conn.AddMatchSignal(
			dbus.WithMatchSender(p.dest),
			dbus.WithMatchObjectPath(p.path),
			dbus.WithMatchInterface(p.iface),
			dbus.WithMatchMember(member),
		)
		if err != nil {
			return "", fmt.Errorf("add match for %s: %w", member, err)
		}
		p.matched[member] = true
	}

	if p.sigCh == nil {
		p.sigCh = make(chan *dbus.Signal, 32)
		p.conn.Signal(p.sigCh)
		go p.pump()
	}

	token := p.hub.Subscribe(member, func(payload any) {
		if values, ok := payload.([]any); ok {
			handler(values)
		}
	})
	return token, nil
}

// Unsubscribe removes a signal subscription.
func (p *Proxy) Unsubscribe(token event.Token) {
	p.hub.Unsubscribe(token)
}

// pump fans incoming bus signals out to subscribers by member name.
func (p *Proxy) pump() {
	for sig := range p.sigCh {
		if sig.Path != p.path || !strings.HasPrefix(sig.Name, p.iface+".") {
			continue
		}
		member := strings.TrimPrefix(sig.Name, p.iface+".")
		p.hub.Emit(member, sig.Body)
	}
}

// Close detaches the signal channel from the connection. The shared
// connection itself stays open.
func (p *Proxy) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sigCh != nil {
		p.conn.RemoveSignal(p.sigCh)
		close(p.sigCh)
		p.sigCh = nil
	}
}
