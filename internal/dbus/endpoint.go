// Package dbus provides the generic message-bus service abstractions used
// by hush: an Endpoint that owns a well-known name and dispatches calls,
// property reads, and signals, and a Proxy for invoking remote services.
// The org.freedesktop.Notifications surface is just one consumer.
package dbus

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
)

// ErrNameTaken indicates the well-known name is already owned by another
// process. Callers log the conflict and continue running degraded instead
// of crashing.
var ErrNameTaken = errors.New("bus name already has an owner")

// PropertyFunc produces the current value of a registered property.
type PropertyFunc func() any

// Endpoint is a generic bus service: it owns a well-known name, dispatches
// incoming calls to registered operation handlers, answers property reads
// from registered getters, and emits named signals.
//
// Handlers are plain functions with bus-typed arguments and a trailing
// *dbus.Error return; they may take dbus.Sender as their first argument to
// receive the caller's identity. Dispatch of a call whose name has no
// handler is rejected with a protocol-level unknown-method error by the
// method table, never silently dropped. Handlers run on transport
// goroutines: anything touching daemon state must go through the dispatch
// loop.
type Endpoint struct {
	logger *slog.Logger

	name  string
	path  dbus.ObjectPath
	iface string

	mu         sync.Mutex
	conn       *dbus.Conn
	methods    map[string]any
	methodArgs map[string][]introspect.Arg
	getters    map[string]PropertyFunc
	propSigs   map[string]string
	signals    []introspect.Signal
	running    bool
}

// NewEndpoint creates an Endpoint for the given well-known name, object
// path, and interface.
func NewEndpoint(name string, path dbus.ObjectPath, iface string, logger *slog.Logger) *Endpoint {
	if logger == nil {
		logger = slog.Default()
	}
	return &Endpoint{
		logger:     logger,
		name:       name,
		path:       path,
		iface:      iface,
		methods:    make(map[string]any),
		methodArgs: make(map[string][]introspect.Arg),
		getters:    make(map[string]PropertyFunc),
		propSigs:   make(map[string]string),
	}
}

// Name returns the well-known name this endpoint owns.
func (e *Endpoint) Name() string { return e.name }

// Interface returns the primary interface name.
func (e *Endpoint) Interface() string { return e.iface }

// RegisterMethod adds a callable operation. The args describe the wire
// signature for introspection; handler is invoked with the unpacked call
// payload. Must be called before Start.
func (e *Endpoint) RegisterMethod(name string, args []introspect.Arg, handler any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.methods[name] = handler
	e.methodArgs[name] = args
}

// RegisterProperty adds a readable property with the given D-Bus type
// signature. The getter is evaluated on every read. Must be called before
// Start.
func (e *Endpoint) RegisterProperty(name, sig string, getter PropertyFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.getters[name] = getter
	e.propSigs[name] = sig
}

// RegisterSignal declares a signal for introspection.
func (e *Endpoint) RegisterSignal(name string, args []introspect.Arg) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.signals = append(e.signals, introspect.Signal{Name: name, Args: args})
}

// Start exports the registered tables on conn (the session bus when nil)
// and requests the well-known name. A name conflict is reported as
// ErrNameTaken after the object is exported, so the caller can keep
// running without protocol exposure.
func (e *Endpoint) Start(conn *dbus.Conn) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		return fmt.Errorf("endpoint %s already running", e.name)
	}

	if conn == nil {
		var err error
		conn, err = dbus.SessionBus()
		if err != nil {
			return fmt.Errorf("connect to session bus: %w", err)
		}
	}
	e.conn = conn

	if err := conn.ExportMethodTable(e.methods, e.path, e.iface); err != nil {
		return fmt.Errorf("export method table: %w", err)
	}
	if err := conn.Export(propReader{e}, e.path, "org.freedesktop.DBus.Properties"); err != nil {
		return fmt.Errorf("export properties: %w", err)
	}
	if err := conn.Export(introspect.NewIntrospectable(e.introspectNode()), e.path,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("export introspectable: %w", err)
	}

	reply, err := conn.RequestName(e.name, dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("request name %s: %w", e.name, err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("%w: %s", ErrNameTaken, e.name)
	}

	e.running = true
	e.logger.Info("bus endpoint started", "name", e.name, "path", e.path)
	return nil
}

// Stop releases the well-known name. The connection is shared and stays
// open.
func (e *Endpoint) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return nil
	}
	e.running = false

	if _, err := e.conn.ReleaseName(e.name); err != nil {
		e.logger.Warn("failed to release bus name", "name", e.name, "error", err)
	}
	e.logger.Info("bus endpoint stopped", "name", e.name)
	return nil
}

// EmitSignal broadcasts a named signal with a positional payload to all
// subscribers of this service.
func (e *Endpoint) EmitSignal(name string, values ...any) error {
	e.mu.Lock()
	conn := e.conn
	e.mu.Unlock()

	if conn == nil {
		return fmt.Errorf("endpoint %s not connected", e.name)
	}
	if err := conn.Emit(e.path, e.iface+"."+name, values...); err != nil {
		return fmt.Errorf("emit %s: %w", name, err)
	}
	e.logger.Debug("emitted signal", "signal", name)
	return nil
}

// introspectNode builds introspection data from the registered tables.
func (e *Endpoint) introspectNode() *introspect.Node {
	methods := make([]introspect.Method, 0, len(e.methods))
	names := make([]string, 0, len(e.methods))
	for name := range e.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		methods = append(methods, introspect.Method{Name: name, Args: e.methodArgs[name]})
	}

	props := make([]introspect.Property, 0, len(e.getters))
	propNames := make([]string, 0, len(e.getters))
	for name := range e.getters {
		propNames = append(propNames, name)
	}
	sort.Strings(propNames)
	for _, name := range propNames {
		props = append(props, introspect.Property{Name: name, Type: e.propSigs[name], Access: "read"})
	}

	return &introspect.Node{
		Name: string(e.path),
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name:       e.iface,
				Methods:    methods,
				Properties: props,
				Signals:    e.signals,
			},
		},
	}
}

// propReader answers org.freedesktop.DBus.Properties calls from the
// endpoint's getter table.
type propReader struct {
	e *Endpoint
}

// Get looks up the getter registered under the property name and returns
// its current value. An unknown name is a protocol-level error.
func (p propReader) Get(iface, property string) (dbus.Variant, *dbus.Error) {
	if iface != p.e.iface {
		return dbus.Variant{}, unknownInterfaceError(iface)
	}

	p.e.mu.Lock()
	getter, ok := p.e.getters[property]
	p.e.mu.Unlock()
	if !ok {
		return dbus.Variant{}, unknownPropertyError(property)
	}

	return dbus.MakeVariant(getter()), nil
}

// GetAll returns the current value of every registered property.
func (p propReader) GetAll(iface string) (map[string]dbus.Variant, *dbus.Error) {
	if iface != p.e.iface {
		return nil, unknownInterfaceError(iface)
	}

	p.e.mu.Lock()
	getters := make(map[string]PropertyFunc, len(p.e.getters))
	for name, g := range p.e.getters {
		getters[name] = g
	}
	p.e.mu.Unlock()

	values := make(map[string]dbus.Variant, len(getters))
	for name, getter := range getters {
		values[name] = dbus.MakeVariant(getter())
	}
	return values, nil
}

// Set rejects writes: endpoint properties are read-only.
func (p propReader) Set(iface, property string, value dbus.Variant) *dbus.Error {
	return dbus.NewError("org.freedesktop.DBus.Error.PropertyReadOnly",
		[]any{fmt.Sprintf("property %s is read-only", property)})
}

func unknownPropertyError(property string) *dbus.Error {
	return dbus.NewError("org.freedesktop.DBus.Error.UnknownProperty",
		[]any{fmt.Sprintf("unknown property %s", property)})
}

func unknownInterfaceError(iface string) *dbus.Error {
	return dbus.NewError("org.freedesktop.DBus.Error.UnknownInterface",
		[]any{fmt.Sprintf("unknown interface %s", iface)})
}

// DecodeError wraps a payload decoding failure as a protocol error reply.
// It fails the specific call only.
func DecodeError(err error) *dbus.Error {
	return dbus.NewError("net.hush.Error.Decode", []any{err.Error()})
}
