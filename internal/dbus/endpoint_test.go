package dbus

import (
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEndpoint() *Endpoint {
	ep := NewEndpoint("net.example.Svc", "/net/example/Svc", "net.example.Svc", nil)
	ep.RegisterMethod("Ping", []introspect.Arg{
		{Name: "reply", Type: "s", Direction: "out"},
	}, func() (string, *dbus.Error) { return "pong", nil })
	ep.RegisterProperty("Count", "u", func() any { return uint32(7) })
	ep.RegisterProperty("Enabled", "b", func() any { return true })
	ep.RegisterSignal("Changed", []introspect.Arg{{Name: "what", Type: "s"}})
	return ep
}

func TestIntrospectNode(t *testing.T) {
	ep := testEndpoint()
	node := ep.introspectNode()

	require.Len(t, node.Interfaces, 2)
	iface := node.Interfaces[1]
	assert.Equal(t, "net.example.Svc", iface.Name)

	require.Len(t, iface.Methods, 1)
	assert.Equal(t, "Ping", iface.Methods[0].Name)
	assert.Equal(t, "s", iface.Methods[0].Args[0].Type)

	require.Len(t, iface.Properties, 2)
	// Sorted by name.
	assert.Equal(t, "Count", iface.Properties[0].Name)
	assert.Equal(t, "u", iface.Properties[0].Type)
	assert.Equal(t, "read", iface.Properties[0].Access)
	assert.Equal(t, "Enabled", iface.Properties[1].Name)

	require.Len(t, iface.Signals, 1)
	assert.Equal(t, "Changed", iface.Signals[0].Name)
}

func TestPropReaderGet(t *testing.T) {
	ep := testEndpoint()
	reader := propReader{ep}

	v, derr := reader.Get("net.example.Svc", "Count")
	require.Nil(t, derr)
	assert.Equal(t, uint32(7), v.Value())
}

func TestPropReaderGetUnknownProperty(t *testing.T) {
	ep := testEndpoint()
	reader := propReader{ep}

	_, derr := reader.Get("net.example.Svc", "Nope")
	require.NotNil(t, derr)
	assert.Equal(t, "org.freedesktop.DBus.Error.UnknownProperty", derr.Name)
}

func TestPropReaderGetUnknownInterface(t *testing.T) {
	ep := testEndpoint()
	reader := propReader{ep}

	_, derr := reader.Get("net.example.Other", "Count")
	require.NotNil(t, derr)
	assert.Equal(t, "org.freedesktop.DBus.Error.UnknownInterface", derr.Name)
}

func TestPropReaderGetAll(t *testing.T) {
	ep := testEndpoint()
	reader := propReader{ep}

	values, derr := reader.GetAll("net.example.Svc")
	require.Nil(t, derr)
	assert.Equal(t, uint32(7), values["Count"].Value())
	assert.Equal(t, true, values["Enabled"].Value())
}

func TestPropReaderSetRejected(t *testing.T) {
	ep := testEndpoint()
	reader := propReader{ep}

	derr := reader.Set("net.example.Svc", "Count", dbus.MakeVariant(uint32(1)))
	require.NotNil(t, derr)
	assert.Equal(t, "org.freedesktop.DBus.Error.PropertyReadOnly", derr.Name)
}

func TestEmitSignalWithoutConnection(t *testing.T) {
	ep := testEndpoint()
	assert.Error(t, ep.EmitSignal("Changed", "x"))
}

func TestDecodeError(t *testing.T) {
	derr := DecodeError(assert.AnError)
	assert.Equal(t, "net.hush.Error.Decode", derr.Name)
	require.Len(t, derr.Body, 1)
	assert.Equal(t, assert.AnError.Error(), derr.Body[0])
}
