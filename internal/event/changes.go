package event

// ChangeSink receives property-change notifications for named objects.
// The daemon uses it to tell observers that a property-bearing collection
// (the notification list, the popup list) changed.
type ChangeSink interface {
	NotifyChanged(object, property string)
}

// PropertySignal is the hub signal name used for property changes.
const PropertySignal = "property-changed"

// PropertyChange is the payload emitted on PropertySignal.
type PropertyChange struct {
	Object   string
	Property string
}

// HubSink adapts a Hub into a ChangeSink.
type HubSink struct {
	hub *Hub
}

// NewHubSink returns a ChangeSink that emits PropertyChange payloads on hub.
func NewHubSink(hub *Hub) *HubSink {
	return &HubSink{hub: hub}
}

// NotifyChanged emits a PropertyChange on the underlying hub.
func (s *HubSink) NotifyChanged(object, property string) {
	s.hub.Emit(PropertySignal, PropertyChange{Object: object, Property: property})
}
