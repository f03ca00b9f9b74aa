package xr

import "fmt"

// EventType identifies what a polled runtime event carries.
type EventType int

const (
	EventUnknown EventType = iota
	EventSessionStateChanged
	EventInstanceLossPending
	EventEventsLost
	EventInteractionProfileChanged
	EventReferenceSpaceChangePending
)

var eventTypeNames = map[EventType]string{
	EventUnknown:                     "unknown",
	EventSessionStateChanged:         "session_state_changed",
	EventInstanceLossPending:         "instance_loss_pending",
	EventEventsLost:                  "events_lost",
	EventInteractionProfileChanged:   "interaction_profile_changed",
	EventReferenceSpaceChangePending: "reference_space_change_pending",
}

func (t EventType) String() string {
	if s, ok := eventTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("event(%d)", int(t))
}

// SessionState is the runtime's view of the session lifecycle.
type SessionState int

const (
	StateUnknown SessionState = iota
	StateIdle
	StateReady
	StateSynchronized
	StateVisible
	StateFocused
	StateStopping
	StateLossPending
	StateExiting
)

var sessionStateNames = map[SessionState]string{
	StateUnknown:      "unknown",
	StateIdle:         "idle",
	StateReady:        "ready",
	StateSynchronized: "synchronized",
	StateVisible:      "visible",
	StateFocused:      "focused",
	StateStopping:     "stopping",
	StateLossPending:  "loss_pending",
	StateExiting:      "exiting",
}

func (s SessionState) String() string {
	if n, ok := sessionStateNames[s]; ok {
		return n
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Event is one entry of the runtime's event queue.
// State is only meaningful for EventSessionStateChanged.
type Event struct {
	Type  EventType
	State SessionState
	Time  Time
}

// StateChanged builds a session state change event.
func StateChanged(s SessionState, t Time) Event {
	return Event{Type: EventSessionStateChanged, State: s, Time: t}
}

func (e Event) String() string {
	if e.Type == EventSessionStateChanged {
		return "session_state_changed:" + e.State.String()
	}
	return e.Type.String()
}

// ParseEvent turns a script token into an event. Session state names produce state
// change events; other tokens name a bare event type.
func ParseEvent(name string) (Event, error) {
	for s, n := range sessionStateNames {
		if n == name && s != StateUnknown {
			return StateChanged(s, 0), nil
		}
	}
	for t, n := range eventTypeNames {
		if n == name && t != EventUnknown && t != EventSessionStateChanged {
			return Event{Type: t}, nil
		}
	}
	return Event{}, fmt.Errorf("unknown event %q", name)
}
