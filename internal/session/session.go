// Package session tracks the runtime's session lifecycle and decides, per tick, whether
// the loop renders and whether it polls input.
package session

import (
	"log/slog"

	"cubesculpt/internal/xr"
)

// Lifecycle is the local mirror of the runtime session state.
//
// Running gates rendering, Focused gates input polling. Both flags change only after the
// runtime command a transition issues has succeeded.
type Lifecycle struct {
	cmds    xr.SessionCommands
	log     *slog.Logger
	state   xr.SessionState
	running bool
	focused bool
}

// New returns a lifecycle in the idle state.
func New(cmds xr.SessionCommands, log *slog.Logger) *Lifecycle {
	return &Lifecycle{cmds: cmds, log: log, state: xr.StateIdle}
}

// Running reports whether the session has begun and not yet ended.
func (l *Lifecycle) Running() bool { return l.running }

// Focused reports whether the running session receives input.
func (l *Lifecycle) Focused() bool { return l.focused }

// State returns the last state whose transition was applied. A Ready or Stopping whose
// command failed is not recorded.
func (l *Lifecycle) State() xr.SessionState { return l.state }

// Handle applies one polled event. A non-nil error is fatal for the session.
func (l *Lifecycle) Handle(ev xr.Event) error {
	switch ev.Type {
	case xr.EventInstanceLossPending:
		l.log.Error("instance loss pending", "time", ev.Time)
		return xr.ErrRuntimeUnusable
	case xr.EventSessionStateChanged:
		return l.transition(ev.State)
	default:
		l.log.Info("other event", "type", ev.Type)
		return nil
	}
}

func (l *Lifecycle) transition(s xr.SessionState) error {
	l.log.Info("session state changed", "from", l.state, "to", s)

	switch s {
	case xr.StateReady:
		if err := xr.Check("Beginning a session", l.cmds.BeginSession()); err != nil {
			return err
		}
		l.running = true
	case xr.StateVisible:
		l.focused = false
	case xr.StateFocused:
		l.focused = true
	case xr.StateStopping:
		if err := xr.Check("Ending a session", l.cmds.EndSession()); err != nil {
			return err
		}
		l.running = false
		l.focused = false
	case xr.StateExiting:
		l.state = s
		// No end command here: the session object's teardown releases what is left.
		return xr.ErrSessionTerminated
	}
	l.state = s
	return nil
}
