// Package input turns raw controller samples into hand manipulation: placing cubes,
// picking colors on the stick, scaling with trigger and grip, and toggling the cube type.
package input

import (
	"log/slog"

	"cubesculpt/internal/world"
	"cubesculpt/internal/xr"
)

// Modifiers is one hand's face-button state, captured for both hands before either hand
// is processed.
type Modifiers struct {
	XA bool
	YB bool
	// YBPressed is a rising edge of YB since the previous sync.
	YBPressed bool
}

// Sample is one hand's primary inputs for a tick.
type Sample struct {
	StickX  float32
	StickY  float32
	Click   xr.BoolState
	Trigger float32
	Grip    float32
}

// Placer snapshots h into a new cube, locating the hand at the click time.
type Placer func(h *world.Hand, at xr.Time) error

// Apply runs one tick of the gesture set for a hand. own and sibling are the modifier
// states of this hand and of the other hand, both captured before any hand was mutated.
func Apply(h *world.Hand, own, sibling Modifiers, s Sample, place Placer) error {
	radius, angle := Stick(s.StickX, s.StickY)

	if radius < Deadzone {
		if s.Click.Pressed() {
			if err := place(h, s.Click.LastChangeTime); err != nil {
				return err
			}
		}
		// Back in the deadzone: any gesture is over and the hue wheel is armed again.
		h.EndGesture()
	} else {
		applyColor(h, angle, s.Click.Pressed())
	}

	axes := SelectAxes(own)
	Grow(&h.Scale, axes, s.Trigger)
	Shrink(&h.Scale, axes, s.Grip)

	// Two-hand chord: the other hand holds XA while this hand presses YB.
	if sibling.XA && own.YBPressed {
		h.Type = h.Type.Toggled()
	}
	return nil
}

func applyColor(h *world.Hand, angle float32, pressed bool) {
	if pressed {
		// The start tick only records the reference; color follows from the next tick.
		h.StartGesture(angle)
		return
	}
	if g, ok := h.ActiveGesture(); ok {
		delta, clockwise := ShortestArc(g.StartAngle, angle)
		h.Color = GestureColor(g.Reference, delta, clockwise)
		return
	}
	h.Color = HueColor(angle)
}

// Engine reads the action set from the runtime and applies it to the world's hands.
type Engine struct {
	in    xr.InputSource
	loc   xr.Locator
	base  xr.Space
	world *world.World
	log   *slog.Logger
}

// New returns an engine placing cubes in base space coordinates.
func New(in xr.InputSource, loc xr.Locator, base xr.Space, w *world.World, log *slog.Logger) *Engine {
	return &Engine{in: in, loc: loc, base: base, world: w, log: log}
}

// Poll syncs the actions and processes both hands. The modifier pass over both hands
// completes before the gesture pass starts, so a hand never sees the other hand's
// modifiers half-way through an update.
func (e *Engine) Poll() error {
	if err := xr.Check("Syncing actions", e.in.SyncActions()); err != nil {
		return err
	}

	var mods [xr.HandCount]Modifiers
	for _, id := range xr.Hands {
		m, err := e.readModifiers(id)
		if err != nil {
			return err
		}
		mods[id] = m
	}

	for _, id := range xr.Hands {
		s, err := e.readSample(id)
		if err != nil {
			return err
		}
		if err := Apply(e.world.Hand(id), mods[id], mods[id.Sibling()], s, e.place); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) place(h *world.Hand, at xr.Time) error {
	loc, err := e.loc.LocateSpace(h.Space, e.base, at)
	if err := xr.Check("Locating a hand space", err); err != nil {
		return err
	}
	if !loc.Valid() {
		e.log.Debug("placement skipped, hand not tracked", "hand", h.ID)
		return nil
	}
	c := e.world.Place(h, loc.Pose)
	e.log.Info("cube placed", "hand", h.ID, "count", e.world.Len(), "type", c.Type,
		"color", c.Color.Hex(), "scale", c.Scale)
	return nil
}

func (e *Engine) readModifiers(id xr.Hand) (Modifiers, error) {
	xa, err := e.in.BoolAction(xr.ActionModifierXA, id)
	if err := xr.Check("Polling a modifier XA state", err); err != nil {
		return Modifiers{}, err
	}
	yb, err := e.in.BoolAction(xr.ActionModifierYB, id)
	if err := xr.Check("Polling a modifier YB state", err); err != nil {
		return Modifiers{}, err
	}
	return Modifiers{XA: xa.Current, YB: yb.Current, YBPressed: yb.Pressed()}, nil
}

func (e *Engine) readSample(id xr.Hand) (Sample, error) {
	var s Sample
	click, err := e.in.BoolAction(xr.ActionPlace, id)
	if err := xr.Check("Polling a thumbstick click state", err); err != nil {
		return s, err
	}
	s.Click = click

	floats := []struct {
		action xr.Action
		op     string
		dst    *float32
	}{
		{xr.ActionThumbstickX, "Polling a thumbstick X state", &s.StickX},
		{xr.ActionThumbstickY, "Polling a thumbstick Y state", &s.StickY},
		{xr.ActionExpand, "Polling a trigger state", &s.Trigger},
		{xr.ActionShrink, "Polling a grip state", &s.Grip},
	}
	for _, f := range floats {
		v, err := e.in.FloatAction(f.action, id)
		if err := xr.Check(f.op, err); err != nil {
			return s, err
		}
		*f.dst = v.Current
	}
	return s, nil
}
