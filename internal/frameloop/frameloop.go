// Package frameloop drives a session one tick at a time: drain events, then poll input
// and render while the session runs.
package frameloop

import (
	"log/slog"

	"cubesculpt/internal/xr"
)

// Lifecycle is the session state the loop is gated on.
type Lifecycle interface {
	Handle(ev xr.Event) error
	Running() bool
	Focused() bool
}

// Poller consumes one tick of controller input.
type Poller interface {
	Poll() error
}

// Renderer produces one frame. It blocks on the runtime's frame wait.
type Renderer interface {
	Render() error
}

// Loop is the single-threaded per-tick driver.
type Loop struct {
	events xr.EventSource
	life   Lifecycle
	input  Poller
	render Renderer
	log    *slog.Logger
	ticks  uint64
}

// New returns a loop draining events into life, polling input and rendering.
func New(events xr.EventSource, life Lifecycle, input Poller, render Renderer, log *slog.Logger) *Loop {
	return &Loop{events: events, life: life, input: input, render: render, log: log}
}

// Ticks returns the number of completed ticks.
func (l *Loop) Ticks() uint64 {
	return l.ticks
}

// Tick runs one iteration. Every pending event is handled before anything else; an
// unfocused running session still renders but does not read input.
func (l *Loop) Tick() error {
	for {
		ev, ok := l.events.PollEvent()
		if !ok {
			break
		}
		if err := l.life.Handle(ev); err != nil {
			return err
		}
	}

	if l.life.Running() {
		if l.life.Focused() {
			if err := l.input.Poll(); err != nil {
				return err
			}
		}
		if err := l.render.Render(); err != nil {
			return err
		}
	}
	l.ticks++
	return nil
}

// Run ticks until a tick fails. Every error it returns is fatal for the session.
func (l *Loop) Run() error {
	l.log.Info("frame loop started")
	for {
		if err := l.Tick(); err != nil {
			l.log.Info("frame loop stopped", "ticks", l.ticks, "err", err)
			return err
		}
	}
}
