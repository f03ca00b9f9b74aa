package frameloop

import (
	"errors"
	"log/slog"
	"strings"
	"testing"

	"cubesculpt/internal/session"
	"cubesculpt/internal/xr"
)

// trace records the order in which the loop touched its collaborators.
type trace struct {
	calls []string
}

func (tr *trace) add(s string) { tr.calls = append(tr.calls, s) }

type queue struct {
	tr     *trace
	events []xr.Event
}

func (q *queue) PollEvent() (xr.Event, bool) {
	if len(q.events) == 0 {
		q.tr.add("empty")
		return xr.Event{}, false
	}
	ev := q.events[0]
	q.events = q.events[1:]
	q.tr.add("event")
	return ev, true
}

type commands struct{}

func (commands) BeginSession() error { return nil }
func (commands) EndSession() error   { return nil }

type step struct {
	tr   *trace
	name string
	err  error
}

func (s *step) Poll() error {
	s.tr.add(s.name)
	return s.err
}

func (s *step) Render() error {
	s.tr.add(s.name)
	return s.err
}

func setupLoop(t *testing.T, events ...xr.Event) (*Loop, *queue, *trace, *step, *step) {
	t.Helper()
	tr := &trace{}
	q := &queue{tr: tr, events: events}
	in := &step{tr: tr, name: "input"}
	r := &step{tr: tr, name: "render"}
	log := slog.New(slog.DiscardHandler)
	return New(q, session.New(commands{}, log), in, r, log), q, tr, in, r
}

func TestTickDrainsEveryEventFirst(t *testing.T) {
	l, _, tr, _, _ := setupLoop(t,
		xr.StateChanged(xr.StateReady, 0),
		xr.Event{Type: xr.EventEventsLost},
		xr.StateChanged(xr.StateSynchronized, 0),
		xr.StateChanged(xr.StateFocused, 0),
	)
	if err := l.Tick(); err != nil {
		t.Fatal(err)
	}
	got := strings.Join(tr.calls, ",")
	want := "event,event,event,event,empty,input,render"
	if got != want {
		t.Fatalf("calls = %s, want %s", got, want)
	}
	if l.Ticks() != 1 {
		t.Fatalf("ticks = %d", l.Ticks())
	}
}

func TestTickIdleSkipsInputAndRender(t *testing.T) {
	l, _, tr, _, _ := setupLoop(t)
	for i := 0; i < 3; i++ {
		if err := l.Tick(); err != nil {
			t.Fatal(err)
		}
	}
	if got := strings.Join(tr.calls, ","); got != "empty,empty,empty" {
		t.Fatalf("calls = %s", got)
	}
}

func TestTickUnfocusedRendersWithoutInput(t *testing.T) {
	l, _, tr, _, _ := setupLoop(t, xr.StateChanged(xr.StateReady, 0), xr.StateChanged(xr.StateVisible, 0))
	if err := l.Tick(); err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(tr.calls, ","); got != "event,event,empty,render" {
		t.Fatalf("calls = %s", got)
	}
}

func TestTickStopsOnFatalEvent(t *testing.T) {
	l, q, tr, _, _ := setupLoop(t,
		xr.StateChanged(xr.StateReady, 0),
		xr.StateChanged(xr.StateExiting, 0),
		xr.StateChanged(xr.StateFocused, 0),
	)
	err := l.Tick()
	if !errors.Is(err, xr.ErrSessionTerminated) {
		t.Fatalf("err = %v", err)
	}
	if len(q.events) != 1 {
		t.Fatalf("%d events left, want the one after exiting", len(q.events))
	}
	for _, c := range tr.calls {
		if c == "input" || c == "render" {
			t.Fatalf("loop kept going after a fatal event: %v", tr.calls)
		}
	}
}

func TestRunReturnsRenderError(t *testing.T) {
	l, q, _, _, r := setupLoop(t)
	q.events = []xr.Event{xr.StateChanged(xr.StateReady, 0)}
	boom := &xr.CommandError{Op: "Waiting for a frame", Err: errors.New("lost")}
	r.err = boom
	if err := l.Run(); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if l.Ticks() != 0 {
		t.Fatalf("ticks = %d", l.Ticks())
	}
}

func TestRunReturnsInputError(t *testing.T) {
	l, q, tr, in, _ := setupLoop(t)
	q.events = []xr.Event{xr.StateChanged(xr.StateReady, 0), xr.StateChanged(xr.StateFocused, 0)}
	in.err = errors.New("sync failed")
	if err := l.Run(); err == nil || err.Error() != "sync failed" {
		t.Fatalf("err = %v", err)
	}
	if tr.calls[len(tr.calls)-1] != "input" {
		t.Fatalf("rendered after an input failure: %v", tr.calls)
	}
}
