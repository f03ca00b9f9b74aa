package input

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	colorful "github.com/lucasb-eyer/go-colorful"

	"cubesculpt/internal/world"
	"cubesculpt/internal/xr"
)

type placement struct {
	hand xr.Hand
	at   xr.Time
}

func recordPlacer(calls *[]placement) Placer {
	return func(h *world.Hand, at xr.Time) error {
		*calls = append(*calls, placement{h.ID, at})
		return nil
	}
}

func pressed(at xr.Time) xr.BoolState {
	return xr.BoolState{Current: true, Changed: true, LastChangeTime: at}
}

func TestApplyPlacesInsideDeadzone(t *testing.T) {
	sticks := [][2]float32{{0, 0}, {0.1, 0}, {0, -0.2}, {0.17, 0.17}, {-0.24, 0}}
	for _, st := range sticks {
		h := world.NewHand(xr.HandRight)
		h.Color = colorful.Color{R: 0.3, G: 0.6, B: 0.9}
		var calls []placement
		err := Apply(&h, Modifiers{}, Modifiers{}, Sample{StickX: st[0], StickY: st[1], Click: pressed(42)}, recordPlacer(&calls))
		if err != nil {
			t.Fatal(err)
		}
		if len(calls) != 1 || calls[0].at != 42 {
			t.Errorf("stick %v: placements = %v, want one at click time", st, calls)
		}
		if _, ok := h.ActiveGesture(); ok {
			t.Errorf("stick %v: gesture started inside deadzone", st)
		}
		if h.Color != (colorful.Color{R: 0.3, G: 0.6, B: 0.9}) {
			t.Errorf("stick %v: color changed to %v", st, h.Color)
		}
	}
}

func TestApplyHeldClickDoesNotPlaceAgain(t *testing.T) {
	h := world.NewHand(xr.HandLeft)
	var calls []placement
	held := xr.BoolState{Current: true, LastChangeTime: 3}
	for i := 0; i < 5; i++ {
		if err := Apply(&h, Modifiers{}, Modifiers{}, Sample{Click: held}, recordPlacer(&calls)); err != nil {
			t.Fatal(err)
		}
	}
	if len(calls) != 0 {
		t.Fatalf("held click placed %d cubes", len(calls))
	}
}

func TestApplyPlacerErrorPropagates(t *testing.T) {
	h := world.NewHand(xr.HandLeft)
	boom := errors.New("boom")
	err := Apply(&h, Modifiers{}, Modifiers{}, Sample{Click: pressed(1)}, func(*world.Hand, xr.Time) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
}

func TestApplyHueWheelOutsideDeadzone(t *testing.T) {
	h := world.NewHand(xr.HandLeft)
	var calls []placement
	// Straight up is a quarter turn, which is 90° of hue.
	if err := Apply(&h, Modifiers{}, Modifiers{}, Sample{StickY: 1, Click: pressed(1)}, recordPlacer(&calls)); err != nil {
		t.Fatal(err)
	}
	if len(calls) != 0 {
		t.Fatal("placed a cube outside the deadzone")
	}
	// Press started a gesture; the hue wheel needs a neutral pass first.
	h.EndGesture()
	if err := Apply(&h, Modifiers{}, Modifiers{}, Sample{StickY: 1}, recordPlacer(&calls)); err != nil {
		t.Fatal(err)
	}
	if !near(h.Color, colorful.Hsv(90, 1, 1)) {
		t.Fatalf("color = %v, want hue 90", h.Color)
	}
}

func TestApplyGestureStartKeepsColor(t *testing.T) {
	h := world.NewHand(xr.HandRight)
	h.Color = colorful.Color{R: 0.1, G: 0.7, B: 0.2}
	start := h.Color
	if err := Apply(&h, Modifiers{}, Modifiers{}, Sample{StickX: 1, Click: pressed(5)}, recordPlacer(new([]placement))); err != nil {
		t.Fatal(err)
	}
	g, ok := h.ActiveGesture()
	if !ok {
		t.Fatal("no gesture after press outside deadzone")
	}
	if g.StartAngle != 0 || g.Reference != start || h.Color != start {
		t.Fatalf("gesture %#v color %v", g, h.Color)
	}
}

func TestApplyColorRoundTrip(t *testing.T) {
	for _, theta0 := range []float32{0.3, 1.7, 3.0, 4.4, 6.0} {
		h := world.NewHand(xr.HandLeft)
		h.Color = colorful.Color{R: 0.9, G: 0.4, B: 0.1}
		ref := h.Color
		x0, y0 := math32.Cos(theta0), math32.Sin(theta0)
		place := recordPlacer(new([]placement))

		steps := []Sample{{StickX: x0, StickY: y0, Click: pressed(1)}}
		for _, off := range []float32{0.4, 1.2, 2.5, -0.8, -2.0} {
			steps = append(steps, Sample{StickX: math32.Cos(theta0 + off), StickY: math32.Sin(theta0 + off)})
		}
		steps = append(steps, Sample{StickX: x0, StickY: y0})

		for _, s := range steps {
			if err := Apply(&h, Modifiers{}, Modifiers{}, s, place); err != nil {
				t.Fatal(err)
			}
		}
		if !near(h.Color, ref) {
			t.Errorf("θ0=%v: color after return = %v, want %v", theta0, h.Color, ref)
		}
	}
}

func TestApplyDeadzoneEndsGesture(t *testing.T) {
	h := world.NewHand(xr.HandLeft)
	place := recordPlacer(new([]placement))
	if err := Apply(&h, Modifiers{}, Modifiers{}, Sample{StickX: 1, Click: pressed(1)}, place); err != nil {
		t.Fatal(err)
	}
	if err := Apply(&h, Modifiers{}, Modifiers{}, Sample{StickX: 0.1}, place); err != nil {
		t.Fatal(err)
	}
	if _, ok := h.ActiveGesture(); ok {
		t.Fatal("gesture survived a return to the deadzone")
	}
}

func TestApplyModifierAxes(t *testing.T) {
	tests := []struct {
		name string
		mods Modifiers
		want [3]bool
	}{
		{"neither", Modifiers{}, [3]bool{true, true, true}},
		{"xa", Modifiers{XA: true}, [3]bool{true, false, false}},
		{"yb", Modifiers{YB: true}, [3]bool{false, true, false}},
		{"both", Modifiers{XA: true, YB: true}, [3]bool{false, false, true}},
	}
	for _, tt := range tests {
		h := world.NewHand(xr.HandLeft)
		place := recordPlacer(new([]placement))
		for i := 0; i < 100; i++ {
			if err := Apply(&h, tt.mods, Modifiers{}, Sample{Trigger: 1}, place); err != nil {
				t.Fatal(err)
			}
		}
		for axis := 0; axis < 3; axis++ {
			changed := h.Scale[axis] != 1
			if changed != tt.want[axis] {
				t.Errorf("%s: axis %d changed=%v (scale %v)", tt.name, axis, changed, h.Scale)
			}
		}
	}
}

func TestApplyToggleNeedsSiblingChord(t *testing.T) {
	place := recordPlacer(new([]placement))
	tests := []struct {
		name    string
		own     Modifiers
		sibling Modifiers
		toggled bool
	}{
		{"chord", Modifiers{YB: true, YBPressed: true}, Modifiers{XA: true}, true},
		{"yb held without edge", Modifiers{YB: true}, Modifiers{XA: true}, false},
		{"no sibling xa", Modifiers{YB: true, YBPressed: true}, Modifiers{}, false},
		{"own xa only", Modifiers{XA: true, YB: true, YBPressed: true}, Modifiers{YB: true}, false},
	}
	for _, tt := range tests {
		h := world.NewHand(xr.HandRight)
		if err := Apply(&h, tt.own, tt.sibling, Sample{}, place); err != nil {
			t.Fatal(err)
		}
		if got := h.Type == world.Filled; got != tt.toggled {
			t.Errorf("%s: toggled=%v", tt.name, got)
		}
	}
}

func TestScaleClamps(t *testing.T) {
	s := mgl32.Vec3{1, 1, 1}
	for i := 0; i < 5000; i++ {
		Grow(&s, AxesAll, 1)
		for axis := 0; axis < 3; axis++ {
			if s[axis] > world.MaxScale {
				t.Fatalf("tick %d: axis %d at %v", i, axis, s[axis])
			}
		}
	}
	if s != (mgl32.Vec3{world.MaxScale, world.MaxScale, world.MaxScale}) {
		t.Fatalf("scale after growing = %v", s)
	}
	if Grow(&s, AxesAll, 1) {
		t.Error("grow ran at the maximum")
	}

	for i := 0; i < 5000; i++ {
		Shrink(&s, AxesAll, 1)
		for axis := 0; axis < 3; axis++ {
			if s[axis] < world.MinScale {
				t.Fatalf("tick %d: axis %d at %v", i, axis, s[axis])
			}
		}
	}
	if s != (mgl32.Vec3{world.MinScale, world.MinScale, world.MinScale}) {
		t.Fatalf("scale after shrinking = %v", s)
	}
	if Shrink(&s, AxisY, 1) {
		t.Error("shrink ran at the minimum")
	}
}

func TestScaleZeroLevelIsNoop(t *testing.T) {
	s := mgl32.Vec3{2, 2, 2}
	if Grow(&s, AxesAll, 0) || Shrink(&s, AxesAll, 0) {
		t.Fatal("zero level reported a change")
	}
	if s != (mgl32.Vec3{2, 2, 2}) {
		t.Fatalf("scale = %v", s)
	}
}

func TestScaleStep(t *testing.T) {
	if got := ScaleStep(1); math32.Abs(got-0.0189) > 1e-6 {
		t.Fatalf("ScaleStep(1) = %v", got)
	}
	if got := ScaleStep(0.5); math32.Abs(got-0.00945) > 1e-6 {
		t.Fatalf("ScaleStep(0.5) = %v", got)
	}
}

type actionKey struct {
	action xr.Action
	hand   xr.Hand
}

// fakeInput serves fixed action values and records locate calls.
type fakeInput struct {
	syncs   int
	syncErr error
	bools   map[actionKey]xr.BoolState
	floats  map[actionKey]xr.FloatState
	loc     xr.Location
	located []xr.Time
}

func newFakeInput() *fakeInput {
	return &fakeInput{
		bools:  map[actionKey]xr.BoolState{},
		floats: map[actionKey]xr.FloatState{},
		loc: xr.Location{
			Pose:             xr.Pose{Position: mgl32.Vec3{0.1, 1.2, -0.3}, Orientation: mgl32.QuatIdent()},
			PositionValid:    true,
			OrientationValid: true,
		},
	}
}

func (f *fakeInput) SyncActions() error {
	f.syncs++
	return f.syncErr
}

func (f *fakeInput) BoolAction(a xr.Action, h xr.Hand) (xr.BoolState, error) {
	return f.bools[actionKey{a, h}], nil
}

func (f *fakeInput) FloatAction(a xr.Action, h xr.Hand) (xr.FloatState, error) {
	return f.floats[actionKey{a, h}], nil
}

func (f *fakeInput) LocateSpace(space, base xr.Space, t xr.Time) (xr.Location, error) {
	f.located = append(f.located, t)
	return f.loc, nil
}

func setupEngine(t *testing.T) (*Engine, *fakeInput, *world.World) {
	t.Helper()
	in := newFakeInput()
	w := world.New()
	return New(in, in, 1, w, slog.New(slog.DiscardHandler)), in, w
}

func TestEngineDeadzoneTicksLeaveWorldUntouched(t *testing.T) {
	e, in, w := setupEngine(t)
	for _, h := range xr.Hands {
		in.floats[actionKey{xr.ActionThumbstickX, h}] = xr.FloatState{Current: 0.1}
	}
	before := w.Hands
	for i := 0; i < 10; i++ {
		if err := e.Poll(); err != nil {
			t.Fatal(err)
		}
	}
	if w.Len() != 0 {
		t.Fatalf("world has %d cubes", w.Len())
	}
	if w.Hands != before {
		t.Fatalf("hands changed: %+v", w.Hands)
	}
	if in.syncs != 10 {
		t.Fatalf("synced %d times", in.syncs)
	}
}

func TestEnginePlacesAtClickTime(t *testing.T) {
	e, in, w := setupEngine(t)
	in.bools[actionKey{xr.ActionPlace, xr.HandLeft}] = pressed(777)
	w.Hand(xr.HandLeft).Type = world.Filled

	if err := e.Poll(); err != nil {
		t.Fatal(err)
	}
	if w.Len() != 1 {
		t.Fatalf("world has %d cubes", w.Len())
	}
	if len(in.located) != 1 || in.located[0] != 777 {
		t.Fatalf("located at %v", in.located)
	}
	c := w.Cubes()[0]
	if c.Translation != in.loc.Pose.Position || c.Type != world.Filled {
		t.Fatalf("cube = %+v", c)
	}
}

func TestEngineSkipsUntrackedPlacement(t *testing.T) {
	e, in, w := setupEngine(t)
	in.loc.PositionValid = false
	in.bools[actionKey{xr.ActionPlace, xr.HandRight}] = pressed(9)
	if err := e.Poll(); err != nil {
		t.Fatal(err)
	}
	if w.Len() != 0 {
		t.Fatal("placed a cube from an untracked pose")
	}
}

func TestEngineSyncFailureIsCommandError(t *testing.T) {
	e, in, _ := setupEngine(t)
	in.syncErr = errors.New("session lost")
	err := e.Poll()
	var ce *xr.CommandError
	if !errors.As(err, &ce) || ce.Op != "Syncing actions" {
		t.Fatalf("err = %v", err)
	}
}

func TestEngineModifiersCapturedBeforeMutation(t *testing.T) {
	e, in, w := setupEngine(t)
	// Left holds XA; right presses YB: the chord toggles the right hand only.
	in.bools[actionKey{xr.ActionModifierXA, xr.HandLeft}] = xr.BoolState{Current: true}
	in.bools[actionKey{xr.ActionModifierYB, xr.HandRight}] = pressed(4)
	if err := e.Poll(); err != nil {
		t.Fatal(err)
	}
	if w.Hand(xr.HandRight).Type != world.Filled {
		t.Error("right hand not toggled")
	}
	if w.Hand(xr.HandLeft).Type != world.Empty {
		t.Error("left hand toggled")
	}
}
