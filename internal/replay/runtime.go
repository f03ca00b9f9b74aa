// Package replay is a headless runtime that plays a Script tick by tick. It implements
// every xr contract, records what the session did with it, and backs both the replay
// command and the package tests.
package replay

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"cubesculpt/internal/xr"
)

// Options tunes the runtime.
type Options struct {
	// Hz is the nominal display rate used for timestamps. Zero means 90.
	Hz float64
	// Realtime makes WaitFrame sleep one display period.
	Realtime bool
	// Views is the number of view configurations reported. Zero means 2.
	Views      int
	ViewWidth  int
	ViewHeight int
	// Fail makes the named method return the given error, e.g. "CreateSwapchain".
	Fail map[string]error
}

func (o Options) withDefaults() Options {
	if o.Hz <= 0 {
		o.Hz = 90
	}
	if o.Views == 0 {
		o.Views = 2
	}
	if o.ViewWidth == 0 {
		o.ViewWidth = 1024
	}
	if o.ViewHeight == 0 {
		o.ViewHeight = 1024
	}
	return o
}

// Resting hand poses in the stage space, roughly where hands sit in front of a standing user.
var restingPositions = [xr.HandCount]mgl32.Vec3{
	{-0.2, 1.2, -0.4},
	{0.2, 1.2, -0.4},
}

const (
	headHeight   = 1.6
	halfIPD      = 0.032
	halfFov      = 0.785
	imagesPerEye = 3
)

// Locate is one recorded LocateSpace call.
type Locate struct {
	Space xr.Space
	Time  xr.Time
}

// Draw is one recorded DrawIndexed call with the state it was issued under.
type Draw struct {
	Swapchain xr.Swapchain
	Image     int
	Mesh      xr.Mesh
	Topology  xr.Topology
	First     int
	Count     int
	MVP       mgl32.Mat4
	Color     mgl32.Vec3
}

// Stats is what the session did with the runtime so far.
type Stats struct {
	Begins      int
	Ends        int
	Syncs       int
	Frames      int
	EndedFrames int
	EmptyFrames int
	Layers      []xr.ProjectionLayer
	Locates     []Locate
	// Draws holds the draw calls of the most recent frame only.
	Draws []Draw
	// BadDraws counts draws outside a bound target or past the end of the mesh.
	BadDraws int
}

type actionKey struct {
	action xr.Action
	hand   xr.Hand
}

type target struct {
	swapchain xr.Swapchain
	image     int
}

// Runtime is a scripted xr.Runtime.
type Runtime struct {
	log    *slog.Logger
	opts   Options
	steps  []Step
	cursor int
	period xr.Time
	now    xr.Time

	queue   []xr.Event
	drained bool
	created bool
	began   bool
	stopped bool

	inputs       [xr.HandCount]HandInput
	shouldRender bool
	bools        map[actionKey]xr.BoolState
	floats       map[actionKey]xr.FloatState

	next       uint64
	reference  xr.Space
	handSpaces map[xr.Space]xr.Hand
	spaces     map[xr.Space]bool
	swapchains map[xr.Swapchain]int
	acquired   map[xr.Swapchain]bool
	meshes     map[xr.Mesh]int
	attached   bool

	waited  bool
	inFrame bool
	bound   *target
	matrix  mgl32.Mat4
	color   mgl32.Vec3
	stats   Stats
}

// New returns a runtime that will play s once the session has begun.
func New(s *Script, opts Options, log *slog.Logger) *Runtime {
	opts = opts.withDefaults()
	r := &Runtime{
		log:          log,
		opts:         opts,
		period:       xr.Time(float64(time.Second) / opts.Hz),
		drained:      true,
		shouldRender: true,
		bools:        map[actionKey]xr.BoolState{},
		floats:       map[actionKey]xr.FloatState{},
		handSpaces:   map[xr.Space]xr.Hand{},
		spaces:       map[xr.Space]bool{},
		swapchains:   map[xr.Swapchain]int{},
		acquired:     map[xr.Swapchain]bool{},
		meshes:       map[xr.Mesh]int{},
	}
	if s != nil {
		for _, st := range s.Steps {
			for i := 0; i < st.repeat(); i++ {
				tick := st
				if i > 0 {
					tick.Events = nil
				}
				r.steps = append(r.steps, tick)
			}
		}
	}
	return r
}

// Stats returns a copy of the recorded activity.
func (r *Runtime) Stats() Stats {
	s := r.stats
	s.Layers = append([]xr.ProjectionLayer(nil), s.Layers...)
	s.Locates = append([]Locate(nil), s.Locates...)
	s.Draws = append([]Draw(nil), s.Draws...)
	return s
}

// Done reports whether every scripted tick has been played.
func (r *Runtime) Done() bool {
	return r.cursor >= len(r.steps)
}

// Now returns the current runtime time.
func (r *Runtime) Now() xr.Time {
	return r.now
}

// Push queues an event for the next poll.
func (r *Runtime) Push(ev xr.Event) {
	r.queue = append(r.queue, ev)
}

// Leaks lists every resource created and not yet destroyed.
func (r *Runtime) Leaks() []string {
	var out []string
	if r.created {
		out = append(out, "session")
	}
	if r.attached {
		out = append(out, "actions")
	}
	for s := range r.spaces {
		out = append(out, fmt.Sprintf("space %d", s))
	}
	for sc := range r.swapchains {
		out = append(out, fmt.Sprintf("swapchain %d", sc))
	}
	for m := range r.meshes {
		out = append(out, fmt.Sprintf("mesh %d", m))
	}
	sort.Strings(out)
	return out
}

func (r *Runtime) fail(method string) error {
	if err, ok := r.opts.Fail[method]; ok {
		return err
	}
	return nil
}

func (r *Runtime) handle() uint64 {
	r.next++
	return r.next
}

func (r *Runtime) queueState(s xr.SessionState) {
	r.log.Debug("replay event", "state", s, "time", r.now)
	r.queue = append(r.queue, xr.StateChanged(s, r.now))
}

// PollEvent starts a new tick on the first poll after the queue ran dry.
func (r *Runtime) PollEvent() (xr.Event, bool) {
	if r.drained {
		r.drained = false
		r.advance()
	}
	if len(r.queue) == 0 {
		r.drained = true
		return xr.Event{}, false
	}
	ev := r.queue[0]
	r.queue = r.queue[1:]
	return ev, true
}

func (r *Runtime) advance() {
	r.now += r.period
	if !r.began {
		return
	}
	if r.cursor >= len(r.steps) {
		if !r.stopped {
			r.stopped = true
			r.log.Info("replay script finished", "ticks", len(r.steps))
			r.queueState(xr.StateStopping)
		}
		return
	}

	st := r.steps[r.cursor]
	r.cursor++
	for _, name := range st.Events {
		ev, err := xr.ParseEvent(name)
		if err != nil {
			// Parse already validated the names.
			continue
		}
		ev.Time = r.now
		r.queue = append(r.queue, ev)
	}
	r.shouldRender = st.ShouldRender == nil || *st.ShouldRender
	for _, h := range xr.Hands {
		if in := st.hand(h); in != nil {
			r.inputs[h] = *in
		}
	}
}

func (r *Runtime) BeginSession() error {
	if err := r.fail("BeginSession"); err != nil {
		return err
	}
	if !r.created {
		return fmt.Errorf("no session")
	}
	if r.began {
		return fmt.Errorf("session already running")
	}
	r.began = true
	r.stats.Begins++
	r.queueState(xr.StateSynchronized)
	r.queueState(xr.StateVisible)
	r.queueState(xr.StateFocused)
	return nil
}

func (r *Runtime) EndSession() error {
	if err := r.fail("EndSession"); err != nil {
		return err
	}
	if !r.began {
		return fmt.Errorf("session not running")
	}
	r.began = false
	r.stats.Ends++
	r.queueState(xr.StateIdle)
	r.queueState(xr.StateExiting)
	return nil
}

func (r *Runtime) SyncActions() error {
	if err := r.fail("SyncActions"); err != nil {
		return err
	}
	if !r.attached {
		return fmt.Errorf("action set not attached")
	}
	r.stats.Syncs++
	for _, h := range xr.Hands {
		in := r.inputs[h]
		r.syncBool(xr.ActionPlace, h, in.Click)
		r.syncBool(xr.ActionModifierXA, h, in.XA)
		r.syncBool(xr.ActionModifierYB, h, in.YB)
		r.syncFloat(xr.ActionThumbstickX, h, in.Stick[0])
		r.syncFloat(xr.ActionThumbstickY, h, in.Stick[1])
		r.syncFloat(xr.ActionExpand, h, in.Trigger)
		r.syncFloat(xr.ActionShrink, h, in.Grip)
	}
	return nil
}

func (r *Runtime) syncBool(a xr.Action, h xr.Hand, v bool) {
	k := actionKey{a, h}
	prev := r.bools[k]
	next := xr.BoolState{Current: v, LastChangeTime: prev.LastChangeTime}
	if v != prev.Current {
		next.Changed = true
		next.LastChangeTime = r.now
	}
	r.bools[k] = next
}

func (r *Runtime) syncFloat(a xr.Action, h xr.Hand, v float32) {
	k := actionKey{a, h}
	prev := r.floats[k]
	next := xr.FloatState{Current: v, LastChangeTime: prev.LastChangeTime}
	if v != prev.Current {
		next.Changed = true
		next.LastChangeTime = r.now
	}
	r.floats[k] = next
}

func (r *Runtime) BoolAction(a xr.Action, h xr.Hand) (xr.BoolState, error) {
	if !r.attached {
		return xr.BoolState{}, fmt.Errorf("action set not attached")
	}
	switch a {
	case xr.ActionPlace, xr.ActionModifierXA, xr.ActionModifierYB:
		return r.bools[actionKey{a, h}], nil
	}
	return xr.BoolState{}, fmt.Errorf("%v is not a boolean action", a)
}

func (r *Runtime) FloatAction(a xr.Action, h xr.Hand) (xr.FloatState, error) {
	if !r.attached {
		return xr.FloatState{}, fmt.Errorf("action set not attached")
	}
	switch a {
	case xr.ActionThumbstickX, xr.ActionThumbstickY, xr.ActionExpand, xr.ActionShrink:
		return r.floats[actionKey{a, h}], nil
	}
	return xr.FloatState{}, fmt.Errorf("%v is not a float action", a)
}

func (r *Runtime) LocateSpace(space, base xr.Space, t xr.Time) (xr.Location, error) {
	if err := r.fail("LocateSpace"); err != nil {
		return xr.Location{}, err
	}
	if base != r.reference || !r.spaces[base] {
		return xr.Location{}, fmt.Errorf("unknown base space %d", base)
	}
	r.stats.Locates = append(r.stats.Locates, Locate{space, t})
	if space == r.reference {
		return xr.Location{Pose: xr.IdentityPose(), PositionValid: true, OrientationValid: true}, nil
	}
	h, ok := r.handSpaces[space]
	if !ok {
		return xr.Location{}, fmt.Errorf("unknown space %d", space)
	}
	return r.handLocation(h), nil
}

func (r *Runtime) handLocation(h xr.Hand) xr.Location {
	in := r.inputs[h]
	pose := xr.Pose{Position: restingPositions[h], Orientation: mgl32.QuatIdent()}
	if in.Position != nil {
		pose.Position = mgl32.Vec3(*in.Position)
	}
	if in.Orientation != nil {
		pose.Orientation = quat(*in.Orientation).Normalize()
	}
	tracked := in.Tracked == nil || *in.Tracked
	return xr.Location{Pose: pose, PositionValid: tracked, OrientationValid: tracked}
}

func (r *Runtime) WaitFrame() (xr.FrameState, error) {
	if err := r.fail("WaitFrame"); err != nil {
		return xr.FrameState{}, err
	}
	if !r.began {
		return xr.FrameState{}, fmt.Errorf("session not running")
	}
	if r.opts.Realtime {
		time.Sleep(time.Duration(r.period))
	}
	r.waited = true
	r.stats.Frames++
	return xr.FrameState{PredictedDisplayTime: r.now, ShouldRender: r.shouldRender}, nil
}

func (r *Runtime) BeginFrame() error {
	if err := r.fail("BeginFrame"); err != nil {
		return err
	}
	if !r.waited {
		return fmt.Errorf("frame begun without a wait")
	}
	r.waited = false
	r.inFrame = true
	r.stats.Draws = r.stats.Draws[:0]
	return nil
}

func (r *Runtime) LocateViews(base xr.Space, t xr.Time) ([]xr.View, error) {
	if err := r.fail("LocateViews"); err != nil {
		return nil, err
	}
	if base != r.reference {
		return nil, fmt.Errorf("unknown base space %d", base)
	}
	fov := xr.Fov{AngleLeft: -halfFov, AngleRight: halfFov, AngleUp: halfFov, AngleDown: -halfFov}
	views := make([]xr.View, r.opts.Views)
	for i := range views {
		x := float32(0)
		switch i {
		case 0:
			x = -halfIPD
		case 1:
			x = halfIPD
		}
		views[i] = xr.View{
			Pose: xr.Pose{Position: mgl32.Vec3{x, headHeight, 0}, Orientation: mgl32.QuatIdent()},
			Fov:  fov,
		}
	}
	return views, nil
}

func (r *Runtime) AcquireImage(sc xr.Swapchain) (int, error) {
	if err := r.fail("AcquireImage"); err != nil {
		return 0, err
	}
	n, ok := r.swapchains[sc]
	if !ok {
		return 0, fmt.Errorf("unknown swapchain %d", sc)
	}
	if r.acquired[sc] {
		return 0, fmt.Errorf("swapchain %d already acquired", sc)
	}
	r.acquired[sc] = true
	r.swapchains[sc] = n + 1
	return n % imagesPerEye, nil
}

func (r *Runtime) ReleaseImage(sc xr.Swapchain) error {
	if err := r.fail("ReleaseImage"); err != nil {
		return err
	}
	if !r.acquired[sc] {
		return fmt.Errorf("swapchain %d has no acquired image", sc)
	}
	delete(r.acquired, sc)
	return nil
}

func (r *Runtime) EndFrame(t xr.Time, layers []xr.ProjectionLayer) error {
	if err := r.fail("EndFrame"); err != nil {
		return err
	}
	if !r.inFrame {
		return fmt.Errorf("frame ended without a begin")
	}
	if len(r.acquired) > 0 {
		return fmt.Errorf("frame ended with %d images still acquired", len(r.acquired))
	}
	r.inFrame = false
	r.stats.EndedFrames++
	if len(layers) == 0 {
		r.stats.EmptyFrames++
	}
	r.stats.Layers = append(r.stats.Layers, layers...)
	return nil
}

func (r *Runtime) UploadMesh(vertices []float32, indices []uint32) (xr.Mesh, error) {
	if err := r.fail("UploadMesh"); err != nil {
		return 0, err
	}
	if len(vertices)%3 != 0 {
		return 0, fmt.Errorf("vertex data is not xyz triples")
	}
	for _, i := range indices {
		if int(i) >= len(vertices)/3 {
			return 0, fmt.Errorf("index %d past %d vertices", i, len(vertices)/3)
		}
	}
	m := xr.Mesh(r.handle())
	r.meshes[m] = len(indices)
	return m, nil
}

func (r *Runtime) ReleaseMesh(m xr.Mesh) error {
	if _, ok := r.meshes[m]; !ok {
		return fmt.Errorf("unknown mesh %d", m)
	}
	delete(r.meshes, m)
	return nil
}

func (r *Runtime) BindTarget(sc xr.Swapchain, image int) {
	r.bound = &target{sc, image}
}

func (r *Runtime) UnbindTarget() {
	r.bound = nil
}

func (r *Runtime) Viewport(width, height int) {}

func (r *Runtime) Clear() {}

func (r *Runtime) SetMatrix(mvp mgl32.Mat4) {
	r.matrix = mvp
}

func (r *Runtime) SetColor(rgb mgl32.Vec3) {
	r.color = rgb
}

func (r *Runtime) DrawIndexed(m xr.Mesh, topo xr.Topology, first, count int) {
	n, ok := r.meshes[m]
	if r.bound == nil || !ok || first < 0 || first+count > n {
		r.stats.BadDraws++
		return
	}
	r.stats.Draws = append(r.stats.Draws, Draw{
		Swapchain: r.bound.swapchain,
		Image:     r.bound.image,
		Mesh:      m,
		Topology:  topo,
		First:     first,
		Count:     count,
		MVP:       r.matrix,
		Color:     r.color,
	})
}

func (r *Runtime) CreateSession() error {
	if err := r.fail("CreateSession"); err != nil {
		return err
	}
	if r.created {
		return fmt.Errorf("session already created")
	}
	r.created = true
	r.queueState(xr.StateIdle)
	r.queueState(xr.StateReady)
	return nil
}

func (r *Runtime) DestroySession() error {
	if !r.created {
		return fmt.Errorf("no session")
	}
	r.created = false
	r.began = false
	return nil
}

func (r *Runtime) CreateReferenceSpace() (xr.Space, error) {
	if err := r.fail("CreateReferenceSpace"); err != nil {
		return 0, err
	}
	s := xr.Space(r.handle())
	r.spaces[s] = true
	r.reference = s
	return s, nil
}

func (r *Runtime) ReferenceBounds() (width, depth float32, ok bool) {
	return 3, 3, true
}

func (r *Runtime) AttachActions() error {
	if err := r.fail("AttachActions"); err != nil {
		return err
	}
	r.attached = true
	return nil
}

func (r *Runtime) DetachActions() error {
	r.attached = false
	return nil
}

func (r *Runtime) CreateHandSpace(h xr.Hand) (xr.Space, error) {
	if err := r.fail("CreateHandSpace"); err != nil {
		return 0, err
	}
	if !r.attached {
		return 0, fmt.Errorf("action set not attached")
	}
	s := xr.Space(r.handle())
	r.spaces[s] = true
	r.handSpaces[s] = h
	return s, nil
}

func (r *Runtime) DestroySpace(s xr.Space) error {
	if !r.spaces[s] {
		return fmt.Errorf("unknown space %d", s)
	}
	delete(r.spaces, s)
	delete(r.handSpaces, s)
	return nil
}

func (r *Runtime) ViewConfigurations() ([]xr.ViewConfig, error) {
	if err := r.fail("ViewConfigurations"); err != nil {
		return nil, err
	}
	out := make([]xr.ViewConfig, r.opts.Views)
	for i := range out {
		out[i] = xr.ViewConfig{Width: r.opts.ViewWidth, Height: r.opts.ViewHeight, SampleCount: 1}
	}
	return out, nil
}

func (r *Runtime) CreateSwapchain(cfg xr.ViewConfig) (xr.Swapchain, error) {
	if err := r.fail("CreateSwapchain"); err != nil {
		return 0, err
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, fmt.Errorf("invalid swapchain size %dx%d", cfg.Width, cfg.Height)
	}
	sc := xr.Swapchain(r.handle())
	r.swapchains[sc] = 0
	return sc, nil
}

func (r *Runtime) DestroySwapchain(sc xr.Swapchain) error {
	if _, ok := r.swapchains[sc]; !ok {
		return fmt.Errorf("unknown swapchain %d", sc)
	}
	delete(r.swapchains, sc)
	delete(r.acquired, sc)
	return nil
}

var _ xr.Runtime = (*Runtime)(nil)
