// Package desktop is a windowed stand-in for a headset runtime. Both eye views are
// rendered into off-screen textures and shown side by side; a gamepad, or the keyboard
// when none is connected, plays the two controllers.
package desktop

import (
	"context"
	"fmt"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"

	"cubesculpt/internal/xr"
)

const (
	windowTitle = "cubesculpt"
	// halfFovY is the vertical half-angle of each eye.
	halfFovY = 0.785
	// idleWait paces the loop while no frames are being rendered.
	idleWait = 1.0 / 30
)

var background = rl.NewColor(20, 22, 28, 255)

// Options sizes the window and the simulated headset.
type Options struct {
	Width     int
	Height    int
	FPS       int
	EyeWidth  int
	EyeHeight int
	IPD       float32
	ShowFPS   bool
	ShowLog   bool
	// LogLines feeds the on-screen log; nil hides it.
	LogLines func() []string
}

type actionKey struct {
	action xr.Action
	hand   xr.Hand
}

// Runtime implements xr.Runtime on a raylib window.
type Runtime struct {
	ctx  context.Context
	opts Options
	log  *slog.Logger

	queue      []xr.Event
	drained    bool
	presented  bool
	created    bool
	began      bool
	stopping   bool
	lost       bool
	focused    bool
	attached   bool
	reference  xr.Space
	handSpaces map[xr.Space]xr.Hand

	head    head
	raw     [xr.HandCount]controller
	bools   map[actionKey]xr.BoolState
	floats  map[actionKey]xr.FloatState
	period  float64
	next    uint64
	dueAt   float64
	display xr.Time

	swapchains map[xr.Swapchain]rl.RenderTexture2D
	acquired   map[xr.Swapchain]bool
	meshes     map[xr.Mesh]mesh
	material   rl.Material
	bound      bool
	color      rl.Color

	overlay *overlay
}

// New opens the window. ctx cancellation is reported to the session as instance loss.
func New(ctx context.Context, opts Options, log *slog.Logger) (*Runtime, error) {
	if opts.FPS <= 0 {
		opts.FPS = 90
	}
	rl.SetTraceLogLevel(rl.LogWarning)
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(opts.Width), int32(opts.Height), windowTitle)
	if !rl.IsWindowReady() {
		return nil, fmt.Errorf("creating a window: raylib window not ready")
	}
	gp := "keyboard"
	if rl.IsGamepadAvailable(gamepad) {
		gp = rl.GetGamepadName(gamepad)
	}
	log.Info("window created", "width", opts.Width, "height", opts.Height, "controllers", gp)

	return &Runtime{
		ctx:        ctx,
		opts:       opts,
		log:        log,
		drained:    true,
		handSpaces: map[xr.Space]xr.Hand{},
		head:       newHead(),
		bools:      map[actionKey]xr.BoolState{},
		floats:     map[actionKey]xr.FloatState{},
		period:     1 / float64(opts.FPS),
		swapchains: map[xr.Swapchain]rl.RenderTexture2D{},
		acquired:   map[xr.Swapchain]bool{},
		meshes:     map[xr.Mesh]mesh{},
		material:   rl.LoadMaterialDefault(),
		overlay:    newOverlay(opts),
	}, nil
}

// Close releases what the session left behind and closes the window.
func (r *Runtime) Close() error {
	for sc, tex := range r.swapchains {
		rl.UnloadRenderTexture(tex)
		delete(r.swapchains, sc)
	}
	for h, m := range r.meshes {
		if m.gpu != nil {
			rl.UnloadMesh(m.gpu)
		}
		delete(r.meshes, h)
	}
	rl.UnloadMaterial(r.material)
	rl.CloseWindow()
	return nil
}

// Quit reports whether the user asked to close the window.
func (r *Runtime) Quit() bool {
	return r.stopping
}

func (r *Runtime) now() xr.Time {
	return xr.Time(rl.GetTime() * 1e9)
}

func (r *Runtime) push(ev xr.Event) {
	r.queue = append(r.queue, ev)
}

func (r *Runtime) pushState(s xr.SessionState) {
	r.push(xr.StateChanged(s, r.now()))
}

// PollEvent starts a new tick on the first poll after the queue ran dry: it services the
// window, then turns window and signal changes into runtime events.
func (r *Runtime) PollEvent() (xr.Event, bool) {
	if r.drained {
		r.drained = false
		r.tick()
	}
	if len(r.queue) == 0 {
		r.drained = true
		return xr.Event{}, false
	}
	ev := r.queue[0]
	r.queue = r.queue[1:]
	return ev, true
}

func (r *Runtime) tick() {
	if !r.presented {
		// Nothing went through EndFrame since the last tick: keep the window alive.
		r.present(nil)
		rl.WaitTime(idleWait)
	}
	r.presented = false

	if !r.lost && r.ctx.Err() != nil {
		r.lost = true
		r.push(xr.Event{Type: xr.EventInstanceLossPending, Time: r.now()})
		return
	}
	if r.began && !r.stopping && rl.WindowShouldClose() {
		r.stopping = true
		r.pushState(xr.StateStopping)
		return
	}
	if r.began && !r.stopping {
		if f := rl.IsWindowFocused(); f != r.focused {
			r.focused = f
			if f {
				r.pushState(xr.StateFocused)
			} else {
				r.pushState(xr.StateVisible)
			}
		}
	}
}

func (r *Runtime) BeginSession() error {
	if !r.created || r.began {
		return fmt.Errorf("session not ready")
	}
	r.began = true
	r.focused = true
	r.pushState(xr.StateSynchronized)
	r.pushState(xr.StateVisible)
	r.pushState(xr.StateFocused)
	return nil
}

func (r *Runtime) EndSession() error {
	if !r.began {
		return fmt.Errorf("session not running")
	}
	r.began = false
	r.pushState(xr.StateIdle)
	r.pushState(xr.StateExiting)
	return nil
}

func (r *Runtime) SyncActions() error {
	if !r.attached {
		return fmt.Errorf("action set not attached")
	}
	t := r.now()
	for _, h := range xr.Hands {
		if rl.IsGamepadAvailable(gamepad) {
			r.raw[h] = readPad(padLayouts[h])
		} else {
			r.raw[h] = readKeys(keyLayouts[h])
		}
		c := r.raw[h]
		r.syncBool(actionKey{xr.ActionPlace, h}, c.click, t)
		r.syncBool(actionKey{xr.ActionModifierXA, h}, c.xa, t)
		r.syncBool(actionKey{xr.ActionModifierYB, h}, c.yb, t)
		r.syncFloat(actionKey{xr.ActionThumbstickX, h}, c.stickX, t)
		r.syncFloat(actionKey{xr.ActionThumbstickY, h}, c.stickY, t)
		r.syncFloat(actionKey{xr.ActionExpand, h}, c.trigger, t)
		r.syncFloat(actionKey{xr.ActionShrink, h}, c.grip, t)
	}
	return nil
}

func (r *Runtime) syncBool(k actionKey, v bool, t xr.Time) {
	prev := r.bools[k]
	next := xr.BoolState{Current: v, LastChangeTime: prev.LastChangeTime}
	if v != prev.Current {
		next.Changed, next.LastChangeTime = true, t
	}
	r.bools[k] = next
}

func (r *Runtime) syncFloat(k actionKey, v float32, t xr.Time) {
	prev := r.floats[k]
	next := xr.FloatState{Current: v, LastChangeTime: prev.LastChangeTime}
	if v != prev.Current {
		next.Changed, next.LastChangeTime = true, t
	}
	r.floats[k] = next
}

func (r *Runtime) BoolAction(a xr.Action, h xr.Hand) (xr.BoolState, error) {
	return r.bools[actionKey{a, h}], nil
}

func (r *Runtime) FloatAction(a xr.Action, h xr.Hand) (xr.FloatState, error) {
	return r.floats[actionKey{a, h}], nil
}

// LocateSpace ignores t: the simulated head only moves between frames.
func (r *Runtime) LocateSpace(space, base xr.Space, t xr.Time) (xr.Location, error) {
	if base != r.reference {
		return xr.Location{}, fmt.Errorf("unknown base space %d", base)
	}
	if space == r.reference {
		return xr.Location{Pose: xr.IdentityPose(), PositionValid: true, OrientationValid: true}, nil
	}
	h, ok := r.handSpaces[space]
	if !ok {
		return xr.Location{}, fmt.Errorf("unknown space %d", space)
	}
	return xr.Location{
		Pose:             offsetPose(r.head.pose(), handOffsets[h]),
		PositionValid:    true,
		OrientationValid: true,
	}, nil
}

// WaitFrame sleeps until the next display interval and moves the simulated head.
func (r *Runtime) WaitFrame() (xr.FrameState, error) {
	if !r.began {
		return xr.FrameState{}, fmt.Errorf("session not running")
	}
	now := rl.GetTime()
	if r.dueAt > now {
		rl.WaitTime(r.dueAt - now)
		now = r.dueAt
	}
	r.dueAt = now + r.period
	r.head.update(float32(r.period))
	r.display = xr.Time(r.dueAt * 1e9)
	return xr.FrameState{PredictedDisplayTime: r.display, ShouldRender: !rl.IsWindowMinimized()}, nil
}

func (r *Runtime) BeginFrame() error {
	return nil
}

func (r *Runtime) LocateViews(base xr.Space, t xr.Time) ([]xr.View, error) {
	if base != r.reference {
		return nil, fmt.Errorf("unknown base space %d", base)
	}
	fov := eyeFov(halfFovY, r.opts.EyeWidth, r.opts.EyeHeight)
	p := r.head.pose()
	half := r.opts.IPD / 2
	return []xr.View{
		{Pose: offsetPose(p, mgl32.Vec3{-half, 0, 0}), Fov: fov},
		{Pose: offsetPose(p, mgl32.Vec3{half, 0, 0}), Fov: fov},
	}, nil
}

func (r *Runtime) AcquireImage(sc xr.Swapchain) (int, error) {
	if _, ok := r.swapchains[sc]; !ok {
		return 0, fmt.Errorf("unknown swapchain %d", sc)
	}
	if r.acquired[sc] {
		return 0, fmt.Errorf("swapchain %d already acquired", sc)
	}
	r.acquired[sc] = true
	return 0, nil
}

func (r *Runtime) ReleaseImage(sc xr.Swapchain) error {
	if !r.acquired[sc] {
		return fmt.Errorf("swapchain %d has no acquired image", sc)
	}
	delete(r.acquired, sc)
	return nil
}

// EndFrame shows every submitted view side by side on the window.
func (r *Runtime) EndFrame(t xr.Time, layers []xr.ProjectionLayer) error {
	r.present(layers)
	r.presented = true
	return nil
}

func (r *Runtime) present(layers []xr.ProjectionLayer) {
	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)
	screenW, screenH := rl.GetScreenWidth(), rl.GetScreenHeight()
	for _, layer := range layers {
		for i, v := range layer.Views {
			tex, ok := r.swapchains[v.Swapchain]
			if !ok {
				continue
			}
			dst := eyeRect(i, len(layer.Views), screenW, screenH, v.Width, v.Height)
			// Render textures are stored upside down.
			src := rl.NewRectangle(0, 0, float32(v.Width), -float32(v.Height))
			rl.DrawTexturePro(tex.Texture, src, dst, rl.NewVector2(0, 0), 0, rl.White)
		}
	}
	r.overlay.draw(r.began, len(layers) > 0)
	rl.EndDrawing()
}

// eyeRect fits view i of n into its column of the window, keeping the aspect ratio.
func eyeRect(i, n, screenW, screenH, w, h int) rl.Rectangle {
	colW := float32(screenW) / float32(n)
	scale := mgl32.Clamp(float32(screenH)/float32(h), 0, colW/float32(w))
	dw, dh := float32(w)*scale, float32(h)*scale
	x := colW*float32(i) + (colW-dw)/2
	y := (float32(screenH) - dh) / 2
	return rl.NewRectangle(x, y, dw, dh)
}

func (r *Runtime) CreateSession() error {
	if r.created {
		return fmt.Errorf("session already created")
	}
	r.created = true
	r.pushState(xr.StateIdle)
	r.pushState(xr.StateReady)
	return nil
}

func (r *Runtime) DestroySession() error {
	r.created = false
	r.began = false
	return nil
}

func (r *Runtime) CreateReferenceSpace() (xr.Space, error) {
	r.next++
	r.reference = xr.Space(r.next)
	return r.reference, nil
}

func (r *Runtime) ReferenceBounds() (width, depth float32, ok bool) {
	return 0, 0, false
}

func (r *Runtime) AttachActions() error {
	r.attached = true
	return nil
}

func (r *Runtime) DetachActions() error {
	r.attached = false
	return nil
}

func (r *Runtime) CreateHandSpace(h xr.Hand) (xr.Space, error) {
	r.next++
	s := xr.Space(r.next)
	r.handSpaces[s] = h
	return s, nil
}

func (r *Runtime) DestroySpace(s xr.Space) error {
	delete(r.handSpaces, s)
	return nil
}

func (r *Runtime) ViewConfigurations() ([]xr.ViewConfig, error) {
	cfg := xr.ViewConfig{Width: r.opts.EyeWidth, Height: r.opts.EyeHeight, SampleCount: 1}
	return []xr.ViewConfig{cfg, cfg}, nil
}

func (r *Runtime) CreateSwapchain(cfg xr.ViewConfig) (xr.Swapchain, error) {
	tex := rl.LoadRenderTexture(int32(cfg.Width), int32(cfg.Height))
	if !rl.IsRenderTextureValid(tex) {
		return 0, fmt.Errorf("render texture %dx%d not created", cfg.Width, cfg.Height)
	}
	r.next++
	sc := xr.Swapchain(r.next)
	r.swapchains[sc] = tex
	return sc, nil
}

func (r *Runtime) DestroySwapchain(sc xr.Swapchain) error {
	tex, ok := r.swapchains[sc]
	if !ok {
		return fmt.Errorf("unknown swapchain %d", sc)
	}
	rl.UnloadRenderTexture(tex)
	delete(r.swapchains, sc)
	delete(r.acquired, sc)
	return nil
}

var _ xr.Runtime = (*Runtime)(nil)
