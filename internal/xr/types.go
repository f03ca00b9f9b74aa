// Package xr describes the runtime a cube sculpting session talks to: lifecycle events,
// session commands, input actions, tracking spaces, swapchains and the frame/draw surfaces.
//
// The package holds contracts and plain data only. Concrete runtimes live in
// internal/desktop (raylib window) and internal/replay (headless, scripted).
package xr

import "github.com/go-gl/mathgl/mgl32"

// Time is a runtime timestamp in nanoseconds.
type Time int64

// Space is an opaque handle to a tracking space owned by the runtime.
type Space uint64

// Swapchain is an opaque handle to a per-eye image chain owned by the runtime.
type Swapchain uint64

// Mesh is an opaque handle to geometry uploaded to the draw surface.
type Mesh uint64

// Hand selects one of the two controllers.
type Hand int

const (
	HandLeft Hand = iota
	HandRight
)

// HandCount is fixed: one manipulator per controller.
const HandCount = 2

// Hands lists both hands in processing order.
var Hands = [HandCount]Hand{HandLeft, HandRight}

// Path returns the top-level user path of the hand.
func (h Hand) Path() string {
	if h == HandLeft {
		return "/user/hand/left"
	}
	return "/user/hand/right"
}

// Sibling returns the other hand.
func (h Hand) Sibling() Hand {
	return (h + 1) % HandCount
}

func (h Hand) String() string {
	if h == HandLeft {
		return "left"
	}
	return "right"
}

// Pose is a rigid transform: orientation then position.
type Pose struct {
	Position    mgl32.Vec3
	Orientation mgl32.Quat
}

// IdentityPose places a space at the origin of its parent with no rotation.
func IdentityPose() Pose {
	return Pose{Orientation: mgl32.QuatIdent()}
}

// Location is the result of locating one space in another.
// PositionValid and OrientationValid mirror the runtime's validity flags.
type Location struct {
	Pose             Pose
	PositionValid    bool
	OrientationValid bool
}

// Valid reports whether both halves of the pose can be trusted.
func (l Location) Valid() bool {
	return l.PositionValid && l.OrientationValid
}

// Fov holds the four half-angles of an eye's frustum in radians.
// Left and Down are usually negative.
type Fov struct {
	AngleLeft  float32
	AngleRight float32
	AngleUp    float32
	AngleDown  float32
}

// View is one located eye for a display time.
type View struct {
	Pose Pose
	Fov  Fov
}

// ViewConfig is the runtime's recommendation for one eye's render target.
type ViewConfig struct {
	Width       int
	Height      int
	SampleCount int
}

// FrameState is returned by the frame wait.
type FrameState struct {
	PredictedDisplayTime Time
	ShouldRender         bool
}

// ProjectionView binds a rendered swapchain image to the eye it was rendered for.
type ProjectionView struct {
	Pose      Pose
	Fov       Fov
	Swapchain Swapchain
	Width     int
	Height    int
}

// ProjectionLayer is the single composition layer submitted per frame.
type ProjectionLayer struct {
	Space Space
	Views []ProjectionView
}

// BoolState is the synced value of a boolean action.
type BoolState struct {
	Current        bool
	Changed        bool
	LastChangeTime Time
}

// Pressed reports a rising edge since the previous sync.
func (s BoolState) Pressed() bool {
	return s.Changed && s.Current
}

// FloatState is the synced value of a float action.
type FloatState struct {
	Current        float32
	Changed        bool
	LastChangeTime Time
}
