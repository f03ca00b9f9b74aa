package world

import (
	"github.com/go-gl/mathgl/mgl32"
	colorful "github.com/lucasb-eyer/go-colorful"

	"cubesculpt/internal/xr"
)

// Scale bounds applied independently to each axis of a hand's scale.
const (
	MinScale float32 = 0.01
	MaxScale float32 = 10.0
)

// CubeType selects how a cube is drawn.
type CubeType int

const (
	Empty CubeType = iota
	Filled
)

// Toggled returns the other type.
func (t CubeType) Toggled() CubeType {
	if t == Empty {
		return Filled
	}
	return Empty
}

func (t CubeType) String() string {
	if t == Filled {
		return "filled"
	}
	return "empty"
}

// GestureState is either Inactive or Active. It replaces a sentinel start angle:
// a hand has an in-progress color transform exactly when its state is Active.
type GestureState interface {
	isGesture()
}

// Inactive means the stick is in the deadzone or no gesture was started since it left it.
type Inactive struct{}

// Active is a color gesture started by a stick click outside the deadzone.
// StartAngle is in [0, 2π); Reference is the hand's color when the gesture began.
type Active struct {
	StartAngle float32
	Reference  colorful.Color
}

func (Inactive) isGesture() {}
func (Active) isGesture()   {}

// Hand is one controller's manipulator. It lives as long as the session.
type Hand struct {
	ID    xr.Hand
	Space xr.Space

	Color   colorful.Color
	Scale   mgl32.Vec3
	Type    CubeType
	Gesture GestureState
}

// NewHand returns a white, unit scale, empty hand with no gesture.
func NewHand(id xr.Hand) Hand {
	return Hand{
		ID:      id,
		Color:   colorful.Color{R: 1, G: 1, B: 1},
		Scale:   mgl32.Vec3{1, 1, 1},
		Type:    Empty,
		Gesture: Inactive{},
	}
}

// ActiveGesture returns the in-progress gesture, if any.
func (h *Hand) ActiveGesture() (Active, bool) {
	a, ok := h.Gesture.(Active)
	return a, ok
}

// StartGesture records angle and the current color as the gesture's reference.
func (h *Hand) StartGesture(angle float32) {
	h.Gesture = Active{StartAngle: angle, Reference: h.Color}
}

// EndGesture returns the hand to Inactive.
func (h *Hand) EndGesture() {
	h.Gesture = Inactive{}
}
