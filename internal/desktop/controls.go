package desktop

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"

	"cubesculpt/internal/xr"
)

// gamepad is the controller standing in for both hands.
const gamepad = 0

// triggerRest is the axis value a released analog trigger reports.
const triggerRest = -1

// controller is one hand's raw input for a tick.
type controller struct {
	stickX, stickY float32
	click          bool
	trigger, grip  float32
	xa, yb         bool
}

// padLayout maps one hand onto half of a gamepad.
type padLayout struct {
	axisX, axisY, axisTrigger int32
	click, trigger, grip      int32
	xa, yb                    int32
}

var padLayouts = [xr.HandCount]padLayout{
	{
		axisX: rl.GamepadAxisLeftX, axisY: rl.GamepadAxisLeftY, axisTrigger: rl.GamepadAxisLeftTrigger,
		click: rl.GamepadButtonLeftThumb, trigger: rl.GamepadButtonLeftTrigger2, grip: rl.GamepadButtonLeftTrigger1,
		xa: rl.GamepadButtonLeftFaceDown, yb: rl.GamepadButtonLeftFaceUp,
	},
	{
		axisX: rl.GamepadAxisRightX, axisY: rl.GamepadAxisRightY, axisTrigger: rl.GamepadAxisRightTrigger,
		click: rl.GamepadButtonRightThumb, trigger: rl.GamepadButtonRightTrigger2, grip: rl.GamepadButtonRightTrigger1,
		xa: rl.GamepadButtonRightFaceDown, yb: rl.GamepadButtonRightFaceRight,
	},
}

// keyLayout maps one hand onto the keyboard when no gamepad is connected.
type keyLayout struct {
	up, left, down, right int32
	click, expand, shrink int32
	xa, yb                int32
}

var keyLayouts = [xr.HandCount]keyLayout{
	{rl.KeyW, rl.KeyA, rl.KeyS, rl.KeyD, rl.KeyQ, rl.KeyE, rl.KeyR, rl.KeyZ, rl.KeyX},
	{rl.KeyI, rl.KeyJ, rl.KeyK, rl.KeyL, rl.KeyU, rl.KeyO, rl.KeyP, rl.KeyN, rl.KeyM},
}

func readPad(l padLayout) controller {
	c := controller{
		stickX: rl.GetGamepadAxisMovement(gamepad, l.axisX),
		// Gamepad Y grows downwards; controller sticks grow upwards.
		stickY: -rl.GetGamepadAxisMovement(gamepad, l.axisY),
		click:  rl.IsGamepadButtonDown(gamepad, l.click),
		xa:     rl.IsGamepadButtonDown(gamepad, l.xa),
		yb:     rl.IsGamepadButtonDown(gamepad, l.yb),
	}
	if rl.IsGamepadButtonDown(gamepad, l.trigger) {
		c.trigger = triggerLevel(rl.GetGamepadAxisMovement(gamepad, l.axisTrigger))
	}
	if rl.IsGamepadButtonDown(gamepad, l.grip) {
		c.grip = 1
	}
	return c
}

func readKeys(l keyLayout) controller {
	c := controller{
		stickX: axis(rl.IsKeyDown(l.left), rl.IsKeyDown(l.right)),
		stickY: axis(rl.IsKeyDown(l.down), rl.IsKeyDown(l.up)),
		click:  rl.IsKeyDown(l.click),
		xa:     rl.IsKeyDown(l.xa),
		yb:     rl.IsKeyDown(l.yb),
	}
	if rl.IsKeyDown(l.expand) {
		c.trigger = 1
	}
	if rl.IsKeyDown(l.shrink) {
		c.grip = 1
	}
	return c
}

// axis turns a pair of opposing keys into -1, 0 or 1.
func axis(neg, pos bool) float32 {
	var v float32
	if neg {
		v--
	}
	if pos {
		v++
	}
	return v
}

// triggerLevel maps a trigger axis in [-1, 1] onto [0, 1].
func triggerLevel(v float32) float32 {
	l := (v - triggerRest) / 2
	return mgl32.Clamp(l, 0, 1)
}

// head is the simulated headset pose, steered with the arrow keys and a right-drag.
type head struct {
	position   mgl32.Vec3
	yaw, pitch float32
}

const (
	headSpeed   = 1.5   // metres per second
	lookSpeed   = 0.004 // radians per pixel
	maxPitch    = 1.4
	standHeight = 1.6
)

func newHead() head {
	return head{position: mgl32.Vec3{0, standHeight, 0}}
}

func (h head) orientation() mgl32.Quat {
	return mgl32.AnglesToQuat(h.yaw, h.pitch, 0, mgl32.YXZ)
}

func (h head) pose() xr.Pose {
	return xr.Pose{Position: h.position, Orientation: h.orientation()}
}

// move applies a local-frame translation and a look delta.
func (h *head) move(forward, strafe, dt, dx, dy float32) {
	h.yaw -= dx * lookSpeed
	h.pitch = mgl32.Clamp(h.pitch-dy*lookSpeed, -maxPitch, maxPitch)

	sin, cos := math32.Sincos(h.yaw)
	// -Z is forward at yaw 0.
	h.position[0] += (strafe*cos - forward*sin) * headSpeed * dt
	h.position[2] += (-strafe*sin - forward*cos) * headSpeed * dt
}

func (h *head) update(dt float32) {
	var dx, dy float32
	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		d := rl.GetMouseDelta()
		dx, dy = d.X, d.Y
	}
	h.move(axis(rl.IsKeyDown(rl.KeyDown), rl.IsKeyDown(rl.KeyUp)),
		axis(rl.IsKeyDown(rl.KeyLeft), rl.IsKeyDown(rl.KeyRight)), dt, dx, dy)
}

// handOffsets place the controllers in the head frame: low and in front, either side.
var handOffsets = [xr.HandCount]mgl32.Vec3{
	{-0.2, -0.3, -0.5},
	{0.2, -0.3, -0.5},
}

// offsetPose composes a local offset onto a parent pose.
func offsetPose(parent xr.Pose, offset mgl32.Vec3) xr.Pose {
	return xr.Pose{
		Position:    parent.Position.Add(parent.Orientation.Rotate(offset)),
		Orientation: parent.Orientation,
	}
}

// eyeFov returns a symmetric field of view with the given vertical half-angle for an
// image of w by h pixels.
func eyeFov(halfVertical float32, w, h int) xr.Fov {
	tanV := math32.Tan(halfVertical)
	halfH := math32.Atan(tanV * float32(w) / float32(h))
	return xr.Fov{AngleLeft: -halfH, AngleRight: halfH, AngleUp: halfVertical, AngleDown: -halfVertical}
}
