package input

import (
	"github.com/chewxy/math32"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Deadzone is the stick radius below which the stick counts as neutral. Placement only
// happens inside it, color gestures only outside it. Some controllers already apply a
// hardware deadzone, which is why the value is generous.
const Deadzone float32 = 0.25

const (
	twoPi = 2 * math32.Pi
	// gestureSegment is the angular width of one leg of the reference/black/white path.
	gestureSegment = twoPi / 3
)

var (
	black = colorful.Color{R: 0, G: 0, B: 0}
	white = colorful.Color{R: 1, G: 1, B: 1}
)

// Stick converts stick axes to polar form. The angle is measured counter-clockwise from +X
// and lies in [0, 2π). A centered stick has radius 0 and angle 0.
func Stick(x, y float32) (radius, angle float32) {
	radius = math32.Sqrt(x*x + y*y)
	if radius == 0 {
		return 0, 0
	}
	c := x / radius
	if c > 1 {
		c = 1
	} else if c < -1 {
		c = -1
	}
	angle = math32.Acos(c)
	if y < 0 {
		angle = twoPi - angle
	}
	if angle >= twoPi {
		angle -= twoPi
	}
	return radius, angle
}

// ShortestArc returns the angular distance from start to angle going the shorter way
// around, and whether that way is clockwise. delta is always in [0, π].
func ShortestArc(start, angle float32) (delta float32, clockwise bool) {
	clockwise = start >= angle
	delta = math32.Abs(angle - start)
	if delta > math32.Pi {
		clockwise = !clockwise
		delta = twoPi - delta
	}
	return delta, clockwise
}

// GestureColor maps an arc travelled from the gesture's start to a color. Clockwise walks
// reference -> black -> white, counter-clockwise walks reference -> white -> black, each
// leg spanning a third of the circle. A zero delta returns the reference unchanged.
func GestureColor(reference colorful.Color, delta float32, clockwise bool) colorful.Color {
	if clockwise {
		if delta <= gestureSegment {
			return reference.BlendRgb(black, float64(delta/gestureSegment))
		}
		return gray(float64((delta - gestureSegment) / gestureSegment))
	}
	if delta <= gestureSegment {
		return reference.BlendRgb(white, float64(delta/gestureSegment))
	}
	return gray(1 - float64((delta-gestureSegment)/gestureSegment))
}

// HueColor maps a stick angle straight onto the fully saturated hue wheel.
func HueColor(angle float32) colorful.Color {
	deg := float64(angle) * 180 / float64(math32.Pi)
	if deg >= 360 {
		deg -= 360
	}
	return colorful.Hsv(deg, 1, 1)
}

func gray(v float64) colorful.Color {
	return colorful.Color{R: v, G: v, B: v}
}
