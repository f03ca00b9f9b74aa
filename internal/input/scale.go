package input

import (
	"github.com/go-gl/mathgl/mgl32"

	"cubesculpt/internal/world"
)

// Axes is the set of scale axes a trigger or grip acts on.
type Axes int

const (
	AxesAll Axes = iota
	AxisX
	AxisY
	AxisZ
)

func (a Axes) indices() []int {
	switch a {
	case AxisX:
		return []int{0}
	case AxisY:
		return []int{1}
	case AxisZ:
		return []int{2}
	}
	return []int{0, 1, 2}
}

func (a Axes) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	}
	return "xyz"
}

// SelectAxes picks the axes from the hand's own modifiers: both held scales Z, XA alone
// scales X, YB alone scales Y, neither scales all three uniformly.
func SelectAxes(m Modifiers) Axes {
	switch {
	case m.XA && m.YB:
		return AxisZ
	case m.XA:
		return AxisX
	case m.YB:
		return AxisY
	}
	return AxesAll
}

const scaleRate = ((world.MaxScale - 1) + 10*(1-world.MinScale)) * 0.001

// ScaleStep is the per-tick change for an analog level in [0, 1].
func ScaleStep(level float32) float32 {
	return level * scaleRate
}

// Grow adds ScaleStep(level) to the selected axes, clamped to MaxScale. It does nothing
// when level is zero or every selected axis is already at the maximum, and reports
// whether it ran.
func Grow(scale *mgl32.Vec3, axes Axes, level float32) bool {
	idx := axes.indices()
	if level <= 0 || allAtLeast(scale, idx, world.MaxScale) {
		return false
	}
	d := ScaleStep(level)
	for _, i := range idx {
		scale[i] += d
		if scale[i] > world.MaxScale {
			scale[i] = world.MaxScale
		}
	}
	return true
}

// Shrink is Grow's mirror towards MinScale.
func Shrink(scale *mgl32.Vec3, axes Axes, level float32) bool {
	idx := axes.indices()
	if level <= 0 || allAtMost(scale, idx, world.MinScale) {
		return false
	}
	d := ScaleStep(level)
	for _, i := range idx {
		scale[i] -= d
		if scale[i] < world.MinScale {
			scale[i] = world.MinScale
		}
	}
	return true
}

func allAtLeast(scale *mgl32.Vec3, idx []int, bound float32) bool {
	for _, i := range idx {
		if scale[i] < bound {
			return false
		}
	}
	return true
}

func allAtMost(scale *mgl32.Vec3, idx []int, bound float32) bool {
	for _, i := range idx {
		if scale[i] > bound {
			return false
		}
	}
	return true
}
