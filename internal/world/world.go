// Package world holds the mutable sculpting state: the two hand manipulators and the cubes
// placed so far.
package world

import (
	"github.com/go-gl/mathgl/mgl32"
	colorful "github.com/lucasb-eyer/go-colorful"

	"cubesculpt/internal/xr"
)

// Cube is a placed object. It is a snapshot of a hand at placement time and is never
// changed afterwards.
type Cube struct {
	Translation mgl32.Vec3
	Rotation    mgl32.Quat
	Scale       mgl32.Vec3
	Color       colorful.Color
	Type        CubeType
}

// World owns both hands and the append-only cube list. Insertion order is render order.
//
// The cube list is unbounded; long sessions grow it without eviction.
type World struct {
	Hands [xr.HandCount]Hand
	cubes []Cube
}

// New returns a world with two default hands and no cubes.
func New() *World {
	w := &World{}
	for _, h := range xr.Hands {
		w.Hands[h] = NewHand(h)
	}
	return w
}

// Hand returns the manipulator for h.
func (w *World) Hand(h xr.Hand) *Hand {
	return &w.Hands[h]
}

// Place appends a cube snapshotting the hand's scale, color and type at pose.
func (w *World) Place(h *Hand, pose xr.Pose) Cube {
	c := Cube{
		Translation: pose.Position,
		Rotation:    pose.Orientation,
		Scale:       h.Scale,
		Color:       h.Color,
		Type:        h.Type,
	}
	w.cubes = append(w.cubes, c)
	return c
}

// Cubes returns the placed cubes in insertion order. Callers must not modify the slice.
func (w *World) Cubes() []Cube {
	return w.cubes
}

// Len returns the number of placed cubes.
func (w *World) Len() int {
	return len(w.cubes)
}
