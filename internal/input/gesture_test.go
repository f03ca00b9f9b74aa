package input

import (
	"testing"

	"github.com/chewxy/math32"
	colorful "github.com/lucasb-eyer/go-colorful"
)

func TestStickCentered(t *testing.T) {
	r, a := Stick(0, 0)
	if r != 0 || a != 0 {
		t.Fatalf("Stick(0, 0) = %v, %v", r, a)
	}
}

func TestStickQuadrants(t *testing.T) {
	tests := []struct {
		x, y float32
		want float32
	}{
		{1, 0, 0},
		{0, 1, math32.Pi / 2},
		{-1, 0, math32.Pi},
		{0, -1, 3 * math32.Pi / 2},
		{0.5, 0.5, math32.Pi / 4},
		{0.5, -0.5, 7 * math32.Pi / 4},
	}
	for _, tt := range tests {
		_, got := Stick(tt.x, tt.y)
		if math32.Abs(got-tt.want) > 1e-5 {
			t.Errorf("Stick(%v, %v) angle = %v, want %v", tt.x, tt.y, got, tt.want)
		}
		if got < 0 || got >= twoPi {
			t.Errorf("Stick(%v, %v) angle %v outside [0, 2π)", tt.x, tt.y, got)
		}
	}
}

func TestStickReflectionContinuousAcrossXAxis(t *testing.T) {
	const eps = 1e-4
	for _, x := range []float32{-0.9, -0.5, -0.3, 0.3, 0.5, 0.9} {
		_, above := Stick(x, eps)
		_, below := Stick(x, -eps)
		if d := math32.Abs(above - math32.Acos(x)); d > 1e-3 {
			t.Errorf("x=%v: angle above axis off by %v", x, d)
		}
		if d := math32.Abs(below - (twoPi - math32.Acos(x))); d > 1e-3 {
			t.Errorf("x=%v: angle below axis off by %v", x, d)
		}
	}
}

func TestShortestArcNeverExceedsPi(t *testing.T) {
	const steps = 64
	for i := 0; i < steps; i++ {
		for j := 0; j < steps; j++ {
			a := twoPi * float32(i) / steps
			b := twoPi * float32(j) / steps
			d, _ := ShortestArc(a, b)
			if d < 0 || d > math32.Pi+1e-5 {
				t.Fatalf("ShortestArc(%v, %v) = %v", a, b, d)
			}
		}
	}
}

func TestShortestArcDirection(t *testing.T) {
	tests := []struct {
		name      string
		start     float32
		angle     float32
		delta     float32
		clockwise bool
	}{
		{"ccw small", 0.5, 1.0, 0.5, false},
		{"cw small", 1.0, 0.5, 0.5, true},
		{"ccw across zero", 6.0, 0.2, 0.2 + twoPi - 6.0, false},
		{"cw across zero", 0.2, 6.0, 0.2 + twoPi - 6.0, true},
		{"no motion", 2, 2, 0, true},
	}
	for _, tt := range tests {
		d, cw := ShortestArc(tt.start, tt.angle)
		if math32.Abs(d-tt.delta) > 1e-5 || cw != tt.clockwise {
			t.Errorf("%s: got (%v, %v), want (%v, %v)", tt.name, d, cw, tt.delta, tt.clockwise)
		}
	}
}

func TestGestureColorPath(t *testing.T) {
	ref := colorful.Color{R: 0.8, G: 0.2, B: 0.4}

	if got := GestureColor(ref, 0, true); got != ref {
		t.Errorf("zero delta clockwise = %v, want reference", got)
	}
	if got := GestureColor(ref, 0, false); got != ref {
		t.Errorf("zero delta counter-clockwise = %v, want reference", got)
	}
	if got := GestureColor(ref, gestureSegment, true); !near(got, black) {
		t.Errorf("clockwise one segment = %v, want black", got)
	}
	if got := GestureColor(ref, gestureSegment, false); !near(got, white) {
		t.Errorf("counter-clockwise one segment = %v, want white", got)
	}
	if got := GestureColor(ref, math32.Pi, true); !near(got, gray(0.5)) {
		t.Errorf("clockwise half turn = %v, want mid gray", got)
	}
	if got := GestureColor(ref, math32.Pi, false); !near(got, gray(0.5)) {
		t.Errorf("counter-clockwise half turn = %v, want mid gray", got)
	}
}

func TestHueColorSectors(t *testing.T) {
	tests := []struct {
		angle float32
		want  colorful.Color
	}{
		{0, colorful.Color{R: 1}},
		{math32.Pi / 3, colorful.Color{R: 1, G: 1}},
		{2 * math32.Pi / 3, colorful.Color{G: 1}},
		{math32.Pi, colorful.Color{G: 1, B: 1}},
		{4 * math32.Pi / 3, colorful.Color{B: 1}},
		{5 * math32.Pi / 3, colorful.Color{R: 1, B: 1}},
	}
	for _, tt := range tests {
		if got := HueColor(tt.angle); !near(got, tt.want) {
			t.Errorf("HueColor(%v) = %v, want %v", tt.angle, got, tt.want)
		}
	}
}

func near(a, b colorful.Color) bool {
	const tol = 1e-4
	d := func(x, y float64) bool { return x-y < tol && y-x < tol }
	return d(a.R, b.R) && d(a.G, b.G) && d(a.B, b.B)
}
