package replay

import (
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"

	"cubesculpt/internal/xr"
)

// Script is a recorded or hand-written session: one step per tick, optionally repeated.
//
//	steps:
//	  - repeat: 30
//	    right: {stick: [0, 0], click: true, position: [0.2, 1.2, -0.4]}
//	  - events: [visible]
//	  - left: {trigger: 1, xa: true}
//	    repeat: 100
type Script struct {
	Steps []Step `yaml:"steps"`
}

// Step is the input state of one tick. A hand left out keeps the input of the previous
// step; events are queued once, on the first tick of the step.
type Step struct {
	Repeat int      `yaml:"repeat,omitempty"`
	Events []string `yaml:"events,omitempty"`
	// ShouldRender overrides the frame's render hint; nil means render.
	ShouldRender *bool      `yaml:"should_render,omitempty"`
	Left         *HandInput `yaml:"left,omitempty"`
	Right        *HandInput `yaml:"right,omitempty"`
}

// HandInput is the raw controller state for one hand during a step.
type HandInput struct {
	Stick   [2]float32 `yaml:"stick,omitempty"`
	Click   bool       `yaml:"click,omitempty"`
	Trigger float32    `yaml:"trigger,omitempty"`
	Grip    float32    `yaml:"grip,omitempty"`
	XA      bool       `yaml:"xa,omitempty"`
	YB      bool       `yaml:"yb,omitempty"`
	// Position and Orientation (x, y, z, w) place the controller in the reference space.
	// Left out, the hand keeps its resting pose.
	Position    *[3]float32 `yaml:"position,omitempty"`
	Orientation *[4]float32 `yaml:"orientation,omitempty"`
	// Tracked false reports the pose as invalid.
	Tracked *bool `yaml:"tracked,omitempty"`
}

// Ticks returns the number of ticks the script spans.
func (s *Script) Ticks() int {
	n := 0
	for _, st := range s.Steps {
		n += st.repeat()
	}
	return n
}

func (st Step) repeat() int {
	if st.Repeat < 1 {
		return 1
	}
	return st.Repeat
}

func (st Step) hand(h xr.Hand) *HandInput {
	if h == xr.HandLeft {
		return st.Left
	}
	return st.Right
}

// Parse decodes and validates a YAML script.
func Parse(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	for i, st := range s.Steps {
		for _, name := range st.Events {
			if _, err := xr.ParseEvent(name); err != nil {
				return nil, fmt.Errorf("step %d: %w", i, err)
			}
		}
		for _, h := range xr.Hands {
			if in := st.hand(h); in != nil {
				if err := in.validate(); err != nil {
					return nil, fmt.Errorf("step %d %s hand: %w", i, h, err)
				}
			}
		}
	}
	return &s, nil
}

// Load reads a script file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return Parse(data)
}

func (in *HandInput) validate() error {
	for _, v := range in.Stick {
		if v < -1 || v > 1 {
			return fmt.Errorf("stick %v outside [-1, 1]", in.Stick)
		}
	}
	if in.Trigger < 0 || in.Trigger > 1 {
		return fmt.Errorf("trigger %v outside [0, 1]", in.Trigger)
	}
	if in.Grip < 0 || in.Grip > 1 {
		return fmt.Errorf("grip %v outside [0, 1]", in.Grip)
	}
	if in.Orientation != nil && quat(*in.Orientation).Len() == 0 {
		return fmt.Errorf("orientation is a zero quaternion")
	}
	return nil
}

func quat(q [4]float32) mgl32.Quat {
	return mgl32.Quat{W: q[3], V: mgl32.Vec3{q[0], q[1], q[2]}}
}
