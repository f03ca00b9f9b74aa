// Package render draws the hands and every placed cube into both eye swapchains and
// submits the frame.
package render

import (
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"
	colorful "github.com/lucasb-eyer/go-colorful"

	"cubesculpt/internal/world"
	"cubesculpt/internal/xr"
	"cubesculpt/internal/xrmath"
)

// Eye is one view's render target.
type Eye struct {
	Swapchain xr.Swapchain
	Width     int
	Height    int
}

// Pass renders one frame per call. It owns no runtime resources; the session object
// hands it the swapchains and geometry it acquired.
type Pass struct {
	frames xr.FrameSurface
	draw   xr.DrawSurface
	loc    xr.Locator
	base   xr.Space
	eyes   []Eye
	geo    Geometry
	world  *world.World
	near   float32
	far    float32
	log    *slog.Logger
}

// Options carries what a pass draws into and with.
type Options struct {
	Base     xr.Space
	Eyes     []Eye
	Geometry Geometry
	Near     float32
	Far      float32
}

// NewPass returns a pass rendering w through rt.
func NewPass(frames xr.FrameSurface, draw xr.DrawSurface, loc xr.Locator, w *world.World, opts Options, log *slog.Logger) *Pass {
	return &Pass{
		frames: frames,
		draw:   draw,
		loc:    loc,
		base:   opts.Base,
		eyes:   opts.Eyes,
		geo:    opts.Geometry,
		world:  w,
		near:   opts.Near,
		far:    opts.Far,
		log:    log,
	}
}

// object is one draw of the cube mesh.
type object struct {
	model mgl32.Mat4
	color mgl32.Vec3
	kind  world.CubeType
}

// Render waits for the next display interval, draws if the runtime asks for content and
// ends the frame. EndFrame is called on every successful wait, with no layers when nothing
// was drawn.
func (p *Pass) Render() error {
	fs, err := p.frames.WaitFrame()
	if err := xr.Check("Waiting for a frame", err); err != nil {
		return err
	}
	if err := xr.Check("Beginning a frame", p.frames.BeginFrame()); err != nil {
		return err
	}

	var layers []xr.ProjectionLayer
	if fs.ShouldRender {
		layer, err := p.renderViews(fs.PredictedDisplayTime)
		if err != nil {
			return err
		}
		layers = append(layers, layer)
	}

	return xr.Check("Ending a frame", p.frames.EndFrame(fs.PredictedDisplayTime, layers))
}

func (p *Pass) renderViews(t xr.Time) (xr.ProjectionLayer, error) {
	views, err := p.frames.LocateViews(p.base, t)
	if err := xr.Check("Locating views", err); err != nil {
		return xr.ProjectionLayer{}, err
	}
	if len(views) != len(p.eyes) {
		return xr.ProjectionLayer{}, &xr.ConfigError{What: "located views", Got: len(views), Want: len(p.eyes)}
	}

	objects, err := p.objects(t)
	if err != nil {
		return xr.ProjectionLayer{}, err
	}
	p.log.Debug("rendering frame", "time", t, "objects", len(objects))

	layer := xr.ProjectionLayer{Space: p.base, Views: make([]xr.ProjectionView, len(views))}
	for i, v := range views {
		if err := p.renderEye(p.eyes[i], v, objects); err != nil {
			return xr.ProjectionLayer{}, err
		}
		layer.Views[i] = xr.ProjectionView{
			Pose:      v.Pose,
			Fov:       v.Fov,
			Swapchain: p.eyes[i].Swapchain,
			Width:     p.eyes[i].Width,
			Height:    p.eyes[i].Height,
		}
	}
	return layer, nil
}

// objects lists the hands located at t, then every cube in placement order.
func (p *Pass) objects(t xr.Time) ([]object, error) {
	cubes := p.world.Cubes()
	out := make([]object, 0, xr.HandCount+len(cubes))
	for _, id := range xr.Hands {
		h := p.world.Hand(id)
		loc, err := p.loc.LocateSpace(h.Space, p.base, t)
		if err := xr.Check("Locating a hand space", err); err != nil {
			return nil, err
		}
		if !loc.Valid() {
			continue
		}
		out = append(out, object{xrmath.PoseModel(loc.Pose, h.Scale), rgb(h.Color), h.Type})
	}
	for _, c := range cubes {
		out = append(out, object{xrmath.Model(c.Translation, c.Rotation, c.Scale), rgb(c.Color), c.Type})
	}
	return out, nil
}

func (p *Pass) renderEye(eye Eye, v xr.View, objects []object) error {
	image, err := p.frames.AcquireImage(eye.Swapchain)
	if err := xr.Check("Acquiring a swapchain image", err); err != nil {
		return err
	}

	p.draw.BindTarget(eye.Swapchain, image)
	p.draw.Viewport(eye.Width, eye.Height)
	p.draw.Clear()

	vp := xrmath.ViewProjection(v, p.near, p.far)
	for _, o := range objects {
		p.draw.SetMatrix(xrmath.MVP(vp, o.model))
		p.draw.SetColor(o.color)
		p.geo.draw(p.draw, o.kind)
	}
	p.draw.UnbindTarget()

	return xr.Check("Releasing a swapchain image", p.frames.ReleaseImage(eye.Swapchain))
}

func rgb(c colorful.Color) mgl32.Vec3 {
	return mgl32.Vec3{float32(c.R), float32(c.G), float32(c.B)}
}
