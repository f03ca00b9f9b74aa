// Package app is the session object: it acquires every runtime resource a session needs
// in order, runs the frame loop, and releases exactly what it acquired.
package app

import (
	"errors"
	"fmt"
	"log/slog"

	"cubesculpt/internal/frameloop"
	"cubesculpt/internal/input"
	"cubesculpt/internal/render"
	"cubesculpt/internal/session"
	"cubesculpt/internal/world"
	"cubesculpt/internal/xr"
)

// ViewCount is the number of views a stereo headset must report.
const ViewCount = 2

// Options are the session's tunables.
type Options struct {
	Near float32
	Far  float32
}

// DefaultOptions returns the clip planes used when none are configured.
func DefaultOptions() Options {
	return Options{Near: 0.1, Far: 100}
}

// release undoes one acquisition step.
type release struct {
	what string
	fn   func() error
}

// App owns one session's resources and its world.
type App struct {
	rt    xr.Runtime
	opts  Options
	log   *slog.Logger
	world *world.World

	base xr.Space
	eyes []render.Eye
	geo  render.Geometry

	releases []release
	closed   bool

	life *session.Lifecycle
	loop *frameloop.Loop
}

// New acquires the session in stages. If a stage fails, every earlier stage is undone in
// reverse order and the error names the failing stage.
func New(rt xr.Runtime, opts Options, log *slog.Logger) (*App, error) {
	a := &App{rt: rt, opts: opts, log: log, world: world.New()}

	stages := []struct {
		name string
		fn   func() error
	}{
		{"session", a.createSession},
		{"reference space", a.createReferenceSpace},
		{"actions", a.createActions},
		{"views", a.createSwapchains},
		{"geometry", a.uploadGeometry},
	}
	for _, s := range stages {
		if err := s.fn(); err != nil {
			if cerr := a.Close(); cerr != nil {
				log.Warn("rollback incomplete", "stage", s.name, "err", cerr)
			}
			return nil, fmt.Errorf("setting up %s: %w", s.name, err)
		}
		log.Debug("setup stage done", "stage", s.name)
	}

	a.life = session.New(rt, log)
	engine := input.New(rt, rt, a.base, a.world, log)
	pass := render.NewPass(rt, rt, rt, a.world, render.Options{
		Base:     a.base,
		Eyes:     a.eyes,
		Geometry: a.geo,
		Near:     opts.Near,
		Far:      opts.Far,
	}, log)
	a.loop = frameloop.New(rt, a.life, engine, pass, log)
	return a, nil
}

func (a *App) push(what string, fn func() error) {
	a.releases = append(a.releases, release{what, fn})
}

func (a *App) createSession() error {
	if err := xr.Check("Creating a session", a.rt.CreateSession()); err != nil {
		return err
	}
	a.push("session", a.rt.DestroySession)
	return nil
}

func (a *App) createReferenceSpace() error {
	space, err := a.rt.CreateReferenceSpace()
	if err := xr.Check("Creating a reference space", err); err != nil {
		return err
	}
	a.base = space
	a.push("reference space", func() error { return a.rt.DestroySpace(space) })

	if w, d, ok := a.rt.ReferenceBounds(); ok {
		a.log.Info("stage bounds", "width", w, "depth", d)
	} else {
		a.log.Info("stage bounds unavailable")
	}
	return nil
}

func (a *App) createActions() error {
	if err := xr.Check("Attaching the action set", a.rt.AttachActions()); err != nil {
		return err
	}
	a.push("actions", a.rt.DetachActions)

	for _, h := range xr.Hands {
		space, err := a.rt.CreateHandSpace(h)
		if err := xr.Check("Creating a hand space", err); err != nil {
			return err
		}
		a.world.Hand(h).Space = space
		a.push(h.String()+" hand space", func() error { return a.rt.DestroySpace(space) })
	}
	return nil
}

func (a *App) createSwapchains() error {
	views, err := a.rt.ViewConfigurations()
	if err := xr.Check("Enumerating view configurations", err); err != nil {
		return err
	}
	if len(views) != ViewCount {
		return &xr.ConfigError{What: "view configurations", Got: len(views), Want: ViewCount}
	}
	// Both eyes use the first view's recommended size.
	size := views[0]
	for i := 0; i < ViewCount; i++ {
		sc, err := a.rt.CreateSwapchain(size)
		if err := xr.Check("Creating a swapchain", err); err != nil {
			return err
		}
		a.push(fmt.Sprintf("swapchain %d", i), func() error { return a.rt.DestroySwapchain(sc) })
		a.eyes = append(a.eyes, render.Eye{Swapchain: sc, Width: size.Width, Height: size.Height})
	}
	a.log.Info("swapchains created", "count", ViewCount, "width", size.Width, "height", size.Height)
	return nil
}

func (a *App) uploadGeometry() error {
	geo, err := render.Upload(a.rt)
	if err != nil {
		return err
	}
	a.geo = geo
	a.push("geometry", func() error { return geo.Release(a.rt) })
	return nil
}

// World returns the session's world.
func (a *App) World() *world.World {
	return a.world
}

// Tick runs a single frame loop iteration.
func (a *App) Tick() error {
	return a.loop.Tick()
}

// Run drives the frame loop until the session fails or ends. The returned error is
// always non-nil and always fatal for this session; call Close afterwards.
func (a *App) Run() error {
	return a.loop.Run()
}

// Close releases everything in reverse acquisition order. It is safe to call more than
// once; later calls do nothing.
func (a *App) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true

	var errs []error
	for i := len(a.releases) - 1; i >= 0; i-- {
		r := a.releases[i]
		if err := r.fn(); err != nil {
			errs = append(errs, fmt.Errorf("releasing %s: %w", r.what, err))
			continue
		}
		a.log.Debug("released", "what", r.what)
	}
	a.releases = nil
	return errors.Join(errs...)
}
