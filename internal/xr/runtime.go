package xr

import "github.com/go-gl/mathgl/mgl32"

// EventSource is the runtime's event queue. PollEvent never blocks: it returns
// false when the queue is empty.
type EventSource interface {
	PollEvent() (Event, bool)
}

// SessionCommands are the two lifecycle commands the state machine issues.
type SessionCommands interface {
	BeginSession() error
	EndSession() error
}

// InputSource exposes synced action values per hand.
type InputSource interface {
	SyncActions() error
	BoolAction(a Action, h Hand) (BoolState, error)
	FloatAction(a Action, h Hand) (FloatState, error)
}

// Locator resolves a space relative to a base space at a point in time.
type Locator interface {
	LocateSpace(space, base Space, t Time) (Location, error)
}

// FrameSurface paces and submits frames. WaitFrame blocks until the display's next
// interval and is the only source of loop pacing.
type FrameSurface interface {
	WaitFrame() (FrameState, error)
	BeginFrame() error
	LocateViews(base Space, t Time) ([]View, error)
	// AcquireImage acquires and waits for the next image of the chain and returns its index.
	AcquireImage(sc Swapchain) (int, error)
	ReleaseImage(sc Swapchain) error
	EndFrame(t Time, layers []ProjectionLayer) error
}

// Topology selects how DrawIndexed interprets an index range.
type Topology int

const (
	TopologyLineLoop Topology = iota
	TopologyLines
	TopologyTriangles
)

func (t Topology) String() string {
	switch t {
	case TopologyLineLoop:
		return "line_loop"
	case TopologyLines:
		return "lines"
	case TopologyTriangles:
		return "triangles"
	}
	return "unknown"
}

// DrawSurface is the minimal immediate-mode graphics surface the render pass needs.
// Meshes are one shared vertex buffer (xyz triples) with one index buffer.
type DrawSurface interface {
	UploadMesh(vertices []float32, indices []uint32) (Mesh, error)
	ReleaseMesh(m Mesh) error

	BindTarget(sc Swapchain, image int)
	UnbindTarget()
	Viewport(width, height int)
	Clear()
	SetMatrix(mvp mgl32.Mat4)
	SetColor(rgb mgl32.Vec3)
	DrawIndexed(m Mesh, topo Topology, first, count int)
}

// Setup covers the acquisition steps of a session. Every Create has a matching Destroy.
type Setup interface {
	CreateSession() error
	DestroySession() error

	CreateReferenceSpace() (Space, error)
	// ReferenceBounds reports the play area size of the reference space, if known.
	ReferenceBounds() (width, depth float32, ok bool)

	// AttachActions registers ActionSet with its suggested bindings.
	AttachActions() error
	DetachActions() error
	CreateHandSpace(h Hand) (Space, error)
	DestroySpace(s Space) error

	ViewConfigurations() ([]ViewConfig, error)
	CreateSwapchain(cfg ViewConfig) (Swapchain, error)
	DestroySwapchain(sc Swapchain) error
}

// Runtime is everything a session object needs from the outside world.
type Runtime interface {
	EventSource
	SessionCommands
	InputSource
	Locator
	FrameSurface
	DrawSurface
	Setup
}
