package host

import (
	"sync"

	"github.com/ivlev/cinematic/internal/camera"
	"github.com/ivlev/cinematic/internal/scene"
)

// MainCamera is the host application's own render camera. Cinematic mode
// switches it off while a cinematic camera drives the output.
type MainCamera interface {
	Transform() scene.Transform
	Fov() float64
	RenderEnabled() bool
	SetRenderEnabled(enabled bool)
	ListenerEnabled() bool
	SetListenerEnabled(enabled bool)
}

// Host is the render side of the engine.
type Host interface {
	// FindMainCamera locates the host camera; false when it is gone.
	FindMainCamera() (MainCamera, bool)
	// ApplyPose places the render camera for this frame.
	ApplyPose(tag string, view camera.View)
}

// Headless is a Host without a renderer. It keeps the last applied view
// and a simple main camera, which is all offline tools and tests need.
type Headless struct {
	mu      sync.Mutex
	main    *StaticCamera
	last    camera.View
	lastTag string
	frames  int
}

// NewHeadless returns a host whose main camera sits at t with the given
// fov, rendering and listening.
func NewHeadless(t scene.Transform, fov float64) *Headless {
	return &Headless{main: &StaticCamera{
		transform: t,
		fov:       fov,
		render:    true,
		listener:  true,
	}}
}

func (h *Headless) FindMainCamera() (MainCamera, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.main == nil {
		return nil, false
	}
	return h.main, true
}

func (h *Headless) ApplyPose(tag string, view camera.View) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = view
	h.lastTag = tag
	h.frames++
}

// Last returns the most recently applied view and the camera tag it came
// from.
func (h *Headless) Last() (string, camera.View, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastTag, h.last, h.frames > 0
}

// Frames counts ApplyPose calls.
func (h *Headless) Frames() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.frames
}

// Main exposes the concrete main camera, nil once lost.
func (h *Headless) Main() *StaticCamera {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.main
}

// LoseMainCamera simulates the host destroying its camera, e.g. on a
// scene change.
func (h *Headless) LoseMainCamera() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.main = nil
}

// StaticCamera is a MainCamera that only stores state.
type StaticCamera struct {
	transform scene.Transform
	fov       float64
	render    bool
	listener  bool
}

func (c *StaticCamera) Transform() scene.Transform      { return c.transform }
func (c *StaticCamera) SetTransform(t scene.Transform)  { c.transform = t }
func (c *StaticCamera) Fov() float64                    { return c.fov }
func (c *StaticCamera) RenderEnabled() bool             { return c.render }
func (c *StaticCamera) SetRenderEnabled(enabled bool)   { c.render = enabled }
func (c *StaticCamera) ListenerEnabled() bool           { return c.listener }
func (c *StaticCamera) SetListenerEnabled(enabled bool) { c.listener = enabled }
