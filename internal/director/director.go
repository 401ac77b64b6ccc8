package director

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/ivlev/cinematic/internal/animation"
	"github.com/ivlev/cinematic/internal/camera"
	"github.com/ivlev/cinematic/internal/config"
	"github.com/ivlev/cinematic/internal/host"
	"github.com/ivlev/cinematic/internal/replay"
	"github.com/ivlev/cinematic/internal/scene"
	"github.com/ivlev/cinematic/internal/timeline"
)

// FreeCamTag identifies the free-fly camera.
const FreeCamTag = "freecam"

// Input is one frame of operator input.
type Input struct {
	Move   camera.MoveInput
	Rotate bool // rotation key held; mouse deltas are ignored otherwise
	MouseX float64
	MouseY float64
	Scroll float64
}

// Director owns every cinematic camera and routes timeline events, operator
// input and render output between them. All methods must be called from
// the frame loop goroutine.
type Director struct {
	host     host.Host
	registry scene.Registry
	replay   replay.Replay
	cfg      *config.Config
	settings *config.SettingsManager
	logger   *log.Logger
	timeline *timeline.Timeline

	enabled      bool
	mainRender   bool
	mainListener bool

	free    *camera.Camera
	active  *camera.Camera
	cameras []*camera.Camera
	nextID  int
	current *animation.Keyframe

	speed           float64
	speedMultiplier float64
}

type Option func(*Director)

func WithLogger(l *log.Logger) Option {
	return func(d *Director) {
		if l == nil {
			l = log.New(io.Discard, "", 0)
		}
		d.logger = l
	}
}

// WithSettings persists free-camera speed changes.
func WithSettings(sm *config.SettingsManager) Option {
	return func(d *Director) { d.settings = sm }
}

// WithTimeline uses an existing timeline instead of creating one.
func WithTimeline(t *timeline.Timeline) Option {
	return func(d *Director) { d.timeline = t }
}

// New creates a Director. registry may be nil when no scene objects can be
// targeted; rp defaults to replay.Nop.
func New(h host.Host, registry scene.Registry, rp replay.Replay, cfg *config.Config, opts ...Option) *Director {
	if cfg == nil {
		cfg = config.Default()
	}
	if rp == nil {
		rp = replay.Nop{}
	}
	d := &Director{
		host:            h,
		registry:        registry,
		replay:          rp,
		cfg:             cfg,
		logger:          log.New(os.Stderr, "", log.LstdFlags),
		speed:           config.ClampSpeed(cfg.FreeCamSpeed),
		speedMultiplier: config.ClampSpeedMultiplier(cfg.SpeedMultiplier),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.timeline == nil {
		d.timeline = timeline.New(cfg.TimelineLength)
	}
	if d.settings != nil {
		s := d.settings.Settings()
		d.speed = s.Speed
		d.speedMultiplier = s.SpeedMultiplier
	}

	d.timeline.Subscribe(timeline.Handlers{
		OnPlay:         d.onPlay,
		OnStop:         d.onStop,
		OnDrag:         d.onDrag,
		OnKeyframe:     d.onKeyframe,
		OnKeyframeEdit: d.onKeyframeEdit,
	})
	return d
}

func (d *Director) Timeline() *timeline.Timeline { return d.timeline }
func (d *Director) Enabled() bool                { return d.enabled }
func (d *Director) Speed() float64               { return d.speed }
func (d *Director) SpeedMultiplier() float64     { return d.speedMultiplier }

// ToggleCinematic switches cinematic mode. Enabling fails, and leaves the
// mode off, when the host has no main camera.
func (d *Director) ToggleCinematic(enabled bool) bool {
	if enabled {
		if d.enabled {
			return true
		}
		main, ok := d.host.FindMainCamera()
		if !ok {
			d.logger.Printf("[cinematic] Unable to locate main camera")
			return false
		}
		d.mainRender = main.RenderEnabled()
		d.mainListener = main.ListenerEnabled()
		main.SetRenderEnabled(false)
		main.SetListenerEnabled(false)

		if d.free == nil {
			d.free = camera.New(FreeCamTag, true, d.registry, main.Transform(), main.Fov())
			d.logger.Printf("[cinematic] Free camera created")
		}
		d.enabled = true
		d.SetActiveCamera(d.free)
		return true
	}

	if !d.enabled {
		return true
	}
	d.enabled = false
	for _, c := range d.cameras {
		c.SetEnabled(false)
		c.SetAllowPlay(false)
	}
	if d.free != nil {
		d.free.SetEnabled(false)
	}
	d.active = nil
	d.current = nil
	d.restoreMainCamera()
	d.timeline.Reset()
	return true
}

func (d *Director) restoreMainCamera() {
	main, ok := d.host.FindMainCamera()
	if !ok {
		return
	}
	main.SetRenderEnabled(d.mainRender)
	main.SetListenerEnabled(d.mainListener)
}

// SetActiveCamera makes c the single enabled camera; nil selects the free
// camera. A newly activated keyframed camera does not play until allowed.
func (d *Director) SetActiveCamera(c *camera.Camera) bool {
	if !d.enabled {
		return false
	}
	if c == nil {
		c = d.free
	}
	if c != d.free && d.indexOf(c) < 0 {
		return false
	}
	if d.active != nil {
		d.active.SetEnabled(false)
	}
	d.active = c
	d.current = nil
	if c == nil {
		return true
	}
	c.SetEnabled(true)
	if !c.IsFree() {
		c.SetAllowPlay(false)
		d.current, _ = c.Track().Current()
	}
	return true
}

// Active returns the camera driving the output.
func (d *Director) Active() (*camera.Camera, bool) {
	return d.active, d.active != nil
}

func (d *Director) FreeCamera() (*camera.Camera, bool) {
	return d.free, d.free != nil
}

// Cameras lists the keyframed cameras in creation order. The free camera
// is not included.
func (d *Director) Cameras() []*camera.Camera {
	out := make([]*camera.Camera, len(d.cameras))
	copy(out, d.cameras)
	return out
}

// Camera finds a camera by tag, the free camera included.
func (d *Director) Camera(tag string) (*camera.Camera, bool) {
	if d.free != nil && d.free.Tag() == tag {
		return d.free, true
	}
	for _, c := range d.cameras {
		if c.Tag() == tag {
			return c, true
		}
	}
	return nil, false
}

// AddCamera spawns a keyframed camera at the active camera's pose and
// activates it.
func (d *Director) AddCamera() (*camera.Camera, bool) {
	if d.active == nil {
		return nil, false
	}
	c := camera.New(fmt.Sprintf("Camera_%d", d.nextID), false, d.registry, d.active.Transform(), d.active.Fov())
	d.cameras = append(d.cameras, c)
	d.nextID++
	d.SetActiveCamera(c)

	d.logger.Printf("[cinematic] New camera '%s' was added", c.Tag())
	return c, true
}

// RemoveCamera deletes a keyframed camera. Removing the active camera
// hands control back to the free camera.
func (d *Director) RemoveCamera(c *camera.Camera) bool {
	if c == nil || c == d.free {
		return false
	}
	i := d.indexOf(c)
	if i < 0 {
		return false
	}
	if c == d.active {
		d.active = d.free
		d.current = nil
		if d.free != nil {
			d.free.SetEnabled(true)
		}
	}
	c.SetEnabled(false)
	c.RemoveAnimation()
	c.ResetState()
	d.cameras = append(d.cameras[:i], d.cameras[i+1:]...)

	d.logger.Printf("[cinematic] Camera '%s' was removed", c.Tag())
	return true
}

// DisableAllCamerasBut switches off every keyframed camera except tag and
// stops their playback.
func (d *Director) DisableAllCamerasBut(tag string) {
	for _, c := range d.cameras {
		if c.Tag() != tag && c.Enabled() {
			c.SetEnabled(false)
			c.SetAllowPlay(false)
		}
	}
}

func (d *Director) SwitchToFreeCamera() {
	if d.free == nil {
		d.ResetAll()
		return
	}
	d.DisableAllCamerasBut(d.free.Tag())
	d.SetActiveCamera(d.free)
}

// ResetAll drops every camera and the timeline position. Cinematic mode is
// re-entered afterwards if it was on and the main camera still exists.
func (d *Director) ResetAll() {
	if d.active != nil {
		d.active.ResetState()
	}
	wasEnabled := d.enabled

	d.free = nil
	d.active = nil
	d.current = nil
	d.cameras = nil
	d.nextID = 0

	if wasEnabled {
		d.restoreMainCamera()
		d.enabled = false
		d.ToggleCinematic(true)
	}
	d.timeline.Reset()
}

// ResetTransform moves the active camera onto the host main camera.
func (d *Director) ResetTransform() bool {
	main, ok := d.host.FindMainCamera()
	if !ok || d.active == nil {
		return false
	}
	d.active.SetTransform(main.Transform())
	return true
}

// Update runs one render frame.
func (d *Director) Update(dt float64, in Input) {
	if _, ok := d.host.FindMainCamera(); !ok && d.enabled {
		d.logger.Printf("[cinematic] Main camera lost, leaving cinematic mode")
		d.enabled = false
		d.ResetAll()
	}

	d.replay.Update()
	d.timeline.Advance(dt)

	if c := d.active; c != nil {
		driven := !c.IsFree() && c.Track().AllowPlay() && d.timeline.IsPlaying() && !c.Track().Empty()
		if !driven {
			c.Move(in.Move, dt, d.speed, d.speedMultiplier)
			if in.Rotate {
				c.Rotate(-in.MouseY, in.MouseX, 0)
			}
		}
		c.AdjustFov(in.Scroll * d.cfg.ScrollScale)

		if driven {
			c.UpdateAnimation(d.timeline.CurrentTime())
		}

		if k, ok := c.Track().Current(); ok {
			d.current = k
		} else {
			d.current = nil
			d.timeline.ForceKeyframeEditing(false)
		}

		if !driven {
			c.Follow()
		}
		d.host.ApplyPose(c.Tag(), c.View())
	}

	if d.timeline.IsPlaying() {
		d.replay.TimeUpdate(d.timeline.CurrentTime(), false)
	}
}

// FixedUpdate runs one fixed-rate tick.
func (d *Director) FixedUpdate() {
	d.replay.FixedUpdate()
}

func (d *Director) onPlay(play bool) {
	d.replay.PlayPause(play)
}

func (d *Director) onStop(time float64) {
	if c, ok := d.keyframed(); ok {
		c.UpdateAnimation(time)
	}
	d.replay.Stop(time)
}

func (d *Director) onDrag(time float64) {
	if c, ok := d.keyframed(); ok {
		c.UpdateAnimation(time)
	}
	d.replay.TimeUpdate(time, true)
}

func (d *Director) onKeyframe(time float64) {
	if d.active == nil {
		return
	}
	if d.active.IsFree() {
		if _, ok := d.AddCamera(); !ok {
			return
		}
	}
	if k, ok := d.active.MakeKeyframe(time); ok {
		d.current = k
		d.logger.Printf("[cinematic] Keyframe added to '%s' at %.2f", d.active.Tag(), time)
	}
}

func (d *Director) onKeyframeEdit(enabled bool) {
	if _, ok := d.keyframed(); !ok {
		return
	}
	if d.current == nil {
		d.timeline.ForceKeyframeEditing(false)
	}
}

// keyframed returns the active camera when it is not the free camera.
func (d *Director) keyframed() (*camera.Camera, bool) {
	if d.active == nil || d.active.IsFree() {
		return nil, false
	}
	return d.active, true
}

func (d *Director) indexOf(c *camera.Camera) int {
	if c == nil {
		return -1
	}
	for i, cam := range d.cameras {
		if cam == c {
			return i
		}
	}
	return -1
}
