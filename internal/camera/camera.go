package camera

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/ivlev/cinematic/internal/animation"
	"github.com/ivlev/cinematic/internal/scene"
)

// View is what the render host needs to place its camera.
type View struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
	Fov      float64
}

// MoveInput is one frame of free-fly translation input. Axes are in
// [-1, 1] and expressed in the camera's local frame.
type MoveInput struct {
	Forward float64
	Right   float64
	Up      float64
	Boost   bool
}

// Camera is one operator-placed camera with its animation track.
type Camera struct {
	tag      string
	free     bool
	registry scene.Registry

	// position is world-absolute or parent-relative depending on placement.
	position mgl64.Vec3
	angles   scene.Angles
	heading  scene.Angles
	fov      float64
	enabled  bool

	orientation OrientationMode
	placement   PositionMode

	track *animation.Track
}

// New creates a camera at the given world transform. registry resolves
// look-at targets and hook parents and may be nil.
func New(tag string, free bool, registry scene.Registry, at scene.Transform, fov float64) *Camera {
	return &Camera{
		tag:         tag,
		free:        free,
		registry:    registry,
		position:    at.Position,
		angles:      scene.AnglesFromQuat(at.Rotation),
		fov:         animation.ClampFov(fov),
		orientation: FreeOrientation{},
		placement:   WorldPosition{},
		track:       animation.NewTrack(),
	}
}

func (c *Camera) Tag() string                  { return c.tag }
func (c *Camera) IsFree() bool                 { return c.free }
func (c *Camera) Enabled() bool                { return c.enabled }
func (c *Camera) SetEnabled(enabled bool)      { c.enabled = enabled }
func (c *Camera) Track() *animation.Track      { return c.track }
func (c *Camera) Fov() float64                 { return c.fov }
func (c *Camera) Orientation() OrientationMode { return c.orientation }
func (c *Camera) Placement() PositionMode      { return c.placement }
func (c *Camera) Heading() scene.Angles        { return c.heading }

// SetFov clamps to [animation.MinFov, animation.MaxFov].
func (c *Camera) SetFov(fov float64) {
	c.fov = animation.ClampFov(fov)
}

// AdjustFov applies a relative change, e.g. from the scroll wheel.
func (c *Camera) AdjustFov(delta float64) {
	c.SetFov(c.fov + delta)
}

// SetAllowPlay lets the track drive the camera during playback. The free
// camera never plays.
func (c *Camera) SetAllowPlay(allow bool) bool {
	if c.free {
		c.track.SetAllowPlay(false)
		return false
	}
	c.track.SetAllowPlay(allow)
	return true
}

// State reports where the camera is in the activation state machine.
func (c *Camera) State(timelinePlaying bool) State {
	switch {
	case !c.enabled:
		return Inactive
	case c.free:
		return ActiveManual
	case c.track.AllowPlay() && timelinePlaying && !c.track.Empty():
		return ActiveKeyframedPlaying
	default:
		return ActiveKeyframedRecording
	}
}

// WorldPosition resolves the stored position through the hook parent.
func (c *Camera) WorldPosition() mgl64.Vec3 {
	if parent, ok := c.parent(); ok {
		return parent.ToWorld(c.position)
	}
	return c.position
}

// LocalPosition is the stored position in the placement's frame.
func (c *Camera) LocalPosition() mgl64.Vec3 {
	return c.position
}

// Angles are the camera's world Euler angles.
func (c *Camera) Angles() scene.Angles {
	return c.angles
}

// Rotation is the camera's world rotation.
func (c *Camera) Rotation() mgl64.Quat {
	if look, ok := c.look(); ok {
		return look.Mul(c.heading.Quat()).Normalize()
	}
	return c.angles.Quat()
}

func (c *Camera) Transform() scene.Transform {
	return scene.Transform{Position: c.WorldPosition(), Rotation: c.Rotation()}
}

// View is the pose handed to the render host.
func (c *Camera) View() View {
	return View{Position: c.WorldPosition(), Rotation: c.Rotation(), Fov: c.fov}
}

// SetTransform places the camera at a world transform, keeping the
// current modes.
func (c *Camera) SetTransform(t scene.Transform) {
	c.setWorldPosition(t.Position)
	c.angles = scene.AnglesFromQuat(t.Rotation)
	if look, ok := c.look(); ok {
		c.heading = scene.AnglesFromQuat(look.Inverse().Mul(t.Rotation))
	}
}

// SetOrientationMode switches between free and look-at orientation without
// moving the view. When the new target cannot be resolved the mode is
// still recorded and takes effect once the target appears.
func (c *Camera) SetOrientationMode(m OrientationMode) {
	if m == nil {
		m = FreeOrientation{}
	}
	rot := c.Rotation()
	c.orientation = m
	c.angles = scene.AnglesFromQuat(rot)
	if look, ok := c.look(); ok {
		c.heading = scene.AnglesFromQuat(look.Inverse().Mul(rot))
	} else {
		c.heading = scene.Angles{}
	}
}

// SetPositionMode switches between world and parent-relative placement
// without moving the camera.
func (c *Camera) SetPositionMode(m PositionMode) {
	if m == nil {
		m = WorldPosition{}
	}
	world := c.WorldPosition()
	c.placement = m
	c.setWorldPosition(world)
}

// Move translates the camera along its local axes.
func (c *Camera) Move(in MoveInput, dt, speed, speedMultiplier float64) {
	if dt <= 0 {
		return
	}
	if in.Boost {
		speed *= speedMultiplier
	}
	dir := c.Rotation().Rotate(mgl64.Vec3{in.Right, in.Up, in.Forward})
	delta := dir.Mul(speed * dt)
	if parent, ok := c.parent(); ok {
		c.position = c.position.Add(parent.Rotation.Inverse().Rotate(delta))
		return
	}
	c.position = c.position.Add(delta)
}

// Rotate turns the camera by the given degrees. In look-at mode the
// deltas offset the heading instead.
func (c *Camera) Rotate(pitch, yaw, roll float64) {
	delta := scene.Angles{X: pitch, Y: yaw, Z: roll}
	if _, ok := c.orientation.(LookAt); ok {
		c.heading = c.heading.Add(delta)
		c.Follow()
		return
	}
	c.angles = c.angles.Add(delta)
}

// Follow re-resolves the look-at target. Hook parents are resolved on
// every read and need no refresh.
func (c *Camera) Follow() {
	if look, ok := c.look(); ok {
		c.angles = scene.AnglesFromQuat(look.Mul(c.heading.Quat()))
	}
}

// MakeKeyframe captures the current pose at time into the track. The free
// camera never records.
func (c *Camera) MakeKeyframe(time float64) (*animation.Keyframe, bool) {
	if c.free {
		return nil, false
	}
	if prev, ok := c.keyframeBefore(time); ok {
		c.angles = c.angles.Unwrap(scene.Angles{X: prev.Pitch, Y: prev.Yaw, Z: prev.Roll})
	}
	k := animation.NewKeyframe(time, animation.Pose{
		Position: c.position,
		Angles:   c.angles,
		Heading:  c.heading,
		Fov:      c.fov,
	})
	c.track.Add(k)
	return k, true
}

// UpdateAnimation applies the track's pose at timeline time. It returns
// false when the track has nothing to evaluate.
func (c *Camera) UpdateAnimation(time float64) bool {
	pose, ok := c.track.Evaluate(time)
	if !ok {
		return false
	}
	c.position = pose.Position
	c.angles = pose.Angles
	c.heading = pose.Heading
	c.fov = animation.ClampFov(pose.Fov)
	c.Follow()
	return true
}

// RemoveAnimation drops the track's keyframes and stops playback.
func (c *Camera) RemoveAnimation() {
	c.track.RemoveAnimation()
}

// ResetState releases the target and parent references, keeping the
// current view.
func (c *Camera) ResetState() {
	c.SetOrientationMode(FreeOrientation{})
	c.SetPositionMode(WorldPosition{})
}

// Raw is the camera's stored state in its own frames. Sessions persist
// it so a restore reproduces the camera without any pose conversion.
type Raw struct {
	Position    mgl64.Vec3
	Angles      scene.Angles
	Heading     scene.Angles
	Fov         float64
	Orientation OrientationMode
	Placement   PositionMode
}

func (c *Camera) Raw() Raw {
	return Raw{
		Position:    c.position,
		Angles:      c.angles,
		Heading:     c.heading,
		Fov:         c.fov,
		Orientation: c.orientation,
		Placement:   c.placement,
	}
}

// SetRaw overwrites the stored state verbatim.
func (c *Camera) SetRaw(r Raw) {
	if r.Orientation == nil {
		r.Orientation = FreeOrientation{}
	}
	if r.Placement == nil {
		r.Placement = WorldPosition{}
	}
	c.position = r.Position
	c.angles = r.Angles
	c.heading = r.Heading
	c.fov = animation.ClampFov(r.Fov)
	c.orientation = r.Orientation
	c.placement = r.Placement
}

func (c *Camera) setWorldPosition(world mgl64.Vec3) {
	if parent, ok := c.parent(); ok {
		c.position = parent.ToLocal(world)
		return
	}
	c.position = world
}

func (c *Camera) keyframeBefore(time float64) (*animation.Keyframe, bool) {
	var prev *animation.Keyframe
	for _, k := range c.track.Keyframes() {
		if k.Time > time {
			break
		}
		prev = k
	}
	return prev, prev != nil
}

func (c *Camera) look() (mgl64.Quat, bool) {
	m, ok := c.orientation.(LookAt)
	if !ok || c.registry == nil {
		return mgl64.Quat{}, false
	}
	target, ok := c.registry.Lookup(m.Target)
	if !ok {
		return mgl64.Quat{}, false
	}
	return scene.LookRotation(c.WorldPosition(), target.Position)
}

func (c *Camera) parent() (scene.Transform, bool) {
	m, ok := c.placement.(HookTo)
	if !ok || c.registry == nil {
		return scene.Transform{}, false
	}
	return c.registry.Lookup(m.Parent)
}
