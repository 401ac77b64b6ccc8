package director

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/ivlev/cinematic/internal/animation"
	"github.com/ivlev/cinematic/internal/config"
	"github.com/ivlev/cinematic/internal/scene"
)

// Editor operations act on the active keyframed camera and report false
// when there is none. Validation lives here so a GUI can pass raw values.

// CurrentKeyframe is the keyframe the editor is focused on.
func (d *Director) CurrentKeyframe() (*animation.Keyframe, bool) {
	return d.current, d.current != nil
}

// SetAnimationEnabled lets the active camera's track drive it during
// playback.
func (d *Director) SetAnimationEnabled(allow bool) bool {
	c, ok := d.keyframed()
	if !ok {
		return false
	}
	return c.SetAllowPlay(allow)
}

func (d *Director) ResetAnimation() bool {
	c, ok := d.keyframed()
	if !ok {
		return false
	}
	c.RemoveAnimation()
	d.current = nil
	d.timeline.ForceKeyframeEditing(false)
	d.logger.Printf("[cinematic] Reset animation for camera '%s'", c.Tag())
	return true
}

// ScaleAnimation stretches the active track to length seconds.
func (d *Director) ScaleAnimation(length float64) bool {
	c, ok := d.keyframed()
	if !ok {
		return false
	}
	before := c.Track().ActualLength()
	if !c.Track().Scale(length) {
		return false
	}
	d.logger.Printf("[cinematic] Scale animation for camera '%s' (%.2f -> %.2f)", c.Tag(), before, length)
	return true
}

func (d *Director) SetBeginTime(begin float64) bool {
	c, ok := d.keyframed()
	if !ok {
		return false
	}
	before := c.Track().BeginTime()
	if !c.Track().SetBeginTime(begin) {
		return false
	}
	d.logger.Printf("[cinematic] Set animation begin time for camera '%s' (%.2f -> %.2f)", c.Tag(), before, begin)
	return true
}

func (d *Director) SetSmooth(smooth float64) bool {
	c, ok := d.keyframed()
	if !ok {
		return false
	}
	c.Track().SetSmooth(smooth)
	return true
}

func (d *Director) SelectKeyframe(k *animation.Keyframe) bool {
	c, ok := d.keyframed()
	if !ok || !c.Track().Select(k) {
		return false
	}
	d.current = k
	return true
}

// EditKeyframe applies fn to the current keyframe, rebuilds the track and
// shows the edited pose.
func (d *Director) EditKeyframe(fn func(k *animation.Keyframe)) bool {
	c, ok := d.keyframed()
	if !ok || d.current == nil {
		return false
	}
	k := d.current
	if !c.Track().Edit(k, fn) {
		return false
	}
	c.UpdateAnimation(c.Track().BeginTime() + k.Time)
	return true
}

func (d *Director) EditKeyframePosition(pos mgl64.Vec3) bool {
	return d.EditKeyframe(func(k *animation.Keyframe) { k.Position = pos })
}

func (d *Director) EditKeyframeAngles(a scene.Angles) bool {
	return d.EditKeyframe(func(k *animation.Keyframe) {
		k.Pitch, k.Yaw, k.Roll = a.X, a.Y, a.Z
	})
}

func (d *Director) EditKeyframeHeading(h scene.Angles) bool {
	return d.EditKeyframe(func(k *animation.Keyframe) {
		k.HeadingX, k.HeadingY, k.HeadingZ = h.X, h.Y, h.Z
	})
}

func (d *Director) EditKeyframeFov(fov float64) bool {
	return d.EditKeyframe(func(k *animation.Keyframe) { k.Fov = fov })
}

func (d *Director) EditKeyframeTime(time float64) bool {
	return d.EditKeyframe(func(k *animation.Keyframe) { k.Time = time })
}

func (d *Director) SetKeyframeActive(active bool) bool {
	return d.EditKeyframe(func(k *animation.Keyframe) { k.Active = active })
}

// DuplicateKeyframe copies the current keyframe, retiring the original.
func (d *Director) DuplicateKeyframe() (*animation.Keyframe, bool) {
	c, ok := d.keyframed()
	if !ok {
		return nil, false
	}
	dup, ok := c.Track().Duplicate()
	if !ok {
		return nil, false
	}
	d.current = dup
	return dup, true
}

func (d *Director) RemoveKeyframe(k *animation.Keyframe) bool {
	c, ok := d.keyframed()
	if !ok || !c.Track().Remove(k) {
		return false
	}
	if d.current == k {
		d.current = nil
		d.timeline.ForceKeyframeEditing(false)
	}
	return true
}

// SetSpeed clamps and persists the free-fly speed.
func (d *Director) SetSpeed(v float64) float64 {
	d.speed = config.ClampSpeed(v)
	if d.settings != nil {
		if _, err := d.settings.SetSpeed(d.speed); err != nil {
			d.logger.Printf("[cinematic] Warning: %v", err)
		}
	}
	return d.speed
}

// SetSpeedMultiplier clamps and persists the boost multiplier.
func (d *Director) SetSpeedMultiplier(v float64) float64 {
	d.speedMultiplier = config.ClampSpeedMultiplier(v)
	if d.settings != nil {
		if _, err := d.settings.SetSpeedMultiplier(d.speedMultiplier); err != nil {
			d.logger.Printf("[cinematic] Warning: %v", err)
		}
	}
	return d.speedMultiplier
}
