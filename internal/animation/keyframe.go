package animation

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/ivlev/cinematic/internal/scene"
)

// Lens limits shared by keyframes and cameras.
const (
	MinFov     = 10.0
	MaxFov     = 120.0
	DefaultFov = 60.0
)

// ClampFov limits a field of view to [MinFov, MaxFov]. NaN becomes
// DefaultFov.
func ClampFov(fov float64) float64 {
	if math.IsNaN(fov) {
		return DefaultFov
	}
	if fov < MinFov {
		return MinFov
	}
	if fov > MaxFov {
		return MaxFov
	}
	return fov
}

// Pose is a camera placement and lens state at one instant.
type Pose struct {
	Position mgl64.Vec3
	Angles   scene.Angles // pitch, yaw, roll; used in free orientation
	Heading  scene.Angles // offsets from facing the target; used in look-at
	Fov      float64
}

// Keyframe is one captured camera pose bound to a track-local time.
// Fields are mutated only through Track.Edit so the track can rebuild.
type Keyframe struct {
	Time     float64
	Position mgl64.Vec3

	Pitch float64
	Yaw   float64
	Roll  float64

	HeadingX float64
	HeadingY float64
	HeadingZ float64

	Fov    float64
	Active bool
}

// NewKeyframe captures pose at time as an active keyframe.
func NewKeyframe(time float64, pose Pose) *Keyframe {
	k := &Keyframe{
		Time:     time,
		Position: pose.Position,
		Pitch:    pose.Angles.X,
		Yaw:      pose.Angles.Y,
		Roll:     pose.Angles.Z,
		HeadingX: pose.Heading.X,
		HeadingY: pose.Heading.Y,
		HeadingZ: pose.Heading.Z,
		Fov:      pose.Fov,
		Active:   true,
	}
	k.sanitize()
	return k
}

// Clone returns a deep copy.
func (k *Keyframe) Clone() *Keyframe {
	c := *k
	return &c
}

// Pose returns the stored pose.
func (k *Keyframe) Pose() Pose {
	return Pose{
		Position: k.Position,
		Angles:   scene.Angles{X: k.Pitch, Y: k.Yaw, Z: k.Roll},
		Heading:  scene.Angles{X: k.HeadingX, Y: k.HeadingY, Z: k.HeadingZ},
		Fov:      k.Fov,
	}
}

// sanitize zeroes non-finite channels and clamps time and fov.
func (k *Keyframe) sanitize() {
	if k.Time < 0 || !finite(k.Time) {
		k.Time = 0
	}
	for i := range k.Position {
		if !finite(k.Position[i]) {
			k.Position[i] = 0
		}
	}
	for _, v := range []*float64{&k.Pitch, &k.Yaw, &k.Roll, &k.HeadingX, &k.HeadingY, &k.HeadingZ} {
		if !finite(*v) {
			*v = 0
		}
	}
	k.Fov = ClampFov(k.Fov)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func (k *Keyframe) sample() sample {
	return sample{
		k.Position.X(), k.Position.Y(), k.Position.Z(),
		k.Pitch, k.Yaw, k.Roll,
		k.HeadingX, k.HeadingY, k.HeadingZ,
		k.Fov,
	}
}

func (s sample) pose() Pose {
	return Pose{
		Position: mgl64.Vec3{s[0], s[1], s[2]},
		Angles:   scene.Angles{X: s[3], Y: s[4], Z: s[5]},
		Heading:  scene.Angles{X: s[6], Y: s[7], Z: s[8]},
		Fov:      ClampFov(s[9]),
	}
}
