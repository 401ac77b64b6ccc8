package director

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/ivlev/cinematic/internal/animation"
	"github.com/ivlev/cinematic/internal/camera"
	"github.com/ivlev/cinematic/internal/scene"
)

// SessionVersion is written into every session file.
const SessionVersion = "1.0"

// Session is a saved set of keyframed cameras
type Session struct {
	Version        string        `yaml:"version"`
	ID             string        `yaml:"id"`
	CreatedAt      time.Time     `yaml:"created_at"`
	TimelineLength float64       `yaml:"timeline_length"`
	Active         string        `yaml:"active,omitempty"`
	Cameras        []CameraState `yaml:"cameras"`
}

// CameraState is one camera as stored in a session. Position is in the
// camera's placement frame: world, or relative to HookTo.
type CameraState struct {
	Tag      string       `yaml:"tag"`
	Position mgl64.Vec3   `yaml:"position,flow"`
	Angles   scene.Angles `yaml:"angles,flow"`
	Heading  scene.Angles `yaml:"heading,flow"`
	Fov      float64      `yaml:"fov"`
	LookAt   scene.Handle `yaml:"look_at,omitempty"`
	HookTo   scene.Handle `yaml:"hook_to,omitempty"`
	Track    TrackState   `yaml:"track"`
}

type TrackState struct {
	BeginTime float64         `yaml:"begin_time"`
	Smooth    float64         `yaml:"smooth"`
	AllowPlay bool            `yaml:"allow_play"`
	Keyframes []KeyframeState `yaml:"keyframes"`
}

// KeyframeState is a keyframe with its time offset in seconds
type KeyframeState struct {
	Time     float64      `yaml:"time"`
	Position mgl64.Vec3   `yaml:"position,flow"`
	Angles   scene.Angles `yaml:"angles,flow"`
	Heading  scene.Angles `yaml:"heading,flow"`
	Fov      float64      `yaml:"fov"`
	Active   bool         `yaml:"active"`
}

// NewSession returns an empty session with a fresh ID.
func NewSession(timelineLength float64) *Session {
	return &Session{
		Version:        SessionVersion,
		ID:             uuid.NewString(),
		CreatedAt:      time.Now().UTC(),
		TimelineLength: timelineLength,
	}
}

// CaptureCamera records c's stored state and track.
func CaptureCamera(c *camera.Camera) CameraState {
	raw := c.Raw()
	st := CameraState{
		Tag:      c.Tag(),
		Position: raw.Position,
		Angles:   raw.Angles,
		Heading:  raw.Heading,
		Fov:      raw.Fov,
	}
	if m, ok := raw.Orientation.(camera.LookAt); ok {
		st.LookAt = m.Target
	}
	if m, ok := raw.Placement.(camera.HookTo); ok {
		st.HookTo = m.Parent
	}

	tr := c.Track()
	st.Track = TrackState{
		BeginTime: tr.BeginTime(),
		Smooth:    tr.Smooth(),
		AllowPlay: tr.AllowPlay(),
	}
	for _, k := range tr.Keyframes() {
		p := k.Pose()
		st.Track.Keyframes = append(st.Track.Keyframes, KeyframeState{
			Time:     k.Time,
			Position: p.Position,
			Angles:   p.Angles,
			Heading:  p.Heading,
			Fov:      p.Fov,
			Active:   k.Active,
		})
	}
	return st
}

// Build creates the camera described by st.
func (st CameraState) Build(registry scene.Registry) *camera.Camera {
	c := camera.New(st.Tag, false, registry, scene.Identity(), st.Fov)
	raw := camera.Raw{
		Position:    st.Position,
		Angles:      st.Angles,
		Heading:     st.Heading,
		Fov:         st.Fov,
		Orientation: camera.FreeOrientation{},
		Placement:   camera.WorldPosition{},
	}
	if st.LookAt != "" {
		raw.Orientation = camera.LookAt{Target: st.LookAt}
	}
	if st.HookTo != "" {
		raw.Placement = camera.HookTo{Parent: st.HookTo}
	}
	c.SetRaw(raw)

	tr := c.Track()
	for _, ks := range st.Track.Keyframes {
		k := animation.NewKeyframe(ks.Time, animation.Pose{
			Position: ks.Position,
			Angles:   ks.Angles,
			Heading:  ks.Heading,
			Fov:      ks.Fov,
		})
		k.Active = ks.Active
		tr.Add(k)
	}
	tr.SetBeginTime(st.Track.BeginTime)
	tr.SetSmooth(st.Track.Smooth)
	c.SetAllowPlay(st.Track.AllowPlay)
	return c
}

// Snapshot captures every keyframed camera.
func (d *Director) Snapshot() *Session {
	s := NewSession(d.timeline.Length())
	for _, c := range d.cameras {
		s.Cameras = append(s.Cameras, CaptureCamera(c))
	}
	if c, ok := d.keyframed(); ok {
		s.Active = c.Tag()
	}
	return s
}

var cameraTagPattern = regexp.MustCompile(`^Camera_(\d+)$`)

// Restore replaces the keyframed cameras with those in s. Cinematic mode
// must be on.
func (d *Director) Restore(s *Session) error {
	if s == nil {
		return fmt.Errorf("nil session")
	}
	if !d.enabled {
		return fmt.Errorf("restore session %s: cinematic mode is off", s.ID)
	}

	seen := make(map[string]bool, len(s.Cameras))
	for _, cs := range s.Cameras {
		if cs.Tag == "" || cs.Tag == FreeCamTag {
			return fmt.Errorf("restore session %s: invalid camera tag %q", s.ID, cs.Tag)
		}
		if seen[cs.Tag] {
			return fmt.Errorf("restore session %s: duplicate camera tag %q", s.ID, cs.Tag)
		}
		seen[cs.Tag] = true
	}

	d.SwitchToFreeCamera()
	for _, c := range d.Cameras() {
		d.RemoveCamera(c)
	}

	nextID := 0
	for _, cs := range s.Cameras {
		d.cameras = append(d.cameras, cs.Build(d.registry))
		if m := cameraTagPattern.FindStringSubmatch(cs.Tag); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n+1 > nextID {
				nextID = n + 1
			}
		}
	}
	d.nextID = nextID

	if s.TimelineLength > 0 {
		d.timeline.SetLength(s.TimelineLength)
	}
	if s.Active != "" {
		if c, ok := d.Camera(s.Active); ok {
			d.SetActiveCamera(c)
		}
	}

	d.logger.Printf("[cinematic] Restored session %s (%d cameras)", s.ID, len(s.Cameras))
	return nil
}
