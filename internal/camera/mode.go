package camera

import "github.com/ivlev/cinematic/internal/scene"

// OrientationMode selects how a camera's rotation is derived.
// It is either FreeOrientation or LookAt.
type OrientationMode interface {
	isOrientationMode()
}

// FreeOrientation uses the camera's own pitch/yaw/roll.
type FreeOrientation struct{}

// LookAt faces Target every frame and then applies the heading offsets.
type LookAt struct {
	Target scene.Handle
}

func (FreeOrientation) isOrientationMode() {}
func (LookAt) isOrientationMode()          {}

// PositionMode selects the frame the camera's position is expressed in.
// It is either WorldPosition or HookTo.
type PositionMode interface {
	isPositionMode()
}

// WorldPosition stores world-absolute positions.
type WorldPosition struct{}

// HookTo stores positions relative to Parent, so a moving parent carries
// the camera.
type HookTo struct {
	Parent scene.Handle
}

func (WorldPosition) isPositionMode() {}
func (HookTo) isPositionMode()        {}

// State is the camera's place in the activation state machine.
type State int

const (
	Inactive State = iota
	ActiveManual
	ActiveKeyframedRecording
	ActiveKeyframedPlaying
)

func (s State) String() string {
	switch s {
	case Inactive:
		return "inactive"
	case ActiveManual:
		return "manual"
	case ActiveKeyframedRecording:
		return "recording"
	case ActiveKeyframedPlaying:
		return "playing"
	default:
		return "unknown"
	}
}
