package camera

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/ivlev/cinematic/internal/animation"
	"github.com/ivlev/cinematic/internal/scene"
)

func at(x, y, z float64) scene.Transform {
	return scene.Transform{Position: mgl64.Vec3{x, y, z}, Rotation: mgl64.QuatIdent()}
}

func vecNear(a, b mgl64.Vec3) bool {
	return a.Sub(b).Len() < 1e-6
}

func TestFovClamp(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{5, animation.MinFov},
		{60, 60},
		{400, animation.MaxFov},
		{math.NaN(), animation.DefaultFov},
	}
	for _, tt := range tests {
		c := New("cam", false, nil, at(0, 0, 0), tt.in)
		if c.Fov() != tt.want {
			t.Errorf("New fov %.0f: got %.0f", tt.in, c.Fov())
		}
		c.SetFov(60)
		c.AdjustFov(tt.in - 60)
		if c.Fov() != tt.want {
			t.Errorf("AdjustFov to %.0f: got %.0f", tt.in, c.Fov())
		}
	}
}

func TestMoveAlongLocalAxes(t *testing.T) {
	c := New("cam", true, nil, at(0, 0, 0), 60)
	c.Move(MoveInput{Forward: 1}, 0.5, 10, 3)
	if !vecNear(c.WorldPosition(), mgl64.Vec3{0, 0, 5}) {
		t.Errorf("forward: %v", c.WorldPosition())
	}

	c.Move(MoveInput{Right: 1, Boost: true}, 0.5, 10, 3)
	if !vecNear(c.WorldPosition(), mgl64.Vec3{15, 0, 5}) {
		t.Errorf("boosted right: %v", c.WorldPosition())
	}

	c.Rotate(0, 90, 0)
	c.Move(MoveInput{Forward: 1}, 1, 1, 1)
	if !vecNear(c.WorldPosition(), mgl64.Vec3{16, 0, 5}) {
		t.Errorf("forward after yaw: %v", c.WorldPosition())
	}
}

func TestFreeCameraNeverRecords(t *testing.T) {
	c := New("free", true, nil, at(0, 0, 0), 60)
	if _, ok := c.MakeKeyframe(1); ok {
		t.Error("free camera captured a keyframe")
	}
	if c.SetAllowPlay(true) || c.Track().AllowPlay() {
		t.Error("free camera allowed to play")
	}
	if c.Track().Len() != 0 {
		t.Error("free camera track not empty")
	}
}

func TestMakeKeyframeAndUpdateAnimation(t *testing.T) {
	c := New("cam", false, nil, at(0, 0, 0), 60)
	c.MakeKeyframe(0)

	c.SetTransform(scene.Transform{Position: mgl64.Vec3{10, 0, 0}, Rotation: scene.Angles{Y: 30}.Quat()})
	c.SetFov(90)
	c.MakeKeyframe(10)

	if !c.UpdateAnimation(5) {
		t.Fatal("UpdateAnimation failed")
	}
	if math.Abs(c.WorldPosition().X()-5) > 1e-9 || math.Abs(c.Fov()-75) > 1e-9 {
		t.Errorf("midpoint: pos %v fov %f", c.WorldPosition(), c.Fov())
	}

	c.UpdateAnimation(10)
	if !vecNear(c.WorldPosition(), mgl64.Vec3{10, 0, 0}) || c.Fov() != 90 {
		t.Errorf("end pose: %v %f", c.WorldPosition(), c.Fov())
	}
	if math.Abs(c.Angles().Y-30) > 1e-9 {
		t.Errorf("yaw %f", c.Angles().Y)
	}
}

func TestUpdateAnimationEmptyTrack(t *testing.T) {
	c := New("cam", false, nil, at(1, 2, 3), 60)
	if c.UpdateAnimation(3) {
		t.Error("empty track applied a pose")
	}
	if !vecNear(c.WorldPosition(), mgl64.Vec3{1, 2, 3}) {
		t.Error("empty track moved the camera")
	}
}

func TestMakeKeyframeUnwrapsAngles(t *testing.T) {
	c := New("cam", false, nil, scene.Transform{Rotation: scene.Angles{Y: 170}.Quat()}, 60)
	c.MakeKeyframe(0)
	c.Rotate(0, 20, 0)
	c.SetTransform(scene.Transform{Rotation: scene.Angles{Y: -170}.Quat()})
	k, _ := c.MakeKeyframe(1)
	if math.Abs(k.Yaw-190) > 1e-6 {
		t.Errorf("expected unwrapped yaw 190, got %f", k.Yaw)
	}
}

func TestLookAtFollowsMovingTarget(t *testing.T) {
	g := scene.NewGraph()
	g.Set("car", at(0, 0, 10))

	c := New("cam", false, g, at(0, 0, 0), 60)
	c.SetOrientationMode(LookAt{Target: "car"})
	if !vecNear(c.Rotation().Rotate(scene.Forward), mgl64.Vec3{0, 0, 1}) {
		t.Fatalf("mode switch moved the view: %v", c.Rotation().Rotate(scene.Forward))
	}
	c.MakeKeyframe(0)

	g.Set("car", at(10, 0, 0))
	c.UpdateAnimation(0)
	if !vecNear(c.Rotation().Rotate(scene.Forward), mgl64.Vec3{1, 0, 0}) {
		t.Errorf("camera did not turn to target: %v", c.Rotation().Rotate(scene.Forward))
	}
	if math.Abs(c.Angles().Y-90) > 1e-6 {
		t.Errorf("yaw %f", c.Angles().Y)
	}
}

func TestLookAtHeadingOffset(t *testing.T) {
	g := scene.NewGraph()
	g.Set("car", at(0, 0, 10))

	c := New("cam", false, g, scene.Transform{Rotation: scene.Angles{Y: 20}.Quat()}, 60)
	c.SetOrientationMode(LookAt{Target: "car"})
	if math.Abs(c.Heading().Y-20) > 1e-6 {
		t.Errorf("heading %v", c.Heading())
	}

	g.Set("car", at(10, 0, 0))
	c.Follow()
	if math.Abs(c.Angles().Y-110) > 1e-6 {
		t.Errorf("expected target yaw plus heading, got %f", c.Angles().Y)
	}
}

func TestLookAtMissingTargetIsNoop(t *testing.T) {
	g := scene.NewGraph()
	c := New("cam", false, g, scene.Transform{Rotation: scene.Angles{Y: 45}.Quat()}, 60)
	c.SetOrientationMode(LookAt{Target: "ghost"})
	c.Follow()
	if math.Abs(c.Angles().Y-45) > 1e-6 {
		t.Errorf("missing target changed orientation: %v", c.Angles())
	}
}

func TestHookToCarriesCamera(t *testing.T) {
	g := scene.NewGraph()
	g.Set("car", at(5, 0, 0))

	c := New("cam", false, g, at(6, 1, 0), 60)
	c.SetPositionMode(HookTo{Parent: "car"})
	if !vecNear(c.LocalPosition(), mgl64.Vec3{1, 1, 0}) {
		t.Fatalf("local %v", c.LocalPosition())
	}
	if !vecNear(c.WorldPosition(), mgl64.Vec3{6, 1, 0}) {
		t.Fatalf("mode switch moved the camera: %v", c.WorldPosition())
	}
	c.MakeKeyframe(0)

	g.Set("car", at(20, 0, 0))
	c.UpdateAnimation(0)
	if !vecNear(c.WorldPosition(), mgl64.Vec3{21, 1, 0}) {
		t.Errorf("camera not carried by parent: %v", c.WorldPosition())
	}

	c.ResetState()
	g.Set("car", at(0, 0, 0))
	if !vecNear(c.WorldPosition(), mgl64.Vec3{21, 1, 0}) {
		t.Errorf("released camera still follows parent: %v", c.WorldPosition())
	}
}

func TestState(t *testing.T) {
	free := New("free", true, nil, at(0, 0, 0), 60)
	cam := New("cam", false, nil, at(0, 0, 0), 60)

	if cam.State(true) != Inactive {
		t.Error("disabled camera should be inactive")
	}
	free.SetEnabled(true)
	if free.State(true) != ActiveManual {
		t.Error("free camera should be manual")
	}

	cam.SetEnabled(true)
	cam.SetAllowPlay(true)
	if cam.State(true) != ActiveKeyframedRecording {
		t.Error("empty track cannot play")
	}
	cam.MakeKeyframe(0)
	if cam.State(true) != ActiveKeyframedPlaying {
		t.Errorf("got %s", cam.State(true))
	}
	if cam.State(false) != ActiveKeyframedRecording {
		t.Error("stopped timeline falls back to recording")
	}
}
