package engine

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/ivlev/cinematic/internal/config"
	"github.com/ivlev/cinematic/internal/director"
	"github.com/ivlev/cinematic/internal/scene"
)

func twoKeyCamera(tag string, begin, length float64) director.CameraState {
	return director.CameraState{
		Tag: tag,
		Fov: 60,
		Track: director.TrackState{
			BeginTime: begin,
			Smooth:    1,
			Keyframes: []director.KeyframeState{
				{Time: 0, Fov: 60, Active: true},
				{Time: length, Position: mgl64.Vec3{length, 0, 0}, Fov: 90, Active: true},
			},
		},
	}
}

func TestBakeCameraFrameCount(t *testing.T) {
	tests := []struct {
		name       string
		length     float64
		fps        int
		wantFrames int
	}{
		{"one second at 30", 1, 30, 31},
		{"two seconds at 24", 2, 24, 49},
		{"fractional length", 0.5, 10, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := twoKeyCamera("c", 0, tt.length).Build(nil)
			bake, err := BakeCamera(context.Background(), cam, tt.fps)
			if err != nil {
				t.Fatalf("BakeCamera: %v", err)
			}
			if len(bake.Frames) != tt.wantFrames {
				t.Fatalf("Expected %d frames, got %d", tt.wantFrames, len(bake.Frames))
			}

			first, last := bake.Frames[0], bake.Frames[len(bake.Frames)-1]
			if first.Position.X() != 0 || first.Fov != 60 {
				t.Errorf("first frame %+v", first)
			}
			if math.Abs(last.Position.X()-tt.length) > 1e-9 || last.Fov != 90 {
				t.Errorf("last frame %+v", last)
			}

			// frame times are index/fps, no accumulated drift
			for i, f := range bake.Frames {
				want := float64(i) / float64(tt.fps)
				if math.Abs(f.Time-want) > 1e-12 {
					t.Errorf("frame %d time %v, want %v", i, f.Time, want)
				}
			}
		})
	}
}

func TestBakeCameraHonoursBeginTime(t *testing.T) {
	cam := twoKeyCamera("c", 3, 1).Build(nil)
	bake, err := BakeCamera(context.Background(), cam, 4)
	if err != nil {
		t.Fatal(err)
	}
	if bake.BeginTime != 3 || bake.EndTime != 4 {
		t.Errorf("window %v..%v", bake.BeginTime, bake.EndTime)
	}
	if bake.Frames[0].Time != 3 || bake.Frames[0].Position.X() != 0 {
		t.Errorf("first frame %+v", bake.Frames[0])
	}
}

func TestBakeCameraEmptyTrack(t *testing.T) {
	cam := director.CameraState{Tag: "empty", Fov: 60}.Build(nil)
	bake, err := BakeCamera(context.Background(), cam, 30)
	if err != nil {
		t.Fatal(err)
	}
	if len(bake.Frames) != 0 {
		t.Errorf("expected no frames, got %d", len(bake.Frames))
	}
}

func TestBakeCameraCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cam := twoKeyCamera("c", 0, 1).Build(nil)
	if _, err := BakeCamera(ctx, cam, 30); err == nil {
		t.Error("expected context error")
	}
}

func TestBakeCameraRejectsOversizedTrack(t *testing.T) {
	tests := []struct {
		name   string
		length float64
		fps    int
	}{
		{"huge key time", 1e300, 30},
		{"long track", float64(MaxBakeFrames), 60},
		{"zero fps", 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := twoKeyCamera("c", 0, tt.length).Build(nil)
			if bake, err := BakeCamera(context.Background(), cam, tt.fps); err == nil {
				t.Errorf("expected error, got %d frames", len(bake.Frames))
			}
		})
	}
}

func TestBakeCameraNonFiniteSession(t *testing.T) {
	st := twoKeyCamera("c", math.NaN(), 1)
	st.Track.Smooth = math.NaN()
	st.Track.Keyframes[1].Time = math.NaN()
	st.Track.Keyframes[1].Fov = math.NaN()

	bake, err := BakeCamera(context.Background(), st.Build(nil), 30)
	if err != nil {
		t.Fatalf("BakeCamera: %v", err)
	}
	if bake.BeginTime != 0 || len(bake.Frames) != 1 {
		t.Fatalf("begin %v, %d frames", bake.BeginTime, len(bake.Frames))
	}
	if f := bake.Frames[0]; f.Position.X() != 1 || f.Fov != 60 {
		t.Errorf("frame %+v", f)
	}
}

func TestBakeProjectRun(t *testing.T) {
	cfg := config.Default()
	cfg.BakeFPS = 10
	cfg.Workers = 2

	session := director.NewSession(60)
	session.Cameras = []director.CameraState{
		twoKeyCamera("Camera_0", 0, 1),
		twoKeyCamera("Camera_1", 0, 2),
		{Tag: "Camera_2", Fov: 60},
	}

	out := filepath.Join(t.TempDir(), "bake")
	bakes, report, err := NewBakeProject(cfg, session, scene.NewGraph(), out).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Cameras != 2 || report.Skipped != 1 || report.Frames != 11+21 {
		t.Errorf("report %+v", report)
	}
	if len(bakes) != 2 {
		t.Fatalf("bakes %d", len(bakes))
	}

	read, err := ReadCameraBake(bakes[1].Path)
	if err != nil {
		t.Fatalf("ReadCameraBake: %v", err)
	}
	if read.Tag != "Camera_1" || len(read.Frames) != 21 || read.FPS != 10 {
		t.Errorf("read back %s: %d frames @%d", read.Tag, len(read.Frames), read.FPS)
	}
}

func TestBakeProjectRejectsEmptySession(t *testing.T) {
	_, _, err := NewBakeProject(config.Default(), director.NewSession(60), nil, t.TempDir()).Run(context.Background())
	if err == nil {
		t.Error("expected error")
	}
}
