package engine

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/ivlev/cinematic/internal/camera"
	"github.com/ivlev/cinematic/internal/config"
	"github.com/ivlev/cinematic/internal/director"
	"github.com/ivlev/cinematic/internal/scene"
	"github.com/ivlev/cinematic/internal/system"
)

// Frame is one baked camera sample.
type Frame struct {
	Index    int          `yaml:"i"`
	Time     float64      `yaml:"t"`
	Position mgl64.Vec3   `yaml:"pos,flow"`
	Angles   scene.Angles `yaml:"rot,flow"`
	Fov      float64      `yaml:"fov"`
}

// CameraBake holds every frame of one camera.
type CameraBake struct {
	Tag       string  `yaml:"tag"`
	FPS       int     `yaml:"fps"`
	BeginTime float64 `yaml:"begin_time"`
	EndTime   float64 `yaml:"end_time"`
	Frames    []Frame `yaml:"frames"`
	Path      string  `yaml:"-"`
}

// BakeProject samples every camera of a session at a fixed rate and
// writes one frame file per camera.
type BakeProject struct {
	Config    *config.Config
	Session   *director.Session
	Registry  scene.Registry
	OutputDir string
}

func NewBakeProject(cfg *config.Config, session *director.Session, registry scene.Registry, outputDir string) *BakeProject {
	return &BakeProject{
		Config:    cfg,
		Session:   session,
		Registry:  registry,
		OutputDir: outputDir,
	}
}

// Report summarizes a bake run.
type Report struct {
	Cameras  int
	Frames   int
	Skipped  int
	Duration time.Duration
	RSSBytes uint64
}

// EffectiveFPS is frames produced per wall-clock second.
func (r Report) EffectiveFPS() float64 {
	if r.Duration <= 0 {
		return 0
	}
	return float64(r.Frames) / r.Duration.Seconds()
}

// Run bakes all cameras concurrently. The first failure cancels the rest.
func (p *BakeProject) Run(ctx context.Context) ([]*CameraBake, Report, error) {
	start := time.Now()
	if p.Session == nil || len(p.Session.Cameras) == 0 {
		return nil, Report{}, fmt.Errorf("session has no cameras")
	}
	fps := p.Config.BakeFPS
	if fps <= 0 {
		return nil, Report{}, fmt.Errorf("invalid bake fps: %d", fps)
	}
	if err := os.MkdirAll(p.OutputDir, 0755); err != nil {
		return nil, Report{}, fmt.Errorf("create output dir: %w", err)
	}

	workers := p.Config.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	fmt.Println("--- [CINEMATIC BAKE] ---")
	fmt.Printf("[*] Session: %s | Cameras: %d\n", p.Session.ID, len(p.Session.Cameras))
	fmt.Printf("[*] %d FPS | Workers: %d\n", fps, workers)
	fmt.Println("------------------------")

	results := make([]*CameraBake, len(p.Session.Cameras))
	var done atomic.Int32

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, st := range p.Session.Cameras {
		g.Go(func() error {
			cam := st.Build(p.Registry)
			bake, err := BakeCamera(gctx, cam, fps)
			if err != nil {
				return fmt.Errorf("bake %s: %w", st.Tag, err)
			}
			if len(bake.Frames) == 0 {
				fmt.Printf("[!] Camera %s has no keyframes, skipped\n", st.Tag)
				return nil
			}
			bake.Path = filepath.Join(p.OutputDir, bake.Tag+".yaml")
			if err := WriteCameraBake(bake, bake.Path); err != nil {
				return err
			}
			results[i] = bake
			fmt.Printf("[>] Ready: %d/%d (%s, %d frames)\n", done.Add(1), len(p.Session.Cameras), st.Tag, len(bake.Frames))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Report{}, err
	}

	var out []*CameraBake
	report := Report{Duration: time.Since(start)}
	for _, b := range results {
		if b == nil {
			report.Skipped++
			continue
		}
		out = append(out, b)
		report.Cameras++
		report.Frames += len(b.Frames)
	}
	report.RSSBytes = system.CurrentRSS()

	if p.Config.ShowStats {
		p.printReport(report)
	}
	return out, report, nil
}

// MaxBakeFrames bounds the frames baked for one camera.
const MaxBakeFrames = 1 << 20

// BakeCamera samples c's track from its begin time to its end at fps.
// Sample times are derived from the frame index so they never drift.
func BakeCamera(ctx context.Context, c *camera.Camera, fps int) (*CameraBake, error) {
	if fps <= 0 {
		return nil, fmt.Errorf("invalid bake fps: %d", fps)
	}
	tr := c.Track()
	bake := &CameraBake{Tag: c.Tag(), FPS: fps}
	if tr.Empty() {
		return bake, nil
	}

	begin := tr.BeginTime()
	length := tr.ActualLength()
	bake.BeginTime = begin
	bake.EndTime = begin + length

	frames := math.Floor(length*float64(fps)+1e-9) + 1
	if math.IsNaN(frames) || frames > MaxBakeFrames {
		return nil, fmt.Errorf("track %s spans %g s: more than %d frames at %d fps", c.Tag(), length, MaxBakeFrames, fps)
	}
	count := int(frames)
	bake.Frames = make([]Frame, 0, count)
	for i := 0; i < count; i++ {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		t := begin + float64(i)/float64(fps)
		if t > bake.EndTime {
			t = bake.EndTime
		}
		c.UpdateAnimation(t)
		v := c.View()
		bake.Frames = append(bake.Frames, Frame{
			Index:    i,
			Time:     t,
			Position: v.Position,
			Angles:   scene.AnglesFromQuat(v.Rotation),
			Fov:      v.Fov,
		})
	}
	return bake, nil
}

// WriteCameraBake writes a baked camera to a YAML file
func WriteCameraBake(b *CameraBake, path string) error {
	data, err := yaml.Marshal(b)
	if err != nil {
		return fmt.Errorf("marshal bake %s: %w", b.Tag, err)
	}
	return os.WriteFile(path, data, 0644)
}

// ReadCameraBake reads a baked camera from a YAML file
func ReadCameraBake(path string) (*CameraBake, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var b CameraBake
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parse bake %s: %w", path, err)
	}
	b.Path = path
	return &b, nil
}

func (p *BakeProject) printReport(r Report) {
	report := fmt.Sprintf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Total Time: %.2fs\n"+
			"Cameras: %d (skipped %d)\n"+
			"Frames: %d\n"+
			"Effective FPS: %.2f\n"+
			"RSS: %.1f MiB\n"+
			"----------------------------\n",
		p.Config.BuildVersion, r.Duration.Seconds(), r.Cameras, r.Skipped, r.Frames, r.EffectiveFPS(), float64(r.RSSBytes)/(1<<20),
	)
	fmt.Print(report)

	logEntry := fmt.Sprintf("[%s] Build: %s | Session: %s | Cameras: %d | Frames: %d | Total: %.2fs | FPS: %.2f\n",
		time.Now().Format("2006-01-02 15:04:05"),
		p.Config.BuildVersion,
		p.Session.ID,
		r.Cameras,
		r.Frames,
		r.Duration.Seconds(),
		r.EffectiveFPS(),
	)

	f, err := os.OpenFile(filepath.Join(p.OutputDir, "benchmark.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		f.WriteString(logEntry)
		f.Close()
	} else {
		fmt.Printf("[!] Failed to write benchmark.log: %v\n", err)
	}
}
