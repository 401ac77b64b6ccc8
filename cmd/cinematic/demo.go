package main

import (
	"fmt"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/spf13/cobra"

	"github.com/ivlev/cinematic/internal/camera"
	"github.com/ivlev/cinematic/internal/director"
	"github.com/ivlev/cinematic/internal/host"
	"github.com/ivlev/cinematic/internal/scene"
)

// step is one scripted stretch of operator input between keyframes.
type step struct {
	at     float64 // play-head position for the keyframe
	frames int
	input  director.Input
}

func demoCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Record a scripted two-camera session without a renderer",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger()
			rp, err := newReplay(cfg, logger)
			if err != nil {
				return err
			}

			if out == "" {
				out = director.GenerateSessionPath(cfg.SessionDir)
			}
			sceneFile := filepath.Join(filepath.Dir(out), "scene.yaml")

			fmt.Println("=== Scripted Session Recording ===")
			fmt.Printf("Output: %s\n\n", out)

			fmt.Println("[1/4] Building scene...")
			g := scene.NewGraph()
			g.Set("stage", scene.Transform{Position: mgl64.Vec3{0, 1, 20}, Rotation: mgl64.QuatIdent()})
			g.Set("crane", scene.Transform{Position: mgl64.Vec3{-8, 6, 12}, Rotation: scene.Angles{Y: 90}.Quat()})
			if err := scene.WriteGraph(g, sceneFile); err != nil {
				return err
			}
			fmt.Printf("  Scene saved to: %s\n\n", sceneFile)

			fmt.Println("[2/4] Recording cameras...")
			h := host.NewHeadless(scene.Transform{Position: mgl64.Vec3{0, 2, -10}, Rotation: mgl64.QuatIdent()}, 60)
			d := director.New(h, g, rp, cfg, director.WithLogger(logger))
			if !d.ToggleCinematic(true) {
				return fmt.Errorf("cinematic mode could not be enabled")
			}
			dt := cfg.FixedStep

			// dolly: push in on the stage and drift right
			record(d, dt, []step{
				{at: 0},
				{at: 4, frames: 150, input: director.Input{Move: camera.MoveInput{Forward: 1}}},
				{at: 8, frames: 100, input: director.Input{Move: camera.MoveInput{Right: 1}, Rotate: true, MouseX: -0.5}},
				{at: 12, frames: 80, input: director.Input{Move: camera.MoveInput{Up: 1}, Scroll: -0.2}},
			})

			// orbit: circle the stage while looking at it
			d.SwitchToFreeCamera()
			d.Timeline().Drag(0)
			d.Timeline().Keyframe()
			if c, ok := d.Active(); ok {
				c.SetOrientationMode(camera.LookAt{Target: "stage"})
			}
			record(d, dt, []step{
				{at: 0},
				{at: 5, frames: 200, input: director.Input{Move: camera.MoveInput{Right: 1, Forward: 0.4}}},
				{at: 10, frames: 200, input: director.Input{Move: camera.MoveInput{Right: 1, Forward: 0.4}}},
			})
			d.SetSmooth(3)

			for _, c := range d.Cameras() {
				fmt.Printf("  %s: %d keys over %.2fs\n", c.Tag(), c.Track().Len(), c.Track().ActualLength())
			}
			fmt.Println()

			fmt.Println("[3/4] Playing back...")
			d.SetAnimationEnabled(true)
			d.Timeline().Drag(0)
			d.Timeline().Play(true)
			for d.Timeline().IsPlaying() {
				d.Update(dt, director.Input{})
				d.FixedUpdate()
			}
			if tag, view, ok := h.Last(); ok {
				fmt.Printf("  %d frames, last pose from %s at %.2f\n\n", h.Frames(), tag, view.Position)
			}

			fmt.Println("[4/4] Saving session...")
			session := d.Snapshot()
			if err := director.WriteSession(session, out); err != nil {
				return err
			}
			fmt.Printf("  Session saved to: %s\n\n", out)

			fmt.Println("=== Session Summary ===")
			fmt.Printf("ID: %s\n", session.ID)
			fmt.Printf("Cameras: %d\n", len(session.Cameras))
			fmt.Printf("Timeline: %.1fs\n", session.TimelineLength)
			fmt.Printf("\nPreview: cinematic preview --scene %s %s\n", sceneFile, out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "session path (default <session_dir>/session_<timestamp>.yaml)")
	return cmd
}

// record drives the director through steps: each step scrubs to its time,
// applies its input for the given frames and captures a keyframe. The first
// capture on the free camera spawns a new keyframed camera.
func record(d *director.Director, dt float64, steps []step) {
	for _, s := range steps {
		d.Timeline().Drag(s.at)
		for i := 0; i < s.frames; i++ {
			d.Update(dt, s.input)
		}
		d.Timeline().Keyframe()
	}
}
