package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ivlev/cinematic/internal/director"
	"github.com/ivlev/cinematic/internal/engine"
	"github.com/ivlev/cinematic/internal/renderer"
	"github.com/ivlev/cinematic/internal/store"
	"github.com/ivlev/cinematic/internal/system"
	"github.com/ivlev/cinematic/internal/video"
)

func inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [session.yaml]",
		Short: "Print the cameras and tracks of a session",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			s, _, err := resolveSession(cfg, args)
			if err != nil {
				return err
			}
			g, err := loadScene()
			if err != nil {
				return err
			}

			fmt.Printf("Session:  %s (v%s)\n", s.ID, s.Version)
			fmt.Printf("Created:  %s\n", s.CreatedAt.Format(time.RFC3339))
			fmt.Printf("Timeline: %.2fs\n", s.TimelineLength)
			if s.Active != "" {
				fmt.Printf("Active:   %s\n", s.Active)
			}
			fmt.Printf("Cameras:  %d\n", len(s.Cameras))

			for _, st := range s.Cameras {
				cam := st.Build(g)
				tr := cam.Track()
				fmt.Printf("\n  %s  fov=%.1f  pos=%.2f\n", st.Tag, st.Fov, st.Position)
				if st.LookAt != "" {
					fmt.Printf("    look at: %s\n", st.LookAt)
				}
				if st.HookTo != "" {
					fmt.Printf("    hooked to: %s\n", st.HookTo)
				}
				fmt.Printf("    track: %d keys, begin=%.2fs, length=%.2fs, smooth=%.1f, play=%v\n",
					tr.Len(), tr.BeginTime(), tr.ActualLength(), tr.Smooth(), tr.AllowPlay())
				for i, k := range tr.Keyframes() {
					state := ""
					if !k.Active {
						state = " (inactive)"
					}
					fmt.Printf("    %2d. t=%.2fs pos=%.2f fov=%.1f%s\n", i+1, k.Time, k.Position, k.Fov, state)
				}
			}
			return nil
		},
	}
}

func bakeCmd() *cobra.Command {
	var (
		outDir  string
		fps     int
		workers int
		stats   bool
	)

	cmd := &cobra.Command{
		Use:   "bake [session.yaml]",
		Short: "Sample every camera track at a fixed frame rate",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("fps") {
				cfg.BakeFPS = fps
			}
			if cmd.Flags().Changed("workers") {
				cfg.Workers = workers
			}
			if cmd.Flags().Changed("stats") {
				cfg.ShowStats = stats
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			s, _, err := resolveSession(cfg, args)
			if err != nil {
				return err
			}
			g, err := loadScene()
			if err != nil {
				return err
			}

			if outDir == "" {
				outDir = filepath.Join("output", "bake_"+time.Now().Format("2006-01-02_15-04-05"))
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			bakes, report, err := engine.NewBakeProject(cfg, s, g, outDir).Run(ctx)
			if err != nil {
				return err
			}
			for _, b := range bakes {
				fmt.Printf("[*] %s: %d frames @ %d fps -> %s\n", b.Tag, len(b.Frames), b.FPS, b.Path)
			}
			if report.Skipped > 0 {
				fmt.Printf("[!] Skipped %d camera(s) without keyframes\n", report.Skipped)
			}
			fmt.Printf("[+++] Baked %d frames in %v\n", report.Frames, report.Duration.Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "output", "o", "", "output directory (default output/bake_<timestamp>)")
	cmd.Flags().IntVar(&fps, "fps", 60, "frames per second")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel cameras (0 = all CPUs)")
	cmd.Flags().BoolVar(&stats, "stats", false, "print a performance report")
	return cmd
}

func previewCmd() *cobra.Command {
	var (
		out       string
		width     int
		height    int
		samples   int
		noSlate   bool
		videoPath string
		fps       int
	)

	cmd := &cobra.Command{
		Use:   "preview [session.yaml]",
		Short: "Render a top-down PNG of every camera path",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			s, path, err := resolveSession(cfg, args)
			if err != nil {
				return err
			}
			g, err := loadScene()
			if err != nil {
				return err
			}

			opts := renderer.DefaultPreviewOptions()
			opts.Width, opts.Height, opts.Samples = width, height, samples
			opts.Title = filepath.Base(path)
			if !noSlate {
				opts.Slate = s.ID
			}

			if videoPath != "" {
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
				defer stop()

				enc := video.NewFFmpegEncoder()
				enc.Release = system.PutImage
				if enc.Codec != "libx264" {
					fmt.Printf("[*] Hardware encoder detected: %s\n", enc.Codec)
				}
				fmt.Printf("[*] Rendering %.1fs at %d fps...\n", s.TimelineLength, fps)
				if err := renderer.WritePreviewVideo(ctx, videoPath, s, g, sceneMarkers(g), opts, fps, enc); err != nil {
					return err
				}
				fmt.Printf("[+++] Preview video written: %s\n", videoPath)
				return nil
			}

			if out == "" {
				ext := filepath.Ext(path)
				out = path[:len(path)-len(ext)] + ".png"
			}
			if err := renderer.WritePreviewPNG(out, s, g, sceneMarkers(g), opts); err != nil {
				return err
			}
			fmt.Printf("[+++] Preview written: %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "PNG path (default next to the session)")
	cmd.Flags().IntVar(&width, "width", 1280, "image width")
	cmd.Flags().IntVar(&height, "height", 720, "image height")
	cmd.Flags().IntVar(&samples, "samples", 240, "path samples per camera")
	cmd.Flags().BoolVar(&noSlate, "no-slate", false, "omit the session QR slate")
	cmd.Flags().StringVar(&videoPath, "video", "", "render an animated preview to this video file (needs ffmpeg)")
	cmd.Flags().IntVar(&fps, "fps", 30, "video frame rate")
	return cmd
}

func saveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save [session.yaml]",
		Short: "Store a session file in the database",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			s, _, err := resolveSession(cfg, args)
			if err != nil {
				return err
			}
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Save(cmd.Context(), s); err != nil {
				return err
			}
			fmt.Printf("[+++] Saved session %s (%d cameras)\n", s.ID, len(s.Cameras))
			return nil
		},
	}
}

func loadCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "load [id]",
		Short: "Write a stored session back to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			s, err := st.Load(cmd.Context(), args[0])
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("no session %q in %s", args[0], cfg.DatabasePath)
			}
			if err != nil {
				return err
			}

			if out == "" {
				out = director.GenerateSessionPath(cfg.SessionDir)
			}
			if err := director.WriteSession(s, out); err != nil {
				return err
			}
			fmt.Printf("[+++] Session written: %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "session path (default <session_dir>/session_<timestamp>.yaml)")
	return cmd
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored sessions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			sessions, err := st.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				fmt.Println("No sessions yet. Use 'cinematic save' to store one.")
				return nil
			}
			for _, s := range sessions {
				fmt.Printf("%s  %s  %d cameras\n", s.ID, s.UpdatedAt.Format("2006-01-02 15:04:05"), s.CameraCount)
			}
			return nil
		},
	}
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Remove a stored session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("[*] Deleted session %s\n", args[0])
			return nil
		},
	}
}
