package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ivlev/cinematic/internal/config"
	"github.com/ivlev/cinematic/internal/director"
	"github.com/ivlev/cinematic/internal/renderer"
	"github.com/ivlev/cinematic/internal/replay"
	"github.com/ivlev/cinematic/internal/scene"
	"github.com/ivlev/cinematic/internal/store"
)

var version = "dev"

var (
	configPath string
	scenePath  string
	dbPath     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "cinematic",
		Short:         "Keyframed camera sessions: record, inspect, bake and preview",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "cinematic.yaml", "config file (missing file means defaults)")
	rootCmd.PersistentFlags().StringVar(&scenePath, "scene", "", "scene file with look-at and hook targets")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "session database (overrides config)")

	rootCmd.AddCommand(demoCmd())
	rootCmd.AddCommand(inspectCmd())
	rootCmd.AddCommand(bakeCmd())
	rootCmd.AddCommand(previewCmd())
	rootCmd.AddCommand(saveCmd())
	rootCmd.AddCommand(loadCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(deleteCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "[-] Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	cfg.BuildVersion = version
	if dbPath != "" {
		cfg.DatabasePath = dbPath
	}
	return cfg, nil
}

func newLogger() *log.Logger {
	return log.New(os.Stderr, "", log.LstdFlags)
}

func newReplay(cfg *config.Config, logger *log.Logger) (replay.Replay, error) {
	return replay.NewReplay(cfg.Replay, replay.Options{
		OSCHost: cfg.OSCHost,
		OSCPort: cfg.OSCPort,
		Logger:  logger,
	})
}

func loadScene() (*scene.Graph, error) {
	if scenePath == "" {
		return scene.NewGraph(), nil
	}
	return scene.ReadGraph(scenePath)
}

// resolveSession reads the session at args[0], or the newest one in the
// session directory.
func resolveSession(cfg *config.Config, args []string) (*director.Session, string, error) {
	path := ""
	if len(args) > 0 {
		path = args[0]
	} else {
		latest, err := director.FindLatestSession(cfg.SessionDir)
		if err != nil {
			return nil, "", fmt.Errorf("%w. Record one with 'cinematic demo' or pass a path", err)
		}
		path = latest
		fmt.Printf("[*] Using session: %s\n", path)
	}
	s, err := director.ReadSession(path)
	if err != nil {
		return nil, "", err
	}
	return s, path, nil
}

func openStore(cfg *config.Config) (*store.Store, error) {
	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	return store.Open(cfg.DatabasePath)
}

func sceneMarkers(g *scene.Graph) []renderer.Marker {
	handles := g.Handles()
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })

	markers := make([]renderer.Marker, 0, len(handles))
	for _, h := range handles {
		t, _ := g.Lookup(h)
		markers = append(markers, renderer.Marker{Label: string(h), Position: t.Position})
	}
	return markers
}
