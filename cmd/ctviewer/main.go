// Command ctviewer is an interactive top-down viewer for recording
// cinematic camera sessions.
//
// Usage:
//
//	ctviewer [-config cinematic.yaml] [-scene sessions/scene.yaml] [-session file.yaml]
//
// Controls:
//   - Tab: toggle cinematic mode
//   - WASD, R/F, Shift: fly the active camera; hold right mouse to look
//   - Wheel: field of view
//   - Space: play/pause, Backspace: stop, Left/Right: scrub
//   - K: keyframe, [ ]: select keyframe, X: delete keyframe, V: duplicate
//   - N: new camera, Delete: remove camera, 0: free camera, 1-9: select camera
//   - P: let the track drive the camera, L: look at target, H: hook to target
//   - +/-: free camera speed, Ctrl+S: save session, Ctrl+O: load latest
//   - Esc: quit
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/ivlev/cinematic/internal/config"
	"github.com/ivlev/cinematic/internal/director"
	"github.com/ivlev/cinematic/internal/host"
	"github.com/ivlev/cinematic/internal/replay"
	"github.com/ivlev/cinematic/internal/scene"
)

const (
	screenWidth  = 1280
	screenHeight = 720
)

func main() {
	configPtr := flag.String("config", "cinematic.yaml", "config file")
	scenePtr := flag.String("scene", "", "scene file with look-at and hook targets")
	sessionPtr := flag.String("session", "", "session to open on start")
	flag.Parse()

	logger := log.New(os.Stderr, "", log.LstdFlags)

	cfg, err := config.Load(*configPtr)
	if err != nil {
		log.Fatalf("[-] Config error: %v", err)
	}

	g := scene.NewGraph()
	if *scenePtr != "" {
		if g, err = scene.ReadGraph(*scenePtr); err != nil {
			log.Fatalf("[-] Scene error: %v", err)
		}
	} else {
		g.Set("stage", scene.Transform{Position: mgl64.Vec3{0, 1, 20}, Rotation: mgl64.QuatIdent()})
	}

	rp, err := replay.NewReplay(cfg.Replay, replay.Options{
		OSCHost:   cfg.OSCHost,
		OSCPort:   cfg.OSCPort,
		SendFixed: true,
		Logger:    logger,
	})
	if err != nil {
		log.Fatalf("[-] Replay error: %v", err)
	}

	settings := config.OpenSettings("cinematic", logger)
	h := host.NewHeadless(scene.Transform{Position: mgl64.Vec3{0, 2, -10}, Rotation: mgl64.QuatIdent()}, 60)
	d := director.New(h, g, rp, cfg, director.WithLogger(logger), director.WithSettings(settings))

	viewer := newViewer(cfg, d, h, g, logger)
	if *sessionPtr != "" {
		if err := viewer.open(*sessionPtr); err != nil {
			log.Fatalf("[-] Session error: %v", err)
		}
	}

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle(fmt.Sprintf("ctviewer %s", cfg.SessionDir))
	if err := ebiten.RunGame(viewer); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}
