package main

import (
	"fmt"
	"image/color"
	"log"
	"math"
	"sort"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/ivlev/cinematic/internal/camera"
	"github.com/ivlev/cinematic/internal/config"
	"github.com/ivlev/cinematic/internal/director"
	"github.com/ivlev/cinematic/internal/host"
	"github.com/ivlev/cinematic/internal/renderer"
	"github.com/ivlev/cinematic/internal/scene"
)

const (
	pixelsPerUnit    = 12.0
	mouseSensitivity = 0.2
	scrubRate        = 2.0 // timeline seconds per second
	pathSamples      = 120
	pathRefreshTicks = 15
	statusTicks      = 180
)

var (
	bgColor    = color.RGBA{R: 24, G: 26, B: 31, A: 255}
	gridColor  = color.RGBA{R: 44, G: 47, B: 56, A: 255}
	nodeColor  = color.RGBA{R: 250, G: 200, B: 60, A: 255}
	mainColor  = color.RGBA{R: 150, G: 150, B: 150, A: 255}
	viewColor  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	pathColors = []color.RGBA{
		{R: 230, G: 80, B: 70, A: 255},
		{R: 80, G: 170, B: 240, A: 255},
		{R: 110, G: 210, B: 120, A: 255},
		{R: 200, G: 120, B: 230, A: 255},
		{R: 240, G: 150, B: 60, A: 255},
	}
	cameraKeys = []ebiten.Key{
		ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4, ebiten.Key5,
		ebiten.Key6, ebiten.Key7, ebiten.Key8, ebiten.Key9,
	}
)

// viewer is the ebiten game driving a Director from keyboard and mouse.
type viewer struct {
	cfg    *config.Config
	d      *director.Director
	host   *host.Headless
	graph  *scene.Graph
	logger *log.Logger

	ticks        int
	fixedAcc     float64
	lastX, lastY int
	paths        []renderer.PathPlot

	status      string
	statusUntil int
}

func newViewer(cfg *config.Config, d *director.Director, h *host.Headless, g *scene.Graph, logger *log.Logger) *viewer {
	return &viewer{cfg: cfg, d: d, host: h, graph: g, logger: logger}
}

func (v *viewer) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	v.ticks++
	dt := 1.0 / float64(ebiten.TPS())

	v.handleCommands(dt)
	v.d.Update(dt, v.readInput())

	v.fixedAcc += dt
	for v.fixedAcc >= v.cfg.FixedStep {
		v.d.FixedUpdate()
		v.fixedAcc -= v.cfg.FixedStep
	}

	if v.ticks%pathRefreshTicks == 0 {
		v.paths = renderer.SamplePaths(v.d.Snapshot(), v.graph, pathSamples)
	}
	return nil
}

func (v *viewer) readInput() director.Input {
	axis := func(pos, neg ebiten.Key) float64 {
		var a float64
		if ebiten.IsKeyPressed(pos) {
			a++
		}
		if ebiten.IsKeyPressed(neg) {
			a--
		}
		return a
	}

	in := director.Input{
		Move: camera.MoveInput{
			Forward: axis(ebiten.KeyW, ebiten.KeyS),
			Right:   axis(ebiten.KeyD, ebiten.KeyA),
			Up:      axis(ebiten.KeyR, ebiten.KeyF),
			Boost:   ebiten.IsKeyPressed(ebiten.KeyShift),
		},
	}

	x, y := ebiten.CursorPosition()
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight) {
		in.Rotate = true
		in.MouseX = float64(x-v.lastX) * mouseSensitivity
		in.MouseY = -float64(y-v.lastY) * mouseSensitivity
	}
	v.lastX, v.lastY = x, y

	_, wy := ebiten.Wheel()
	in.Scroll = -wy
	return in
}

func (v *viewer) handleCommands(dt float64) {
	tl := v.d.Timeline()
	ctrl := ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyMeta)

	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		v.d.ToggleCinematic(!v.d.Enabled())
	}
	if !v.d.Enabled() {
		return
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		tl.Play(!tl.IsPlaying())
	case inpututil.IsKeyJustPressed(ebiten.KeyBackspace):
		tl.Stop()
	case inpututil.IsKeyJustPressed(ebiten.KeyK):
		tl.Keyframe()
	case inpututil.IsKeyJustPressed(ebiten.KeyN):
		v.d.AddCamera()
	case inpututil.IsKeyJustPressed(ebiten.KeyDelete):
		if c, ok := v.d.Active(); ok {
			v.d.RemoveCamera(c)
		}
	case inpututil.IsKeyJustPressed(ebiten.Key0):
		v.d.SwitchToFreeCamera()
	case inpututil.IsKeyJustPressed(ebiten.KeyP):
		if c, ok := v.d.Active(); ok {
			v.d.SetAnimationEnabled(!c.Track().AllowPlay())
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyL):
		v.toggleLookAt()
	case inpututil.IsKeyJustPressed(ebiten.KeyH):
		v.toggleHook()
	case inpututil.IsKeyJustPressed(ebiten.KeyBracketLeft):
		v.stepKeyframe(-1)
	case inpututil.IsKeyJustPressed(ebiten.KeyBracketRight):
		v.stepKeyframe(1)
	case inpututil.IsKeyJustPressed(ebiten.KeyX):
		if k, ok := v.d.CurrentKeyframe(); ok {
			v.d.RemoveKeyframe(k)
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyV):
		v.d.DuplicateKeyframe()
	case inpututil.IsKeyJustPressed(ebiten.KeyEqual):
		v.d.SetSpeed(v.d.Speed() + 1)
	case inpututil.IsKeyJustPressed(ebiten.KeyMinus):
		v.d.SetSpeed(v.d.Speed() - 1)
	case ctrl && inpututil.IsKeyJustPressed(ebiten.KeyS):
		v.save()
	case ctrl && inpututil.IsKeyJustPressed(ebiten.KeyO):
		v.openLatest()
	}

	for i, key := range cameraKeys {
		if inpututil.IsKeyJustPressed(key) {
			if cams := v.d.Cameras(); i < len(cams) {
				v.d.SetActiveCamera(cams[i])
			}
		}
	}

	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		tl.Drag(tl.CurrentTime() - scrubRate*dt)
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		tl.Drag(tl.CurrentTime() + scrubRate*dt)
	}
}

// target is the first scene node by name, used for look-at and hooks.
func (v *viewer) target() (scene.Handle, bool) {
	handles := v.graph.Handles()
	if len(handles) == 0 {
		return "", false
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })
	return handles[0], true
}

func (v *viewer) toggleLookAt() {
	c, ok := v.d.Active()
	if !ok {
		return
	}
	if _, ok := c.Orientation().(camera.LookAt); ok {
		c.SetOrientationMode(camera.FreeOrientation{})
		return
	}
	if h, ok := v.target(); ok {
		c.SetOrientationMode(camera.LookAt{Target: h})
		v.notify("Looking at %s", h)
	}
}

func (v *viewer) toggleHook() {
	c, ok := v.d.Active()
	if !ok {
		return
	}
	if _, ok := c.Placement().(camera.HookTo); ok {
		c.SetPositionMode(camera.WorldPosition{})
		return
	}
	if h, ok := v.target(); ok {
		c.SetPositionMode(camera.HookTo{Parent: h})
		v.notify("Hooked to %s", h)
	}
}

func (v *viewer) stepKeyframe(dir int) {
	c, ok := v.d.Active()
	if !ok || c.Track().Empty() {
		return
	}
	keys := c.Track().Keyframes()
	i := -1
	if cur, ok := v.d.CurrentKeyframe(); ok {
		for j, k := range keys {
			if k == cur {
				i = j
			}
		}
	}
	i = (i + dir + len(keys)) % len(keys)
	if v.d.SelectKeyframe(keys[i]) {
		v.d.Timeline().Drag(c.Track().BeginTime() + keys[i].Time)
	}
}

func (v *viewer) save() {
	path := director.GenerateSessionPath(v.cfg.SessionDir)
	if err := director.WriteSession(v.d.Snapshot(), path); err != nil {
		v.notify("Save failed: %v", err)
		return
	}
	v.notify("Saved %s", path)
}

func (v *viewer) openLatest() {
	path, err := director.FindLatestSession(v.cfg.SessionDir)
	if err != nil {
		v.notify("Open failed: %v", err)
		return
	}
	if err := v.open(path); err != nil {
		v.notify("Open failed: %v", err)
	}
}

// open restores a session file, entering cinematic mode first.
func (v *viewer) open(path string) error {
	s, err := director.ReadSession(path)
	if err != nil {
		return err
	}
	if !v.d.ToggleCinematic(true) {
		return fmt.Errorf("cinematic mode unavailable")
	}
	if err := v.d.Restore(s); err != nil {
		return err
	}
	v.paths = renderer.SamplePaths(s, v.graph, pathSamples)
	v.notify("Opened %s", path)
	return nil
}

func (v *viewer) notify(format string, args ...any) {
	v.status = fmt.Sprintf(format, args...)
	v.statusUntil = v.ticks + statusTicks
	v.logger.Printf("[viewer] %s", v.status)
}

func (v *viewer) Draw(screen *ebiten.Image) {
	screen.Fill(bgColor)
	v.drawGrid(screen)

	for _, h := range v.graph.Handles() {
		t, _ := v.graph.Lookup(h)
		x, y := project(t.Position)
		vector.DrawFilledRect(screen, x-4, y-4, 8, 8, nodeColor, false)
		ebitenutil.DebugPrintAt(screen, string(h), int(x)+6, int(y)-8)
	}

	for i, p := range v.paths {
		col := pathColors[i%len(pathColors)]
		for j := 1; j < len(p.Points); j++ {
			x0, y0 := project(p.Points[j-1])
			x1, y1 := project(p.Points[j])
			vector.StrokeLine(screen, x0, y0, x1, y1, 2, col, true)
		}
		for _, k := range p.Keys {
			x, y := project(k)
			vector.DrawFilledRect(screen, x-3, y-3, 6, 6, col, false)
		}
		if len(p.Points) > 0 {
			x, y := project(p.Points[0])
			ebitenutil.DebugPrintAt(screen, p.Tag, int(x)+6, int(y)+4)
		}
	}

	if main := v.host.Main(); main != nil && !v.d.Enabled() {
		t := main.Transform()
		drawFrustum(screen, t.Position, t.Rotation, main.Fov(), mainColor)
	}
	if _, view, ok := v.host.Last(); ok && v.d.Enabled() {
		drawFrustum(screen, view.Position, view.Rotation, view.Fov, viewColor)
	}

	ebitenutil.DebugPrintAt(screen, v.hud(), 10, 10)
	if v.ticks < v.statusUntil {
		ebitenutil.DebugPrintAt(screen, v.status, 10, screenHeight-24)
	}
}

func (v *viewer) hud() string {
	var b strings.Builder
	tl := v.d.Timeline()
	if !v.d.Enabled() {
		b.WriteString("Cinematic: off (Tab to enable)\n")
		return b.String()
	}

	state := "paused"
	if tl.IsPlaying() {
		state = "playing"
	}
	fmt.Fprintf(&b, "Time: %6.2f / %.2f  %s\n", tl.CurrentTime(), tl.Length(), state)
	fmt.Fprintf(&b, "Speed: %.0f x%.0f  TPS: %.0f\n", v.d.Speed(), v.d.SpeedMultiplier(), ebiten.ActualTPS())

	if c, ok := v.d.Active(); ok {
		fmt.Fprintf(&b, "Camera: %s [%s] fov=%.1f\n", c.Tag(), c.State(tl.IsPlaying()), c.Fov())
		if la, ok := c.Orientation().(camera.LookAt); ok {
			fmt.Fprintf(&b, "  look at %s\n", la.Target)
		}
		if hk, ok := c.Placement().(camera.HookTo); ok {
			fmt.Fprintf(&b, "  hooked to %s\n", hk.Parent)
		}
		if !c.IsFree() {
			tr := c.Track()
			fmt.Fprintf(&b, "  %d keys, begin=%.2f length=%.2f smooth=%.0f\n", tr.Len(), tr.BeginTime(), tr.ActualLength(), tr.Smooth())
		}
	}
	if k, ok := v.d.CurrentKeyframe(); ok {
		fmt.Fprintf(&b, "Keyframe: t=%.2f fov=%.1f\n", k.Time, k.Fov)
	}

	b.WriteString("Cameras:")
	for i, c := range v.d.Cameras() {
		fmt.Fprintf(&b, " %d:%s", i+1, c.Tag())
	}
	b.WriteString("\n")
	return b.String()
}

func (v *viewer) drawGrid(screen *ebiten.Image) {
	for i := -60; i <= 60; i += 5 {
		x0, y0 := project(mgl64.Vec3{float64(i), 0, -60})
		x1, y1 := project(mgl64.Vec3{float64(i), 0, 60})
		vector.StrokeLine(screen, x0, y0, x1, y1, 1, gridColor, false)
		x0, y0 = project(mgl64.Vec3{-60, 0, float64(i)})
		x1, y1 = project(mgl64.Vec3{60, 0, float64(i)})
		vector.StrokeLine(screen, x0, y0, x1, y1, 1, gridColor, false)
	}
}

func (v *viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

// project maps world XZ onto the screen, +Z up, centred ahead of the
// origin.
func project(p mgl64.Vec3) (float32, float32) {
	x := screenWidth/2 + p.X()*pixelsPerUnit
	y := screenHeight*3/4 - p.Z()*pixelsPerUnit
	return float32(x), float32(y)
}

// drawFrustum draws a camera as a dot with its horizontal field of view.
func drawFrustum(screen *ebiten.Image, pos mgl64.Vec3, rot mgl64.Quat, fov float64, col color.RGBA) {
	f := rot.Rotate(scene.Forward)
	yaw := math.Atan2(f.X(), f.Z())
	half := mgl64.DegToRad(fov) / 2
	const reach = 4.0

	x, y := project(pos)
	vector.DrawFilledRect(screen, x-3, y-3, 6, 6, col, false)
	for _, a := range []float64{yaw - half, yaw, yaw + half} {
		end := pos.Add(mgl64.Vec3{math.Sin(a) * reach, 0, math.Cos(a) * reach})
		ex, ey := project(end)
		vector.StrokeLine(screen, x, y, ex, ey, 1, col, true)
	}
}
