package renderer

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/skip2/go-qrcode"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/ivlev/cinematic/internal/director"
	"github.com/ivlev/cinematic/internal/scene"
	"github.com/ivlev/cinematic/internal/system"
)

// PathPlot is the sampled world path of one camera.
type PathPlot struct {
	Tag    string
	Points []mgl64.Vec3
	Keys   []mgl64.Vec3
}

// Marker is a labelled scene object drawn on the preview.
type Marker struct {
	Label    string
	Position mgl64.Vec3
}

// PreviewOptions controls the top-down preview.
type PreviewOptions struct {
	Width   int
	Height  int
	Padding int
	Samples int    // per camera
	Slate   string // QR payload drawn in the top-right corner; empty for none
	Title   string
}

func DefaultPreviewOptions() PreviewOptions {
	return PreviewOptions{Width: 1280, Height: 720, Padding: 48, Samples: 240}
}

var (
	background  = color.RGBA{R: 24, G: 26, B: 31, A: 255}
	gridColor   = color.RGBA{R: 44, G: 47, B: 56, A: 255}
	textColor   = color.RGBA{R: 220, G: 220, B: 220, A: 255}
	markerColor = color.RGBA{R: 250, G: 200, B: 60, A: 255}
	palette     = []color.RGBA{
		{R: 230, G: 80, B: 70, A: 255},
		{R: 80, G: 170, B: 240, A: 255},
		{R: 110, G: 210, B: 120, A: 255},
		{R: 200, G: 120, B: 230, A: 255},
		{R: 240, G: 150, B: 60, A: 255},
	}
)

// SamplePaths evaluates every camera of session over its track window.
// Cameras without keyframes are skipped.
func SamplePaths(session *director.Session, registry scene.Registry, samples int) []PathPlot {
	if samples < 2 {
		samples = 2
	}
	var plots []PathPlot
	for _, st := range session.Cameras {
		cam := st.Build(registry)
		tr := cam.Track()
		if tr.Empty() {
			continue
		}
		plot := PathPlot{Tag: st.Tag}
		begin, length := tr.BeginTime(), tr.ActualLength()
		for i := 0; i < samples; i++ {
			cam.UpdateAnimation(begin + length*float64(i)/float64(samples-1))
			plot.Points = append(plot.Points, cam.WorldPosition())
		}
		for _, k := range tr.Keyframes() {
			if !k.Active {
				continue
			}
			cam.UpdateAnimation(begin + k.Time)
			plot.Keys = append(plot.Keys, cam.WorldPosition())
		}
		plots = append(plots, plot)
	}
	return plots
}

// projection maps world XZ onto the canvas, +Z pointing up.
type projection struct {
	cx, cz float64
	scale  float64
	w, h   float64
}

func newProjection(plots []PathPlot, markers []Marker, opts PreviewOptions) projection {
	minX, maxX := math.Inf(1), math.Inf(-1)
	minZ, maxZ := math.Inf(1), math.Inf(-1)
	add := func(p mgl64.Vec3) {
		minX, maxX = math.Min(minX, p.X()), math.Max(maxX, p.X())
		minZ, maxZ = math.Min(minZ, p.Z()), math.Max(maxZ, p.Z())
	}
	for _, pl := range plots {
		for _, p := range pl.Points {
			add(p)
		}
	}
	for _, m := range markers {
		add(m.Position)
	}
	if math.IsInf(minX, 1) {
		minX, maxX, minZ, maxZ = -1, 1, -1, 1
	}

	spanX := math.Max(maxX-minX, 1e-6)
	spanZ := math.Max(maxZ-minZ, 1e-6)
	availW := float64(opts.Width - 2*opts.Padding)
	availH := float64(opts.Height - 2*opts.Padding)
	return projection{
		cx:    (minX + maxX) / 2,
		cz:    (minZ + maxZ) / 2,
		scale: math.Min(availW/spanX, availH/spanZ),
		w:     float64(opts.Width),
		h:     float64(opts.Height),
	}
}

func (p projection) at(v mgl64.Vec3) (float32, float32) {
	x := p.w/2 + (v.X()-p.cx)*p.scale
	y := p.h/2 - (v.Z()-p.cz)*p.scale
	return float32(x), float32(y)
}

// RenderPreview draws plots and markers from above. The canvas comes from
// the shared image pool; hand it back with system.PutImage.
func RenderPreview(plots []PathPlot, markers []Marker, opts PreviewOptions) (*image.RGBA, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("invalid preview size %dx%d", opts.Width, opts.Height)
	}
	if 2*opts.Padding >= opts.Width || 2*opts.Padding >= opts.Height {
		opts.Padding = 0
	}

	canvas := system.GetCanvas(image.Rect(0, 0, opts.Width, opts.Height), background)
	proj := newProjection(plots, markers, opts)
	r := vector.NewRasterizer(opts.Width, opts.Height)

	drawGrid(canvas, r, opts)

	for i, pl := range plots {
		col := palette[i%len(palette)]
		for j := 1; j < len(pl.Points); j++ {
			x0, y0 := proj.at(pl.Points[j-1])
			x1, y1 := proj.at(pl.Points[j])
			addLine(r, x0, y0, x1, y1, 2)
		}
		for _, k := range pl.Keys {
			x, y := proj.at(k)
			addSquare(r, x, y, 4)
		}
		fill(canvas, r, col)
		if len(pl.Points) > 0 {
			x, y := proj.at(pl.Points[0])
			drawLabel(canvas, int(x)+6, int(y)-6, pl.Tag, col)
		}
	}

	for _, m := range markers {
		x, y := proj.at(m.Position)
		addSquare(r, x, y, 5)
	}
	fill(canvas, r, markerColor)
	for _, m := range markers {
		x, y := proj.at(m.Position)
		drawLabel(canvas, int(x)+8, int(y)+4, m.Label, markerColor)
	}

	if opts.Title != "" {
		drawLabel(canvas, 12, 20, opts.Title, textColor)
	}
	if opts.Slate != "" {
		if err := drawSlate(canvas, opts.Slate); err != nil {
			system.PutImage(canvas)
			return nil, err
		}
	}
	return canvas, nil
}

// WritePreviewPNG renders a session preview and writes it to path.
func WritePreviewPNG(path string, session *director.Session, registry scene.Registry, markers []Marker, opts PreviewOptions) error {
	plots := SamplePaths(session, registry, opts.Samples)
	img, err := RenderPreview(plots, markers, opts)
	if err != nil {
		return err
	}
	defer system.PutImage(img)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create preview: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode preview: %w", err)
	}
	return f.Close()
}

func drawGrid(dst *image.RGBA, r *vector.Rasterizer, opts PreviewOptions) {
	const step = 64
	w, h := float32(opts.Width), float32(opts.Height)
	for x := float32(0); x < w; x += step {
		addLine(r, x, 0, x, h, 1)
	}
	for y := float32(0); y < h; y += step {
		addLine(r, 0, y, w, y, 1)
	}
	fill(dst, r, gridColor)
}

// addLine adds the quad around segment a-b. Every quad winds the same way
// so overlaps accumulate instead of cancelling.
func addLine(r *vector.Rasterizer, x0, y0, x1, y1, width float32) {
	dx, dy := x1-x0, y1-y0
	l := float32(math.Hypot(float64(dx), float64(dy)))
	if l == 0 {
		return
	}
	nx, ny := -dy/l*width/2, dx/l*width/2

	r.MoveTo(x0+nx, y0+ny)
	r.LineTo(x1+nx, y1+ny)
	r.LineTo(x1-nx, y1-ny)
	r.LineTo(x0-nx, y0-ny)
	r.ClosePath()
}

func addSquare(r *vector.Rasterizer, x, y, half float32) {
	r.MoveTo(x-half, y-half)
	r.LineTo(x-half, y+half)
	r.LineTo(x+half, y+half)
	r.LineTo(x+half, y-half)
	r.ClosePath()
}

// fill paints the accumulated path and clears the rasterizer.
func fill(dst *image.RGBA, r *vector.Rasterizer, col color.RGBA) {
	r.DrawOp = draw.Over
	r.Draw(dst, dst.Bounds(), image.NewUniform(col), image.Point{})
	r.Reset(dst.Bounds().Dx(), dst.Bounds().Dy())
}

func drawLabel(dst *image.RGBA, x, y int, s string, col color.RGBA) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func drawSlate(dst *image.RGBA, payload string) error {
	q, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return fmt.Errorf("slate qr: %w", err)
	}
	size := dst.Bounds().Dy() / 6
	if size < 64 {
		size = 64
	}
	code := q.Image(size)
	b := code.Bounds()
	at := image.Pt(dst.Bounds().Max.X-b.Dx()-8, 8)
	draw.Draw(dst, image.Rectangle{Min: at, Max: at.Add(b.Size())}, code, b.Min, draw.Src)
	return nil
}
