package renderer

import (
	"context"
	"fmt"
	"image"
	"math"

	"golang.org/x/image/vector"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/cinematic/internal/camera"
	"github.com/ivlev/cinematic/internal/director"
	"github.com/ivlev/cinematic/internal/scene"
	"github.com/ivlev/cinematic/internal/system"
	"github.com/ivlev/cinematic/internal/video"
)

// frameBuffer bounds how far rendering may run ahead of the encoder.
const frameBuffer = 4

// MaxPreviewFrames bounds the length of a preview video.
const MaxPreviewFrames = 1 << 20

// WritePreviewVideo animates the top-down preview over the session's
// timeline: every frame shows the sampled paths plus each camera's pose
// at that instant. Frames come from the shared image pool; the encoder
// owns them once sent.
func WritePreviewVideo(ctx context.Context, path string, session *director.Session, registry scene.Registry, markers []Marker, opts PreviewOptions, fps int, enc video.FrameEncoder) error {
	if fps <= 0 {
		return fmt.Errorf("invalid preview fps %d", fps)
	}
	if !(session.TimelineLength > 0) {
		return fmt.Errorf("session %s has an empty timeline", session.ID)
	}
	total := math.Floor(session.TimelineLength*float64(fps)+1e-9) + 1
	if total > MaxPreviewFrames {
		return fmt.Errorf("session %s timeline of %g s exceeds %d frames at %d fps", session.ID, session.TimelineLength, MaxPreviewFrames, fps)
	}

	plots := SamplePaths(session, registry, opts.Samples)
	base, err := RenderPreview(plots, markers, opts)
	if err != nil {
		return err
	}
	defer system.PutImage(base)

	if 2*opts.Padding >= opts.Width || 2*opts.Padding >= opts.Height {
		opts.Padding = 0
	}
	proj := newProjection(plots, markers, opts)

	var cams []*camera.Camera
	for _, st := range session.Cameras {
		if c := st.Build(registry); !c.Track().Empty() {
			cams = append(cams, c)
		}
	}

	count := int(total)
	frames := make(chan *image.RGBA, frameBuffer)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return enc.Encode(gctx, frames, base.Rect.Size(), fps, path)
	})
	g.Go(func() error {
		defer close(frames)
		r := vector.NewRasterizer(opts.Width, opts.Height)
		for i := 0; i < count; i++ {
			t := float64(i) / float64(fps)
			img := system.GetImage(base.Rect)
			copy(img.Pix, base.Pix)
			drawPoses(img, r, proj, cams, t)
			drawLabel(img, 12, opts.Height-12, fmt.Sprintf("t=%6.2fs", t), textColor)

			select {
			case frames <- img:
			case <-gctx.Done():
				system.PutImage(img)
				return gctx.Err()
			}
		}
		return nil
	})
	return g.Wait()
}

// drawPoses marks every camera at time t with its heading.
func drawPoses(dst *image.RGBA, r *vector.Rasterizer, proj projection, cams []*camera.Camera, t float64) {
	const reach = 20
	for i, c := range cams {
		if !c.UpdateAnimation(t) {
			continue
		}
		v := c.View()
		x, y := proj.at(v.Position)
		f := v.Rotation.Rotate(scene.Forward)
		if l := math.Hypot(f.X(), f.Z()); l > 1e-9 {
			addLine(r, x, y, x+float32(f.X()/l*reach), y-float32(f.Z()/l*reach), 2)
		}
		addSquare(r, x, y, 6)
		fill(dst, r, palette[i%len(palette)])
	}
}
