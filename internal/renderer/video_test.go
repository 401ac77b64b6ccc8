package renderer

import (
	"context"
	"errors"
	"image"
	"math"
	"testing"
)

// captureEncoder keeps the first and last frame it receives.
type captureEncoder struct {
	size        image.Point
	fps         int
	count       int
	first, last *image.RGBA
	fail        error
}

func (e *captureEncoder) Encode(ctx context.Context, frames <-chan *image.RGBA, size image.Point, fps int, path string) error {
	e.size, e.fps = size, fps
	if e.fail != nil {
		return e.fail
	}
	for img := range frames {
		if e.first == nil {
			e.first = img
		}
		e.last = img
		e.count++
	}
	return nil
}

func TestWritePreviewVideo(t *testing.T) {
	opts := PreviewOptions{Width: 160, Height: 100, Padding: 10, Samples: 20}
	enc := &captureEncoder{}

	if err := WritePreviewVideo(context.Background(), "out.mp4", straightSession(), nil, nil, opts, 2, enc); err != nil {
		t.Fatalf("WritePreviewVideo: %v", err)
	}
	if enc.size != image.Pt(160, 100) || enc.fps != 2 {
		t.Errorf("format %v@%d", enc.size, enc.fps)
	}
	// 60s timeline at 2 fps, both ends included
	if enc.count != 121 {
		t.Errorf("frames = %d, want 121", enc.count)
	}

	// path spans x in [0, 10] scaled by 14 px/unit around the centre
	if got := enc.first.RGBAAt(10, 50); got != palette[0] {
		t.Errorf("first frame camera pixel %v, want %v", got, palette[0])
	}
	if got := enc.last.RGBAAt(150, 50); got != palette[0] {
		t.Errorf("last frame camera pixel %v, want %v", got, palette[0])
	}
}

func TestWritePreviewVideoEncoderError(t *testing.T) {
	opts := PreviewOptions{Width: 160, Height: 100, Padding: 10, Samples: 20}
	boom := errors.New("no ffmpeg")
	enc := &captureEncoder{fail: boom}

	err := WritePreviewVideo(context.Background(), "out.mp4", straightSession(), nil, nil, opts, 30, enc)
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}
}

func TestWritePreviewVideoRejects(t *testing.T) {
	opts := PreviewOptions{Width: 160, Height: 100, Samples: 20}
	if err := WritePreviewVideo(context.Background(), "x.mp4", straightSession(), nil, nil, opts, 0, &captureEncoder{}); err == nil {
		t.Error("expected error for zero fps")
	}

	s := straightSession()
	s.TimelineLength = 0
	if err := WritePreviewVideo(context.Background(), "x.mp4", s, nil, nil, opts, 30, &captureEncoder{}); err == nil {
		t.Error("expected error for empty timeline")
	}

	for _, length := range []float64{math.NaN(), math.Inf(1), 1e300, MaxPreviewFrames} {
		s := straightSession()
		s.TimelineLength = length
		enc := &captureEncoder{}
		if err := WritePreviewVideo(context.Background(), "x.mp4", s, nil, nil, opts, 30, enc); err == nil {
			t.Errorf("expected error for timeline length %g", length)
		}
		if enc.count != 0 {
			t.Errorf("length %g: encoder received %d frames", length, enc.count)
		}
	}
}
