package video

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os/exec"
	"strings"
)

// FrameEncoder turns a stream of equally sized frames into a video file.
// Frames are only read until the channel closes or ctx is done.
type FrameEncoder interface {
	Encode(ctx context.Context, frames <-chan *image.RGBA, size image.Point, fps int, path string) error
}

// FFmpegEncoder pipes raw RGBA frames into an ffmpeg process.
type FFmpegEncoder struct {
	Codec   string // libx264, h264_videotoolbox or h264_nvenc
	Quality int    // 0 picks a codec default
	// Release, when set, receives each frame after it has been written.
	Release func(*image.RGBA)
}

// NewFFmpegEncoder picks the best H.264 encoder the local ffmpeg offers.
func NewFFmpegEncoder() *FFmpegEncoder {
	return &FFmpegEncoder{Codec: BestH264Encoder()}
}

func (e *FFmpegEncoder) Encode(ctx context.Context, frames <-chan *image.RGBA, size image.Point, fps int, path string) error {
	if size.X <= 0 || size.Y <= 0 || fps <= 0 {
		return fmt.Errorf("invalid video format %dx%d@%d", size.X, size.Y, fps)
	}

	cmd := exec.CommandContext(ctx, "ffmpeg", e.buildArgs(size, fps, path)...)
	var stderr strings.Builder
	cmd.Stderr = &stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe error: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("ffmpeg start error: %w", err)
	}

	writeErr := e.writeFrames(ctx, stdin, frames, size)
	stdin.Close()
	waitErr := cmd.Wait()

	if writeErr != nil {
		return fmt.Errorf("write raw error: %w", writeErr)
	}
	if waitErr != nil {
		return fmt.Errorf("ffmpeg wait error: %w, output: %s", waitErr, stderr.String())
	}
	return nil
}

func (e *FFmpegEncoder) writeFrames(ctx context.Context, w io.Writer, frames <-chan *image.RGBA, size image.Point) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case img, ok := <-frames:
			if !ok {
				return nil
			}
			if img.Bounds().Size() != size {
				return fmt.Errorf("frame size %v, want %v", img.Bounds().Size(), size)
			}
			err := writeRawRGBA(w, img)
			if e.Release != nil {
				e.Release(img)
			}
			if err != nil {
				return err
			}
		}
	}
}

func (e *FFmpegEncoder) buildArgs(size image.Point, fps int, path string) []string {
	codec := e.Codec
	if codec == "" {
		codec = "libx264"
	}

	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", size.X, size.Y),
		"-framerate", fmt.Sprintf("%d", fps),
		"-i", "-",
		"-pix_fmt", "yuv420p",
		"-c:v", codec,
	}

	quality := e.Quality
	switch codec {
	case "h264_videotoolbox":
		if quality == 0 {
			quality = 75
		}
		args = append(args, "-b:v", fmt.Sprintf("%dk", quality*100))
	case "h264_nvenc":
		if quality == 0 {
			quality = 28
		}
		args = append(args, "-cq", fmt.Sprintf("%d", quality))
	default: // libx264
		if quality == 0 {
			quality = 23
		}
		args = append(args, "-crf", fmt.Sprintf("%d", quality), "-preset", "medium")
	}

	return append(args, path)
}

func writeRawRGBA(w io.Writer, img image.Image) error {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 || rgba.Rect.Min.X != 0 || rgba.Rect.Min.Y != 0 {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}
	_, err := w.Write(rgba.Pix)
	return err
}

// BestH264Encoder prefers hardware encoders and falls back to libx264.
func BestH264Encoder() string {
	out, err := exec.Command("ffmpeg", "-hide_banner", "-encoders").CombinedOutput()
	if err != nil {
		return "libx264"
	}
	for _, name := range []string{"h264_videotoolbox", "h264_nvenc"} {
		if strings.Contains(string(out), name) {
			return name
		}
	}
	return "libx264"
}
