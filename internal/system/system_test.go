package system

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFindLatestFile(t *testing.T) {
	dir := t.TempDir()
	names := []string{"a.yaml", "b.YAML", "c.txt"}
	for i, n := range names {
		p := filepath.Join(dir, n)
		if err := os.WriteFile(p, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		mt := time.Now().Add(time.Duration(i) * time.Minute)
		os.Chtimes(p, mt, mt)
	}

	got, err := FindLatestFile(dir, ".yaml")
	if err != nil {
		t.Fatalf("FindLatestFile: %v", err)
	}
	if filepath.Base(got) != "b.YAML" {
		t.Errorf("got %s, want b.YAML", got)
	}

	if _, err := FindLatestFile(dir, ".png"); err == nil {
		t.Error("expected error when nothing matches")
	}
}

func TestImagePoolReusesBySize(t *testing.T) {
	rect := image.Rect(0, 0, 16, 8)
	img := GetImage(rect)
	if img.Bounds() != rect {
		t.Fatalf("bounds %v", img.Bounds())
	}
	PutImage(img)
	PutImage(nil)

	again := GetImage(rect)
	if again.Bounds() != rect {
		t.Errorf("bounds %v", again.Bounds())
	}
	if other := GetImage(image.Rect(0, 0, 4, 4)); other.Bounds().Dx() != 4 {
		t.Errorf("bounds %v", other.Bounds())
	}
}

func TestCurrentRSS(t *testing.T) {
	if CurrentRSS() == 0 {
		t.Skip("process memory not readable here")
	}
}

func TestGetCanvasClearsPooledPixels(t *testing.T) {
	rect := image.Rect(0, 0, 3, 3)
	img := GetImage(rect)
	img.Pix[0] = 200
	PutImage(img)

	canvas := GetCanvas(rect, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	if got := canvas.RGBAAt(0, 0); got != (color.RGBA{R: 10, G: 20, B: 30, A: 255}) {
		t.Errorf("pixel %v", got)
	}
}
