package system

import (
	"image"
	"image/color"
	"image/draw"
	"sync"
)

// ImagePool recycles *image.RGBA canvases by bounds, so repeated preview
// renders of one size stop allocating.
type ImagePool struct {
	mu    sync.Mutex
	pools map[image.Rectangle]*sync.Pool
}

var globalPool = NewImagePool()

func NewImagePool() *ImagePool {
	return &ImagePool{pools: make(map[image.Rectangle]*sync.Pool)}
}

// GetImage returns a canvas with the given bounds from the shared pool.
// Pooled canvases keep their old pixels.
func GetImage(rect image.Rectangle) *image.RGBA {
	return globalPool.Get(rect)
}

// GetCanvas returns a pooled canvas filled with bg.
func GetCanvas(rect image.Rectangle, bg color.Color) *image.RGBA {
	img := globalPool.Get(rect)
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	return img
}

// PutImage hands a canvas back to the shared pool.
func PutImage(img *image.RGBA) {
	globalPool.Put(img)
}

func (p *ImagePool) pool(rect image.Rectangle) *sync.Pool {
	p.mu.Lock()
	defer p.mu.Unlock()
	pl, ok := p.pools[rect]
	if !ok {
		pl = &sync.Pool{New: func() any { return image.NewRGBA(rect) }}
		p.pools[rect] = pl
	}
	return pl
}

func (p *ImagePool) Get(rect image.Rectangle) *image.RGBA {
	return p.pool(rect).Get().(*image.RGBA)
}

// Put ignores canvases whose bounds were never requested.
func (p *ImagePool) Put(img *image.RGBA) {
	if img == nil {
		return
	}
	p.mu.Lock()
	pl, ok := p.pools[img.Rect]
	p.mu.Unlock()
	if ok {
		pl.Put(img)
	}
}
