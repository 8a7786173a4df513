//go:build !gocv
// +build !gocv

package vision

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"sync"

	"github.com/google/uuid"

	"inspect-sim/internal/domain/entity"
)

// FrameCapturer захват кадров без OpenCV: поверхность хранится как image.RGBA.
type FrameCapturer struct {
	Width   int
	Height  int
	Quality int

	mu      sync.Mutex
	surface *image.RGBA
	reticle entity.Color
}

// NewFrameCapturer создаёт захват кадров заданного размера.
// До вызова Initialize поверхность не готова и снимки невозможны.
func NewFrameCapturer(width, height int) *FrameCapturer {
	return &FrameCapturer{
		Width:   width,
		Height:  height,
		Quality: 90,
		reticle: entity.ColorRed,
	}
}

// Initialize создаёт поверхность рендера
func (c *FrameCapturer) Initialize() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid capture size %dx%d", c.Width, c.Height)
	}

	surface := image.NewRGBA(image.Rect(0, 0, c.Width, c.Height))
	draw.Draw(surface, surface.Bounds(), &image.Uniform{C: color.RGBA{R: 64, G: 64, B: 64, A: 255}}, image.Point{}, draw.Src)

	c.mu.Lock()
	c.surface = surface
	c.mu.Unlock()
	return nil
}

// SetFrame кладёт на поверхность кадр от внешнего рендера.
// Без OpenCV кадр не масштабируется, а рисуется в левый верхний угол.
func (c *FrameCapturer) SetFrame(frame []byte) error {
	img, _, err := image.Decode(bytes.NewReader(frame))
	if err != nil {
		return fmt.Errorf("failed to decode frame: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.surface == nil {
		return entity.ErrCaptureFailed
	}
	draw.Draw(c.surface, c.surface.Bounds(), img, img.Bounds().Min, draw.Src)
	return nil
}

// SetReticle задаёт цвет прицела, который рисуется поверх снимка
func (c *FrameCapturer) SetReticle(col entity.Color) {
	c.mu.Lock()
	c.reticle = col
	c.mu.Unlock()
}

// CaptureStill копирует поверхность, рисует прицел и кодирует JPEG.
func (c *FrameCapturer) CaptureStill(ctx context.Context) (*entity.ImageHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.surface == nil {
		return nil, fmt.Errorf("%w: render surface is not initialized", entity.ErrCaptureFailed)
	}

	frame := image.NewRGBA(c.surface.Bounds())
	draw.Draw(frame, frame.Bounds(), c.surface, image.Point{}, draw.Src)
	drawReticle(frame, c.reticle)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, frame, &jpeg.Options{Quality: c.Quality}); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrCaptureFailed, err)
	}

	return &entity.ImageHandle{
		ID:     uuid.NewString(),
		Width:  frame.Bounds().Dx(),
		Height: frame.Bounds().Dy(),
		Format: "jpeg",
		Data:   buf.Bytes(),
	}, nil
}

// Close освобождает поверхность
func (c *FrameCapturer) Close() error {
	c.mu.Lock()
	c.surface = nil
	c.mu.Unlock()
	return nil
}

func drawReticle(img *image.RGBA, col entity.Color) {
	r, g, b, a := col.RGBA()
	rgba := color.RGBA{R: r, G: g, B: b, A: a}

	bounds := img.Bounds()
	cx, cy := bounds.Dx()/2, bounds.Dy()/2
	arm := bounds.Dx() / 20
	if bounds.Dy() < bounds.Dx() {
		arm = bounds.Dy() / 20
	}
	for i := -arm; i <= arm; i++ {
		img.SetRGBA(cx+i, cy, rgba)
		img.SetRGBA(cx, cy+i, rgba)
	}
}
