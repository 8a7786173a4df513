//go:build gocv
// +build gocv

package vision

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"sync"

	"github.com/google/uuid"
	"gocv.io/x/gocv"

	"inspect-sim/internal/domain/entity"
)

// FrameCapturer снимает кадры с поверхности рендера камеры робота
type FrameCapturer struct {
	Width   int
	Height  int
	Quality int

	mu      sync.Mutex
	surface gocv.Mat
	ready   bool
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

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ready {
		c.surface.Close()
	}
	c.surface = gocv.NewMatWithSize(c.Height, c.Width, gocv.MatTypeCV8UC3)
	c.surface.SetTo(gocv.NewScalar(64, 64, 64, 0))
	c.ready = true
	return nil
}

// SetFrame кладёт на поверхность кадр от внешнего рендера (JPEG/PNG).
func (c *FrameCapturer) SetFrame(frame []byte) error {
	mat, err := gocv.IMDecode(frame, gocv.IMReadColor)
	if err != nil {
		return fmt.Errorf("failed to decode frame: %w", err)
	}
	if mat.Empty() {
		mat.Close()
		return errors.New("failed to decode frame")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.ready {
		mat.Close()
		return entity.ErrCaptureFailed
	}

	// Приводим кадр к размеру поверхности.
	if mat.Cols() != c.Width || mat.Rows() != c.Height {
		resized := gocv.NewMat()
		gocv.Resize(mat, &resized, image.Pt(c.Width, c.Height), 0, 0, gocv.InterpolationArea)
		mat.Close()
		mat = resized
	}
	c.surface.Close()
	c.surface = mat
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

	if !c.ready || c.surface.Empty() {
		return nil, fmt.Errorf("%w: render surface is not initialized", entity.ErrCaptureFailed)
	}

	frame := c.surface.Clone()
	defer frame.Close()
	drawReticle(&frame, c.reticle)

	img, err := frame.ToImage()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrCaptureFailed, err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: c.Quality}); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrCaptureFailed, err)
	}

	return &entity.ImageHandle{
		ID:     uuid.NewString(),
		Width:  frame.Cols(),
		Height: frame.Rows(),
		Format: "jpeg",
		Data:   buf.Bytes(),
	}, nil
}

// Close освобождает поверхность
func (c *FrameCapturer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ready {
		c.surface.Close()
		c.ready = false
	}
	return nil
}

func drawReticle(mat *gocv.Mat, col entity.Color) {
	r, g, b, a := col.RGBA()
	rgba := color.RGBA{R: r, G: g, B: b, A: a}

	cx, cy := mat.Cols()/2, mat.Rows()/2
	arm := minInt(mat.Cols(), mat.Rows()) / 20
	gocv.Line(mat, image.Pt(cx-arm, cy), image.Pt(cx+arm, cy), rgba, 2)
	gocv.Line(mat, image.Pt(cx, cy-arm), image.Pt(cx, cy+arm), rgba, 2)
	gocv.Circle(mat, image.Pt(cx, cy), arm/2, rgba, 2)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
