package port

import (
	"context"

	"inspect-sim/internal/domain/entity"
)

// ImageCapturer интерфейс съёмки кадра с камеры робота
type ImageCapturer interface {
	// CaptureStill делает снимок текущего кадра.
	// Возвращает ошибку, если поверхность захвата не готова.
	CaptureStill(ctx context.Context) (*entity.ImageHandle, error)
}
