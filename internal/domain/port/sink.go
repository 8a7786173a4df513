package port

import (
	"context"
	"time"

	"inspect-sim/internal/domain/entity"
)

// ReportRow строка отчёта об одном сфотографированном дефекте
type ReportRow struct {
	Index          int
	DefectID       string
	Classification string
	Image          *entity.ImageHandle
	CapturedAt     time.Duration
	Measurement    float64
	Offset         float64 // вертикальное смещение строки
}

// ReportSink отображает отчёт
type ReportSink interface {
	RenderReport(ctx context.Context, rows []ReportRow, visible bool) error
}

// GradeSink отображает итоговую карточку оценок
type GradeSink interface {
	RenderGrade(ctx context.Context, grade entity.FinalGrade) error
}

// ReticleDisplay отображает цвет прицела
type ReticleDisplay interface {
	SetReticle(color entity.Color)
}
