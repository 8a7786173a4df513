package port

import (
	"context"

	"inspect-sim/internal/domain/entity"
)

// DefectRoster полный список дефектов сцены
type DefectRoster interface {
	// Get возвращает дефект по ID
	Get(ctx context.Context, id string) (*entity.Defect, error)

	// All возвращает все дефекты в порядке загрузки сцены
	All(ctx context.Context) ([]*entity.Defect, error)

	// Len возвращает число дефектов
	Len() int

	// Reset возвращает все дефекты в исходное состояние
	Reset(ctx context.Context) error
}
