package port

import (
	"context"

	"inspect-sim/internal/domain/entity"
)

// Classifier интерфейс классификатора дефектов
type Classifier interface {
	// Classify возвращает метку дефекта и оценку классификации в [0, 100]
	Classify(ctx context.Context, defect *entity.Defect, image *entity.ImageHandle) (string, int, error)
}
