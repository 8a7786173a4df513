package app

import (
	"context"

	"inspect-sim/internal/domain/entity"
	"inspect-sim/internal/domain/port"
)

// FixedClassifier оставляет метку дефекта и всегда даёт одну и ту же оценку.
// Настоящей классификации пока нет.
type FixedClassifier struct {
	Score int
}

// NewFixedClassifier создаёт классификатор с оценкой 100
func NewFixedClassifier() *FixedClassifier {
	return &FixedClassifier{Score: entity.MaxSubScore}
}

func (c *FixedClassifier) Classify(ctx context.Context, defect *entity.Defect, image *entity.ImageHandle) (string, int, error) {
	return defect.Classification, entity.ClampScore(c.Score), nil
}

var _ port.Classifier = (*FixedClassifier)(nil)
