package port

import (
	"context"

	"inspect-sim/internal/domain/entity"
)

// SceneQuery интерфейс запроса к сцене
type SceneQuery interface {
	// Raycast пускает луч длиной maxRange и возвращает ближайшее попадание
	Raycast(ctx context.Context, ray entity.Ray, maxRange float64) (entity.Hit, bool, error)
}
