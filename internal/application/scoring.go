package app

import (
	"math"

	"inspect-sim/internal/domain/entity"
)

const (
	DefaultMaxRange      = 10.0
	DefaultScoringCutoff = 10.0
)

// ScoringPolicy дальность луча и граница начисления очков.
// Это разные настройки: попадание дальше ScoringCutoff засчитывается,
// но без очков за расстояние и угол.
type ScoringPolicy struct {
	MaxRange      float64
	ScoringCutoff float64
}

// DefaultScoringPolicy возвращает значения по умолчанию
func DefaultScoringPolicy() ScoringPolicy {
	return ScoringPolicy{MaxRange: DefaultMaxRange, ScoringCutoff: DefaultScoringCutoff}
}

func (p ScoringPolicy) withDefaults() ScoringPolicy {
	if p.MaxRange <= 0 {
		p.MaxRange = DefaultMaxRange
	}
	if p.ScoringCutoff <= 0 {
		p.ScoringCutoff = DefaultScoringCutoff
	}
	return p
}

// shotMetrics расстояние до цели и косинус угла съёмки
type shotMetrics struct {
	Distance    float64
	AngleCosine float64
}

func measure(ray entity.Ray, hit entity.Hit) shotMetrics {
	dir := hit.Point.Sub(ray.Origin).Normalize()
	if dir.Length() == 0 {
		// Камера стоит в точке попадания: берём направление луча.
		dir = ray.Direction.Normalize()
	}
	return shotMetrics{
		Distance:    hit.DistanceToTarget(ray.Origin),
		AngleCosine: entity.Clamp01(math.Abs(dir.Dot(hit.Normal.Normalize()))),
	}
}

// distanceScore линейно убывает от 100 у цели до 0 на границе.
func distanceScore(distance, cutoff float64) int {
	return entity.ClampScore(roundScore(entity.MaxSubScore * (cutoff - distance) / cutoff))
}

// angleScore максимален при съёмке перпендикулярно поверхности.
func angleScore(cosine float64) int {
	return entity.ClampScore(roundScore(entity.MaxSubScore * cosine))
}

// roundScore округляет половины к чётному.
func roundScore(v float64) int {
	return int(math.RoundToEven(v))
}
