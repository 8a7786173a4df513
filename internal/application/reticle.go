package app

import (
	"context"

	"go.uber.org/zap"

	"inspect-sim/internal/domain/entity"
	"inspect-sim/internal/domain/port"
)

// ReticleSignal подсказка прицела для текущего луча
type ReticleSignal struct {
	OnTarget bool
	Score    float64 // среднее расстояния и угла в [0, 1]
	Color    entity.Color
}

// Reticle оценивает качество прицеливания без изменения дефектов.
type Reticle struct {
	scene  port.SceneQuery
	policy ScoringPolicy
	log    *zap.Logger
}

func NewReticle(scene port.SceneQuery, policy ScoringPolicy, log *zap.Logger) *Reticle {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reticle{scene: scene, policy: policy.withDefaults(), log: log.Named("reticle")}
}

// Evaluate вызывается каждый тик и возвращает цвет прицела
func (r *Reticle) Evaluate(ctx context.Context, ray entity.Ray, sensorEnabled bool) ReticleSignal {
	noTarget := ReticleSignal{Color: entity.ColorRed}
	if !sensorEnabled || r.scene == nil || !ray.IsFinite() {
		return noTarget
	}

	hit, ok, err := r.scene.Raycast(ctx, ray, r.policy.MaxRange)
	if err != nil {
		r.log.Debug("raycast failed", zap.Error(err))
		return noTarget
	}
	if !ok || !hit.IsDefect() {
		return noTarget
	}

	m := measure(ray, hit)
	ratio := entity.Clamp01((r.policy.ScoringCutoff - m.Distance) / r.policy.ScoringCutoff)
	avg := (ratio + m.AngleCosine) / 2

	return ReticleSignal{OnTarget: true, Score: avg, Color: BlendColor(avg)}
}

// BlendColor переводит оценку в цвет: красный, жёлтый на 0.5, зелёный на 1.
func BlendColor(score float64) entity.Color {
	score = entity.Clamp01(score)
	if score < 0.5 {
		return entity.Lerp(entity.ColorRed, entity.ColorYellow, score*2)
	}
	return entity.Lerp(entity.ColorYellow, entity.ColorGreen, (score-0.5)*2)
}
