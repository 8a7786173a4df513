package app

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"inspect-sim/internal/domain/entity"
	"inspect-sim/internal/domain/port"
)

// GradingEngine считает итоговую оценку по всему списку дефектов сцены
// и ведёт текущий счёт по событиям съёмки.
type GradingEngine struct {
	roster port.DefectRoster
	sink   port.GradeSink
	log    *zap.Logger

	mu          sync.Mutex
	liveScore   int
	scanned     int
	unsubscribe func()
}

// NewGradingEngine создаёт движок оценки и подписывает счётчик на события.
func NewGradingEngine(roster port.DefectRoster, sub port.ScanSubscriber, sink port.GradeSink, log *zap.Logger) (*GradingEngine, error) {
	if roster == nil {
		return nil, errors.New("roster is not configured")
	}
	if log == nil {
		log = zap.NewNop()
	}

	g := &GradingEngine{roster: roster, sink: sink, log: log.Named("grading")}
	if sub != nil {
		unsubscribe, err := sub.SubscribeScanned(g.handleScanned)
		if err != nil {
			return nil, err
		}
		g.unsubscribe = unsubscribe
	}
	return g, nil
}

func (g *GradingEngine) handleScanned(_ context.Context, evt entity.DefectScanned) error {
	if evt.Defect == nil {
		return nil
	}

	g.mu.Lock()
	g.liveScore += evt.Defect.TotalScore()
	g.scanned++
	score := g.liveScore
	g.mu.Unlock()

	g.log.Debug("updated score", zap.Int("score", score))
	return nil
}

// LiveScore возвращает сумму очков за уже сфотографированные дефекты
func (g *GradingEngine) LiveScore() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.liveScore
}

// ScannedCount возвращает число событий съёмки за сессию
func (g *GradingEngine) ScannedCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.scanned
}

// Finalize проходит по всем дефектам сцены, включая пропущенные,
// и возвращает разбивку и общую оценку. Дефекты не изменяются.
func (g *GradingEngine) Finalize(ctx context.Context) entity.FinalGrade {
	defects, err := g.roster.All(ctx)
	if err != nil {
		g.log.Error("roster is unavailable, grading as empty", zap.Error(err))
		defects = nil
	}

	grade := Grade(defects)
	if grade.Empty {
		g.log.Warn("final grade", zap.Error(entity.ErrEmptyRoster), zap.Float64("percent", 0))
	} else {
		g.log.Info("final grade",
			zap.Int("total", grade.TotalScore),
			zap.Int("max", grade.MaxPossibleScore),
			zap.Float64("percent", grade.Percent),
			zap.String("letter", grade.Letter))
	}

	if g.sink != nil {
		if err := g.sink.RenderGrade(ctx, grade); err != nil {
			g.log.Error("grade display failed", zap.Error(err))
		}
	}
	return grade
}

// Grade считает оценку для набора дефектов.
func Grade(defects []*entity.Defect) entity.FinalGrade {
	grade := entity.FinalGrade{Entries: make([]entity.GradeEntry, 0, len(defects))}
	if len(defects) == 0 {
		grade.Empty = true
		grade.Letter = entity.LetterGrade(0)
		return grade
	}

	for _, d := range defects {
		score := d.TotalScore()
		percent := float64(score) / entity.MaxScorePerDefect * 100
		grade.Entries = append(grade.Entries, entity.GradeEntry{
			DefectID:            d.ID,
			Classification:      d.Classification,
			Scanned:             d.Scanned(),
			BaseScore:           d.BaseScore,
			DistanceScore:       d.DistanceScore,
			AngleScore:          d.AngleScore,
			ClassificationScore: d.ClassificationScore,
			Score:               score,
			Percent:             percent,
			Letter:              entity.LetterGrade(percent),
		})
		grade.TotalScore += score
	}

	grade.MaxPossibleScore = len(defects) * entity.MaxScorePerDefect
	grade.Percent = float64(grade.TotalScore) / float64(grade.MaxPossibleScore) * 100
	grade.Letter = entity.LetterGrade(grade.Percent)
	return grade
}

// Reset обнуляет текущий счёт
func (g *GradingEngine) Reset() {
	g.mu.Lock()
	g.liveScore = 0
	g.scanned = 0
	g.mu.Unlock()
}

// Close снимает подписку на события
func (g *GradingEngine) Close() {
	if g.unsubscribe != nil {
		g.unsubscribe()
	}
}
