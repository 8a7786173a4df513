package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"inspect-sim/internal/domain/entity"
	"inspect-sim/internal/domain/port"
)

// DetectionOutcome итог нажатия на затвор
type DetectionOutcome string

const (
	OutcomeScanned        DetectionOutcome = "scanned"
	OutcomeSensorDisabled DetectionOutcome = "sensor_disabled"
	OutcomeNoTarget       DetectionOutcome = "no_target"
	OutcomeAlreadyScanned DetectionOutcome = "already_scanned"
	OutcomeCaptureFailed  DetectionOutcome = "capture_failed"
)

// DetectionResult результат одной попытки съёмки
type DetectionResult struct {
	Outcome     DetectionOutcome
	Defect      *entity.Defect // nil, если дефект не найден
	Distance    float64
	AngleCosine float64
}

// DetectionDeps зависимости движка съёмки
type DetectionDeps struct {
	Scene      port.SceneQuery
	Roster     port.DefectRoster
	Capturer   port.ImageCapturer
	Classifier port.Classifier
	Publisher  port.ScanPublisher
	Clock      port.Clock
}

// DetectionEngine превращает луч камеры в сфотографированный и оценённый дефект.
type DetectionEngine struct {
	deps      DetectionDeps
	policy    ScoringPolicy
	sessionID string
	log       *zap.Logger
}

// NewDetectionEngine создаёт движок съёмки
func NewDetectionEngine(sessionID string, deps DetectionDeps, policy ScoringPolicy, log *zap.Logger) (*DetectionEngine, error) {
	switch {
	case deps.Scene == nil:
		return nil, errors.New("scene is not configured")
	case deps.Roster == nil:
		return nil, errors.New("roster is not configured")
	case deps.Capturer == nil:
		return nil, errors.New("capturer is not configured")
	case deps.Publisher == nil:
		return nil, errors.New("publisher is not configured")
	}
	if deps.Classifier == nil {
		deps.Classifier = NewFixedClassifier()
	}
	if deps.Clock == nil {
		deps.Clock = NewSessionClock()
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &DetectionEngine{
		deps:      deps,
		policy:    policy.withDefaults(),
		sessionID: sessionID,
		log:       log.Named("detection"),
	}, nil
}

// Detect обрабатывает нажатие на затвор.
// Повторная съёмка уже сфотографированного дефекта ничего не меняет.
// Ошибка возвращается только при сбое сцены или захвата кадра.
func (e *DetectionEngine) Detect(ctx context.Context, ray entity.Ray, sensorEnabled bool) (DetectionResult, error) {
	if !sensorEnabled {
		e.log.Warn("cannot take picture when camera is disabled")
		return DetectionResult{Outcome: OutcomeSensorDisabled}, nil
	}
	if !ray.IsFinite() {
		e.log.Warn("ray is not finite", zap.Any("origin", ray.Origin), zap.Any("direction", ray.Direction))
		return DetectionResult{Outcome: OutcomeNoTarget}, nil
	}

	hit, ok, err := e.deps.Scene.Raycast(ctx, ray, e.policy.MaxRange)
	if err != nil {
		return DetectionResult{Outcome: OutcomeNoTarget}, fmt.Errorf("raycast: %w", err)
	}
	if !ok || !hit.IsDefect() {
		return DetectionResult{Outcome: OutcomeNoTarget}, nil
	}

	defect, err := e.deps.Roster.Get(ctx, hit.TargetID)
	if err != nil {
		e.log.Warn("defect-tagged object is not in roster", zap.String("target_id", hit.TargetID), zap.Error(err))
		return DetectionResult{Outcome: OutcomeNoTarget}, nil
	}

	m := measure(ray, hit)
	result := DetectionResult{Defect: defect, Distance: m.Distance, AngleCosine: m.AngleCosine}

	if defect.Scanned() {
		result.Outcome = OutcomeAlreadyScanned
		e.log.Debug("defect already scanned", zap.String("defect_id", defect.ID))
		return result, nil
	}

	image, err := e.deps.Capturer.CaptureStill(ctx)
	if err != nil {
		result.Outcome = OutcomeCaptureFailed
		e.log.Error("still capture failed", zap.String("defect_id", defect.ID), zap.Error(err))
		if !errors.Is(err, entity.ErrCaptureFailed) {
			err = fmt.Errorf("%w: %v", entity.ErrCaptureFailed, err)
		}
		return result, err
	}

	scan := entity.ScanResult{
		Image:      image,
		CapturedAt: e.deps.Clock.Elapsed(),
	}
	if m.Distance <= e.policy.ScoringCutoff {
		scan.DistanceScore = distanceScore(m.Distance, e.policy.ScoringCutoff)
		scan.AngleScore = angleScore(m.AngleCosine)
	} else {
		e.log.Info("no points added, defect is too far away",
			zap.String("defect_id", defect.ID),
			zap.Float64("distance", m.Distance))
	}

	label, score, err := e.deps.Classifier.Classify(ctx, defect, image)
	if err != nil {
		e.log.Warn("classification failed", zap.String("defect_id", defect.ID), zap.Error(err))
		label, score = defect.Classification, 0
	}
	scan.Classification = label
	scan.ClassificationScore = score

	if err := defect.MarkScanned(scan); err != nil {
		result.Outcome = OutcomeAlreadyScanned
		return result, nil
	}
	result.Outcome = OutcomeScanned

	e.log.Info("defect sent to report",
		zap.String("defect_id", defect.ID),
		zap.Int("distance_score", defect.DistanceScore),
		zap.Int("angle_score", defect.AngleScore),
		zap.Int("total", defect.TotalScore()))

	evt := entity.DefectScanned{SessionID: e.sessionID, Defect: defect}
	if err := e.deps.Publisher.PublishScanned(ctx, evt); err != nil {
		e.log.Error("scan notification failed", zap.String("defect_id", defect.ID), zap.Error(err))
	}

	return result, nil
}
