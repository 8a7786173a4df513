package app

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"inspect-sim/internal/domain/entity"
	"inspect-sim/internal/domain/port"
)

// SessionDeps всё, что нужно одной сессии инспекции
type SessionDeps struct {
	Scene      port.SceneQuery
	Roster     port.DefectRoster
	Bus        port.ScanBus
	Capturer   port.ImageCapturer
	Classifier port.Classifier
	Clock      port.Clock
	Reticle    port.ReticleDisplay
	Report     port.ReportSink
	Grade      port.GradeSink
}

// Session контекст одной попытки: владеет дефектами, шиной и движками.
// Все действия сериализуются, поэтому проверка и отметка съёмки атомарны.
type Session struct {
	ID string

	mu        sync.Mutex
	deps      SessionDeps
	detection *DetectionEngine
	reticle   *Reticle
	report    *ReportAggregator
	grading   *GradingEngine
	cameraOn  bool
	final     *entity.FinalGrade
	log       *zap.Logger
}

// NewSession собирает сессию
func NewSession(deps SessionDeps, policy ScoringPolicy, log *zap.Logger) (*Session, error) {
	if deps.Bus == nil {
		return nil, errors.New("event bus is not configured")
	}
	if deps.Clock == nil {
		deps.Clock = NewSessionClock()
	}
	if log == nil {
		log = zap.NewNop()
	}

	id := uuid.NewString()
	log = log.With(zap.String("session_id", id))

	detection, err := NewDetectionEngine(id, DetectionDeps{
		Scene:      deps.Scene,
		Roster:     deps.Roster,
		Capturer:   deps.Capturer,
		Classifier: deps.Classifier,
		Publisher:  deps.Bus,
		Clock:      deps.Clock,
	}, policy, log)
	if err != nil {
		return nil, err
	}

	report, err := NewReportAggregator(deps.Bus, deps.Report, log)
	if err != nil {
		return nil, err
	}

	grading, err := NewGradingEngine(deps.Roster, deps.Bus, deps.Grade, log)
	if err != nil {
		report.Close()
		return nil, err
	}

	log.Info("starting up scoring system", zap.Int("defects", deps.Roster.Len()))

	return &Session{
		ID:        id,
		deps:      deps,
		detection: detection,
		reticle:   NewReticle(deps.Scene, policy, log),
		report:    report,
		grading:   grading,
		cameraOn:  true,
		log:       log,
	}, nil
}

// Shoot нажатие на затвор
func (s *Session) Shoot(ctx context.Context, ray entity.Ray) (DetectionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.final != nil {
		return DetectionResult{}, entity.ErrSessionFinished
	}
	return s.detection.Detect(ctx, ray, s.cameraOn)
}

// Aim оценивает прицел и передаёт цвет на дисплей
func (s *Session) Aim(ctx context.Context, ray entity.Ray) ReticleSignal {
	s.mu.Lock()
	defer s.mu.Unlock()

	signal := ReticleSignal{Color: entity.ColorRed}
	if s.final == nil {
		signal = s.reticle.Evaluate(ctx, ray, s.cameraOn)
	}
	if s.deps.Reticle != nil {
		s.deps.Reticle.SetReticle(signal.Color)
	}
	return signal
}

// SetCamera включает или выключает камеру робота
func (s *Session) SetCamera(on bool) {
	s.mu.Lock()
	s.cameraOn = on
	s.mu.Unlock()
	s.log.Debug("camera power", zap.Bool("on", on))
}

func (s *Session) CameraEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cameraOn
}

// ToggleReport показывает или прячет отчёт
func (s *Session) ToggleReport(ctx context.Context) (bool, error) {
	return s.report.Toggle(ctx)
}

// Report возвращает строки отчёта
func (s *Session) Report() []port.ReportRow {
	return s.report.Rows()
}

// LiveScore текущий счёт
func (s *Session) LiveScore() int {
	return s.grading.LiveScore()
}

// Finished сообщает, подведён ли итог
func (s *Session) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.final != nil
}

// Finish подводит итог один раз; повторные вызовы возвращают копию того же результата.
func (s *Session) Finish(ctx context.Context) entity.FinalGrade {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.final != nil {
		return s.final.Clone()
	}

	s.log.Info("calculating grade")
	if err := s.report.Hide(ctx); err != nil {
		s.log.Warn("hide report failed", zap.Error(err))
	}
	grade := s.grading.Finalize(ctx)
	cached := grade.Clone()
	s.final = &cached
	return grade
}

// Restart начинает попытку заново: дефекты, отчёт, счёт и часы сбрасываются.
func (s *Session) Restart(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.deps.Roster.Reset(ctx); err != nil {
		return err
	}
	s.report.Reset()
	s.grading.Reset()
	s.deps.Clock.Restart()
	s.cameraOn = true
	s.final = nil

	s.log.Info("session restarted")
	return s.report.Rebuild(ctx)
}

// Close снимает подписки компонентов
func (s *Session) Close() {
	s.report.Close()
	s.grading.Close()
}
