package container

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"inspect-sim/config"
	app "inspect-sim/internal/application"
	"inspect-sim/internal/domain/entity"
	"inspect-sim/internal/domain/port"
	"inspect-sim/internal/infrastructure/eventbus"
	"inspect-sim/internal/infrastructure/storage"
	"inspect-sim/internal/infrastructure/vision"
)

// SceneSource сцена, из которой берутся луч и список дефектов
type SceneSource interface {
	port.SceneQuery
	Defects() []*entity.Defect
}

// Sinks куда сессия выводит отчёт и итог
type Sinks struct {
	Report port.ReportSink
	Grade  port.GradeSink
}

type Container struct {
	Scene      SceneSource
	Policy     app.ScoringPolicy
	Classifier port.Classifier
	Logger     *zap.Logger

	captureWidth  int
	captureHeight int
}

func New(cfg *config.Config, scene SceneSource, logger *zap.Logger) *Container {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Container{
		Scene: scene,
		Policy: app.ScoringPolicy{
			MaxRange:      cfg.MaxRange,
			ScoringCutoff: cfg.ScoringCutoff,
		},
		Classifier:    app.NewFixedClassifier(),
		Logger:        logger,
		captureWidth:  cfg.CaptureWidth,
		captureHeight: cfg.CaptureHeight,
	}
}

// NewSession собирает новую сессию: свежие дефекты сцены, своя шина и камера.
func (c *Container) NewSession(sinks Sinks) (*app.Session, *vision.FrameCapturer, error) {
	if c.Scene == nil {
		return nil, nil, errors.New("scene is not configured")
	}

	roster, err := storage.NewMemoryRoster(c.Scene.Defects()...)
	if err != nil {
		return nil, nil, fmt.Errorf("build roster: %w", err)
	}

	capturer := vision.NewFrameCapturer(c.captureWidth, c.captureHeight)
	if err := capturer.Initialize(); err != nil {
		return nil, nil, fmt.Errorf("initialize camera: %w", err)
	}

	session, err := app.NewSession(app.SessionDeps{
		Scene:      c.Scene,
		Roster:     roster,
		Bus:        eventbus.NewBus(),
		Capturer:   capturer,
		Classifier: c.Classifier,
		Clock:      app.NewSessionClock(),
		Reticle:    capturer,
		Report:     sinks.Report,
		Grade:      sinks.Grade,
	}, c.Policy, c.Logger)
	if err != nil {
		capturer.Close()
		return nil, nil, err
	}

	return session, capturer, nil
}
