package app

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"inspect-sim/internal/domain/entity"
	"inspect-sim/internal/domain/port"
	"inspect-sim/internal/infrastructure/eventbus"
	"inspect-sim/internal/infrastructure/storage"
)

// fakeScene всегда возвращает заданное попадание
type fakeScene struct {
	hit   entity.Hit
	ok    bool
	err   error
	calls int
}

func (s *fakeScene) Raycast(ctx context.Context, ray entity.Ray, maxRange float64) (entity.Hit, bool, error) {
	s.calls++
	if s.err != nil {
		return entity.Hit{}, false, s.err
	}
	if !s.ok || s.hit.Distance > maxRange {
		return entity.Hit{}, false, nil
	}
	return s.hit, true, nil
}

type fakeCapturer struct {
	err   error
	calls int
}

func (c *fakeCapturer) CaptureStill(ctx context.Context) (*entity.ImageHandle, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return &entity.ImageHandle{ID: "img", Format: "jpeg", Data: []byte{0xff, 0xd8}}, nil
}

type fakeClock struct{ elapsed time.Duration }

func (c *fakeClock) Elapsed() time.Duration { return c.elapsed }
func (c *fakeClock) Restart()               { c.elapsed = 0 }

type recordingSink struct {
	renders [][]port.ReportRow
	visible []bool
	grades  []entity.FinalGrade
	colors  []entity.Color
}

func (s *recordingSink) RenderReport(ctx context.Context, rows []port.ReportRow, visible bool) error {
	s.renders = append(s.renders, rows)
	s.visible = append(s.visible, visible)
	return nil
}

func (s *recordingSink) RenderGrade(ctx context.Context, grade entity.FinalGrade) error {
	s.grades = append(s.grades, grade)
	return nil
}

func (s *recordingSink) SetReticle(c entity.Color) { s.colors = append(s.colors, c) }

type failingClassifier struct{}

func (failingClassifier) Classify(context.Context, *entity.Defect, *entity.ImageHandle) (string, int, error) {
	return "", 0, errors.New("model unavailable")
}

// defectHit попадание в дефект id: камера в начале координат смотрит по +Z,
// цель на расстоянии dist, нормаль повёрнута к лучу на угол с косинусом cos.
func defectHit(id string, dist, cos float64) entity.Hit {
	sin := 0.0
	if cos < 1 {
		sin = math.Sqrt(1 - cos*cos)
	}
	return entity.Hit{
		Point:          entity.Vec3{Z: dist},
		Normal:         entity.Vec3{Y: sin, Z: -cos},
		TargetPosition: entity.Vec3{Z: dist},
		TargetID:       id,
		TargetTag:      entity.DefectTag,
		Distance:       dist,
	}
}

var forward = entity.Ray{Direction: entity.Vec3{Z: 1}}

type fixture struct {
	roster   *storage.MemoryRoster
	bus      *eventbus.Bus
	scene    *fakeScene
	capturer *fakeCapturer
	clock    *fakeClock
	events   []entity.DefectScanned
	engine   *DetectionEngine
}

func newFixture(t *testing.T, policy ScoringPolicy, defects ...*entity.Defect) *fixture {
	t.Helper()

	roster, err := storage.NewMemoryRoster(defects...)
	require.NoError(t, err)

	f := &fixture{
		roster:   roster,
		bus:      eventbus.NewBus(),
		scene:    &fakeScene{},
		capturer: &fakeCapturer{},
		clock:    &fakeClock{elapsed: 42 * time.Second},
	}
	_, err = f.bus.SubscribeScanned(func(_ context.Context, evt entity.DefectScanned) error {
		f.events = append(f.events, evt)
		return nil
	})
	require.NoError(t, err)

	f.engine, err = NewDetectionEngine("s1", DetectionDeps{
		Scene:     f.scene,
		Roster:    roster,
		Capturer:  f.capturer,
		Publisher: f.bus,
		Clock:     f.clock,
	}, policy, nil)
	require.NoError(t, err)
	return f
}

func (f *fixture) aimAt(hit entity.Hit) {
	f.scene.hit = hit
	f.scene.ok = true
}
