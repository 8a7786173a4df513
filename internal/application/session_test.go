package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"inspect-sim/internal/domain/entity"
	"inspect-sim/internal/domain/port"
	"inspect-sim/internal/infrastructure/eventbus"
	"inspect-sim/internal/infrastructure/scene"
	"inspect-sim/internal/infrastructure/storage"
)

const sessionScene = `
name: hangar
targets:
  - id: crack
    classification: crack
    measurement: 3
    position: {x: 0, y: 0, z: 4}
    normal: {x: 0, y: 0, z: -1}
  - id: rust
    classification: corrosion
    position: {x: 2, y: 0, z: 4}
    normal: {x: 0, y: 0, z: -1}
`

type sessionFixture struct {
	session *Session
	sink    *recordingSink
	bus     *eventbus.Bus
	clock   *fakeClock
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()
	return newSessionFixtureWith(t, &fakeCapturer{})
}

func newSessionFixtureWith(t *testing.T, capturer port.ImageCapturer) *sessionFixture {
	t.Helper()

	sc, err := scene.Parse([]byte(sessionScene))
	require.NoError(t, err)
	roster, err := storage.NewMemoryRoster(sc.Defects()...)
	require.NoError(t, err)

	f := &sessionFixture{sink: &recordingSink{}, bus: eventbus.NewBus(), clock: &fakeClock{}}
	f.session, err = NewSession(SessionDeps{
		Scene:    sc,
		Roster:   roster,
		Bus:      f.bus,
		Capturer: capturer,
		Clock:    f.clock,
		Reticle:  f.sink,
		Report:   f.sink,
		Grade:    f.sink,
	}, DefaultScoringPolicy(), nil)
	require.NoError(t, err)
	t.Cleanup(f.session.Close)
	return f
}

func TestSession_ShootReportAndFinish(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	s := f.session

	res, err := s.Shoot(ctx, forward)
	require.NoError(t, err)
	require.Equal(t, OutcomeScanned, res.Outcome)
	require.Equal(t, 60, res.Defect.DistanceScore)
	require.Equal(t, 100, res.Defect.AngleScore)
	require.Equal(t, 360, s.LiveScore())

	res, err = s.Shoot(ctx, forward)
	require.NoError(t, err)
	require.Equal(t, OutcomeAlreadyScanned, res.Outcome)
	require.Equal(t, 360, s.LiveScore())

	rows := s.Report()
	require.Len(t, rows, 1)
	require.Equal(t, "crack", rows[0].DefectID)

	visible, err := s.ToggleReport(ctx)
	require.NoError(t, err)
	require.True(t, visible)

	grade := s.Finish(ctx)
	require.Len(t, grade.Entries, 2)
	require.Equal(t, 360, grade.TotalScore)
	require.Equal(t, 800, grade.MaxPossibleScore)
	require.Equal(t, "F", grade.Letter)
	require.True(t, s.Finished())

	// Итог отправляется один раз, отчёт прячется.
	again := s.Finish(ctx)
	require.Equal(t, grade, again)
	require.Len(t, f.sink.grades, 1)
	require.False(t, f.sink.visible[len(f.sink.visible)-1])

	_, err = s.Shoot(ctx, entity.Ray{Origin: entity.Vec3{X: 2}, Direction: entity.Vec3{Z: 1}})
	require.ErrorIs(t, err, entity.ErrSessionFinished)
}

func TestSession_CameraToggle(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	s := f.session

	require.True(t, s.CameraEnabled())
	s.SetCamera(false)

	res, err := s.Shoot(ctx, forward)
	require.NoError(t, err)
	require.Equal(t, OutcomeSensorDisabled, res.Outcome)
	require.Zero(t, s.LiveScore())

	sig := s.Aim(ctx, forward)
	require.False(t, sig.OnTarget)
	require.Equal(t, entity.ColorRed, f.sink.colors[len(f.sink.colors)-1])

	s.SetCamera(true)
	sig = s.Aim(ctx, forward)
	require.True(t, sig.OnTarget)
	require.InDelta(t, 0.8, sig.Score, 1e-9)
}

func TestSession_Restart(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	s := f.session

	_, err := s.Shoot(ctx, forward)
	require.NoError(t, err)
	s.SetCamera(false)
	s.Finish(ctx)

	require.NoError(t, s.Restart(ctx))
	require.False(t, s.Finished())
	require.True(t, s.CameraEnabled())
	require.Empty(t, s.Report())
	require.Zero(t, s.LiveScore())

	res, err := s.Shoot(ctx, forward)
	require.NoError(t, err)
	require.Equal(t, OutcomeScanned, res.Outcome)
	require.Len(t, s.Report(), 1)
}

func TestSession_CloseUnsubscribes(t *testing.T) {
	f := newSessionFixture(t)
	require.Equal(t, 2, f.bus.Subscribers())
	f.session.Close()
	require.Zero(t, f.bus.Subscribers())
}

func TestNewSession_RequiresBus(t *testing.T) {
	_, err := NewSession(SessionDeps{}, DefaultScoringPolicy(), nil)
	require.Error(t, err)
}

// cancellingCapturer отменяет контекст съёмки, пока делает снимок
type cancellingCapturer struct {
	fakeCapturer
	cancel context.CancelFunc
}

func (c *cancellingCapturer) CaptureStill(ctx context.Context) (*entity.ImageHandle, error) {
	c.cancel()
	return c.fakeCapturer.CaptureStill(ctx)
}

func TestSession_CancelledDuringCaptureStillReports(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f := newSessionFixtureWith(t, &cancellingCapturer{cancel: cancel})
	s := f.session

	res, err := s.Shoot(ctx, forward)
	require.NoError(t, err)
	require.Equal(t, OutcomeScanned, res.Outcome)

	// Снимок засчитан, значит он обязан попасть в отчёт и в счёт.
	rows := s.Report()
	require.Len(t, rows, 1)
	require.Equal(t, "crack", rows[0].DefectID)
	require.Equal(t, res.Defect.TotalScore(), s.LiveScore())

	res, err = s.Shoot(context.Background(), forward)
	require.NoError(t, err)
	require.Equal(t, OutcomeAlreadyScanned, res.Outcome)
	require.Len(t, s.Report(), 1)
}

func TestSession_FinishReturnsIndependentCopies(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	s := f.session

	_, err := s.Shoot(ctx, forward)
	require.NoError(t, err)

	first := s.Finish(ctx)
	want := first.Clone()
	first.Entries[0].Score = -1
	first.Entries[0].Letter = "Z"

	second := s.Finish(ctx)
	require.Equal(t, want, second)

	second.Entries[1].Classification = "mutated"
	require.Equal(t, want, s.Finish(ctx))
}
