package container

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"inspect-sim/config"
	app "inspect-sim/internal/application"
	"inspect-sim/internal/domain/entity"
	"inspect-sim/internal/infrastructure/scene"
)

func TestContainer_NewSessionIsolatesRosters(t *testing.T) {
	sc, err := scene.Parse([]byte(`
targets:
  - id: crack
    position: {z: 3}
    normal: {z: -1}
`))
	require.NoError(t, err)

	c := New(&config.Config{MaxRange: 10, ScoringCutoff: 10, CaptureWidth: 64, CaptureHeight: 48}, sc, nil)
	ctx := context.Background()
	ray := entity.Ray{Direction: entity.Vec3{Z: 1}}

	first, cam1, err := c.NewSession(Sinks{})
	require.NoError(t, err)
	defer cam1.Close()
	defer first.Close()

	second, cam2, err := c.NewSession(Sinks{})
	require.NoError(t, err)
	defer cam2.Close()
	defer second.Close()

	res, err := first.Shoot(ctx, ray)
	require.NoError(t, err)
	require.Equal(t, app.OutcomeScanned, res.Outcome)
	require.Equal(t, "jpeg", res.Defect.Capture.Format)

	res, err = second.Shoot(ctx, ray)
	require.NoError(t, err)
	require.Equal(t, app.OutcomeScanned, res.Outcome)
}

func TestContainer_NoScene(t *testing.T) {
	c := New(&config.Config{CaptureWidth: 8, CaptureHeight: 8}, nil, nil)
	_, _, err := c.NewSession(Sinks{})
	require.Error(t, err)
}
