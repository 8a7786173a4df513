package scene

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"inspect-sim/internal/domain/entity"
)

const testScene = `
name: bay
targets:
  - id: crack-1
    classification: crack
    measurement: 2.5
    position: {x: 0, y: 0, z: 5}
    normal: {x: 0, y: 0, z: -2}
    radius: 1
  - id: wall
    tag: Obstacle
    position: {x: 0, y: 0, z: 8}
    normal: {x: 0, y: 0, z: 1}
    radius: 10
  - classification: dent
    position: {x: 5, y: 0, z: 0}
    normal: {x: 1, y: 0, z: 0}
`

func loadTestScene(t *testing.T) *Scene {
	t.Helper()
	s, err := Parse([]byte(testScene))
	require.NoError(t, err)
	return s
}

func TestParse_Normalizes(t *testing.T) {
	s := loadTestScene(t)
	require.Equal(t, "bay", s.Name)
	require.Len(t, s.Targets, 3)
	require.Equal(t, entity.DefectTag, s.Targets[0].Tag)
	require.Equal(t, entity.Vec3{Z: 5}, s.Targets[0].Position)
	require.Equal(t, entity.Vec3{X: 5}, s.Targets[2].Position)
	require.InDelta(t, 1.0, s.Targets[0].Normal.Length(), 1e-9)
	require.NotEmpty(t, s.Targets[2].ID)
	require.Equal(t, defaultRadius, s.Targets[2].Radius)

	defects := s.Defects()
	require.Len(t, defects, 2)
	require.Equal(t, "crack-1", defects[0].ID)
	require.Equal(t, "crack", defects[0].Classification)
	require.Equal(t, 2.5, defects[0].Measurement)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte("targets:\n  - id: a\n    position: {x: 1}\n"))
	require.Error(t, err)

	_, err = Parse([]byte("targets:\n  - id: a\n    normal: {x: 1}\n  - id: a\n    normal: {x: 1}\n"))
	require.Error(t, err)

	_, err = Parse([]byte("targets: ["))
	require.Error(t, err)
}

func TestRaycast_NearestHit(t *testing.T) {
	s := loadTestScene(t)
	ctx := context.Background()

	hit, ok, err := s.Raycast(ctx, entity.Ray{Direction: entity.Vec3{Z: 1}}, 10)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "crack-1", hit.TargetID)
	require.True(t, hit.IsDefect())
	require.InDelta(t, 5.0, hit.Distance, 1e-9)
	require.InDelta(t, 5.0, hit.Point.Z, 1e-9)
}

func TestRaycast_RangeLimited(t *testing.T) {
	s := loadTestScene(t)
	_, ok, err := s.Raycast(context.Background(), entity.Ray{Direction: entity.Vec3{Z: 1}}, 4.9)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRaycast_MissesOutsideRadius(t *testing.T) {
	s := loadTestScene(t)
	// Мимо диска дефекта, но в стену.
	hit, ok, err := s.Raycast(context.Background(), entity.Ray{Origin: entity.Vec3{X: 3}, Direction: entity.Vec3{Z: 1}}, 10)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "wall", hit.TargetID)
	require.False(t, hit.IsDefect())
}

func TestRaycast_ParallelAndBehind(t *testing.T) {
	s := loadTestScene(t)
	ctx := context.Background()

	_, ok, err := s.Raycast(ctx, entity.Ray{Origin: entity.Vec3{Z: 20}, Direction: entity.Vec3{Z: 1}}, 10)
	require.NoError(t, err)
	require.False(t, ok)

	_, ok, err = s.Raycast(ctx, entity.Ray{Direction: entity.Vec3{}}, 10)
	require.NoError(t, err)
	require.False(t, ok)

	_, _, err = s.Raycast(ctx, entity.Ray{Direction: entity.Vec3{Z: 1}}, 0)
	require.Error(t, err)
}

func TestRaycast_NonFiniteRayMisses(t *testing.T) {
	s := loadTestScene(t)
	ctx := context.Background()

	rays := []entity.Ray{
		{Origin: entity.Vec3{X: math.NaN()}, Direction: entity.Vec3{Z: 1}},
		{Origin: entity.Vec3{Z: math.Inf(1)}, Direction: entity.Vec3{Z: 1}},
		{Direction: entity.Vec3{Z: math.Inf(1)}},
		{Direction: entity.Vec3{X: math.NaN(), Z: 1}},
	}
	for _, ray := range rays {
		_, ok, err := s.Raycast(ctx, ray, 10)
		require.NoError(t, err)
		require.False(t, ok, "ray %+v", ray)
	}
}

func TestParse_RejectsNonFinite(t *testing.T) {
	docs := []string{
		"targets:\n  - id: a\n    position: {x: .nan}\n    normal: {z: 1}\n",
		"targets:\n  - id: a\n    normal: {z: .inf}\n",
		"targets:\n  - id: a\n    normal: {z: 1}\n    radius: .nan\n",
		"targets:\n  - id: a\n    normal: {z: 1}\n    measurement: -.inf\n",
	}
	for _, doc := range docs {
		_, err := Parse([]byte(doc))
		require.Error(t, err, doc)
	}
}

func TestParseShots_RejectsNonFinite(t *testing.T) {
	_, err := ParseShots([]byte("shots:\n  - origin: {x: .nan}\n    direction: {z: 1}\n"))
	require.Error(t, err)
}

func TestParseShots(t *testing.T) {
	shots, err := ParseShots([]byte(`
shots:
  - origin: {z: 1}
    direction: {z: 1}
  - camera: false
    aim_only: true
`))
	require.NoError(t, err)
	require.Len(t, shots, 2)
	require.Equal(t, entity.Vec3{Z: 1}, shots[0].Ray().Origin)
	require.Nil(t, shots[0].Camera)
	require.NotNil(t, shots[1].Camera)
	require.False(t, *shots[1].Camera)
	require.True(t, shots[1].AimOnly)
}
