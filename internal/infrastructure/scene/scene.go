// Package scene содержит простую аналитическую сцену: цели задаются
// ориентированными дисками, луч пересекается с их плоскостями.
package scene

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"inspect-sim/internal/domain/entity"
	"inspect-sim/internal/domain/port"
)

const defaultRadius = 0.5

// Target объект сцены
type Target struct {
	ID             string
	Tag            string
	Classification string
	Measurement    float64
	Position       entity.Vec3
	Normal         entity.Vec3
	Radius         float64
}

// Scene набор целей, загруженный из файла
type Scene struct {
	Name    string
	Targets []Target
}

// point вектор в файле сцены
type point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

func (p point) vec() entity.Vec3 {
	return entity.Vec3{X: p.X, Y: p.Y, Z: p.Z}
}

type targetDoc struct {
	ID             string  `yaml:"id"`
	Tag            string  `yaml:"tag"`
	Classification string  `yaml:"classification"`
	Measurement    float64 `yaml:"measurement"`
	Position       point   `yaml:"position"`
	Normal         point   `yaml:"normal"`
	Radius         float64 `yaml:"radius"`
}

type sceneDoc struct {
	Name    string      `yaml:"name"`
	Targets []targetDoc `yaml:"targets"`
}

// Load читает сцену из YAML-файла
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	return Parse(data)
}

// Parse разбирает YAML и проверяет цели
func Parse(data []byte) (*Scene, error) {
	var doc sceneDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}

	s := &Scene{Name: doc.Name, Targets: make([]Target, 0, len(doc.Targets))}
	for _, t := range doc.Targets {
		s.Targets = append(s.Targets, Target{
			ID:             t.ID,
			Tag:            t.Tag,
			Classification: t.Classification,
			Measurement:    t.Measurement,
			Position:       t.Position.vec(),
			Normal:         t.Normal.vec(),
			Radius:         t.Radius,
		})
	}
	if err := s.normalize(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scene) normalize() error {
	seen := make(map[string]struct{}, len(s.Targets))
	for i := range s.Targets {
		t := &s.Targets[i]
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		if _, dup := seen[t.ID]; dup {
			return fmt.Errorf("scene target %d: duplicate id %q", i, t.ID)
		}
		seen[t.ID] = struct{}{}

		if !t.Position.IsFinite() || !t.Normal.IsFinite() {
			return fmt.Errorf("scene target %q: position and normal must be finite", t.ID)
		}
		if math.IsNaN(t.Radius) || math.IsInf(t.Radius, 0) || math.IsNaN(t.Measurement) || math.IsInf(t.Measurement, 0) {
			return fmt.Errorf("scene target %q: radius and measurement must be finite", t.ID)
		}

		if t.Tag == "" {
			t.Tag = entity.DefectTag
		}
		if t.Radius <= 0 {
			t.Radius = defaultRadius
		}
		if t.Normal.Length() == 0 {
			return fmt.Errorf("scene target %q: normal must be non-zero", t.ID)
		}
		t.Normal = t.Normal.Normalize()
	}
	return nil
}

// Defects создаёт записи дефектов для всех целей с меткой Defect
func (s *Scene) Defects() []*entity.Defect {
	out := make([]*entity.Defect, 0, len(s.Targets))
	for _, t := range s.Targets {
		if t.Tag != entity.DefectTag {
			continue
		}
		out = append(out, entity.NewDefect(t.ID, t.Classification, t.Measurement))
	}
	return out
}

// Raycast возвращает ближайшее попадание луча не дальше maxRange.
func (s *Scene) Raycast(ctx context.Context, ray entity.Ray, maxRange float64) (entity.Hit, bool, error) {
	if err := ctx.Err(); err != nil {
		return entity.Hit{}, false, err
	}
	if maxRange <= 0 {
		return entity.Hit{}, false, errors.New("max range must be positive")
	}
	// С NaN все сравнения ниже ложны, и попаданием стала бы любая цель.
	if !ray.IsFinite() || math.IsNaN(maxRange) {
		return entity.Hit{}, false, nil
	}

	dir := ray.Direction.Normalize()
	if dir.Length() == 0 {
		return entity.Hit{}, false, nil
	}

	var (
		best  entity.Hit
		found bool
	)
	for _, t := range s.Targets {
		dist, ok := intersectDisc(ray.Origin, dir, t)
		if !ok || dist > maxRange {
			continue
		}
		if found && dist >= best.Distance {
			continue
		}
		best = entity.Hit{
			Point:          ray.Origin.Add(dir.Scale(dist)),
			Normal:         t.Normal,
			TargetPosition: t.Position,
			TargetID:       t.ID,
			TargetTag:      t.Tag,
			Distance:       dist,
		}
		found = true
	}
	return best, found, nil
}

// intersectDisc пересекает луч с диском цели; dir должен быть единичным.
func intersectDisc(origin, dir entity.Vec3, t Target) (float64, bool) {
	denom := dir.Dot(t.Normal)
	if math.Abs(denom) < 1e-9 {
		return 0, false
	}
	dist := t.Position.Sub(origin).Dot(t.Normal) / denom
	if dist < 0 {
		return 0, false
	}
	p := origin.Add(dir.Scale(dist))
	if p.Distance(t.Position) > t.Radius {
		return 0, false
	}
	return dist, true
}

// Проверка реализации интерфейса
var _ port.SceneQuery = (*Scene)(nil)
