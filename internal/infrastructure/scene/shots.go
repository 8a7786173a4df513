package scene

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"inspect-sim/internal/domain/entity"
)

// Shot одно действие сценария replay
type Shot struct {
	Origin    entity.Vec3
	Direction entity.Vec3
	Camera    *bool // nil: состояние камеры не меняется
	AimOnly   bool
}

// Ray возвращает луч выстрела
func (s Shot) Ray() entity.Ray {
	return entity.Ray{Origin: s.Origin, Direction: s.Direction}
}

type shotDoc struct {
	Origin    point `yaml:"origin"`
	Direction point `yaml:"direction"`
	Camera    *bool `yaml:"camera"`
	AimOnly   bool  `yaml:"aim_only"`
}

type shotFile struct {
	Shots []shotDoc `yaml:"shots"`
}

// LoadShots читает сценарий выстрелов
func LoadShots(path string) ([]Shot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read shots: %w", err)
	}
	return ParseShots(data)
}

// ParseShots разбирает сценарий выстрелов
func ParseShots(data []byte) ([]Shot, error) {
	var f shotFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse shots: %w", err)
	}

	shots := make([]Shot, 0, len(f.Shots))
	for i, d := range f.Shots {
		shot := Shot{Origin: d.Origin.vec(), Direction: d.Direction.vec(), Camera: d.Camera, AimOnly: d.AimOnly}
		if !shot.Ray().IsFinite() {
			return nil, fmt.Errorf("shot %d: origin and direction must be finite", i)
		}
		shots = append(shots, shot)
	}
	return shots, nil
}
