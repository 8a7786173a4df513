package entity

// DefectTag метка объектов сцены, которые являются дефектами
const DefectTag = "Defect"

// Ray луч камеры робота
type Ray struct {
	Origin    Vec3
	Direction Vec3
}

// At возвращает точку луча на расстоянии t от начала
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Direction.Normalize().Scale(t))
}

// IsFinite сообщает, что начало и направление луча конечны
func (r Ray) IsFinite() bool {
	return r.Origin.IsFinite() && r.Direction.IsFinite()
}

// Hit результат пересечения луча со сценой
type Hit struct {
	Point          Vec3    // точка попадания
	Normal         Vec3    // нормаль поверхности в точке попадания
	TargetPosition Vec3    // позиция объекта, в который попал луч
	TargetID       string  // идентификатор объекта
	TargetTag      string  // метка объекта
	Distance       float64 // длина луча до точки попадания
}

// IsDefect сообщает, помечен ли объект как дефект
func (h Hit) IsDefect() bool {
	return h.TargetTag == DefectTag
}

// DistanceToTarget возвращает расстояние от начала луча до позиции объекта.
func (h Hit) DistanceToTarget(origin Vec3) float64 {
	return origin.Distance(h.TargetPosition)
}
