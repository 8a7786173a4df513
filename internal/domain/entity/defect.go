package entity

import "time"

const (
	DefaultClassification = "unclassified"

	BaseScore         = 100 // очки за сам факт съёмки
	MaxSubScore       = 100 // потолок для расстояния, угла и классификации
	MaxScorePerDefect = BaseScore + 3*MaxSubScore
)

// DefectStatus состояние дефекта в сессии
type DefectStatus string

const (
	StatusUnscanned DefectStatus = "unscanned" // Ещё не сфотографирован
	StatusScanned   DefectStatus = "scanned"   // Снимок сделан и оценён
)

// ImageHandle снимок, сделанный камерой робота
type ImageHandle struct {
	ID     string
	Width  int
	Height int
	Format string // например "jpeg"
	Data   []byte
}

// ScanResult всё, что записывается в дефект в момент съёмки
type ScanResult struct {
	Image               *ImageHandle
	CapturedAt          time.Duration
	Classification      string
	DistanceScore       int
	AngleScore          int
	ClassificationScore int
}

// Defect представляет инспектируемый объект сцены
type Defect struct {
	ID             string
	Status         DefectStatus
	Classification string
	Measurement    float64 // физический размер, см
	Capture        *ImageHandle
	CapturedAt     time.Duration // время съёмки от начала сессии

	BaseScore           int
	DistanceScore       int
	AngleScore          int
	ClassificationScore int
}

// NewDefect создаёт несфотографированный дефект
func NewDefect(id, classification string, measurement float64) *Defect {
	if classification == "" {
		classification = DefaultClassification
	}
	return &Defect{
		ID:             id,
		Status:         StatusUnscanned,
		Classification: classification,
		Measurement:    measurement,
	}
}

// Scanned сообщает, сфотографирован ли дефект
func (d *Defect) Scanned() bool {
	return d.Status == StatusScanned
}

// MarkScanned переводит дефект в состояние Scanned и записывает оценки.
// Переход возможен только один раз, повторный вызов ничего не меняет.
func (d *Defect) MarkScanned(r ScanResult) error {
	if d.Scanned() {
		return ErrAlreadyScanned
	}

	d.Status = StatusScanned
	d.Capture = r.Image
	d.CapturedAt = r.CapturedAt
	if r.Classification != "" {
		d.Classification = r.Classification
	}
	d.BaseScore = BaseScore
	d.DistanceScore = ClampScore(r.DistanceScore)
	d.AngleScore = ClampScore(r.AngleScore)
	d.ClassificationScore = ClampScore(r.ClassificationScore)
	return nil
}

// TotalScore возвращает сумму всех составляющих оценки
func (d *Defect) TotalScore() int {
	return d.BaseScore + d.DistanceScore + d.AngleScore + d.ClassificationScore
}

// Reset возвращает дефект в исходное состояние сцены
func (d *Defect) Reset(classification string) {
	*d = *NewDefect(d.ID, classification, d.Measurement)
}

// ClampScore ограничивает составляющую оценки диапазоном [0, 100]
func ClampScore(score int) int {
	switch {
	case score < 0:
		return 0
	case score > MaxSubScore:
		return MaxSubScore
	}
	return score
}
