package entity

// LetterGrade переводит процент в буквенную оценку
func LetterGrade(percent float64) string {
	switch {
	case percent >= 90:
		return "A"
	case percent >= 80:
		return "B"
	case percent >= 70:
		return "C"
	case percent >= 60:
		return "D"
	default:
		return "F"
	}
}

// GradeEntry оценка одного дефекта в итоговой карточке
type GradeEntry struct {
	DefectID            string
	Classification      string
	Scanned             bool
	BaseScore           int
	DistanceScore       int
	AngleScore          int
	ClassificationScore int
	Score               int
	Percent             float64
	Letter              string
}

// FinalGrade итог сессии
type FinalGrade struct {
	Entries          []GradeEntry
	TotalScore       int
	MaxPossibleScore int
	Percent          float64
	Letter           string
	Empty            bool // в сцене не было дефектов
}

// Clone возвращает копию итога со своей разбивкой по дефектам
func (g FinalGrade) Clone() FinalGrade {
	if g.Entries != nil {
		g.Entries = append([]GradeEntry(nil), g.Entries...)
	}
	return g
}
