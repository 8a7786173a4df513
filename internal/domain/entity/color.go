package entity

// Color цвет в линейных компонентах [0, 1]
type Color struct {
	R, G, B, A float64
}

var (
	ColorRed    = Color{R: 1, A: 1}
	ColorYellow = Color{R: 1, G: 0.92, B: 0.016, A: 1}
	ColorGreen  = Color{G: 1, A: 1}
)

// Lerp линейно интерполирует между a и b, t ограничивается [0, 1].
func Lerp(a, b Color, t float64) Color {
	t = Clamp01(t)
	u := 1 - t
	return Color{
		R: a.R*u + b.R*t,
		G: a.G*u + b.G*t,
		B: a.B*u + b.B*t,
		A: a.A*u + b.A*t,
	}
}

// RGBA возвращает компоненты в 8-битном виде
func (c Color) RGBA() (r, g, b, a uint8) {
	return to8(c.R), to8(c.G), to8(c.B), to8(c.A)
}

func to8(v float64) uint8 {
	return uint8(Clamp01(v)*255 + 0.5)
}

func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
