// Package terminal выводит отчёт и карточку оценок в консоль.
package terminal

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"inspect-sim/internal/domain/entity"
	"inspect-sim/internal/domain/port"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BC34A"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9E9E9E"))
	cardStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#2196F3")).
			Padding(0, 1)

	letterColors = map[string]lipgloss.Color{
		"A": lipgloss.Color("#8BC34A"),
		"B": lipgloss.Color("#4DB6AC"),
		"C": lipgloss.Color("#FFC107"),
		"D": lipgloss.Color("#FF8A65"),
		"F": lipgloss.Color("#E53935"),
	}
)

// Printer консольный вывод отчёта и итоговой карточки
type Printer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewPrinter создаёт вывод в w
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// RenderReport печатает отчёт, если он показан
func (p *Printer) RenderReport(ctx context.Context, rows []port.ReportRow, visible bool) error {
	if !visible {
		return nil
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Report"))
	b.WriteString("\n")
	if len(rows) == 0 {
		b.WriteString(mutedStyle.Render("no defects captured yet"))
	}
	for i, r := range rows {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(ReportLine(r))
	}
	return p.write(cardStyle.Render(b.String()))
}

// RenderGrade печатает итоговую карточку оценок
func (p *Printer) RenderGrade(ctx context.Context, grade entity.FinalGrade) error {
	var b strings.Builder
	for _, e := range grade.Entries {
		b.WriteString(fmt.Sprintf("%-16s %s  %s\n", e.Classification, letterStyle(e.Letter).Render(e.Letter),
			mutedStyle.Render(fmt.Sprintf("distance %s  angle %s  classification %s",
				outOf(e.DistanceScore), outOf(e.AngleScore), outOf(e.ClassificationScore)))))
	}
	b.WriteString(titleStyle.Render(FinalLine(grade)))
	return p.write(cardStyle.Render(b.String()))
}

func (p *Printer) write(s string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := fmt.Fprintln(p.w, s)
	return err
}

func letterStyle(letter string) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(letterColors[letter])
}

// ReportLine строка отчёта в текстовом виде
func ReportLine(r port.ReportRow) string {
	return fmt.Sprintf("%d. %s | Time Captured: %s | Measurement: %gcm",
		r.Index+1, r.Classification, r.CapturedAt.Round(10*time.Millisecond), r.Measurement)
}

// FinalLine итоговая строка карточки
func FinalLine(grade entity.FinalGrade) string {
	return fmt.Sprintf("Final Score: %s (%.1f%%, %d / %d)", grade.Letter, grade.Percent, grade.TotalScore, grade.MaxPossibleScore)
}

func outOf(score int) string {
	return fmt.Sprintf("%d / %d", score, entity.MaxSubScore)
}

var (
	_ port.ReportSink = (*Printer)(nil)
	_ port.GradeSink  = (*Printer)(nil)
)
