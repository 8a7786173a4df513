package app

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"inspect-sim/internal/domain/entity"
	"inspect-sim/internal/domain/port"
)

// ReportRowStride вертикальный шаг между строками отчёта
const ReportRowStride = -300.0

// ReportAggregator ведёт список сфотографированных дефектов в порядке съёмки
// и после каждого изменения заново строит строки отчёта.
type ReportAggregator struct {
	mu          sync.Mutex
	scanned     []*entity.Defect
	rows        []port.ReportRow
	visible     bool
	sink        port.ReportSink
	unsubscribe func()
	log         *zap.Logger
}

// NewReportAggregator подписывает отчёт на события съёмки.
// Подписка снимается в Close.
func NewReportAggregator(sub port.ScanSubscriber, sink port.ReportSink, log *zap.Logger) (*ReportAggregator, error) {
	if sub == nil {
		return nil, errors.New("subscriber is not configured")
	}
	if log == nil {
		log = zap.NewNop()
	}

	r := &ReportAggregator{sink: sink, log: log.Named("report")}
	unsubscribe, err := sub.SubscribeScanned(r.handleScanned)
	if err != nil {
		return nil, err
	}
	r.unsubscribe = unsubscribe
	return r, nil
}

func (r *ReportAggregator) handleScanned(ctx context.Context, evt entity.DefectScanned) error {
	return r.OnScanned(ctx, evt.Defect)
}

// OnScanned добавляет дефект в конец списка и перестраивает отчёт.
func (r *ReportAggregator) OnScanned(ctx context.Context, defect *entity.Defect) error {
	if defect == nil || !defect.Scanned() {
		return nil
	}

	r.mu.Lock()
	for _, d := range r.scanned {
		if d.ID == defect.ID {
			r.mu.Unlock()
			r.log.Debug("defect already in report", zap.String("defect_id", defect.ID))
			return nil
		}
	}
	r.scanned = append(r.scanned, defect)
	r.mu.Unlock()

	return r.Rebuild(ctx)
}

// Rebuild выбрасывает все строки и строит их заново сверху вниз.
func (r *ReportAggregator) Rebuild(ctx context.Context) error {
	r.mu.Lock()
	r.rows = buildRows(r.scanned)
	rows, visible := r.snapshot()
	r.mu.Unlock()

	return r.render(ctx, rows, visible)
}

func buildRows(scanned []*entity.Defect) []port.ReportRow {
	rows := make([]port.ReportRow, 0, len(scanned))
	offset := 0.0
	for i, d := range scanned {
		rows = append(rows, port.ReportRow{
			Index:          i,
			DefectID:       d.ID,
			Classification: d.Classification,
			Image:          d.Capture,
			CapturedAt:     d.CapturedAt,
			Measurement:    d.Measurement,
			Offset:         offset,
		})
		offset += ReportRowStride
	}
	return rows
}

// snapshot копирует строки; вызывается под r.mu.
func (r *ReportAggregator) snapshot() ([]port.ReportRow, bool) {
	rows := make([]port.ReportRow, len(r.rows))
	copy(rows, r.rows)
	return rows, r.visible
}

func (r *ReportAggregator) render(ctx context.Context, rows []port.ReportRow, visible bool) error {
	if r.sink == nil {
		return nil
	}
	return r.sink.RenderReport(ctx, rows, visible)
}

// Rows возвращает текущие строки отчёта
func (r *ReportAggregator) Rows() []port.ReportRow {
	r.mu.Lock()
	defer r.mu.Unlock()
	rows, _ := r.snapshot()
	return rows
}

// Scanned возвращает сфотографированные дефекты в порядке съёмки
func (r *ReportAggregator) Scanned() []*entity.Defect {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.Defect, len(r.scanned))
	copy(out, r.scanned)
	return out
}

// Toggle переключает видимость отчёта и возвращает новое состояние
func (r *ReportAggregator) Toggle(ctx context.Context) (bool, error) {
	r.mu.Lock()
	visible := !r.visible
	r.mu.Unlock()
	return visible, r.setVisible(ctx, visible)
}

func (r *ReportAggregator) Show(ctx context.Context) error { return r.setVisible(ctx, true) }

func (r *ReportAggregator) Hide(ctx context.Context) error { return r.setVisible(ctx, false) }

func (r *ReportAggregator) setVisible(ctx context.Context, visible bool) error {
	r.mu.Lock()
	r.visible = visible
	rows, _ := r.snapshot()
	r.mu.Unlock()

	return r.render(ctx, rows, visible)
}

// Visible сообщает, показан ли отчёт
func (r *ReportAggregator) Visible() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.visible
}

// Reset очищает отчёт перед новой попыткой
func (r *ReportAggregator) Reset() {
	r.mu.Lock()
	r.scanned = nil
	r.rows = nil
	r.visible = false
	r.mu.Unlock()
}

// Close снимает подписку на события
func (r *ReportAggregator) Close() {
	if r.unsubscribe != nil {
		r.unsubscribe()
	}
}
