package storage

import (
	"context"
	"fmt"
	"sync"

	"inspect-sim/internal/domain/entity"
	"inspect-sim/internal/domain/port"
)

// MemoryRoster in-memory список дефектов сцены с индексом по ID
type MemoryRoster struct {
	mu      sync.RWMutex
	order   []string
	defects map[string]*entity.Defect
	initial map[string]string // исходная классификация для Reset
}

// NewMemoryRoster создаёт список из дефектов сцены.
// Повторяющиеся ID считаются ошибкой сцены.
func NewMemoryRoster(defects ...*entity.Defect) (*MemoryRoster, error) {
	r := &MemoryRoster{
		order:   make([]string, 0, len(defects)),
		defects: make(map[string]*entity.Defect, len(defects)),
		initial: make(map[string]string, len(defects)),
	}

	for _, d := range defects {
		if d == nil {
			continue
		}
		if _, exists := r.defects[d.ID]; exists {
			return nil, fmt.Errorf("duplicate defect id %q", d.ID)
		}
		r.order = append(r.order, d.ID)
		r.defects[d.ID] = d
		r.initial[d.ID] = d.Classification
	}

	return r, nil
}

// Get возвращает дефект по ID
func (r *MemoryRoster) Get(ctx context.Context, id string) (*entity.Defect, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.defects[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", entity.ErrUnknownDefect, id)
	}
	return d, nil
}

// All возвращает дефекты в порядке загрузки
func (r *MemoryRoster) All(ctx context.Context) ([]*entity.Defect, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entity.Defect, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.defects[id])
	}
	return out, nil
}

// Len возвращает число дефектов
func (r *MemoryRoster) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Reset возвращает все дефекты в состояние после загрузки сцены
func (r *MemoryRoster) Reset(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, d := range r.defects {
		d.Reset(r.initial[id])
	}
	return nil
}

// Проверка реализации интерфейса
var _ port.DefectRoster = (*MemoryRoster)(nil)
