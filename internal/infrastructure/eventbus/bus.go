// Package eventbus реализует синхронную in-process рассылку событий
// о съёмке дефектов. Обработчики вызываются в порядке подписки на
// горутине публикующего, события не сохраняются и не переигрываются.
package eventbus

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"inspect-sim/internal/domain/entity"
	"inspect-sim/internal/domain/port"
)

// ErrReentrantPublish публикация изнутри обработчика запрещена
var ErrReentrantPublish = errors.New("publish called from inside a scan handler")

type subscription struct {
	id      uint64
	handler port.ScanHandler
}

// Bus шина событий DefectScanned одной сессии
type Bus struct {
	mu         sync.RWMutex
	nextID     uint64
	subs       []subscription
	publishing atomic.Bool
}

// NewBus создаёт пустую шину
func NewBus() *Bus {
	return &Bus{subs: make([]subscription, 0)}
}

// SubscribeScanned добавляет обработчик в конец списка.
// Возвращённая функция снимает подписку, повторный вызов безопасен.
func (b *Bus) SubscribeScanned(handler port.ScanHandler) (func(), error) {
	if handler == nil {
		return nil, errors.New("handler cannot be nil")
	}

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, handler: handler})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}, nil
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

// PublishScanned вызывает всех текущих подписчиков по порядку.
// Ошибки обработчиков не прерывают рассылку и возвращаются вместе.
// Событие публикуется после смены состояния дефекта, поэтому отмена
// контекста доставку не останавливает.
func (b *Bus) PublishScanned(ctx context.Context, evt entity.DefectScanned) error {
	if !b.publishing.CompareAndSwap(false, true) {
		return ErrReentrantPublish
	}
	defer b.publishing.Store(false)

	// Копируем список, чтобы не держать блокировку во время вызовов.
	b.mu.RLock()
	handlers := make([]port.ScanHandler, len(b.subs))
	for i, s := range b.subs {
		handlers[i] = s.handler
	}
	b.mu.RUnlock()

	var errs []error
	for _, h := range handlers {
		if err := h(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Subscribers возвращает число активных подписок
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

var (
	_ port.ScanPublisher  = (*Bus)(nil)
	_ port.ScanSubscriber = (*Bus)(nil)
)
