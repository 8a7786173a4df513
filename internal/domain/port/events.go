package port

import (
	"context"

	"inspect-sim/internal/domain/entity"
)

// ScanHandler обработчик события DefectScanned
type ScanHandler func(ctx context.Context, evt entity.DefectScanned) error

// ScanPublisher рассылает события о съёмке дефектов
type ScanPublisher interface {
	PublishScanned(ctx context.Context, evt entity.DefectScanned) error
}

// ScanSubscriber регистрирует обработчики событий о съёмке.
// Каждая подписка должна быть снята вызовом возвращённой функции.
type ScanSubscriber interface {
	SubscribeScanned(handler ScanHandler) (unsubscribe func(), err error)
}

// ScanBus шина событий сессии
type ScanBus interface {
	ScanPublisher
	ScanSubscriber
}
