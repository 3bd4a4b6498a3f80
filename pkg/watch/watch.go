// Package watch - подписка на изменения записи по её id.
//
// Контракт намеренно не привязан к транспорту: локально события раздаёт
// Hub, между процессами их несёт Kafka, а consumer-хендлер складывает их
// в локальный Hub. Доставка at-least-once: подписчик обязан быть
// идемпотентным к дублям.
package watch

// Bus delivers every committed change of a record to its subscribers.
type Bus[T any] interface {
	// Subscribe returns a channel of record states and a cancel func.
	// The channel is closed after cancel.
	Subscribe(id int64) (<-chan T, func())
}

// Sink is the producing side of a Bus.
type Sink[T any] interface {
	Publish(id int64, state T)
}
