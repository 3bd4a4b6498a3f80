package watch

import "sync"

const subscriberBuffer = 8

// Hub - внутрипроцессная реализация Bus поверх каналов.
type Hub[T any] struct {
	mu     sync.Mutex
	nextID int
	subs   map[int64]map[int]chan T
}

func NewHub[T any]() *Hub[T] {
	return &Hub[T]{
		subs: make(map[int64]map[int]chan T),
	}
}

func (h *Hub[T]) Subscribe(id int64) (<-chan T, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan T, subscriberBuffer)
	h.nextID++
	token := h.nextID

	if h.subs[id] == nil {
		h.subs[id] = make(map[int]chan T)
	}
	h.subs[id][token] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()

		listeners, ok := h.subs[id]
		if !ok {
			return
		}
		if _, ok := listeners[token]; !ok {
			return
		}
		delete(listeners, token)
		if len(listeners) == 0 {
			delete(h.subs, id)
		}
		close(ch)
	}

	return ch, cancel
}

// Publish рассылает состояние всем подписчикам записи. Медленный
// подписчик с заполненным буфером событие теряет: у слушателя всегда
// есть собственный таймаут, а состояние в store первично.
func (h *Hub[T]) Publish(id int64, state T) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs[id] {
		select {
		case ch <- state:
		default:
		}
	}
}
