package requesttest

import (
	"context"
	"sync"

	"dispatch/internal/entities"
)

// RiderDirectory - фиксированный пул онлайн-райдеров для тестов.
type RiderDirectory struct {
	IDs []int64
	Err error
}

func (d *RiderDirectory) OnlineRiderIDs(context.Context) ([]int64, error) {
	if d.Err != nil {
		return nil, d.Err
	}
	return d.IDs, nil
}

// TxManager выполняет функцию без транзакции: in-memory store и так
// атомарен на каждой операции.
type TxManager struct{}

func (TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// Recorder копит опубликованные изменения заявок.
type Recorder struct {
	mu     sync.Mutex
	events []entities.DeliveryRequest
}

func (r *Recorder) RequestChanged(_ context.Context, request entities.DeliveryRequest) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, request)
}

func (r *Recorder) Events() []entities.DeliveryRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entities.DeliveryRequest, len(r.events))
	copy(out, r.events)
	return out
}
