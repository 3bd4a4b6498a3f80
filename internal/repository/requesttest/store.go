// Package requesttest - in-memory реализация хранилища заявок для
// unit-тестов сервисного слоя. Семантика условных обновлений повторяет
// SQL-репозиторий: клейм и отмена атомарны под общим мьютексом.
package requesttest

import (
	"context"
	"sync"
	"time"

	"github.com/AlekSi/pointer"

	"dispatch/internal/entities"
	"dispatch/internal/service/dispatch"
)

type Store struct {
	mu       sync.Mutex
	nextID   int64
	requests map[int64]entities.DeliveryRequest
	byRef    map[string]int64
}

func NewStore() *Store {
	return &Store{
		nextID:   1,
		requests: make(map[int64]entities.DeliveryRequest),
		byRef:    make(map[string]int64),
	}
}

func (s *Store) Create(_ context.Context, modify entities.DeliveryRequestModify) (*entities.DeliveryRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if modify.OrderRef != nil {
		if _, exists := s.byRef[*modify.OrderRef]; exists {
			return nil, dispatch.ErrOrderAlreadyDispatched
		}
	}

	now := time.Now()
	request := entities.DeliveryRequest{
		ID:         s.nextID,
		OrderRef:   modify.OrderRef,
		CustomerID: modify.CustomerID,
		Status:     entities.RequestPlaced,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if modify.Pickup != nil {
		request.Pickup = *modify.Pickup
	}
	if modify.Dropoff != nil {
		request.Dropoff = *modify.Dropoff
	}
	if modify.ItemDescription != nil {
		request.ItemDescription = *modify.ItemDescription
	}
	if modify.Fare != nil {
		request.Fare = *modify.Fare
	}

	s.nextID++
	s.requests[request.ID] = request
	if request.OrderRef != nil {
		s.byRef[*request.OrderRef] = request.ID
	}

	return pointer.To(request), nil
}

func (s *Store) GetByID(_ context.Context, id int64) (*entities.DeliveryRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(id)
}

func (s *Store) GetByOrderRef(_ context.Context, orderRef string) (*entities.DeliveryRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byRef[orderRef]
	if !ok {
		return nil, dispatch.ErrRequestNotFound
	}
	return s.getLocked(id)
}

func (s *Store) ListOpen(_ context.Context, limit int) ([]entities.DeliveryRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	open := make([]entities.DeliveryRequest, 0)
	for _, request := range s.requests {
		if request.Open() {
			open = append(open, request)
		}
	}
	if len(open) > limit {
		open = open[:limit]
	}
	return open, nil
}

func (s *Store) ClaimByRider(_ context.Context, requestID, riderID int64) (*entities.DeliveryRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	request, err := s.getLocked(requestID)
	if err != nil {
		return nil, err
	}
	if !request.Open() {
		return request, dispatch.ErrAlreadyClaimed
	}

	request.RiderID = pointer.To(riderID)
	request.Status = entities.RequestAccepted
	request.UpdatedAt = time.Now()
	s.requests[requestID] = *request

	return request, nil
}

func (s *Store) CancelUnclaimed(_ context.Context, requestID int64) (*entities.DeliveryRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	request, err := s.getLocked(requestID)
	if err != nil {
		return nil, err
	}
	if request.Claimed() {
		return request, dispatch.ErrAlreadyClaimed
	}
	if request.Status == entities.RequestCancelled {
		return request, nil
	}

	request.Status = entities.RequestCancelled
	request.UpdatedAt = time.Now()
	s.requests[requestID] = *request

	return request, nil
}

func (s *Store) CancelStalePlaced(_ context.Context, olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-olderThan)
	var cancelled int64
	for id, request := range s.requests {
		if request.Open() && request.CreatedAt.Before(cutoff) {
			request.Status = entities.RequestCancelled
			request.UpdatedAt = time.Now()
			s.requests[id] = request
			cancelled++
		}
	}
	return cancelled, nil
}

func (s *Store) getLocked(id int64) (*entities.DeliveryRequest, error) {
	request, ok := s.requests[id]
	if !ok {
		return nil, dispatch.ErrRequestNotFound
	}
	return pointer.To(request), nil
}
