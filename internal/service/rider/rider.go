package rider

import (
	"context"
	"fmt"
	"time"

	"github.com/AlekSi/pointer"

	"dispatch/internal/entities"
)

// Service ведёт учёт райдеров и их присутствия. Онлайн-пул определяется
// двумя условиями сразу: presence == online и heartbeat не старше TTL.
type Service struct {
	repository  Repository
	presenceTTL time.Duration
}

func New(repository Repository, presenceTTL time.Duration) *Service {
	return &Service{
		repository:  repository,
		presenceTTL: presenceTTL,
	}
}

type RegisterParams struct {
	Name        string
	Phone       string
	VehicleType entities.RiderVehicleType
	ImageURL    string
}

func (s *Service) Register(ctx context.Context, params RegisterParams) (int64, error) {
	if !isValidName(params.Name) {
		return 0, ErrMissingRequiredFields
	}
	if !isValidPhone(params.Phone) {
		return 0, ErrInvalidPhone
	}

	vehicleType := params.VehicleType
	if vehicleType == "" {
		vehicleType = entities.DefaultVehicleType
	}
	if !isValidVehicleType(vehicleType) {
		return 0, ErrInvalidVehicleType
	}

	modify := entities.RiderModify{
		Name:        pointer.To(params.Name),
		Phone:       pointer.To(params.Phone),
		VehicleType: pointer.To(vehicleType),
	}
	if params.ImageURL != "" {
		modify.ImageURL = pointer.To(params.ImageURL)
	}

	id, err := s.repository.Create(ctx, modify)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Service) GetRider(ctx context.Context, id int64) (*entities.Rider, error) {
	if !isValidID(id) {
		return nil, ErrInvalidRiderID
	}
	return s.repository.GetByID(ctx, id)
}

// GetProfile - публичная карточка райдера для заказчика, без контактов.
func (s *Service) GetProfile(ctx context.Context, id int64) (*entities.RiderProfile, error) {
	found, err := s.GetRider(ctx, id)
	if err != nil {
		return nil, err
	}
	return pointer.To(found.PublicProfile()), nil
}

func (s *Service) UpdateRider(ctx context.Context, modify entities.RiderModify) (*entities.Rider, error) {
	if modify.ID == nil || !isValidID(*modify.ID) {
		return nil, ErrInvalidRiderID
	}
	if modify.Name != nil && !isValidName(*modify.Name) {
		return nil, ErrMissingRequiredFields
	}
	if modify.Phone != nil && !isValidPhone(*modify.Phone) {
		return nil, ErrInvalidPhone
	}
	if modify.VehicleType != nil && !isValidVehicleType(*modify.VehicleType) {
		return nil, ErrInvalidVehicleType
	}
	if modify.Presence != nil && !isValidPresence(*modify.Presence) {
		return nil, ErrInvalidPresence
	}

	return s.repository.Update(ctx, modify)
}

// Heartbeat продлевает присутствие райдера; offline поднимается обратно
// в online.
func (s *Service) Heartbeat(ctx context.Context, id int64) (*entities.Rider, error) {
	if !isValidID(id) {
		return nil, ErrInvalidRiderID
	}
	return s.repository.Heartbeat(ctx, id)
}

// OnlineRiderIDs отдаёт пул райдеров, которым виден broadcast.
func (s *Service) OnlineRiderIDs(ctx context.Context) ([]int64, error) {
	ids, err := s.repository.ListOnlineIDs(ctx, s.presenceTTL)
	if err != nil {
		return nil, fmt.Errorf("list online riders: %w", err)
	}
	return ids, nil
}

// MarkStaleOffline гасит presence райдеров с протухшим heartbeat.
// Вызывается фоновой задачей.
func (s *Service) MarkStaleOffline(ctx context.Context) (int64, error) {
	return s.repository.MarkStaleOffline(ctx, s.presenceTTL)
}
