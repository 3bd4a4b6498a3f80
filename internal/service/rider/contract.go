package rider

import (
	"context"
	"time"

	"dispatch/internal/entities"
)

type Repository interface {
	Create(ctx context.Context, modify entities.RiderModify) (int64, error)
	GetByID(ctx context.Context, id int64) (*entities.Rider, error)
	Update(ctx context.Context, modify entities.RiderModify) (*entities.Rider, error)
	Heartbeat(ctx context.Context, id int64) (*entities.Rider, error)
	ListOnlineIDs(ctx context.Context, seenWithin time.Duration) ([]int64, error)
	MarkStaleOffline(ctx context.Context, seenWithin time.Duration) (int64, error)
}
