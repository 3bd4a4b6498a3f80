// Package responder - клиент райдера: лента открытых заявок и попытки
// их забрать. Проигрыш гонки - штатный исход, заявка просто уходит из
// ленты.
package responder

import (
	"context"
	"errors"
	"sync"

	"dispatch/internal/entities"
	"dispatch/internal/service/dispatch"
)

// ErrAlreadyTaken - заявку успел забрать другой райдер.
var ErrAlreadyTaken = errors.New("request already taken by another rider")

const defaultFeedLimit = 20

type Client struct {
	coordinator Coordinator
	presence    Presence
	riderID     int64

	mu   sync.Mutex
	feed []entities.DeliveryRequest
}

func New(coordinator Coordinator, presence Presence, riderID int64) *Client {
	return &Client{
		coordinator: coordinator,
		presence:    presence,
		riderID:     riderID,
	}
}

// Refresh перечитывает ленту открытых заявок с сервера.
func (c *Client) Refresh(ctx context.Context) ([]entities.DeliveryRequest, error) {
	open, err := c.coordinator.ListOpen(ctx, defaultFeedLimit)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.feed = open
	c.mu.Unlock()

	return open, nil
}

// Feed - локальный снимок ленты. Может отставать от сервера: истина
// всегда на стороне клейма.
func (c *Client) Feed() []entities.DeliveryRequest {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]entities.DeliveryRequest, len(c.feed))
	copy(out, c.feed)
	return out
}

// Accept - попытка забрать заявку. При проигрыше гонки заявка убирается
// из ленты и возвращается ErrAlreadyTaken.
func (c *Client) Accept(ctx context.Context, requestID int64) (*entities.DeliveryRequest, error) {
	claimed, err := c.coordinator.Claim(ctx, requestID, c.riderID)
	if err != nil {
		if errors.Is(err, dispatch.ErrAlreadyClaimed) {
			c.drop(requestID)
			return nil, ErrAlreadyTaken
		}
		return nil, err
	}

	c.drop(requestID)
	return claimed, nil
}

// KeepAlive продлевает присутствие; дергается приложением райдера по
// таймеру, пока оно на переднем плане.
func (c *Client) KeepAlive(ctx context.Context) error {
	_, err := c.presence.Heartbeat(ctx, c.riderID)
	return err
}

func (c *Client) drop(requestID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, request := range c.feed {
		if request.ID == requestID {
			c.feed = append(c.feed[:i], c.feed[i+1:]...)
			return
		}
	}
}
