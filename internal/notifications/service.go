package notifications

import (
	"context"
	"fmt"

	"github.com/zinxon/towber-api/pkg/db/models"
)

// MessageSender delivers a rendered message to the operator channel.
type MessageSender interface {
	SendMessage(ctx context.Context, text string) error
}

// Service composes and delivers operator notifications.
type Service struct {
	sender   MessageSender
	composer *Composer
}

// NewService builds the notification service.
func NewService(sender MessageSender, composer *Composer) (*Service, error) {
	if sender == nil {
		return nil, fmt.Errorf("message sender required")
	}
	if composer == nil {
		return nil, fmt.Errorf("composer required")
	}
	return &Service{sender: sender, composer: composer}, nil
}

// OrderCreated notifies the operator channel about a freshly created order.
func (s *Service) OrderCreated(ctx context.Context, order *models.TowberOrder) error {
	return s.sender.SendMessage(ctx, s.composer.OrderCreated(order))
}
