package orders

import (
	"context"

	"github.com/google/uuid"

	"github.com/zinxon/towber-api/pkg/db/models"
	"github.com/zinxon/towber-api/pkg/enums"
	"github.com/zinxon/towber-api/pkg/pagination"
)

// Repository defines persistence operations for towing orders.
type Repository interface {
	Insert(ctx context.Context, order *models.TowberOrder) (*models.TowberOrder, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.TowberOrder, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*models.TowberOrder, error)
	FindByPhone(ctx context.Context, phoneNumber string) ([]models.TowberOrder, error)
	List(ctx context.Context, params pagination.Params) (*OrderList, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to enums.OrderStatus) (bool, error)
	MarkPaid(ctx context.Context, id uuid.UUID) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// PaymentArtifacts carries the Stripe identifiers minted for an order.
type PaymentArtifacts struct {
	PaymentLink     string
	PaymentIntentID string
}

// PaymentIntentResult is returned to clients that drive Stripe Elements.
type PaymentIntentResult struct {
	PaymentIntentID string `json:"paymentIntentId"`
	ClientSecret    string `json:"clientSecret"`
}

// PaymentGateway covers the Stripe operations the order workflow performs.
type PaymentGateway interface {
	CreatePaymentLink(ctx context.Context, order *models.TowberOrder) (*PaymentArtifacts, error)
	CreatePaymentIntent(ctx context.Context, order *models.TowberOrder) (*PaymentIntentResult, error)
	ChargeCard(ctx context.Context, order *models.TowberOrder, paymentMethodID string) (string, error)
}

// Notifier delivers operator notifications about new orders. Delivery
// failures never fail the order workflow.
type Notifier interface {
	OrderCreated(ctx context.Context, order *models.TowberOrder) error
}
