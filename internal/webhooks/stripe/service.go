package stripewebhook

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	pkgerrors "github.com/zinxon/towber-api/pkg/errors"
	"github.com/zinxon/towber-api/pkg/logger"
	"github.com/zinxon/towber-api/pkg/metrics"
)

// Outcome classifies how an event was handled.
type Outcome string

const (
	OutcomePaid      Outcome = "paid"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeIgnored   Outcome = "ignored"
	OutcomeAnomaly   Outcome = "anomaly"
)

type ordersRepository interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	MarkPaid(ctx context.Context, id uuid.UUID) (bool, error)
}

type ServiceParams struct {
	OrdersRepo ordersRepository
	Logger     *logger.Logger
	Metrics    *metrics.OrderMetrics
}

// Service reconciles Stripe payment-completed events with stored orders.
type Service struct {
	orders  ordersRepository
	logg    *logger.Logger
	metrics *metrics.OrderMetrics
}

func NewService(params ServiceParams) (*Service, error) {
	if params.OrdersRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders repo required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &Service{
		orders:  params.OrdersRepo,
		logg:    params.Logger,
		metrics: params.Metrics,
	}, nil
}

// HandleEvent applies a verified Stripe event. Unknown event types and
// unknown order ids are acked as no-ops so Stripe stops redelivering them.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) (Outcome, error) {
	if event == nil || event.Data == nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	var orderID string
	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode checkout session event")
		}
		orderID = session.Metadata["order_id"]
	case stripe.EventTypePaymentIntentSucceeded:
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode payment intent event")
		}
		orderID = intent.Metadata["order_id"]
	default:
		s.metrics.IncWebhookEvent(string(OutcomeIgnored))
		return OutcomeIgnored, nil
	}

	outcome, err := s.reconcile(ctx, event.ID, orderID)
	if err != nil {
		return "", err
	}
	s.metrics.IncWebhookEvent(string(outcome))
	return outcome, nil
}

func (s *Service) reconcile(ctx context.Context, eventID, rawOrderID string) (Outcome, error) {
	ctx = s.logg.WithField(ctx, "stripe_event_id", eventID)

	if rawOrderID == "" {
		s.logg.Warn(ctx, "payment event without order_id metadata")
		return OutcomeAnomaly, nil
	}

	orderID, err := uuid.Parse(rawOrderID)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "order_id", rawOrderID), "payment event with malformed order_id")
		return OutcomeAnomaly, nil
	}

	ctx = s.logg.WithOrderID(ctx, orderID.String())

	updated, err := s.orders.MarkPaid(ctx, orderID)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order paid")
	}
	if updated {
		s.logg.Info(ctx, "order reconciled to paid")
		return OutcomePaid, nil
	}

	// No row changed: either a redelivery for an already-paid order or a
	// payment for an order this system never saw.
	exists, err := s.orders.Exists(ctx, orderID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up order")
	}
	if !exists {
		s.logg.Warn(ctx, "payment received for unknown order")
		return OutcomeAnomaly, nil
	}

	s.logg.Info(ctx, "order already paid, event acked as no-op")
	return OutcomeDuplicate, nil
}
