package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/zinxon/towber-api/pkg/db"
	"github.com/zinxon/towber-api/pkg/db/models"
	dbtypes "github.com/zinxon/towber-api/pkg/db/types"
	"github.com/zinxon/towber-api/pkg/enums"
	pkgerrors "github.com/zinxon/towber-api/pkg/errors"
	"github.com/zinxon/towber-api/pkg/logger"
	"github.com/zinxon/towber-api/pkg/metrics"
	"github.com/zinxon/towber-api/pkg/pagination"
)

// Service defines the order workflow operations.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.TowberOrder, error)
	GetByPhone(ctx context.Context, phoneNumber string) ([]models.TowberOrder, error)
	List(ctx context.Context, params pagination.Params) (*OrderList, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateOrderInput) (*models.TowberOrder, error)
	Delete(ctx context.Context, id uuid.UUID) error
	EnsurePaymentLink(ctx context.Context, id uuid.UUID) (*models.TowberOrder, error)
	CreatePaymentIntent(ctx context.Context, input CreatePaymentIntentInput) (*PaymentIntentResult, error)
	ProcessPayment(ctx context.Context, input ProcessPaymentInput) (*models.TowberOrder, error)
}

// ServiceConfig bounds the service's outbound calls.
type ServiceConfig struct {
	StripeTimeout time.Duration
	NotifyTimeout time.Duration
}

type service struct {
	repo     Repository
	guard    *Guard
	payments PaymentGateway
	notifier Notifier
	logg     *logger.Logger
	metrics  *metrics.OrderMetrics

	stripeTimeout time.Duration
	notifyTimeout time.Duration
}

// NewService builds the order service with the required dependencies.
func NewService(repo Repository, payments PaymentGateway, notifier Notifier, logg *logger.Logger, m *metrics.OrderMetrics, cfg ServiceConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if payments == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}

	stripeTimeout := cfg.StripeTimeout
	if stripeTimeout <= 0 {
		stripeTimeout = 15 * time.Second
	}
	notifyTimeout := cfg.NotifyTimeout
	if notifyTimeout <= 0 {
		notifyTimeout = 10 * time.Second
	}

	return &service{
		repo:          repo,
		guard:         NewGuard(repo),
		payments:      payments,
		notifier:      notifier,
		logg:          logg,
		metrics:       m,
		stripeTimeout: stripeTimeout,
		notifyTimeout: notifyTimeout,
	}, nil
}

// Create runs the full intake workflow: idempotency resolve, persist,
// payment link, operator notification. Replays of a seen idempotency key
// return the original order without touching Stripe or Telegram again.
func (s *service) Create(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error) {
	existing, err := s.guard.Resolve(ctx, input.IdempotencyKey)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve idempotency key")
	}
	if existing != nil {
		s.metrics.IncOrderCreated("reused")
		return &CreateOrderResult{Order: existing, Created: false}, nil
	}

	order := input.toModel()
	persisted, err := s.repo.Insert(ctx, order)
	if err != nil {
		if db.IsUniqueViolation(err, "towber_orders_idempotency_key_uq") && input.IdempotencyKey != "" {
			// Lost the insert race. The winner's row is the canonical order.
			winner, ferr := s.guard.Resolve(ctx, input.IdempotencyKey)
			if ferr != nil || winner == nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load winning order after duplicate insert")
			}
			s.metrics.IncOrderCreated("reused")
			return &CreateOrderResult{Order: winner, Created: false}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
	}
	s.metrics.IncOrderCreated("created")

	ctx = s.logg.WithOrderID(ctx, persisted.ID.String())

	if persisted.RequiresManualContact() {
		s.metrics.IncPaymentLink("skipped")
		s.logg.Info(ctx, "zero-price order, skipping payment link")
	} else {
		if err := s.attachPaymentLink(ctx, persisted); err != nil {
			s.metrics.IncPaymentLink("failed")
			return nil, err
		}
		s.metrics.IncPaymentLink("issued")
	}

	s.notifyCreated(ctx, persisted)

	return &CreateOrderResult{Order: persisted, Created: true}, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*models.TowberOrder, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) GetByPhone(ctx context.Context, phoneNumber string) ([]models.TowberOrder, error) {
	if phoneNumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone number required")
	}
	orders, err := s.repo.FindByPhone(ctx, phoneNumber)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load orders by phone")
	}
	if len(orders) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no orders found for phone number")
	}
	return orders, nil
}

func (s *service) List(ctx context.Context, params pagination.Params) (*OrderList, error) {
	// A cursor the client mangled is their error, not a storage failure.
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor").
			WithDetails(map[string]any{"cursor": params.Cursor})
	}

	list, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return list, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateOrderInput) (*models.TowberOrder, error) {
	order, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := input.toUpdates()

	if len(updates) > 0 {
		if err := s.repo.Update(ctx, id, updates); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order")
		}
	}

	if input.Status != nil {
		if err := s.applyStatusChange(ctx, order, enums.OrderStatus(*input.Status)); err != nil {
			return nil, err
		}
	}

	return s.GetByID(ctx, id)
}

// applyStatusChange moves the order forward through the status machine. The
// write is conditional on the status read at the start of the request, so a
// webhook that marks the order paid in between cannot be overwritten.
func (s *service) applyStatusChange(ctx context.Context, order *models.TowberOrder, target enums.OrderStatus) error {
	if target == order.Status {
		return nil
	}
	if !order.Status.CanTransition(target) {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "status cannot move backwards").
			WithDetails(map[string]any{"from": order.Status.String(), "to": target.String()})
	}

	moved, err := s.repo.TransitionStatus(ctx, order.ID, order.Status, target)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "transition order status")
	}
	if !moved {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order status changed concurrently").
			WithDetails(map[string]any{"from": order.Status.String(), "to": target.String()})
	}
	return nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order")
	}
	return nil
}

// EnsurePaymentLink re-runs payment link creation for an order whose intake
// failed after persistence. Orders that already carry a link are a no-op.
func (s *service) EnsurePaymentLink(ctx context.Context, id uuid.UUID) (*models.TowberOrder, error) {
	order, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.PaymentLink != nil && *order.PaymentLink != "" {
		return order, nil
	}
	if order.RequiresManualContact() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "payment link not available for zero-price order").
			WithDetails(map[string]any{"order_id": order.ID.String()})
	}

	ctx = s.logg.WithOrderID(ctx, order.ID.String())
	if err := s.attachPaymentLink(ctx, order); err != nil {
		s.metrics.IncPaymentLink("failed")
		return nil, err
	}
	s.metrics.IncPaymentLink("issued")

	return order, nil
}

func (s *service) CreatePaymentIntent(ctx context.Context, input CreatePaymentIntentInput) (*PaymentIntentResult, error) {
	id, err := uuid.Parse(input.OrderID)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order id")
	}

	order, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.RequiresManualContact() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "payment not available for zero-price order").
			WithDetails(map[string]any{"order_id": order.ID.String()})
	}

	callCtx, cancel := context.WithTimeout(ctx, s.stripeTimeout)
	defer cancel()
	result, err := s.payments.CreatePaymentIntent(callCtx, order)
	if err != nil {
		return nil, err
	}

	if uerr := s.repo.Update(ctx, order.ID, map[string]any{"payment_intent_id": result.PaymentIntentID}); uerr != nil {
		s.logg.Error(ctx, "store payment intent id", uerr)
	}
	return result, nil
}

// ProcessPayment charges the stored order synchronously and marks it paid.
// Already-paid and zero-price orders are rejected before any charge attempt.
func (s *service) ProcessPayment(ctx context.Context, input ProcessPaymentInput) (*models.TowberOrder, error) {
	id, err := uuid.Parse(input.OrderID)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order id")
	}

	order, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status == enums.OrderStatusPaid {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order already paid").
			WithDetails(map[string]any{"order_id": order.ID.String()})
	}
	if order.RequiresManualContact() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "payment not available for zero-price order").
			WithDetails(map[string]any{"order_id": order.ID.String()})
	}

	ctx = s.logg.WithOrderID(ctx, order.ID.String())

	callCtx, cancel := context.WithTimeout(ctx, s.stripeTimeout)
	defer cancel()
	intentID, err := s.payments.ChargeCard(callCtx, order, input.PaymentMethodID)
	if err != nil {
		return nil, err
	}

	if uerr := s.repo.Update(ctx, order.ID, map[string]any{"payment_intent_id": intentID}); uerr != nil {
		s.logg.Error(ctx, "store payment intent id", uerr)
	}

	updated, err := s.repo.MarkPaid(ctx, order.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order paid").
			WithDetails(map[string]any{"order_id": order.ID.String(), "step": "mark_paid"})
	}
	if !updated {
		// Webhook got there first. The charge already reconciled.
		s.logg.Warn(ctx, "order was marked paid concurrently")
	}

	return s.GetByID(ctx, order.ID)
}

func (s *service) attachPaymentLink(ctx context.Context, order *models.TowberOrder) error {
	callCtx, cancel := context.WithTimeout(ctx, s.stripeTimeout)
	defer cancel()

	artifacts, err := s.payments.CreatePaymentLink(callCtx, order)
	if err != nil {
		return err
	}

	if err := s.repo.Update(ctx, order.ID, map[string]any{"payment_link": artifacts.PaymentLink}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store payment link").
			WithDetails(map[string]any{"order_id": order.ID.String(), "step": "payment_link"})
	}
	order.PaymentLink = &artifacts.PaymentLink
	return nil
}

func (s *service) notifyCreated(ctx context.Context, order *models.TowberOrder) {
	callCtx, cancel := context.WithTimeout(ctx, s.notifyTimeout)
	defer cancel()

	if err := s.notifier.OrderCreated(callCtx, order); err != nil {
		s.metrics.IncNotificationFailure()
		s.logg.Warn(s.logg.WithField(ctx, "order_id", order.ID.String()), "operator notification failed: "+err.Error())
	}
}

func (i CreateOrderInput) toModel() *models.TowberOrder {
	order := &models.TowberOrder{
		CustomerName: i.CustomerName,
		PhoneNumber:  i.PhoneNumber,
		LicensePlate: i.LicensePlate,
		ServiceType:  enums.ServiceType(i.SelectedService),
		VehicleType:  enums.VehicleTypeOther,
		Location:     i.Location,
		Destination:  i.Destination,
		Latitude:     decimal.NewFromFloat(i.Latitude),
		Longitude:    decimal.NewFromFloat(i.Longitude),
		UseWheel:     i.UseWheel,
		BookingAt:    i.BookingAt,
		ReferralCode: i.ReferralCode,
		Price:        decimal.NewFromFloat(i.Price),
		PriceWithTax: decimal.NewFromFloat(i.PriceWithTax),
		Distance:     decimal.NewFromFloat(i.Distance),
		Status:       enums.OrderStatusPending,
	}
	if i.VehicleType != "" {
		order.VehicleType = enums.VehicleType(i.VehicleType)
	}
	if i.ExternalUserID != nil {
		order.ExternalUserID = i.ExternalUserID
	}
	if len(i.ImageKeys) > 0 {
		order.ImageKeys = dbtypes.StringArray(i.ImageKeys)
	}
	if i.IdempotencyKey != "" {
		key := i.IdempotencyKey
		order.IdempotencyKey = &key
	}
	return order
}

// toUpdates maps the non-status fields onto column updates. Status changes
// go through the conditional transition path instead.
func (i UpdateOrderInput) toUpdates() map[string]any {
	updates := map[string]any{}

	if i.CustomerName != nil {
		updates["customer_name"] = *i.CustomerName
	}
	if i.PhoneNumber != nil {
		updates["phone_number"] = *i.PhoneNumber
	}
	if i.LicensePlate != nil {
		updates["license_plate"] = *i.LicensePlate
	}
	if i.SelectedService != nil {
		updates["selected_service"] = enums.ServiceType(*i.SelectedService)
	}
	if i.VehicleType != nil {
		updates["vehicle_type"] = enums.VehicleType(*i.VehicleType)
	}
	if i.Location != nil {
		updates["location"] = *i.Location
	}
	if i.Destination != nil {
		updates["destination"] = *i.Destination
	}
	if i.Latitude != nil {
		updates["latitude"] = decimal.NewFromFloat(*i.Latitude)
	}
	if i.Longitude != nil {
		updates["longitude"] = decimal.NewFromFloat(*i.Longitude)
	}
	if i.UseWheel != nil {
		updates["use_wheel"] = *i.UseWheel
	}
	if i.BookingAt != nil {
		updates["booking_at"] = *i.BookingAt
	}
	if i.ReferralCode != nil {
		updates["referral_code"] = *i.ReferralCode
	}
	if i.Price != nil {
		updates["price"] = decimal.NewFromFloat(*i.Price)
	}
	if i.PriceWithTax != nil {
		updates["price_with_tax"] = decimal.NewFromFloat(*i.PriceWithTax)
	}
	if i.Distance != nil {
		updates["distance"] = decimal.NewFromFloat(*i.Distance)
	}
	if len(i.ImageKeys) > 0 {
		updates["image_keys"] = dbtypes.StringArray(i.ImageKeys)
	}

	return updates
}
