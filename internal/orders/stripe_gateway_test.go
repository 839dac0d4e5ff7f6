package orders

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v84"

	"github.com/zinxon/towber-api/pkg/config"
	pkgerrors "github.com/zinxon/towber-api/pkg/errors"
	pkgstripe "github.com/zinxon/towber-api/pkg/stripe"
)

type stubStripeClient struct {
	productErr error
	priceErr   error
	linkErr    error
	intentErr  error

	productParams *stripe.ProductParams
	priceParams   *stripe.PriceParams
	linkParams    *stripe.PaymentLinkParams
	intentParams  *stripe.PaymentIntentParams

	intentStatus stripe.PaymentIntentStatus
}

func (s *stubStripeClient) CreateProduct(ctx context.Context, params *stripe.ProductParams) (*stripe.Product, error) {
	s.productParams = params
	if s.productErr != nil {
		return nil, s.productErr
	}
	return &stripe.Product{ID: "prod_123"}, nil
}

func (s *stubStripeClient) CreatePrice(ctx context.Context, params *stripe.PriceParams) (*stripe.Price, error) {
	s.priceParams = params
	if s.priceErr != nil {
		return nil, s.priceErr
	}
	return &stripe.Price{ID: "price_123"}, nil
}

func (s *stubStripeClient) CreatePaymentLink(ctx context.Context, params *stripe.PaymentLinkParams) (*stripe.PaymentLink, error) {
	s.linkParams = params
	if s.linkErr != nil {
		return nil, s.linkErr
	}
	return &stripe.PaymentLink{ID: "plink_123", URL: "https://buy.stripe.com/test_link"}, nil
}

func (s *stubStripeClient) CreatePaymentIntent(ctx context.Context, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	s.intentParams = params
	if s.intentErr != nil {
		return nil, s.intentErr
	}
	status := s.intentStatus
	if status == "" {
		status = stripe.PaymentIntentStatusSucceeded
	}
	return &stripe.PaymentIntent{ID: "pi_123", ClientSecret: "pi_123_secret", Status: status}, nil
}

func newTestGateway(t *testing.T, client *stubStripeClient) PaymentGateway {
	t.Helper()
	gw, err := NewStripeGateway(client, "cad", nil)
	require.NoError(t, err)
	return gw
}

func TestStripeGatewayCreatePaymentLink(t *testing.T) {
	client := &stubStripeClient{}
	gw := newTestGateway(t, client)
	order := buildOrder()

	artifacts, err := gw.CreatePaymentLink(context.Background(), order)
	require.NoError(t, err)
	assert.Equal(t, "https://buy.stripe.com/test_link", artifacts.PaymentLink)

	// price is charged in cents off priceWithTax
	require.NotNil(t, client.priceParams)
	assert.Equal(t, int64(13560), *client.priceParams.UnitAmount)
	assert.Equal(t, "cad", *client.priceParams.Currency)

	require.NotNil(t, client.productParams)
	assert.Equal(t, order.ID.String(), client.productParams.Metadata["order_id"])
	require.NotNil(t, client.linkParams)
	assert.Equal(t, order.ID.String(), client.linkParams.Metadata["order_id"])
}

func TestStripeGatewayCreatePaymentLinkStepFailures(t *testing.T) {
	cases := []struct {
		name   string
		client *stubStripeClient
	}{
		{"product", &stubStripeClient{productErr: errors.New("stripe down")}},
		{"price", &stubStripeClient{priceErr: errors.New("stripe down")}},
		{"link", &stubStripeClient{linkErr: errors.New("stripe down")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gw := newTestGateway(t, tc.client)
			order := buildOrder()

			_, err := gw.CreatePaymentLink(context.Background(), order)
			appErr := pkgerrors.As(err)
			require.NotNil(t, appErr)
			assert.Equal(t, pkgerrors.CodeDependency, appErr.Code())

			details, ok := appErr.Details().(map[string]any)
			require.True(t, ok)
			assert.Equal(t, order.ID.String(), details["order_id"])
			assert.Equal(t, "payment_link", details["step"])
		})
	}
}

func TestStripeGatewayCreatePaymentIntent(t *testing.T) {
	client := &stubStripeClient{}
	gw := newTestGateway(t, client)
	order := buildOrder()

	result, err := gw.CreatePaymentIntent(context.Background(), order)
	require.NoError(t, err)
	assert.Equal(t, "pi_123", result.PaymentIntentID)
	assert.Equal(t, "pi_123_secret", result.ClientSecret)
	assert.Equal(t, order.ID.String(), client.intentParams.Metadata["order_id"])
}

func TestStripeGatewayChargeCard(t *testing.T) {
	client := &stubStripeClient{}
	gw := newTestGateway(t, client)
	order := buildOrder()

	intentID, err := gw.ChargeCard(context.Background(), order, "pm_123")
	require.NoError(t, err)
	assert.Equal(t, "pi_123", intentID)

	require.NotNil(t, client.intentParams)
	assert.Equal(t, "pm_123", *client.intentParams.PaymentMethod)
	assert.True(t, *client.intentParams.Confirm)
	assert.Equal(t, "never", *client.intentParams.AutomaticPaymentMethods.AllowRedirects)
}

func TestStripeGatewayChargeCardIncompleteStatus(t *testing.T) {
	client := &stubStripeClient{intentStatus: stripe.PaymentIntentStatusRequiresAction}
	gw := newTestGateway(t, client)
	order := buildOrder()

	_, err := gw.ChargeCard(context.Background(), order, "pm_123")
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeDependency, appErr.Code())
}

func TestNewStripeGatewayRequiresClient(t *testing.T) {
	_, err := NewStripeGateway(nil, "cad", nil)
	require.Error(t, err)
}

func TestNewStripePaymentClient(t *testing.T) {
	assert.Nil(t, NewStripePaymentClient(nil))

	wrapper, err := pkgstripe.NewClient(context.Background(), config.StripeConfig{
		APIKey: "sk_test_abc123",
		Secret: "whsec_abc123",
		Env:    "test",
	}, nil)
	require.NoError(t, err)

	// Same wiring main uses to build the gateway off the shared client.
	client := NewStripePaymentClient(wrapper)
	require.NotNil(t, client)

	_, err = NewStripeGateway(client, wrapper.Currency(), nil)
	require.NoError(t, err)
}
