package orders

import (
	"time"

	"github.com/zinxon/towber-api/pkg/db/models"
)

// CreateOrderInput is the POST /orders payload. Coordinates and amounts come
// in as JSON numbers and are converted to decimals at the model boundary.
type CreateOrderInput struct {
	CustomerName    string     `json:"customerName" validate:"required,max=256"`
	PhoneNumber     string     `json:"phoneNumber" validate:"required,max=256"`
	LicensePlate    string     `json:"licensePlate" validate:"required,max=20"`
	SelectedService string     `json:"selectedService" validate:"required,oneof=accident breakdown stuck battery flatTire outOfGas other"`
	VehicleType     string     `json:"vehicleType" validate:"omitempty,oneof=sedan suv truck van motorcycle other"`
	Location        string     `json:"location" validate:"required"`
	Destination     string     `json:"destination" validate:"required"`
	Latitude        float64    `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude       float64    `json:"longitude" validate:"gte=-180,lte=180"`
	UseWheel        bool       `json:"useWheel"`
	BookingAt       *time.Time `json:"bookingAt,omitempty"`
	ReferralCode    *string    `json:"referralCode,omitempty" validate:"omitempty,max=64"`
	ExternalUserID  *string    `json:"externalUserId,omitempty" validate:"omitempty,max=256"`
	Price           float64    `json:"price" validate:"gte=0"`
	PriceWithTax    float64    `json:"priceWithTax" validate:"gte=0"`
	Distance        float64    `json:"distance" validate:"gte=0"`
	ImageKeys       []string   `json:"imageKeys,omitempty" validate:"omitempty,max=20,dive,required"`

	// IdempotencyKey is populated from the Idempotency-Key header, not the body.
	IdempotencyKey string `json:"-"`
}

// UpdateOrderInput carries the PATCH /orders/{id} payload. Nil fields are
// left untouched.
type UpdateOrderInput struct {
	CustomerName    *string    `json:"customerName,omitempty" validate:"omitempty,min=1,max=256"`
	PhoneNumber     *string    `json:"phoneNumber,omitempty" validate:"omitempty,min=1,max=256"`
	LicensePlate    *string    `json:"licensePlate,omitempty" validate:"omitempty,min=1,max=20"`
	SelectedService *string    `json:"selectedService,omitempty" validate:"omitempty,oneof=accident breakdown stuck battery flatTire outOfGas other"`
	VehicleType     *string    `json:"vehicleType,omitempty" validate:"omitempty,oneof=sedan suv truck van motorcycle other"`
	Location        *string    `json:"location,omitempty" validate:"omitempty,min=1"`
	Destination     *string    `json:"destination,omitempty" validate:"omitempty,min=1"`
	Latitude        *float64   `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude       *float64   `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
	UseWheel        *bool      `json:"useWheel,omitempty"`
	BookingAt       *time.Time `json:"bookingAt,omitempty"`
	ReferralCode    *string    `json:"referralCode,omitempty" validate:"omitempty,max=64"`
	Price           *float64   `json:"price,omitempty" validate:"omitempty,gte=0"`
	PriceWithTax    *float64   `json:"priceWithTax,omitempty" validate:"omitempty,gte=0"`
	Distance        *float64   `json:"distance,omitempty" validate:"omitempty,gte=0"`
	ImageKeys       []string   `json:"imageKeys,omitempty" validate:"omitempty,max=20,dive,required"`
	Status          *string    `json:"status,omitempty" validate:"omitempty,oneof=pending contacted paid"`
}

// CreatePaymentIntentInput is the POST /orders/create-payment-intent payload.
type CreatePaymentIntentInput struct {
	OrderID string `json:"orderId" validate:"required,uuid"`
}

// ProcessPaymentInput is the POST /orders/process-payment payload.
type ProcessPaymentInput struct {
	OrderID         string `json:"orderId" validate:"required,uuid"`
	PaymentMethodID string `json:"paymentMethodId" validate:"required"`
}

// CreateOrderResult pairs the persisted order with whether this call created it.
type CreateOrderResult struct {
	Order   *models.TowberOrder
	Created bool
}

// OrderList wraps one page of orders plus the next page cursor.
type OrderList struct {
	Orders     []models.TowberOrder `json:"orders"`
	NextCursor string               `json:"nextCursor,omitempty"`
}
