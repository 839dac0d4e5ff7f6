package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	dbtypes "github.com/zinxon/towber-api/pkg/db/types"
	"github.com/zinxon/towber-api/pkg/enums"
)

// TowberOrder is the dispatch order record. Payment linkage fields stay nil
// until the corresponding Stripe calls succeed; a zero PriceWithTax marks the
// order as requiring manual quoting and suppresses payment-link creation.
type TowberOrder struct {
	ID             uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CustomerName   string            `gorm:"column:customer_name;not null" json:"customerName"`
	PhoneNumber    string            `gorm:"column:phone_number;size:256;not null" json:"phoneNumber"`
	LicensePlate   string            `gorm:"column:license_plate;size:20;not null" json:"licensePlate"`
	ServiceType    enums.ServiceType `gorm:"column:selected_service;type:service_type;not null" json:"selectedService"`
	VehicleType    enums.VehicleType `gorm:"column:vehicle_type;type:vehicle_type;not null;default:'other'" json:"vehicleType"`
	Location       string            `gorm:"column:location;not null" json:"location"`
	Destination    string            `gorm:"column:destination;not null" json:"destination"`
	Latitude       decimal.Decimal   `gorm:"column:latitude;type:numeric(8,6);not null" json:"latitude"`
	Longitude      decimal.Decimal   `gorm:"column:longitude;type:numeric(9,6);not null" json:"longitude"`
	UseWheel       bool              `gorm:"column:use_wheel;not null;default:false" json:"useWheel"`
	BookingAt      *time.Time        `gorm:"column:booking_at" json:"bookingAt,omitempty"`
	ReferralCode   *string           `gorm:"column:referral_code" json:"referralCode,omitempty"`
	ExternalUserID *string           `gorm:"column:external_user_id" json:"externalUserId,omitempty"`

	Price        decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null" json:"price"`
	PriceWithTax decimal.Decimal `gorm:"column:price_with_tax;type:numeric(10,2);not null" json:"priceWithTax"`
	Distance     decimal.Decimal `gorm:"column:distance;type:numeric(10,2);not null" json:"distance"`

	ImageKeys dbtypes.StringArray `gorm:"column:image_keys;type:text[]" json:"imageKeys"`

	PaymentLink     *string           `gorm:"column:payment_link" json:"paymentLink,omitempty"`
	PaymentIntentID *string           `gorm:"column:payment_intent_id" json:"paymentIntentId,omitempty"`
	Status          enums.OrderStatus `gorm:"column:status;type:order_status;not null;default:'pending'" json:"status"`

	IdempotencyKey *string `gorm:"column:idempotency_key" json:"idempotencyKey,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName pins the table name used by migrations.
func (TowberOrder) TableName() string {
	return "towber_orders"
}

// RequiresManualContact reports whether automated payment collection is
// skipped pending a manual quote.
func (o *TowberOrder) RequiresManualContact() bool {
	return o.PriceWithTax.IsZero()
}
