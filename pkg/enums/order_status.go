package enums

import "fmt"

// OrderStatus tracks the lifecycle of a towing order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusContacted OrderStatus = "contacted"
	OrderStatusPaid      OrderStatus = "paid"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusContacted,
	OrderStatusPaid,
}

// rank orders the statuses along the only permitted direction of travel.
var orderStatusRank = map[OrderStatus]int{
	OrderStatusPending:   0,
	OrderStatusContacted: 1,
	OrderStatusPaid:      2,
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusPaid
}

// CanTransition reports whether moving from s to target is allowed. Statuses
// only ever advance pending -> contacted -> paid; paid is terminal.
func (s OrderStatus) CanTransition(target OrderStatus) bool {
	from, ok := orderStatusRank[s]
	if !ok {
		return false
	}
	to, ok := orderStatusRank[target]
	if !ok {
		return false
	}
	return to > from
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
