package enums

import "testing"

func TestOrderStatusCanTransitionForwardOnly(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderStatusPending, OrderStatusContacted, true},
		{OrderStatusPending, OrderStatusPaid, true},
		{OrderStatusContacted, OrderStatusPaid, true},
		{OrderStatusContacted, OrderStatusPending, false},
		{OrderStatusPaid, OrderStatusPending, false},
		{OrderStatusPaid, OrderStatusContacted, false},
		{OrderStatusPaid, OrderStatusPaid, false},
		{OrderStatus("bogus"), OrderStatusPaid, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransition(tc.to); got != tc.want {
			t.Fatalf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.want, got)
		}
	}
}

func TestOrderStatusTerminal(t *testing.T) {
	if !OrderStatusPaid.IsTerminal() {
		t.Fatalf("paid must be terminal")
	}
	if OrderStatusPending.IsTerminal() || OrderStatusContacted.IsTerminal() {
		t.Fatalf("only paid is terminal")
	}
}

func TestParseOrderStatus(t *testing.T) {
	if _, err := ParseOrderStatus("pending"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseOrderStatus("canceled"); err == nil {
		t.Fatalf("expected error for unknown status")
	}
}

func TestParseServiceAndVehicleTypes(t *testing.T) {
	if _, err := ParseServiceType("flatTire"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseServiceType("teleport"); err == nil {
		t.Fatalf("expected error for unknown service")
	}
	if _, err := ParseVehicleType("suv"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseVehicleType("boat"); err == nil {
		t.Fatalf("expected error for unknown vehicle")
	}
}
