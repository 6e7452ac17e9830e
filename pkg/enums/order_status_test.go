package enums

import "testing"

func TestOrderStatusNext(t *testing.T) {
	tests := []struct {
		current OrderStatus
		want    OrderStatus
		ok      bool
	}{
		{OrderStatusPending, OrderStatusConfirmed, true},
		{OrderStatusConfirmed, OrderStatusDelivered, true},
		{OrderStatusDelivered, "", false},
		{OrderStatusCancelled, "", false},
	}
	for _, tt := range tests {
		got, ok := tt.current.Next()
		if ok != tt.ok || got != tt.want {
			t.Fatalf("Next(%s) = (%s, %v), want (%s, %v)", tt.current, got, ok, tt.want, tt.ok)
		}
	}
}

func TestOrderStatusForwardOnly(t *testing.T) {
	if OrderStatusDelivered.CanTransitionTo(OrderStatusConfirmed) {
		t.Fatal("delivered -> confirmed must be rejected")
	}
	if OrderStatusConfirmed.CanTransitionTo(OrderStatusPending) {
		t.Fatal("confirmed -> pending must be rejected")
	}
	if OrderStatusPending.CanTransitionTo(OrderStatusDelivered) {
		t.Fatal("pending -> delivered skips a state and must be rejected")
	}
}

func TestOrderStatusCancellationOnlyFromPending(t *testing.T) {
	if !OrderStatusPending.CanTransitionTo(OrderStatusCancelled) {
		t.Fatal("pending -> cancelled should be allowed")
	}
	if OrderStatusConfirmed.CanTransitionTo(OrderStatusCancelled) {
		t.Fatal("confirmed -> cancelled must be rejected")
	}
	if OrderStatusDelivered.CanTransitionTo(OrderStatusCancelled) {
		t.Fatal("delivered -> cancelled must be rejected")
	}
}

func TestOrderStatusTerminal(t *testing.T) {
	for _, s := range []OrderStatus{OrderStatusDelivered, OrderStatusCancelled} {
		if !s.IsTerminal() {
			t.Fatalf("%s should be terminal", s)
		}
	}
	for _, s := range []OrderStatus{OrderStatusPending, OrderStatusConfirmed} {
		if s.IsTerminal() {
			t.Fatalf("%s should not be terminal", s)
		}
	}
}

func TestParseOrderStatus(t *testing.T) {
	if got, err := ParseOrderStatus("confirmed"); err != nil || got != OrderStatusConfirmed {
		t.Fatalf("parse confirmed: got (%s, %v)", got, err)
	}
	if _, err := ParseOrderStatus("shipped"); err == nil {
		t.Fatal("unknown status should not parse")
	}
}
