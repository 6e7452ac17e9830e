package enums

import "fmt"

// OrderStatus tracks the lifecycle of a placed order.
//
// The forward path is pending -> confirmed -> delivered. Cancellation is a
// side exit allowed only while the order is still pending; once confirmed the
// order can only move forward.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusDelivered,
	OrderStatusCancelled,
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

// IsTerminal reports whether no further transitions exist from this status.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// Next returns the single allowed forward transition, or false when the
// status is terminal.
func (s OrderStatus) Next() (OrderStatus, bool) {
	switch s {
	case OrderStatusPending:
		return OrderStatusConfirmed, true
	case OrderStatusConfirmed:
		return OrderStatusDelivered, true
	default:
		return "", false
	}
}

// CanTransitionTo reports whether target is reachable from s in one step.
// Backward moves and state skips are never allowed.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	if target == OrderStatusCancelled {
		return s == OrderStatusPending
	}
	next, ok := s.Next()
	return ok && next == target
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
