package model

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPaid      OrderStatus = "paid"
	StatusPreparing OrderStatus = "preparing"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// fulfilment order; cancelled sits outside it.
var statusRank = map[OrderStatus]int{
	StatusPending:   0,
	StatusPaid:      1,
	StatusPreparing: 2,
	StatusShipped:   3,
	StatusDelivered: 4,
}

// AllStatuses lists every valid status in lifecycle order.
func AllStatuses() []OrderStatus {
	return []OrderStatus{StatusPending, StatusPaid, StatusPreparing, StatusShipped, StatusDelivered, StatusCancelled}
}

// ParseOrderStatus validates s against the status enum.
func ParseOrderStatus(s string) (OrderStatus, error) {
	st := OrderStatus(s)
	if !st.Valid() {
		return "", ErrInvalidStatus
	}
	return st, nil
}

func (s OrderStatus) Valid() bool {
	if s == StatusCancelled {
		return true
	}
	_, ok := statusRank[s]
	return ok
}

// Terminal reports whether no further transition is allowed.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CustomerCancellable reports whether the owner may cancel without an admin.
func (s OrderStatus) CustomerCancellable() bool {
	return s == StatusPending || s == StatusPaid
}

// AdminCancellable reports whether an admin may cancel from this state.
func (s OrderStatus) AdminCancellable() bool {
	return !s.Terminal()
}

// CanAdvanceTo reports whether an admin edit from s to next is a forward move
// through the fulfilment lifecycle. Cancellation is checked separately.
func (s OrderStatus) CanAdvanceTo(next OrderStatus) bool {
	if s.Terminal() || next == StatusCancelled {
		return false
	}
	from, ok := statusRank[s]
	if !ok {
		return false
	}
	to, ok := statusRank[next]
	if !ok {
		return false
	}
	return to > from
}
