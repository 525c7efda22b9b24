package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainError_Is(t *testing.T) {
	err := NewInsufficientStockError("Mini Terrarium", 2)

	assert.True(t, errors.Is(err, ErrInsufficientStock))
	assert.False(t, errors.Is(err, ErrEmptyCart))
	assert.Equal(t, "Insufficient stock for Mini Terrarium (available: 2)", err.Error())

	wrapped := fmt.Errorf("failed to create order: %w", err)
	assert.True(t, errors.Is(wrapped, ErrInsufficientStock))

	de, ok := AsDomainError(wrapped)
	require.True(t, ok)
	assert.Equal(t, KindConflict, de.Kind)
}

func TestDomainError_Retryable(t *testing.T) {
	cause := errors.New("i/o timeout")
	err := NewPaymentError("toss", cause)

	assert.True(t, err.Retryable())
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "i/o timeout")
	assert.False(t, ErrAmountMismatch.Retryable())
}

func TestNewMissingFieldError(t *testing.T) {
	err := NewMissingFieldError("recipientName")

	assert.Equal(t, KindValidation, err.Kind)
	assert.Equal(t, ErrCodeMissingField, err.Code)
	assert.Equal(t, "recipientName is required", err.Message)
}

func TestParseOrderStatus(t *testing.T) {
	for _, s := range AllStatuses() {
		st, err := ParseOrderStatus(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, st)
	}

	_, err := ParseOrderStatus("refunded")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = ParseOrderStatus("")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestOrderStatus_Transitions(t *testing.T) {
	tests := []struct {
		from     OrderStatus
		to       OrderStatus
		expected bool
	}{
		{StatusPending, StatusPaid, true},
		{StatusPending, StatusPreparing, true},
		{StatusPaid, StatusShipped, true},
		{StatusShipped, StatusDelivered, true},
		{StatusPaid, StatusPending, false},
		{StatusDelivered, StatusShipped, false},
		{StatusCancelled, StatusPending, false},
		{StatusPending, StatusCancelled, false},
		{StatusPaid, StatusPaid, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s to %s", tt.from, tt.to), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.from.CanAdvanceTo(tt.to))
		})
	}
}

func TestOrderStatus_Cancellable(t *testing.T) {
	assert.True(t, StatusPending.CustomerCancellable())
	assert.True(t, StatusPaid.CustomerCancellable())
	assert.False(t, StatusPreparing.CustomerCancellable())
	assert.False(t, StatusCancelled.CustomerCancellable())

	assert.True(t, StatusPreparing.AdminCancellable())
	assert.True(t, StatusShipped.AdminCancellable())
	assert.False(t, StatusDelivered.AdminCancellable())
	assert.False(t, StatusCancelled.AdminCancellable())
}

func TestEffectivePrice(t *testing.T) {
	price := decimal.NewFromInt(45000)

	assert.True(t, price.Equal(EffectivePrice(price, decimal.NullDecimal{})))

	sale := decimal.NewNullDecimal(decimal.NewFromInt(39000))
	assert.True(t, decimal.NewFromInt(39000).Equal(EffectivePrice(price, sale)))

	line := CartItem{Price: price, SalePrice: sale, Quantity: 2}
	assert.True(t, decimal.NewFromInt(78000).Equal(line.LineTotal()))
}

func TestNewPage(t *testing.T) {
	assert.Equal(t, Page{Number: 1, Size: DefaultPageSize}, NewPage(0, 0))
	assert.Equal(t, Page{Number: 3, Size: 10}, NewPage(3, 10))
	assert.Equal(t, MaxPageSize, NewPage(1, 1000).Size)
	assert.Equal(t, 20, NewPage(3, 10).Offset())

	p := NewPagination(NewPage(1, 20), 41)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 41, p.Total)
}
