package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order represents a customer order. Recipient and amount fields are a
// snapshot taken at checkout and never change afterwards.
type Order struct {
	ID                     uuid.UUID       `json:"id" db:"id"`
	OrderNumber            string          `json:"orderNumber" db:"order_number"`
	UserID                 uuid.UUID       `json:"userId" db:"user_id"`
	TotalAmount            decimal.Decimal `json:"totalAmount" db:"total_amount"`
	ShippingFee            decimal.Decimal `json:"shippingFee" db:"shipping_fee"`
	Status                 OrderStatus     `json:"status" db:"status"`
	RecipientName          string          `json:"recipientName" db:"recipient_name"`
	RecipientPhone         string          `json:"recipientPhone" db:"recipient_phone"`
	RecipientAddress       string          `json:"recipientAddress" db:"recipient_address"`
	RecipientAddressDetail *string         `json:"recipientAddressDetail,omitempty" db:"recipient_address_detail"`
	RecipientZipcode       *string         `json:"recipientZipcode,omitempty" db:"recipient_zipcode"`
	Memo                   *string         `json:"memo,omitempty" db:"memo"`
	PaymentMethod          string          `json:"paymentMethod" db:"payment_method"`
	PaymentKey             *string         `json:"paymentKey,omitempty" db:"payment_key"`
	PaidAt                 *time.Time      `json:"paidAt,omitempty" db:"paid_at"`
	CancelledAt            *time.Time      `json:"cancelledAt,omitempty" db:"cancelled_at"`
	CreatedAt              time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt              time.Time       `json:"updatedAt" db:"updated_at"`
}

// OrderItem is an immutable snapshot of a purchased product.
type OrderItem struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	OrderID      uuid.UUID       `json:"orderId" db:"order_id"`
	ProductID    *int64          `json:"productId" db:"product_id"`
	ProductName  string          `json:"productName" db:"product_name"`
	ProductPrice decimal.Decimal `json:"productPrice" db:"product_price"`
	Quantity     int             `json:"quantity" db:"quantity"`
	Thumbnail    *string         `json:"thumbnail,omitempty" db:"thumbnail"`
}

// LineTotal is price times quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.ProductPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OrderSummary is a list row with the number of items in the order.
type OrderSummary struct {
	Order
	ItemCount int     `json:"itemCount" db:"item_count"`
	UserName  *string `json:"userName,omitempty" db:"user_name"`
	UserEmail *string `json:"userEmail,omitempty" db:"user_email"`
}

// OrderDetail is an order together with its items.
type OrderDetail struct {
	Order
	Items []OrderItem `json:"items"`
}

// OrderRequest represents the request payload for creating an order.
type OrderRequest struct {
	RecipientName          string  `json:"recipientName"`
	RecipientPhone         string  `json:"recipientPhone"`
	RecipientAddress       string  `json:"recipientAddress"`
	RecipientAddressDetail *string `json:"recipientAddressDetail,omitempty"`
	RecipientZipcode       *string `json:"recipientZipcode,omitempty"`
	Memo                   *string `json:"memo,omitempty"`
	PaymentMethod          string  `json:"paymentMethod"`
}

// OrderCreated is the response payload after checkout.
type OrderCreated struct {
	OrderID     uuid.UUID       `json:"orderId"`
	OrderNumber string          `json:"orderNumber"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// StatusUpdateRequest is the admin payload for changing an order's status.
type StatusUpdateRequest struct {
	Status string `json:"status"`
}

// OrderFilter narrows admin order listings.
type OrderFilter struct {
	Status *OrderStatus
	Page   Page
}

// Quote is the computed price breakdown for a set of lines.
type Quote struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	ShippingFee decimal.Decimal `json:"shippingFee"`
	Total       decimal.Decimal `json:"total"`
}

// DashboardStats are the headline figures on the admin dashboard.
// Revenue counts every order that has been paid and not cancelled.
type DashboardStats struct {
	TotalOrders   int             `json:"totalOrders"`
	TodayOrders   int             `json:"todayOrders"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	TodayRevenue  decimal.Decimal `json:"todayRevenue"`
	TotalUsers    int             `json:"totalUsers"`
	TotalProducts int             `json:"totalProducts"`
	PendingOrders int             `json:"pendingOrders"`
}

// Dashboard is the admin landing payload.
type Dashboard struct {
	Stats        DashboardStats `json:"stats"`
	RecentOrders []OrderSummary `json:"recentOrders"`
}
