package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem is a product line in a user's cart, joined with live product data.
type CartItem struct {
	ID          int64               `json:"id" db:"id"`
	UserID      uuid.UUID           `json:"-" db:"user_id"`
	ProductID   int64               `json:"productId" db:"product_id"`
	Quantity    int                 `json:"quantity" db:"quantity"`
	ProductName string              `json:"productName" db:"name"`
	Slug        string              `json:"slug" db:"slug"`
	Price       decimal.Decimal     `json:"price" db:"price"`
	SalePrice   decimal.NullDecimal `json:"salePrice" db:"sale_price"`
	Stock       int                 `json:"stock" db:"stock"`
	Thumbnail   *string             `json:"thumbnail,omitempty" db:"thumbnail"`
	CreatedAt   time.Time           `json:"createdAt" db:"created_at"`
}

// UnitPrice is the effective price charged per unit.
func (c CartItem) UnitPrice() decimal.Decimal {
	return EffectivePrice(c.Price, c.SalePrice)
}

// LineTotal is the effective price times quantity.
func (c CartItem) LineTotal() decimal.Decimal {
	return c.UnitPrice().Mul(decimal.NewFromInt(int64(c.Quantity)))
}

// Cart is the caller's cart with a computed total.
type Cart struct {
	Items []CartItem      `json:"items"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// CheckoutLine is a cart line read inside the checkout transaction.
type CheckoutLine struct {
	ProductID int64
	Name      string
	Price     decimal.Decimal
	SalePrice decimal.NullDecimal
	Stock     int
	Quantity  int
}

// UnitPrice is the effective price snapshotted into the order item.
func (l CheckoutLine) UnitPrice() decimal.Decimal {
	return EffectivePrice(l.Price, l.SalePrice)
}

// AddToCartRequest represents the request payload for adding to the cart.
type AddToCartRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// UpdateCartRequest changes the quantity of an existing line.
type UpdateCartRequest struct {
	Quantity int `json:"quantity"`
}
