package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category groups products in the catalogue.
type Category struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Slug         string    `json:"slug" db:"slug"`
	Description  *string   `json:"description,omitempty" db:"description"`
	SortOrder    int       `json:"sortOrder" db:"sort_order"`
	ProductCount *int      `json:"productCount,omitempty" db:"product_count"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// Product represents an item in the catalogue.
type Product struct {
	ID           int64               `json:"id" db:"id"`
	CategoryID   *int64              `json:"categoryId" db:"category_id"`
	CategoryName *string             `json:"categoryName,omitempty" db:"category_name"`
	CategorySlug *string             `json:"categorySlug,omitempty" db:"category_slug"`
	Name         string              `json:"name" db:"name"`
	Slug         string              `json:"slug" db:"slug"`
	Description  *string             `json:"description,omitempty" db:"description"`
	Price        decimal.Decimal     `json:"price" db:"price"`
	SalePrice    decimal.NullDecimal `json:"salePrice" db:"sale_price"`
	Stock        int                 `json:"stock" db:"stock"`
	Thumbnail    *string             `json:"thumbnail,omitempty" db:"thumbnail"`
	IsActive     bool                `json:"isActive" db:"is_active"`
	IsFeatured   bool                `json:"isFeatured" db:"is_featured"`
	CreatedAt    time.Time           `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time           `json:"updatedAt" db:"updated_at"`
	Images       []ProductImage      `json:"images,omitempty"`
}

// EffectivePrice is the sale price when one is set, otherwise the list price.
func (p *Product) EffectivePrice() decimal.Decimal {
	return EffectivePrice(p.Price, p.SalePrice)
}

// EffectivePrice picks sale over list price.
func EffectivePrice(price decimal.Decimal, sale decimal.NullDecimal) decimal.Decimal {
	if sale.Valid {
		return sale.Decimal
	}
	return price
}

// ProductImage is an additional gallery image for a product.
type ProductImage struct {
	ID        int64  `json:"id" db:"id"`
	ProductID int64  `json:"productId" db:"product_id"`
	ImageURL  string `json:"imageUrl" db:"image_url"`
	SortOrder int    `json:"sortOrder" db:"sort_order"`
}

// ProductRequest is the admin payload for creating a product.
type ProductRequest struct {
	CategoryID  *int64           `json:"categoryId"`
	Name        string           `json:"name"`
	Slug        string           `json:"slug"`
	Description *string          `json:"description"`
	Price       decimal.Decimal  `json:"price"`
	SalePrice   *decimal.Decimal `json:"salePrice"`
	Stock       int              `json:"stock"`
	Thumbnail   *string          `json:"thumbnail"`
	IsActive    *bool            `json:"isActive"`
	IsFeatured  bool             `json:"isFeatured"`
}

// ProductUpdateRequest is the admin payload for a partial product update.
// Nil fields are left unchanged. ClearSalePrice removes an existing sale price.
type ProductUpdateRequest struct {
	CategoryID     *int64           `json:"categoryId"`
	Name           *string          `json:"name"`
	Slug           *string          `json:"slug"`
	Description    *string          `json:"description"`
	Price          *decimal.Decimal `json:"price"`
	SalePrice      *decimal.Decimal `json:"salePrice"`
	ClearSalePrice bool             `json:"clearSalePrice"`
	Stock          *int             `json:"stock"`
	Thumbnail      *string          `json:"thumbnail"`
	IsActive       *bool            `json:"isActive"`
	IsFeatured     *bool            `json:"isFeatured"`
}

// ProductFilter narrows admin product listings.
type ProductFilter struct {
	Search       string
	CategorySlug string
	Page         Page
}

// DeleteResult reports how a product removal was carried out.
type DeleteResult struct {
	ProductID   int64 `json:"productId"`
	SoftDeleted bool  `json:"softDeleted"`
}
