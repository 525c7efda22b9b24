package service

import (
	"context"
	"io"

	"gugarden/internal/model"

	"github.com/google/uuid"
)

// ProductService defines catalogue operations.
type ProductService interface {
	// List retrieves active products, optionally limited to one category slug.
	List(ctx context.Context, categorySlug string) ([]model.Product, error)

	// ListFeatured retrieves the storefront's featured products.
	ListFeatured(ctx context.Context) ([]model.Product, error)

	// GetByID retrieves an active product with its images.
	GetByID(ctx context.Context, id int64) (*model.Product, error)

	// ListCategories retrieves all categories.
	ListCategories(ctx context.Context) ([]model.Category, error)

	// AdminList retrieves a filtered page of all products.
	AdminList(ctx context.Context, filter model.ProductFilter) ([]model.Product, model.Pagination, error)

	// Create adds a product.
	Create(ctx context.Context, req *model.ProductRequest) (*model.Product, error)

	// Update applies a partial update to a product.
	Update(ctx context.Context, id int64, req *model.ProductUpdateRequest) (*model.Product, error)

	// Delete removes a product, deactivating it instead when orders reference it.
	Delete(ctx context.Context, id int64) (*model.DeleteResult, error)

	// Export writes every product to w as an xlsx workbook.
	Export(ctx context.Context, w io.Writer) error
}

// CartService defines operations on the caller's cart.
type CartService interface {
	Get(ctx context.Context, userID uuid.UUID) (*model.Cart, error)
	Add(ctx context.Context, userID uuid.UUID, req *model.AddToCartRequest) (*model.CartItem, error)
	UpdateQuantity(ctx context.Context, userID uuid.UUID, itemID int64, quantity int) error
	Remove(ctx context.Context, userID uuid.UUID, itemID int64) error
	Clear(ctx context.Context, userID uuid.UUID) error
}

// OrderService defines the order workflow.
type OrderService interface {
	// CreateOrder converts the caller's cart into a pending order.
	CreateOrder(ctx context.Context, userID uuid.UUID, req *model.OrderRequest) (*model.OrderCreated, error)

	// ListByUser retrieves the caller's orders.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.OrderSummary, error)

	// GetByID retrieves one of the caller's orders with its items.
	GetByID(ctx context.Context, userID, orderID uuid.UUID) (*model.OrderDetail, error)

	// Cancel cancels one of the caller's pending or paid orders and restores stock.
	Cancel(ctx context.Context, userID, orderID uuid.UUID) (*model.Order, error)

	// AdminList retrieves a filtered page of all orders.
	AdminList(ctx context.Context, filter model.OrderFilter) ([]model.OrderSummary, model.Pagination, error)

	// AdminGet retrieves any order with its items.
	AdminGet(ctx context.Context, orderID uuid.UUID) (*model.OrderDetail, error)

	// AdminUpdateStatus moves an order to a new status.
	AdminUpdateStatus(ctx context.Context, orderID uuid.UUID, status string) (*model.Order, error)

	// Dashboard summarises store activity for the admin landing page.
	Dashboard(ctx context.Context) (*model.Dashboard, error)
}

// PaymentService drives the payment round trip for an order.
type PaymentService interface {
	// Provider names the configured payment provider.
	Provider() string

	// Prepare reserves a payment for a pending order.
	Prepare(ctx context.Context, userID, orderID uuid.UUID) (map[string]any, error)

	// Approve confirms the payment and marks the order paid.
	Approve(ctx context.Context, userID uuid.UUID, req *model.PaymentApproveRequest) (*model.PaymentApproveResult, error)

	// Cancel refunds a paid order and restores stock.
	Cancel(ctx context.Context, userID uuid.UUID, req *model.PaymentCancelRequest) (*model.Order, error)

	// Status reports the payment state of an order.
	Status(ctx context.Context, userID, orderID uuid.UUID) (*model.PaymentStatus, error)
}

// AuthService defines account and token operations.
type AuthService interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error)
	Me(ctx context.Context, userID uuid.UUID) (*model.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req *model.ProfileUpdateRequest) (*model.User, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, req *model.PasswordChangeRequest) error

	// ParseToken validates a bearer token and returns its claims.
	ParseToken(token string) (*Claims, error)
}

// UserService defines admin user management.
type UserService interface {
	List(ctx context.Context, filter model.UserFilter) ([]model.UserSummary, model.Pagination, error)
	Get(ctx context.Context, userID uuid.UUID) (*model.UserDetail, error)
	UpdateRole(ctx context.Context, actorID, userID uuid.UUID, role string) error
}

// RentalService defines rental inquiry intake.
type RentalService interface {
	Submit(ctx context.Context, req *model.RentalInquiryRequest) (*model.RentalInquiry, error)
	List(ctx context.Context, page model.Page) ([]model.RentalInquiry, model.Pagination, error)
}
