package repository

import (
	"context"
	"time"

	"gugarden/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProductRepository defines the interface for catalogue data access operations.
type ProductRepository interface {
	// ListActive retrieves every active product, newest first.
	ListActive(ctx context.Context) ([]model.Product, error)

	// ListFeatured retrieves up to limit active featured products.
	ListFeatured(ctx context.Context, limit int) ([]model.Product, error)

	// ListByCategorySlug retrieves active products in the category.
	ListByCategorySlug(ctx context.Context, slug string) ([]model.Product, error)

	// GetActiveByID retrieves an active product with its images.
	// Returns nil when the product does not exist or is inactive.
	GetActiveByID(ctx context.Context, id int64) (*model.Product, error)

	// GetByID retrieves a product regardless of its active flag.
	GetByID(ctx context.Context, id int64) (*model.Product, error)

	// ListCategories retrieves all categories with product counts.
	ListCategories(ctx context.Context) ([]model.Category, error)

	// AdminList retrieves a filtered page of products and the total match count.
	AdminList(ctx context.Context, filter model.ProductFilter) ([]model.Product, int, error)

	// ListAll retrieves every product for export.
	ListAll(ctx context.Context) ([]model.Product, error)

	// Create inserts a product and fills its generated fields.
	Create(ctx context.Context, p *model.Product) error

	// Update writes the mutable columns of p. Stock is only written when
	// setStock is true; otherwise the stored value is kept and copied into p.
	Update(ctx context.Context, p *model.Product, setStock bool) error

	// Delete deactivates a product referenced by any order item and removes it otherwise.
	Delete(ctx context.Context, id int64) (*model.DeleteResult, error)

	// DecrementStock reserves quantity units inside tx. It fails with an
	// insufficient stock error when fewer units remain.
	DecrementStock(ctx context.Context, tx pgx.Tx, productID int64, quantity int) error

	// IncrementStock returns quantity units inside tx.
	IncrementStock(ctx context.Context, tx pgx.Tx, productID int64, quantity int) error
}

// CartRepository defines the interface for cart data access operations.
// Every operation is scoped to the owning user.
type CartRepository interface {
	// ListByUser retrieves the user's cart lines for active products.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.CartItem, error)

	// Add inserts a line or increases the quantity of an existing one.
	Add(ctx context.Context, userID uuid.UUID, productID int64, quantity int) (*model.CartItem, error)

	// UpdateQuantity sets the quantity of a line. Returns false when the line is not the user's.
	UpdateQuantity(ctx context.Context, userID uuid.UUID, itemID int64, quantity int) (bool, error)

	// Delete removes a line. Returns false when the line is not the user's.
	Delete(ctx context.Context, userID uuid.UUID, itemID int64) (bool, error)

	// Clear removes every line of the user's cart.
	Clear(ctx context.Context, userID uuid.UUID) error

	// ListForCheckout locks and returns the user's lines inside tx, ordered by product id.
	ListForCheckout(ctx context.Context, tx pgx.Tx, userID uuid.UUID) ([]model.CheckoutLine, error)

	// ClearTx removes every line of the user's cart inside tx.
	ClearTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID) error
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	// A clash on the order number leaves tx usable and returns ErrDuplicateOrderNumber.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByID retrieves an order. Returns nil when it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// GetForUpdate retrieves and row-locks an order inside tx.
	GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error)

	// GetItems retrieves an order's items with current product thumbnails.
	GetItems(ctx context.Context, orderID uuid.UUID) ([]model.OrderItem, error)

	// GetItemsTx retrieves an order's items inside tx.
	GetItemsTx(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) ([]model.OrderItem, error)

	// ListByUser retrieves the user's orders, newest first, with item counts.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.OrderSummary, error)

	// ListRecentByUser retrieves at most limit of the user's newest orders.
	ListRecentByUser(ctx context.Context, userID uuid.UUID, limit int) ([]model.Order, error)

	// List retrieves a filtered page of all orders with customer details.
	List(ctx context.Context, filter model.OrderFilter) ([]model.OrderSummary, int, error)

	// UpdateStatus writes a new status inside tx.
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.OrderStatus) error

	// MarkPaid moves a pending order to paid inside tx.
	MarkPaid(ctx context.Context, tx pgx.Tx, id uuid.UUID, paymentKey string, paidAt time.Time) error

	// MarkCancelled moves an order to cancelled inside tx.
	MarkCancelled(ctx context.Context, tx pgx.Tx, id uuid.UUID, cancelledAt time.Time) error

	// SetPaymentKey records the provider reference issued at payment preparation.
	SetPaymentKey(ctx context.Context, id uuid.UUID, paymentKey string) error

	// Stats computes dashboard figures. "Today" starts at dayStart.
	Stats(ctx context.Context, dayStart time.Time) (*model.DashboardStats, error)
}

// UserRepository defines the interface for user data access operations.
type UserRepository interface {
	// Create inserts a user and fills its generated fields.
	Create(ctx context.Context, user *model.User) error

	// GetByEmail retrieves a user by email. Returns nil when none exists.
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// GetByID retrieves a user by id. Returns nil when none exists.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)

	// UpdateProfile writes the caller-editable profile fields.
	UpdateProfile(ctx context.Context, id uuid.UUID, req *model.ProfileUpdateRequest) (*model.User, error)

	// UpdatePassword replaces the stored password hash.
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error

	// UpdateRole sets the user's role. Returns false when the user does not exist.
	UpdateRole(ctx context.Context, id uuid.UUID, role string) (bool, error)

	// List retrieves a filtered page of users with order statistics.
	List(ctx context.Context, filter model.UserFilter) ([]model.UserSummary, int, error)
}

// RentalRepository defines the interface for rental inquiry storage.
type RentalRepository interface {
	// Create inserts an inquiry and fills its generated fields.
	Create(ctx context.Context, inquiry *model.RentalInquiry) error

	// List retrieves a page of inquiries, newest first.
	List(ctx context.Context, page model.Page) ([]model.RentalInquiry, int, error)
}

// SeedRepository applies catalogue seed documents inside one transaction.
type SeedRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// UpsertCategory inserts or updates a category by slug and returns its id.
	UpsertCategory(ctx context.Context, tx pgx.Tx, c *model.Category) (int64, error)

	// UpsertProduct inserts or updates a product by slug and returns its id.
	UpsertProduct(ctx context.Context, tx pgx.Tx, p *model.Product) (int64, error)

	// ReplaceProductImages swaps the product's gallery for images.
	ReplaceProductImages(ctx context.Context, tx pgx.Tx, productID int64, images []model.ProductImage) error

	// UpsertUser inserts or updates a user by email.
	UpsertUser(ctx context.Context, tx pgx.Tx, u *model.User) error
}
