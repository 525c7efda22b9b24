// Package catalog loads storefront seed documents and applies them to the
// database.
package catalog

import (
	"fmt"
	"strings"

	"gugarden/internal/model"

	"github.com/shopspring/decimal"
)

// Document is one seed file. Later documents override earlier ones entry by
// entry, keyed by slug for categories and products and by email for users.
type Document struct {
	Categories []CategorySeed `yaml:"categories"`
	Products   []ProductSeed  `yaml:"products"`
	Users      []UserSeed     `yaml:"users"`
}

// CategorySeed describes a category.
type CategorySeed struct {
	Name        string  `yaml:"name"`
	Slug        string  `yaml:"slug"`
	Description *string `yaml:"description"`
	SortOrder   int     `yaml:"sortOrder"`
}

// ProductSeed describes a product. Category names a category slug.
// Prices are decimal strings.
type ProductSeed struct {
	Category    string   `yaml:"category"`
	Name        string   `yaml:"name"`
	Slug        string   `yaml:"slug"`
	Description *string  `yaml:"description"`
	Price       string   `yaml:"price"`
	SalePrice   string   `yaml:"salePrice"`
	Stock       int      `yaml:"stock"`
	Thumbnail   *string  `yaml:"thumbnail"`
	Active      *bool    `yaml:"active"`
	Featured    bool     `yaml:"featured"`
	Images      []string `yaml:"images"`
}

// UserSeed describes an account. Password is plain text and hashed on apply.
type UserSeed struct {
	Email    string  `yaml:"email"`
	Password string  `yaml:"password"`
	Name     string  `yaml:"name"`
	Phone    *string `yaml:"phone"`
	Role     string  `yaml:"role"`
}

// Merge folds docs into one document in order.
func Merge(docs ...*Document) *Document {
	merged := &Document{}
	categoryAt := map[string]int{}
	productAt := map[string]int{}
	userAt := map[string]int{}

	for _, doc := range docs {
		if doc == nil {
			continue
		}
		for _, c := range doc.Categories {
			if i, ok := categoryAt[c.Slug]; ok {
				merged.Categories[i] = c
				continue
			}
			categoryAt[c.Slug] = len(merged.Categories)
			merged.Categories = append(merged.Categories, c)
		}
		for _, p := range doc.Products {
			if i, ok := productAt[p.Slug]; ok {
				merged.Products[i] = p
				continue
			}
			productAt[p.Slug] = len(merged.Products)
			merged.Products = append(merged.Products, p)
		}
		for _, u := range doc.Users {
			key := strings.ToLower(u.Email)
			if i, ok := userAt[key]; ok {
				merged.Users[i] = u
				continue
			}
			userAt[key] = len(merged.Users)
			merged.Users = append(merged.Users, u)
		}
	}

	return merged
}

// Validate checks every entry and that products name known categories.
func (d *Document) Validate() error {
	categories := make(map[string]bool, len(d.Categories))
	for i, c := range d.Categories {
		if c.Name == "" || c.Slug == "" {
			return fmt.Errorf("category %d: name and slug are required", i)
		}
		categories[c.Slug] = true
	}

	for _, p := range d.Products {
		if p.Name == "" || p.Slug == "" {
			return fmt.Errorf("product %q: name and slug are required", p.Slug)
		}
		if p.Category != "" && !categories[p.Category] {
			return fmt.Errorf("product %s: unknown category %q", p.Slug, p.Category)
		}
		if _, err := p.toProduct(nil); err != nil {
			return err
		}
	}

	for _, u := range d.Users {
		if u.Email == "" || u.Password == "" || u.Name == "" {
			return fmt.Errorf("user %q: email, password and name are required", u.Email)
		}
		if u.Role != "" && !model.ValidRole(u.Role) {
			return fmt.Errorf("user %s: invalid role %q", u.Email, u.Role)
		}
	}

	return nil
}

func (c CategorySeed) toCategory() *model.Category {
	return &model.Category{
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		SortOrder:   c.SortOrder,
	}
}

func (p ProductSeed) toProduct(categoryID *int64) (*model.Product, error) {
	price, err := decimal.NewFromString(p.Price)
	if err != nil {
		return nil, fmt.Errorf("product %s: invalid price %q", p.Slug, p.Price)
	}
	if price.IsNegative() {
		return nil, fmt.Errorf("product %s: price must not be negative", p.Slug)
	}
	if p.Stock < 0 {
		return nil, fmt.Errorf("product %s: stock must not be negative", p.Slug)
	}

	var sale decimal.NullDecimal
	if p.SalePrice != "" {
		s, err := decimal.NewFromString(p.SalePrice)
		if err != nil {
			return nil, fmt.Errorf("product %s: invalid sale price %q", p.Slug, p.SalePrice)
		}
		if s.IsNegative() || s.GreaterThan(price) {
			return nil, fmt.Errorf("product %s: sale price must be between 0 and price", p.Slug)
		}
		sale = decimal.NewNullDecimal(s)
	}

	active := true
	if p.Active != nil {
		active = *p.Active
	}

	return &model.Product{
		CategoryID:  categoryID,
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		Price:       price,
		SalePrice:   sale,
		Stock:       p.Stock,
		Thumbnail:   p.Thumbnail,
		IsActive:    active,
		IsFeatured:  p.Featured,
	}, nil
}

func (p ProductSeed) images(productID int64) []model.ProductImage {
	images := make([]model.ProductImage, 0, len(p.Images))
	for i, url := range p.Images {
		images = append(images, model.ProductImage{ProductID: productID, ImageURL: url, SortOrder: i})
	}
	return images
}
