package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is a registered customer or administrator.
type User struct {
	ID            uuid.UUID `json:"id" db:"id"`
	Email         string    `json:"email" db:"email"`
	PasswordHash  string    `json:"-" db:"password"`
	Name          string    `json:"name" db:"name"`
	Phone         *string   `json:"phone,omitempty" db:"phone"`
	Address       *string   `json:"address,omitempty" db:"address"`
	AddressDetail *string   `json:"addressDetail,omitempty" db:"address_detail"`
	Zipcode       *string   `json:"zipcode,omitempty" db:"zipcode"`
	Role          string    `json:"role" db:"role"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// ValidRole reports whether role is assignable.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

// UserSummary is an admin list row with order statistics.
type UserSummary struct {
	ID         uuid.UUID       `json:"id"`
	Email      string          `json:"email"`
	Name       string          `json:"name"`
	Phone      *string         `json:"phone,omitempty"`
	Role       string          `json:"role"`
	CreatedAt  time.Time       `json:"createdAt"`
	OrderCount int             `json:"orderCount"`
	TotalSpent decimal.Decimal `json:"totalSpent"`
}

// UserDetail is the admin view of one user and their recent orders.
type UserDetail struct {
	User         User    `json:"user"`
	RecentOrders []Order `json:"orders"`
}

// RegisterRequest represents the sign-up payload.
type RegisterRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Name     string  `json:"name"`
	Phone    *string `json:"phone,omitempty"`
}

// LoginRequest represents the sign-in payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries an issued bearer token.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// ProfileUpdateRequest edits the caller's own profile.
type ProfileUpdateRequest struct {
	Name          string  `json:"name"`
	Phone         *string `json:"phone,omitempty"`
	Address       *string `json:"address,omitempty"`
	AddressDetail *string `json:"addressDetail,omitempty"`
	Zipcode       *string `json:"zipcode,omitempty"`
}

// PasswordChangeRequest replaces the caller's password.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// RoleUpdateRequest is the admin payload for changing a user's role.
type RoleUpdateRequest struct {
	Role string `json:"role"`
}

// UserFilter narrows admin user listings.
type UserFilter struct {
	Search string
	Page   Page
}
