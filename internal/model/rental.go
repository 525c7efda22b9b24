package model

import "time"

// RentalInquiry is a contact-form request for an installation rental.
type RentalInquiry struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Phone     string    `json:"phone" db:"phone"`
	Company   *string   `json:"company,omitempty" db:"company"`
	Location  *string   `json:"location,omitempty" db:"location"`
	SpaceSize *string   `json:"spaceSize,omitempty" db:"space_size"`
	Message   *string   `json:"message,omitempty" db:"message"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// RentalInquiryRequest represents the public inquiry form.
type RentalInquiryRequest struct {
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Phone     string  `json:"phone"`
	Company   *string `json:"company,omitempty"`
	Location  *string `json:"location,omitempty"`
	SpaceSize *string `json:"spaceSize,omitempty"`
	Message   *string `json:"message,omitempty"`
}
