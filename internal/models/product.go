package models

import "time"

// Product represents an item in the catalogue.
type Product struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(24)"`
	Name        string    `json:"name" gorm:"not null" validate:"required"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price" gorm:"not null"`
	CategoryID  string    `json:"categoryId" gorm:"type:varchar(24);not null" validate:"required,mongodb"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ProductInput is the request body for create and update. Nil fields were
// not supplied by the client.
type ProductInput struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	CategoryID  *string  `json:"categoryId"`
}

// Apply copies the supplied fields onto p.
func (in ProductInput) Apply(p *Product) {
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.CategoryID != nil {
		p.CategoryID = *in.CategoryID
	}
}

// Empty reports whether no field was supplied.
func (in ProductInput) Empty() bool {
	return in.Name == nil && in.Description == nil && in.Price == nil && in.CategoryID == nil
}
