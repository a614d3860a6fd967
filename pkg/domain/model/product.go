package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrProductInactive = errors.New("product is deactivated")
	// ErrProductInUse is returned when deleting a product that is referenced
	// by an order item (the database restricts the delete).
	ErrProductInUse  = errors.New("product is referenced by an order and cannot be deleted")
	ErrNegativePrice = errors.New("price cannot be negative")
)

type Product struct {
	ID          uuid.UUID
	CategoryID  uuid.UUID
	Name        string
	Description string
	Price       decimal.Decimal
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProductFilter narrows ListProducts. Zero values mean "no filter".
type ProductFilter struct {
	CategoryID uuid.UUID
	ActiveOnly bool
	Limit      int
	Offset     int
}

type ProductRepository interface {
	NextID() (uuid.UUID, error)
	Create(product *Product) error
	Find(id uuid.UUID) (*Product, error)
	FindByIDs(ids []uuid.UUID) ([]*Product, error)
	List(filter ProductFilter) ([]*Product, error)
	Update(product *Product) error
	Delete(id uuid.UUID) error // ErrProductInUse when an order item references it
}
