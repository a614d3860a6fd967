package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrOrderNotFound         = errors.New("order not found")
	ErrOrderNotOwned         = errors.New("order belongs to another user")
	ErrOrderCannotBeModified = errors.New("order cannot be modified in its current state")
	ErrEmptyOrder            = errors.New("order must contain at least one item")
	ErrTooManyItems          = errors.New("order exceeds the maximum number of items")
	ErrDuplicateLineItem     = errors.New("duplicate product in order items")
	ErrInvalidQuantity       = errors.New("item quantity must be between 1 and the per-line cap")
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPaid      OrderStatus = "paid"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

type Order struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Status     OrderStatus
	TotalPrice decimal.Decimal
	Items      []OrderItem
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// OrderItem stores the product price as it was at order creation. The
// snapshot never changes, regardless of later product price updates.
type OrderItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Quantity  int
	Price     decimal.Decimal
}

// ProductsNotFoundError lists the requested product ids that do not exist.
type ProductsNotFoundError struct {
	IDs []uuid.UUID
}

func (e *ProductsNotFoundError) Error() string {
	return fmt.Sprintf("products not found: %v", e.IDs)
}

// ProductsInactiveError lists the requested products that exist but are
// deactivated. Reported only after existence of all products is confirmed.
type ProductsInactiveError struct {
	IDs []uuid.UUID
}

func (e *ProductsInactiveError) Error() string {
	return fmt.Sprintf("products are deactivated: %v", e.IDs)
}

type OrderRepository interface {
	NextID() (uuid.UUID, error)
	// Create persists the order together with its items as one transaction.
	Create(order *Order) error
	Find(id uuid.UUID) (*Order, error)
	FindByUser(userID uuid.UUID, limit, offset int) ([]*Order, error)
	// TransitionStatus moves the order from one status to another with a
	// single conditional update. It reports false when the order was not in
	// the expected status, without touching it.
	TransitionStatus(id uuid.UUID, from, to OrderStatus) (bool, error)
}
