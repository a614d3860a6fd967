package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type UserRegistered struct {
	UserID uuid.UUID
	Email  string
}

func (e UserRegistered) Type() string { return "UserRegistered" }

type ProductCreated struct {
	ProductID uuid.UUID
	Name      string
}

func (e ProductCreated) Type() string { return "ProductCreated" }

type ProductPriceChanged struct {
	ProductID uuid.UUID
	OldPrice  decimal.Decimal
	NewPrice  decimal.Decimal
}

func (e ProductPriceChanged) Type() string { return "ProductPriceChanged" }

type OrderCreated struct {
	OrderID    uuid.UUID
	UserID     uuid.UUID
	TotalPrice decimal.Decimal
}

func (e OrderCreated) Type() string { return "OrderCreated" }

type OrderCancelledEvent struct {
	OrderID uuid.UUID
}

func (e OrderCancelledEvent) Type() string { return "OrderCancelled" }

type OrderPaidEvent struct {
	OrderID   uuid.UUID
	PaymentID uuid.UUID
}

func (e OrderPaidEvent) Type() string { return "OrderPaid" }

type PaymentInitiated struct {
	PaymentID uuid.UUID
	OrderID   uuid.UUID
	Provider  string
}

func (e PaymentInitiated) Type() string { return "PaymentInitiated" }

type PaymentStatusChanged struct {
	PaymentID uuid.UUID
	OldStatus PaymentStatus
	NewStatus PaymentStatus
}

func (e PaymentStatusChanged) Type() string { return "PaymentStatusChanged" }
