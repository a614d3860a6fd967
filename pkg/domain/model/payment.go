package model

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrPaymentNotFound = errors.New("payment not found")
	// ErrActivePaymentExists is the domain-level form of the database
	// uniqueness violation over (order, active status).
	ErrActivePaymentExists   = errors.New("order already has an active payment")
	ErrUnknownProviderStatus = errors.New("unknown provider payment status")
)

type PaymentStatus string

const (
	PaymentCreated   PaymentStatus = "created"
	PaymentPending   PaymentStatus = "pending"
	PaymentSucceeded PaymentStatus = "succeeded"
	PaymentFailed    PaymentStatus = "failed"
	PaymentCanceled  PaymentStatus = "canceled"
)

// IsTerminal reports whether no further transition may leave the status.
func (s PaymentStatus) IsTerminal() bool {
	switch s {
	case PaymentSucceeded, PaymentFailed, PaymentCanceled:
		return true
	}
	return false
}

// IsActive reports whether the payment still occupies the one-active-payment
// slot of its order.
func (s PaymentStatus) IsActive() bool {
	return s == PaymentCreated || s == PaymentPending
}

type Payment struct {
	ID                uuid.UUID
	OrderID           uuid.UUID
	Amount            decimal.Decimal
	Currency          string
	Provider          string
	Status            PaymentStatus
	IdempotencyKey    string
	ProviderPaymentID *string
	CheckoutURL       *string
	FailReason        *string
	ProviderPayload   json.RawMessage
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type PaymentRepository interface {
	NextID() (uuid.UUID, error)
	// Create inserts the payment row. A violation of the active-payment
	// uniqueness constraint surfaces as ErrActivePaymentExists.
	Create(payment *Payment) error
	Find(id uuid.UUID) (*Payment, error)
	FindByProviderPaymentID(providerPaymentID string) (*Payment, error)
	// FindActiveByOrder returns (nil, nil) when the order has no payment in
	// created or pending.
	FindActiveByOrder(orderID uuid.UUID) (*Payment, error)
	Update(payment *Payment) error
	// Reconcile persists the payment only if it is still in fromStatus and,
	// when markOrderPaid is set, promotes the order to paid in the same
	// transaction, but only if the order is still pending. Returns false
	// when a concurrent write already moved the payment out of fromStatus.
	Reconcile(payment *Payment, fromStatus PaymentStatus, markOrderPaid bool) (bool, error)
	// CancelStaleCreated cancels payments stuck in created longer than the
	// cutoff and returns how many were swept.
	CancelStaleCreated(before time.Time) (int64, error)
}
