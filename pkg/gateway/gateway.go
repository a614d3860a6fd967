// Package gateway defines the contract between the payment engine and an
// external payment provider. Providers are swappable at construction time.
package gateway

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidSignature = errors.New("webhook signature verification failed")
	ErrMalformedWebhook = errors.New("webhook payload is missing required fields")
)

// CreatePaymentRequest registers a local payment with the provider. Retrying
// with the same idempotency key must not create a duplicate external charge;
// real providers enforce that on their side.
type CreatePaymentRequest struct {
	PaymentID      uuid.UUID
	OrderID        uuid.UUID
	Amount         decimal.Decimal
	Currency       string
	IdempotencyKey string
	Description    string
	ReturnURL      string
	CancelURL      string
}

type CreatePaymentResult struct {
	ProviderPaymentID string
	CheckoutURL       string
	Raw               json.RawMessage
}

// WebhookEvent is the normalized form of a provider webhook.
type WebhookEvent struct {
	EventID           string
	ProviderPaymentID string
	Status            string
	Raw               json.RawMessage
}

type PaymentGateway interface {
	ProviderName() string
	CreatePayment(ctx context.Context, req CreatePaymentRequest) (*CreatePaymentResult, error)
	// VerifyWebhookSignature must be called before ParseWebhook; a failed
	// verification short-circuits webhook handling with no state change.
	VerifyWebhookSignature(headers map[string]string, body []byte) bool
	ParseWebhook(headers map[string]string, body []byte) (*WebhookEvent, error)
}
