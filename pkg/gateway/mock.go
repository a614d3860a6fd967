package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// MockGateway is a provider stand-in for local development and tests. It
// accepts every signature and generates a fresh opaque payment id per call
// without de-duplication.
type MockGateway struct{}

func NewMockGateway() *MockGateway { return &MockGateway{} }

func (g *MockGateway) ProviderName() string { return "mock" }

func (g *MockGateway) CreatePayment(_ context.Context, req CreatePaymentRequest) (*CreatePaymentResult, error) {
	providerPaymentID := fmt.Sprintf("mock_%s_%s", req.PaymentID, uuid.NewString()[:8])
	checkoutURL := fmt.Sprintf("https://mock-pay.local/checkout/%s", providerPaymentID)

	raw, err := json.Marshal(map[string]string{
		"provider":            g.ProviderName(),
		"provider_payment_id": providerPaymentID,
		"checkout_url":        checkoutURL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "marshal mock payload")
	}

	return &CreatePaymentResult{
		ProviderPaymentID: providerPaymentID,
		CheckoutURL:       checkoutURL,
		Raw:               raw,
	}, nil
}

func (g *MockGateway) VerifyWebhookSignature(map[string]string, []byte) bool { return true }

func (g *MockGateway) ParseWebhook(_ map[string]string, body []byte) (*WebhookEvent, error) {
	var payload struct {
		EventID           string `json:"event_id"`
		ProviderPaymentID string `json:"provider_payment_id"`
		Status            string `json:"status"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, errors.Wrap(ErrMalformedWebhook, err.Error())
	}
	if payload.EventID == "" || payload.ProviderPaymentID == "" || payload.Status == "" {
		return nil, ErrMalformedWebhook
	}

	return &WebhookEvent{
		EventID:           payload.EventID,
		ProviderPaymentID: payload.ProviderPaymentID,
		Status:            payload.Status,
		Raw:               json.RawMessage(body),
	}, nil
}
