package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"

	"shop/pkg/domain/model"
	"shop/pkg/gateway"
)

var (
	// ErrPaymentState covers operations that are invalid in the current
	// payment/order state: paying a non-pending order, a second active
	// payment, an unrecognized provider status.
	ErrPaymentState = errors.New("invalid payment state")
	// ErrGatewayFailure wraps a failed or timed-out provider call. The local
	// payment stays in created and is not promoted.
	ErrGatewayFailure = errors.New("payment provider request failed")
)

type PaymentService interface {
	CreatePaymentForOrder(ctx context.Context, orderID, requestingUserID uuid.UUID, currency string) (*model.Payment, error)
	ProcessWebhookEvent(event *gateway.WebhookEvent) (*model.Payment, error)
	// ExpireStaleCreated cancels payments stuck in created longer than
	// maxAge, releasing the active-payment slot of their orders.
	ExpireStaleCreated(maxAge time.Duration) (int64, error)
}

func NewPaymentService(payments model.PaymentRepository, orders model.OrderRepository, gw gateway.PaymentGateway, gatewayTimeout time.Duration, dispatcher EventDispatcher) PaymentService {
	return &paymentService{
		payments:       payments,
		orders:         orders,
		gateway:        gw,
		gatewayTimeout: gatewayTimeout,
		dispatcher:     dispatcher,
	}
}

type paymentService struct {
	payments       model.PaymentRepository
	orders         model.OrderRepository
	gateway        gateway.PaymentGateway
	gatewayTimeout time.Duration
	dispatcher     EventDispatcher
}

func (s *paymentService) CreatePaymentForOrder(ctx context.Context, orderID, requestingUserID uuid.UUID, currency string) (*model.Payment, error) {
	order, err := s.orders.Find(orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != requestingUserID {
		return nil, model.ErrOrderNotOwned
	}
	if order.Status != model.OrderPending {
		return nil, pkgerrors.Wrap(ErrPaymentState, "order is not awaiting payment")
	}

	if existing, err := s.payments.FindActiveByOrder(orderID); err == nil && existing != nil {
		return nil, pkgerrors.Wrap(ErrPaymentState, model.ErrActivePaymentExists.Error())
	}

	paymentID, err := s.payments.NextID()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	payment := &model.Payment{
		ID:             paymentID,
		OrderID:        orderID,
		Amount:         order.TotalPrice,
		Currency:       currency,
		Provider:       s.gateway.ProviderName(),
		Status:         model.PaymentCreated,
		IdempotencyKey: uuid.NewString(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	// The read above closes nothing by itself: the insert races with
	// concurrent attempts and the database uniqueness constraint over the
	// active-status subset is the real arbiter.
	if err := s.payments.Create(payment); err != nil {
		if errors.Is(err, model.ErrActivePaymentExists) {
			return nil, pkgerrors.Wrap(ErrPaymentState, err.Error())
		}
		return nil, err
	}

	_ = s.dispatcher.Dispatch(model.PaymentInitiated{
		PaymentID: paymentID,
		OrderID:   orderID,
		Provider:  payment.Provider,
	})

	callCtx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
	defer cancel()

	result, err := s.gateway.CreatePayment(callCtx, gateway.CreatePaymentRequest{
		PaymentID:      paymentID,
		OrderID:        orderID,
		Amount:         order.TotalPrice,
		Currency:       currency,
		IdempotencyKey: payment.IdempotencyKey,
		Description:    "Payment for order " + orderID.String(),
	})
	if err != nil {
		// Payment stays in created; the stale sweep reclaims it later.
		return nil, pkgerrors.Wrap(ErrGatewayFailure, err.Error())
	}

	payment.Status = model.PaymentPending
	payment.ProviderPaymentID = &result.ProviderPaymentID
	if result.CheckoutURL != "" {
		payment.CheckoutURL = &result.CheckoutURL
	}
	payment.ProviderPayload = result.Raw
	payment.UpdatedAt = time.Now().UTC()

	if err := s.payments.Update(payment); err != nil {
		return nil, err
	}

	_ = s.dispatcher.Dispatch(model.PaymentStatusChanged{
		PaymentID: paymentID,
		OldStatus: model.PaymentCreated,
		NewStatus: model.PaymentPending,
	})
	return payment, nil
}

func (s *paymentService) ProcessWebhookEvent(event *gateway.WebhookEvent) (*model.Payment, error) {
	payment, err := s.payments.FindByProviderPaymentID(event.ProviderPaymentID)
	if err != nil {
		return nil, err
	}

	newStatus, err := mapProviderStatus(event.Status)
	if err != nil {
		return nil, err
	}

	oldStatus := payment.Status
	if oldStatus.IsTerminal() {
		if newStatus == oldStatus {
			// Replayed delivery of the final status; nothing to change.
			return payment, nil
		}
		// Terminal states are never left; a contradictory late webhook is
		// dropped as a state conflict.
		return nil, pkgerrors.Wrapf(ErrPaymentState, "payment already %s", oldStatus)
	}

	payment.Status = newStatus
	payment.ProviderPayload = event.Raw
	payment.FailReason = nil
	if newStatus == model.PaymentFailed {
		payment.FailReason = extractFailReason(event.Raw)
	}
	payment.UpdatedAt = time.Now().UTC()

	// Both writes are compare-and-set in one transaction: the payment update
	// requires the status read above, the order promotion requires pending.
	moved, err := s.payments.Reconcile(payment, oldStatus, newStatus == model.PaymentSucceeded)
	if err != nil {
		return nil, err
	}
	if !moved {
		// A concurrent delivery won the race; its status stands.
		return nil, pkgerrors.Wrap(ErrPaymentState, "payment was updated concurrently")
	}

	if oldStatus != newStatus {
		_ = s.dispatcher.Dispatch(model.PaymentStatusChanged{
			PaymentID: payment.ID,
			OldStatus: oldStatus,
			NewStatus: newStatus,
		})
		if newStatus == model.PaymentSucceeded {
			_ = s.dispatcher.Dispatch(model.OrderPaidEvent{OrderID: payment.OrderID, PaymentID: payment.ID})
		}
	}
	return payment, nil
}

func (s *paymentService) ExpireStaleCreated(maxAge time.Duration) (int64, error) {
	return s.payments.CancelStaleCreated(time.Now().UTC().Add(-maxAge))
}

// mapProviderStatus translates the provider's free-text status into the
// internal enum. The table is fixed and case-insensitive.
func mapProviderStatus(providerStatus string) (model.PaymentStatus, error) {
	switch strings.ToLower(providerStatus) {
	case "created":
		return model.PaymentCreated, nil
	case "pending":
		return model.PaymentPending, nil
	case "succeeded", "paid":
		return model.PaymentSucceeded, nil
	case "failed":
		return model.PaymentFailed, nil
	case "canceled", "cancelled":
		return model.PaymentCanceled, nil
	}
	return "", pkgerrors.Wrapf(model.ErrUnknownProviderStatus, "%q", providerStatus)
}

func extractFailReason(raw json.RawMessage) *string {
	var payload struct {
		FailReason string `json:"fail_reason"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil || payload.FailReason == "" {
		return nil
	}
	return &payload.FailReason
}
