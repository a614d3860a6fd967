package transport

import (
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"shop/pkg/domain/model"
	"shop/pkg/gateway"
)

type paymentResponse struct {
	ID                string  `json:"id"`
	OrderID           string  `json:"order_id"`
	Amount            string  `json:"amount"`
	Currency          string  `json:"currency"`
	Provider          string  `json:"provider"`
	Status            string  `json:"status"`
	ProviderPaymentID *string `json:"provider_payment_id,omitempty"`
	CheckoutURL       *string `json:"checkout_url,omitempty"`
	FailReason        *string `json:"fail_reason,omitempty"`
}

func toPaymentResponse(p *model.Payment) paymentResponse {
	return paymentResponse{
		ID:                p.ID.String(),
		OrderID:           p.OrderID.String(),
		Amount:            p.Amount.StringFixed(2),
		Currency:          p.Currency,
		Provider:          p.Provider,
		Status:            string(p.Status),
		ProviderPaymentID: p.ProviderPaymentID,
		CheckoutURL:       p.CheckoutURL,
		FailReason:        p.FailReason,
	}
}

func (s *Server) createPayment(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r)
	if !ok {
		return
	}

	payment, err := s.payments.CreatePaymentForOrder(r.Context(), orderID, currentUser(r).ID, s.currency)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPaymentResponse(payment))
}

func (s *Server) paymentWebhook(w http.ResponseWriter, r *http.Request) {
	gw, ok := s.gateways[mux.Vars(r)["provider"]]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown payment provider")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "cannot read request body")
		return
	}

	headers := make(map[string]string, len(r.Header))
	for name := range r.Header {
		headers[name] = r.Header.Get(name)
	}

	// Signature first; a forged webhook must not touch any state.
	if !gw.VerifyWebhookSignature(headers, body) {
		writeError(w, http.StatusUnauthorized, gateway.ErrInvalidSignature.Error())
		return
	}

	event, err := gw.ParseWebhook(headers, body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	payment, err := s.payments.ProcessWebhookEvent(event)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentResponse(payment))
}
