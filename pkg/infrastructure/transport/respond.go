package transport

import (
	"encoding/json"
	"errors"
	"net/http"

	"shop/pkg/domain/model"
	"shop/pkg/domain/service"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeDomainError maps domain errors onto the HTTP taxonomy: not-found 404,
// forbidden 403, state conflicts 409, validation 400, upstream failures 502.
func writeDomainError(w http.ResponseWriter, err error) {
	var notFound *model.ProductsNotFoundError
	var inactive *model.ProductsInactiveError

	switch {
	case errors.As(err, &notFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &inactive):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrUserNotFound),
		errors.Is(err, model.ErrCategoryNotFound),
		errors.Is(err, model.ErrProductNotFound),
		errors.Is(err, model.ErrOrderNotFound),
		errors.Is(err, model.ErrPaymentNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, model.ErrOrderNotOwned):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, model.ErrEmailTaken),
		errors.Is(err, model.ErrCategoryExists),
		errors.Is(err, model.ErrProductInUse),
		errors.Is(err, model.ErrOrderCannotBeModified),
		errors.Is(err, model.ErrActivePaymentExists),
		errors.Is(err, service.ErrPaymentState):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, model.ErrEmptyOrder),
		errors.Is(err, model.ErrTooManyItems),
		errors.Is(err, model.ErrDuplicateLineItem),
		errors.Is(err, model.ErrInvalidQuantity),
		errors.Is(err, model.ErrNegativePrice),
		errors.Is(err, model.ErrCategoryInactive),
		errors.Is(err, model.ErrProductInactive),
		errors.Is(err, model.ErrUnknownProviderStatus),
		errors.Is(err, service.ErrPasswordTooShort):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrUserInactive):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrGatewayFailure):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
