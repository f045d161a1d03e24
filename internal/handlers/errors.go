package handlers

import (
	"errors"
	"net/http"

	"shop-backend/internal/middleware"
	"shop-backend/internal/services"
	"shop-backend/pkg/utils"
)

// respondServiceError maps service errors onto HTTP statuses. Partial
// checkout failures carry a machine-readable code plus the committed order so
// clients can route the user to reconciliation.
func respondServiceError(w http.ResponseWriter, err error) {
	var partial *services.PartialCheckoutError
	if errors.As(err, &partial) {
		utils.JSON(w, http.StatusConflict, map[string]interface{}{
			"error": partial.Error(),
			"code":  "partial_checkout",
			"order": partial.Order,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrEmptyOrder),
		errors.Is(err, services.ErrInvalidSignature):
		utils.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrCustomerNotFound),
		errors.Is(err, services.ErrPaymentNotFound),
		errors.Is(err, services.ErrProductNotFound),
		errors.Is(err, services.ErrInvoiceNotFound),
		errors.Is(err, services.ErrTransactionNotFound),
		errors.Is(err, services.ErrOnlineTransactionNotFound):
		utils.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrBalanceNotSettled):
		utils.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.Error(w, http.StatusUnauthorized, err.Error())
	default:
		utils.Error(w, http.StatusInternalServerError, err.Error())
	}
}

// storeID pulls the authenticated tenant off the request context. The auth
// middleware guarantees it for every protected route.
func storeID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, ok := middleware.GetStoreIDFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "store not resolved")
		return 0, false
	}
	return id, true
}
