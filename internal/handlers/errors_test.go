package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"shop-backend/internal/models"
	"shop-backend/internal/services"
)

func TestRespondServiceErrorStatuses(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{services.ErrInvalidAmount, http.StatusBadRequest},
		{services.ErrEmptyOrder, http.StatusBadRequest},
		{services.ErrInvalidSignature, http.StatusBadRequest},
		{services.ErrCustomerNotFound, http.StatusNotFound},
		{services.ErrPaymentNotFound, http.StatusNotFound},
		{services.ErrInvoiceNotFound, http.StatusNotFound},
		{services.ErrBalanceNotSettled, http.StatusConflict},
		{services.ErrInvalidCredentials, http.StatusUnauthorized},
		{errors.New("boom"), http.StatusInternalServerError},
		// Wrapped sentinels must still map.
		{fmt.Errorf("append ledger entry: %w", services.ErrCustomerNotFound), http.StatusNotFound},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		respondServiceError(rec, tc.err)
		if rec.Code != tc.want {
			t.Errorf("respondServiceError(%v) status = %d, want %d", tc.err, rec.Code, tc.want)
		}
	}
}

func TestRespondServiceErrorPartialCheckout(t *testing.T) {
	order := &models.Order{ID: 9, OrderNumber: "ORD-1", TotalAmount: 100}
	err := &services.PartialCheckoutError{Order: order, Step: "debt", Err: errors.New("connection reset")}

	rec := httptest.NewRecorder()
	respondServiceError(rec, err)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusConflict)
	}

	var body struct {
		Error string        `json:"error"`
		Code  string        `json:"code"`
		Order *models.Order `json:"order"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if body.Code != "partial_checkout" {
		t.Errorf("code = %q, want partial_checkout", body.Code)
	}
	if body.Order == nil || body.Order.ID != 9 {
		t.Errorf("response does not carry the committed order: %+v", body.Order)
	}
}
