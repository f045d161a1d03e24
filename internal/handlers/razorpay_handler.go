package handlers

import (
	"encoding/json"
	"net/http"

	"shop-backend/internal/models"
	"shop-backend/internal/services"
	"shop-backend/pkg/utils"
)

type RazorpayHandler struct {
	Service *services.RazorpayService
}

func NewRazorpayHandler(s *services.RazorpayService) *RazorpayHandler {
	return &RazorpayHandler{Service: s}
}

// CreateOrder registers a gateway payment attempt for a customer
func (h *RazorpayHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	sid, ok := storeID(w, r)
	if !ok {
		return
	}

	var req models.CreateOnlinePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	txn, keyID, err := h.Service.CreateOrder(r.Context(), sid, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, map[string]interface{}{
		"transaction": txn,
		"key_id":      keyID,
	})
}

// Verify checks the gateway signature and settles the payment to the ledger
func (h *RazorpayHandler) Verify(w http.ResponseWriter, r *http.Request) {
	sid, ok := storeID(w, r)
	if !ok {
		return
	}

	var req models.VerifyOnlinePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	txn, err := h.Service.VerifyAndSettle(r.Context(), sid, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, txn)
}
