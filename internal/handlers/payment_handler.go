package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"shop-backend/internal/models"
	"shop-backend/internal/services"
	"shop-backend/pkg/utils"
)

// PaymentHandler exposes the ledger: recording payments and debts, reversing
// entries, listing history and verifying balance consistency.
type PaymentHandler struct {
	Ledger *services.LedgerService
}

func NewPaymentHandler(ledger *services.LedgerService) *PaymentHandler {
	return &PaymentHandler{Ledger: ledger}
}

func (h *PaymentHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	sid, ok := storeID(w, r)
	if !ok {
		return
	}

	var req models.CreatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.Ledger.RecordPayment(r.Context(), sid, req.CustomerID, req.Amount, req.Method, services.EntryOptions{
		InvoiceID: req.InvoiceID,
		Notes:     req.Notes,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, result)
}

func (h *PaymentHandler) RecordDebt(w http.ResponseWriter, r *http.Request) {
	sid, ok := storeID(w, r)
	if !ok {
		return
	}

	var req models.CreatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.Ledger.RecordDebt(r.Context(), sid, req.CustomerID, req.Amount, services.EntryOptions{
		Method:    req.Method,
		InvoiceID: req.InvoiceID,
		Notes:     req.Notes,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, result)
}

// Reverse appends a compensating entry for an existing payment
func (h *PaymentHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	sid, ok := storeID(w, r)
	if !ok {
		return
	}
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	result, err := h.Ledger.ReverseEntry(r.Context(), sid, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, result)
}

func (h *PaymentHandler) Get(w http.ResponseWriter, r *http.Request) {
	sid, ok := storeID(w, r)
	if !ok {
		return
	}
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	payment, err := h.Ledger.GetPayment(r.Context(), sid, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, payment)
}

func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	sid, ok := storeID(w, r)
	if !ok {
		return
	}

	filter := paymentFilterFromQuery(r)
	payments, err := h.Ledger.ListPayments(r.Context(), sid, filter)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, payments)
}

// VerifyBalances reports customers whose cached balance disagrees with their
// payment history. An empty list means the ledger is consistent.
func (h *PaymentHandler) VerifyBalances(w http.ResponseWriter, r *http.Request) {
	sid, ok := storeID(w, r)
	if !ok {
		return
	}

	ids, err := h.Ledger.VerifyBalances(r.Context(), sid)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"consistent":           len(ids) == 0,
		"mismatched_customers": ids,
	})
}

func paymentFilterFromQuery(r *http.Request) *models.PaymentFilter {
	q := r.URL.Query()
	filter := &models.PaymentFilter{}
	filter.CustomerID, _ = strconv.Atoi(q.Get("customer_id"))
	filter.InvoiceID, _ = strconv.Atoi(q.Get("invoice_id"))
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))
	filter.Offset, _ = strconv.Atoi(q.Get("offset"))
	if v := q.Get("start_date"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			filter.StartDate = &t
		}
	}
	if v := q.Get("end_date"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			end := t.Add(24*time.Hour - time.Nanosecond)
			filter.EndDate = &end
		}
	}
	return filter
}
