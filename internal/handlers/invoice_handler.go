package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"shop-backend/internal/models"
	"shop-backend/internal/services"
	"shop-backend/pkg/utils"
)

type InvoiceHandler struct {
	Service *services.InvoiceService
}

func NewInvoiceHandler(s *services.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{Service: s}
}

func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	sid, ok := storeID(w, r)
	if !ok {
		return
	}

	var req models.CreateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	invoice, err := h.Service.Create(r.Context(), sid, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, invoice)
}

func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	sid, ok := storeID(w, r)
	if !ok {
		return
	}
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	invoice, err := h.Service.Get(r.Context(), sid, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, invoice)
}

func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	sid, ok := storeID(w, r)
	if !ok {
		return
	}

	invoices, err := h.Service.List(r.Context(), sid)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, invoices)
}

// Pay settles part or all of the invoice through the ledger
func (h *InvoiceHandler) Pay(w http.ResponseWriter, r *http.Request) {
	sid, ok := storeID(w, r)
	if !ok {
		return
	}
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	var req struct {
		Amount float64              `json:"amount"`
		Method models.PaymentMethod `json:"payment_method"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, invoice, err := h.Service.RecordPayment(r.Context(), sid, id, req.Amount, req.Method)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, map[string]interface{}{
		"ledger":  result,
		"invoice": invoice,
	})
}

func (h *InvoiceHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	sid, ok := storeID(w, r)
	if !ok {
		return
	}
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	if err := h.Service.Cancel(r.Context(), sid, id); err != nil {
		respondServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]interface{}{"id": id, "status": models.InvoiceStatusCancelled})
}
