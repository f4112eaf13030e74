package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/krbenergy/uco-engine/internal/domain"
	"github.com/krbenergy/uco-engine/internal/service"
	"github.com/krbenergy/uco-engine/pkg/response"
)

type BillHandler struct {
	bills *service.BillService
}

func NewBillHandler(bills *service.BillService) *BillHandler {
	return &BillHandler{bills: bills}
}

// CreateBill handles POST /bills
func (h *BillHandler) CreateBill(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateBillRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	bill, err := h.bills.CreateBill(r.Context(), &request, actorFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}

	response.Created(w, bill)
}

// ListBills handles GET /bills
func (h *BillHandler) ListBills(w http.ResponseWriter, r *http.Request) {
	bills, err := h.bills.ListBills(r.Context(), r.URL.Query().Get("fbo_id"))
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, bills)
}

// ApplyBillPayment handles PATCH /bills/{billId}/payment
func (h *BillHandler) ApplyBillPayment(w http.ResponseWriter, r *http.Request) {
	billID := mux.Vars(r)["billId"]

	var request domain.ApplyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	result, err := h.bills.ApplyBillPayment(r.Context(), billID, &request, actorFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, result)
}
