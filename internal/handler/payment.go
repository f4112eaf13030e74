package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/krbenergy/uco-engine/internal/domain"
	"github.com/krbenergy/uco-engine/internal/service"
	"github.com/krbenergy/uco-engine/pkg/response"
)

type PaymentHandler struct {
	payments *service.PaymentService
}

func NewPaymentHandler(payments *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// ProcessBulkPayment handles POST /payments/process
func (h *PaymentHandler) ProcessBulkPayment(w http.ResponseWriter, r *http.Request) {
	var request domain.ProcessBulkPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	payment, err := h.payments.ProcessBulkPayment(r.Context(), &request, actorFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}

	response.Created(w, payment)
}

// UpdateStatus handles PATCH /payments/{paymentId}/status
func (h *PaymentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	paymentID := mux.Vars(r)["paymentId"]

	var request domain.UpdatePaymentStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	payment, err := h.payments.UpdateStatus(r.Context(), paymentID, &request)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, payment)
}
