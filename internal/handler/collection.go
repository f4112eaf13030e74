package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/krbenergy/uco-engine/internal/domain"
	"github.com/krbenergy/uco-engine/internal/service"
	"github.com/krbenergy/uco-engine/pkg/response"
)

type CollectionHandler struct {
	ledger *service.LedgerService
}

func NewCollectionHandler(ledger *service.LedgerService) *CollectionHandler {
	return &CollectionHandler{ledger: ledger}
}

// CreateCollection handles POST /collections
func (h *CollectionHandler) CreateCollection(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateCollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	collection, err := h.ledger.CreateCollection(r.Context(), &request, actorFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}

	response.Created(w, collection)
}

// ApplyPayment handles PATCH /collections/{collectionId}/payment
func (h *CollectionHandler) ApplyPayment(w http.ResponseWriter, r *http.Request) {
	collectionID := mux.Vars(r)["collectionId"]

	var request domain.ApplyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	result, err := h.ledger.ApplyPayment(r.Context(), collectionID, &request, actorFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, result)
}

// ReviewCollection handles PATCH /collections/{collectionId}/review
func (h *CollectionHandler) ReviewCollection(w http.ResponseWriter, r *http.Request) {
	collectionID := mux.Vars(r)["collectionId"]

	var request domain.ReviewCollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	collection, err := h.ledger.ReviewCollection(r.Context(), collectionID, &request, actorFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, collection)
}

// UpdateCollection handles PUT /collections/{collectionId}
func (h *CollectionHandler) UpdateCollection(w http.ResponseWriter, r *http.Request) {
	collectionID := mux.Vars(r)["collectionId"]

	var request domain.UpdateCollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	collection, err := h.ledger.UpdateCollection(r.Context(), collectionID, &request)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, collection)
}
