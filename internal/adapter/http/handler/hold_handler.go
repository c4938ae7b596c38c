package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/creditledger/internal/adapter/http/dto"
	"github.com/iho/creditledger/internal/domain"
	"github.com/iho/creditledger/internal/usecase"
)

// HoldHandler handles escrow hold requests.
type HoldHandler struct {
	ledger LedgerService
}

// NewHoldHandler creates a new HoldHandler.
func NewHoldHandler(ledger LedgerService) *HoldHandler {
	return &HoldHandler{ledger: ledger}
}

// Create debits the payer and places a pending hold.
func (h *HoldHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateHoldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := dto.Validate(&req); err != nil {
		writeValidationError(w, err)
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeDomainError(w, "failed to create hold", err)
		return
	}

	holdID, err := h.ledger.TransferWithHold(r.Context(), input)
	if err != nil {
		writeDomainError(w, "failed to create hold", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.HoldCreatedResponse{
		HoldID: holdID,
		Status: string(domain.HoldStatusPending),
	})
}

// Get returns a hold by ID.
func (h *HoldHandler) Get(w http.ResponseWriter, r *http.Request) {
	hold, err := h.ledger.GetHold(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to get hold", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.HoldFromDomain(hold))
}

// ListByUser lists holds placed by a payer.
func (h *HoldHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	query := dto.ListHoldsQuery{
		Status: r.URL.Query().Get("status"),
		Limit:  parseIntQuery(r, "limit", 50),
		Offset: parseIntQuery(r, "offset", 0),
	}
	if err := dto.Validate(&query); err != nil {
		writeValidationError(w, err)
		return
	}

	input := usecase.ListHoldsInput{
		UserID: chi.URLParam(r, "userID"),
		Limit:  query.Limit,
		Offset: query.Offset,
	}
	if query.Status != "" {
		status := domain.HoldStatus(query.Status)
		input.Status = &status
	}

	holds, err := h.ledger.ListHolds(r.Context(), input)
	if err != nil {
		writeDomainError(w, "failed to list holds", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.HoldsFromDomain(holds))
}

// Release captures a pending hold.
func (h *HoldHandler) Release(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.ledger.ReleaseHold(r.Context(), id); err != nil {
		writeDomainError(w, "failed to release hold", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.HoldStatusResponse{HoldID: id, Status: string(domain.HoldStatusCaptured)})
}

// Void cancels a pending hold and refunds the payer.
func (h *HoldHandler) Void(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.ledger.VoidHold(r.Context(), id); err != nil {
		writeDomainError(w, "failed to void hold", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.HoldStatusResponse{HoldID: id, Status: string(domain.HoldStatusVoid)})
}
