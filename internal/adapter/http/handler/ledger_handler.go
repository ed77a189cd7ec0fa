package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/govledger/internal/adapter/http/dto"
	"github.com/iho/govledger/internal/domain"
	"github.com/iho/govledger/internal/usecase"
)

// LedgerService defines the behavior needed by LedgerHandler.
type LedgerService interface {
	OpenLedger(ctx context.Context, input usecase.OpenLedgerInput) (*domain.Ledger, error)
	GetLedger(ctx context.Context, id string) (*domain.Ledger, error)
	LockLedger(ctx context.Context, ledgerID string) (*domain.Ledger, error)
	ListJournalEntries(ctx context.Context, ledgerID string, limit, offset int) ([]*domain.JournalEntry, error)
	VerifyChain(ctx context.Context, ledgerID string) (*usecase.ChainVerification, error)
}

// LedgerHandler handles ledger lifecycle requests.
type LedgerHandler struct {
	ledgerUC LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC}
}

// Open opens a ledger for a reporting period.
func (h *LedgerHandler) Open(w http.ResponseWriter, r *http.Request) {
	var req dto.OpenLedgerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ledger, err := h.ledgerUC.OpenLedger(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, "failed to open ledger", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.LedgerFromDomain(ledger))
}

// Get retrieves a ledger by ID.
func (h *LedgerHandler) Get(w http.ResponseWriter, r *http.Request) {
	ledger, err := h.ledgerUC.GetLedger(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to get ledger", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LedgerFromDomain(ledger))
}

// Lock closes the ledger period. Locking twice answers 409.
func (h *LedgerHandler) Lock(w http.ResponseWriter, r *http.Request) {
	ledger, err := h.ledgerUC.LockLedger(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to lock ledger", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LedgerFromDomain(ledger))
}

// Entries lists the ledger's journal entries in posting order.
func (h *LedgerHandler) Entries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.ledgerUC.ListJournalEntries(r.Context(), chi.URLParam(r, "id"),
		parseIntQuery(r, "limit", 50), parseIntQuery(r, "offset", 0))
	if err != nil {
		writeDomainError(w, "failed to list journal entries", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.JournalEntriesFromDomain(entries))
}

// Verify re-derives the ledger's event hash chain. A broken chain is
// reported in the body with status 200.
func (h *LedgerHandler) Verify(w http.ResponseWriter, r *http.Request) {
	result, err := h.ledgerUC.VerifyChain(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to verify chain", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ChainVerificationFromUseCase(result))
}
