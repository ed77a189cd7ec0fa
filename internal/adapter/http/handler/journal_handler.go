package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/govledger/internal/adapter/http/dto"
	"github.com/iho/govledger/internal/domain"
	"github.com/iho/govledger/internal/usecase"
)

// PostingService defines the behavior needed by JournalHandler.
type PostingService interface {
	Post(ctx context.Context, input usecase.PostInput) (*usecase.PostResult, error)
	Reverse(ctx context.Context, journalID, actor string) (*usecase.PostResult, error)
}

// JournalReader loads single journal entries.
type JournalReader interface {
	GetJournalEntry(ctx context.Context, id string) (*domain.JournalEntry, error)
}

// JournalHandler handles direct postings and reversals.
type JournalHandler struct {
	posting PostingService
	reader  JournalReader
}

// NewJournalHandler creates a new JournalHandler.
func NewJournalHandler(posting PostingService, reader JournalReader) *JournalHandler {
	return &JournalHandler{posting: posting, reader: reader}
}

// Post posts a journal entry directly to the transaction engine. The
// engine refuses governed event types here.
func (h *JournalHandler) Post(w http.ResponseWriter, r *http.Request) {
	var req dto.PostJournalRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.posting.Post(r.Context(), req.ToUseCaseInput(actor(r)))
	if err != nil {
		writeDomainError(w, "failed to post journal entry", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.PostingFromUseCase(result))
}

// Get retrieves a journal entry by ID.
func (h *JournalHandler) Get(w http.ResponseWriter, r *http.Request) {
	entry, err := h.reader.GetJournalEntry(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to get journal entry", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.JournalEntryFromDomain(entry))
}

// Reverse posts the mirror of a journal entry.
func (h *JournalHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	result, err := h.posting.Reverse(r.Context(), chi.URLParam(r, "id"), actor(r))
	if err != nil {
		writeDomainError(w, "failed to reverse journal entry", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.PostingFromUseCase(result))
}
