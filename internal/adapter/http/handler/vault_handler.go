package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/govledger/internal/adapter/http/dto"
	"github.com/iho/govledger/internal/domain"
	"github.com/iho/govledger/internal/usecase"
)

// VaultService defines the behavior needed by VaultHandler.
type VaultService interface {
	Create(ctx context.Context, input usecase.CreateVaultProposalInput) (*domain.SignatureProposal, error)
	Get(ctx context.Context, id string) (*domain.SignatureProposal, error)
	Sign(ctx context.Context, input usecase.SignInput) (*domain.SignatureProposal, error)
}

// VaultHandler handles multi-signature proposals.
type VaultHandler struct {
	vaultUC VaultService
}

// NewVaultHandler creates a new VaultHandler.
func NewVaultHandler(vaultUC VaultService) *VaultHandler {
	return &VaultHandler{vaultUC: vaultUC}
}

// Create opens a signature proposal.
func (h *VaultHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateVaultProposalRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := h.vaultUC.Create(r.Context(), req.ToUseCaseInput(actor(r)))
	if err != nil {
		writeDomainError(w, "failed to create vault proposal", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.VaultProposalFromDomain(p))
}

// Get retrieves a signature proposal.
func (h *VaultHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.vaultUC.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to get vault proposal", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.VaultProposalFromDomain(p))
}

// Sign records a signature. The signer defaults to the calling operator.
func (h *VaultHandler) Sign(w http.ResponseWriter, r *http.Request) {
	var req dto.SignRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	signer := req.Signer
	if signer == "" {
		signer = actor(r)
	}

	p, err := h.vaultUC.Sign(r.Context(), usecase.SignInput{
		ProposalID: chi.URLParam(r, "id"),
		Signer:     signer,
		Credential: req.Credential,
	})
	if err != nil {
		writeDomainError(w, "failed to sign vault proposal", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.VaultProposalFromDomain(p))
}
