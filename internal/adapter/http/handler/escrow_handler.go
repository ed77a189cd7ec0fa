package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/govledger/internal/adapter/http/dto"
	"github.com/iho/govledger/internal/domain"
	"github.com/iho/govledger/internal/usecase"
)

// EscrowService defines the behavior needed by EscrowHandler.
type EscrowService interface {
	CreateContract(ctx context.Context, input usecase.CreateContractInput) (*domain.EscrowContract, error)
	Get(ctx context.Context, id string) (*domain.EscrowContract, error)
	DefineMilestone(ctx context.Context, contractID, phase string, percentage decimal.Decimal) (*domain.Milestone, error)
	VerifyAndRelease(ctx context.Context, input usecase.ReleaseInput) (*usecase.ReleaseResult, error)
}

// EscrowHandler handles escrow contracts and milestone releases.
type EscrowHandler struct {
	escrowUC EscrowService
}

// NewEscrowHandler creates a new EscrowHandler.
func NewEscrowHandler(escrowUC EscrowService) *EscrowHandler {
	return &EscrowHandler{escrowUC: escrowUC}
}

// Create opens an escrow contract.
func (h *EscrowHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateEscrowRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	contract, err := h.escrowUC.CreateContract(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, "failed to create escrow", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.EscrowFromDomain(contract))
}

// Get retrieves an escrow contract with its milestones.
func (h *EscrowHandler) Get(w http.ResponseWriter, r *http.Request) {
	contract, err := h.escrowUC.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to get escrow", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.EscrowFromDomain(contract))
}

// DefineMilestone appends a milestone to the contract.
func (h *EscrowHandler) DefineMilestone(w http.ResponseWriter, r *http.Request) {
	var req dto.DefineMilestoneRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	m, err := h.escrowUC.DefineMilestone(r.Context(), chi.URLParam(r, "id"), req.Phase, req.Percentage)
	if err != nil {
		writeDomainError(w, "failed to define milestone", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.MilestoneFromDomain(m))
}

// Release releases a milestone. The release stands even when governance
// rejects the payout; the rejection is reported in governance_error.
func (h *EscrowHandler) Release(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid milestone index", err.Error())
		return
	}

	var req dto.ReleaseMilestoneRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.escrowUC.VerifyAndRelease(r.Context(), req.ToUseCaseInput(chi.URLParam(r, "id"), index, actor(r)))
	if err != nil {
		writeDomainError(w, "failed to release milestone", err)
		return
	}

	resp := dto.ReleaseResponse{
		Contract:  dto.EscrowFromDomain(result.Contract),
		Milestone: dto.MilestoneFromDomain(result.Milestone),
		Decision:  dto.DecisionFromUseCase(result.Decision),
	}
	if result.GovernanceErr != nil {
		resp.Governance = errorResponse("payout not posted", result.GovernanceErr)
	}

	writeJSON(w, http.StatusOK, resp)
}
