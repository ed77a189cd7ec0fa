package handler

import (
	"context"
	"net/http"

	"github.com/iho/govledger/internal/adapter/http/dto"
	"github.com/iho/govledger/internal/domain"
	"github.com/iho/govledger/internal/usecase"
)

// GovernanceService defines the behavior needed by GovernanceHandler.
type GovernanceService interface {
	Evaluate(ctx context.Context, p *domain.Proposal) (*usecase.Decision, error)
	Submit(ctx context.Context, p *domain.Proposal) (*usecase.Decision, error)
}

// GovernanceHandler runs proposals through the gate chain.
type GovernanceHandler struct {
	governanceUC GovernanceService
}

// NewGovernanceHandler creates a new GovernanceHandler.
func NewGovernanceHandler(governanceUC GovernanceService) *GovernanceHandler {
	return &GovernanceHandler{governanceUC: governanceUC}
}

// Submit evaluates a proposal and posts it when approved. A rejection
// answers 422 with every gate reason and the full decision.
func (h *GovernanceHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req dto.ProposalRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	decision, err := h.governanceUC.Submit(r.Context(), req.ToDomain(actor(r)))
	if err != nil {
		status, resp := domainErrorResponse("proposal not executed", err)
		resp.Decision = dto.DecisionFromUseCase(decision)
		writeJSON(w, status, resp)
		return
	}

	writeJSON(w, http.StatusCreated, dto.DecisionFromUseCase(decision))
}

// Evaluate runs the gate chain without posting. Rejections are a normal
// result here and answer 200.
func (h *GovernanceHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req dto.ProposalRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	decision, err := h.governanceUC.Evaluate(r.Context(), req.ToDomain(actor(r)))
	if err != nil {
		writeDomainError(w, "failed to evaluate proposal", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.DecisionFromUseCase(decision))
}
