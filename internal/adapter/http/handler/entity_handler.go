package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/govledger/internal/adapter/http/dto"
	"github.com/iho/govledger/internal/domain"
	"github.com/iho/govledger/internal/usecase"
)

// EntityService defines the behavior needed by EntityHandler.
type EntityService interface {
	CreateEntity(ctx context.Context, input usecase.CreateEntityInput) (*domain.Entity, error)
	GetEntity(ctx context.Context, id string) (*domain.Entity, error)
	ListEntities(ctx context.Context, limit, offset int) ([]*domain.Entity, error)
	UpdateEntityStatus(ctx context.Context, id string, status domain.EntityStatus) (*domain.Entity, error)
}

// BalanceSheetService builds entity balance sheets.
type BalanceSheetService interface {
	BalanceSheet(ctx context.Context, entityID string) (*usecase.BalanceSheet, error)
}

// EntityHandler handles entity-related HTTP requests.
type EntityHandler struct {
	entityUC EntityService
	sheets   BalanceSheetService
}

// NewEntityHandler creates a new EntityHandler.
func NewEntityHandler(entityUC EntityService, sheets BalanceSheetService) *EntityHandler {
	return &EntityHandler{entityUC: entityUC, sheets: sheets}
}

// Create registers a new entity.
func (h *EntityHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateEntityRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	entity, err := h.entityUC.CreateEntity(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, "failed to create entity", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.EntityFromDomain(entity))
}

// Get retrieves an entity by ID.
func (h *EntityHandler) Get(w http.ResponseWriter, r *http.Request) {
	entity, err := h.entityUC.GetEntity(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to get entity", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.EntityFromDomain(entity))
}

// List lists entities.
func (h *EntityHandler) List(w http.ResponseWriter, r *http.Request) {
	entities, err := h.entityUC.ListEntities(r.Context(), parseIntQuery(r, "limit", 20), parseIntQuery(r, "offset", 0))
	if err != nil {
		writeDomainError(w, "failed to list entities", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.EntitiesFromDomain(entities))
}

// UpdateStatus changes an entity's lifecycle status.
func (h *EntityHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateEntityStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	entity, err := h.entityUC.UpdateEntityStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeDomainError(w, "failed to update entity", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.EntityFromDomain(entity))
}

// BalanceSheet returns the entity's balance sheet.
func (h *EntityHandler) BalanceSheet(w http.ResponseWriter, r *http.Request) {
	sheet, err := h.sheets.BalanceSheet(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to build balance sheet", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceSheetFromUseCase(sheet))
}
