package usecase

import (
	"context"
	"time"

	"github.com/iho/govledger/internal/domain"
)

// EntityUseCase handles entity business logic.
type EntityUseCase struct {
	entityRepo EntityRepository
	idGen      IDGenerator
}

// NewEntityUseCase creates a new EntityUseCase.
func NewEntityUseCase(entityRepo EntityRepository, idGen IDGenerator) *EntityUseCase {
	return &EntityUseCase{
		entityRepo: entityRepo,
		idGen:      idGen,
	}
}

// CreateEntityInput represents input for creating an entity.
type CreateEntityInput struct {
	Name                string
	ParentID            *string
	Jurisdiction        string
	RiskAppetiteProfile string
	CapitalBufferRef    string
}

// CreateEntity creates a new ACTIVE entity. The parent, when given, must
// exist and its chain must not loop.
func (uc *EntityUseCase) CreateEntity(ctx context.Context, input CreateEntityInput) (*domain.Entity, error) {
	if err := domain.ValidateName(input.Name); err != nil {
		return nil, err
	}

	id := uc.idGen.Generate()

	err := domain.CheckParentChain(id, input.ParentID, func(parentID string) (*domain.Entity, error) {
		return uc.entityRepo.GetByID(ctx, parentID)
	})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	entity := &domain.Entity{
		ID:                  id,
		Name:                input.Name,
		ParentID:            input.ParentID,
		Jurisdiction:        input.Jurisdiction,
		RiskAppetiteProfile: input.RiskAppetiteProfile,
		CapitalBufferRef:    input.CapitalBufferRef,
		Status:              domain.EntityStatusActive,
		Version:             1,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := uc.entityRepo.Create(ctx, entity); err != nil {
		return nil, err
	}

	return entity, nil
}

// GetEntity retrieves an entity by ID.
func (uc *EntityUseCase) GetEntity(ctx context.Context, id string) (*domain.Entity, error) {
	return uc.entityRepo.GetByID(ctx, id)
}

// ListEntities lists entities with pagination.
func (uc *EntityUseCase) ListEntities(ctx context.Context, limit, offset int) ([]*domain.Entity, error) {
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.entityRepo.List(ctx, limit, offset)
}

// UpdateEntityStatus flips the status and bumps the version.
func (uc *EntityUseCase) UpdateEntityStatus(ctx context.Context, id string, status domain.EntityStatus) (*domain.Entity, error) {
	entity, err := uc.entityRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := entity.SetStatus(status, time.Now().UTC()); err != nil {
		return nil, err
	}

	if err := uc.entityRepo.UpdateStatus(ctx, entity); err != nil {
		return nil, err
	}

	return entity, nil
}
