package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/iho/govledger/internal/domain"
)

// AccountUseCase handles account business logic.
type AccountUseCase struct {
	accountRepo AccountRepository
	entityRepo  EntityRepository
	idGen       IDGenerator
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(accountRepo AccountRepository, entityRepo EntityRepository, idGen IDGenerator) *AccountUseCase {
	return &AccountUseCase{
		accountRepo: accountRepo,
		entityRepo:  entityRepo,
		idGen:       idGen,
	}
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	EntityID        string
	Name            string
	Type            domain.AccountType
	Currency        string
	RiskCategory    string
	LiquidityClass  string
	ParentAccountID *string
}

// CreateAccount creates a new active account owned by an existing entity.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	if err := domain.ValidateName(input.Name); err != nil {
		return nil, err
	}

	if !input.Type.IsValid() {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidAccountType, input.Type)
	}

	currency := domain.NormalizeCurrency(input.Currency)
	if err := domain.ValidateCurrency(currency); err != nil {
		return nil, err
	}

	if _, err := uc.entityRepo.GetByID(ctx, input.EntityID); err != nil {
		return nil, err
	}

	if input.ParentAccountID != nil {
		parent, err := uc.accountRepo.GetByID(ctx, *input.ParentAccountID)
		if err != nil {
			return nil, err
		}

		if parent.EntityID != input.EntityID {
			return nil, fmt.Errorf("%w: parent account belongs to another entity", domain.ErrAccountMismatch)
		}
	}

	now := time.Now().UTC()

	account := &domain.Account{
		ID:              uc.idGen.Generate(),
		EntityID:        input.EntityID,
		Name:            input.Name,
		Type:            input.Type,
		Currency:        currency,
		RiskCategory:    input.RiskCategory,
		LiquidityClass:  input.LiquidityClass,
		ParentAccountID: input.ParentAccountID,
		Active:          true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := uc.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	return account, nil
}

// GetAccount retrieves an account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, id)
}

// ListAccountsInput represents input for listing accounts.
type ListAccountsInput struct {
	EntityID string
	Limit    int
	Offset   int
}

// ListAccounts lists the accounts of one entity with pagination.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, input ListAccountsInput) ([]*domain.Account, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.accountRepo.ListByEntity(ctx, input.EntityID, limit, offset)
}

// DeactivateAccount stops further postings to an account. Accounts are never deleted.
func (uc *AccountUseCase) DeactivateAccount(ctx context.Context, id string) (*domain.Account, error) {
	account, err := uc.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !account.Active {
		return account, nil
	}

	now := time.Now().UTC()
	if err := uc.accountRepo.Deactivate(ctx, id, now); err != nil {
		return nil, err
	}

	account.Active = false
	account.UpdatedAt = now

	return account, nil
}
