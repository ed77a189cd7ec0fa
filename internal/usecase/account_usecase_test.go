package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/govledger/internal/domain"
	"github.com/iho/govledger/internal/usecase"
)

func TestAccountUseCase_CreateAccount(t *testing.T) {
	f := newFixture(t)
	b := f.genesis(t)
	other := f.genesis(t)

	tests := []struct {
		name    string
		input   usecase.CreateAccountInput
		wantErr error
	}{
		{
			name:  "valid asset",
			input: usecase.CreateAccountInput{EntityID: b.entity.ID, Name: "Reserve", Type: domain.AccountTypeAsset, Currency: " usd "},
		},
		{
			name:  "valid child account",
			input: usecase.CreateAccountInput{EntityID: b.entity.ID, Name: "Petty", Type: domain.AccountTypeAsset, Currency: "IDR", ParentAccountID: &b.cash.ID},
		},
		{
			name:    "empty name",
			input:   usecase.CreateAccountInput{EntityID: b.entity.ID, Name: "", Type: domain.AccountTypeAsset, Currency: "IDR"},
			wantErr: domain.ErrInvalidName,
		},
		{
			name:    "unknown type",
			input:   usecase.CreateAccountInput{EntityID: b.entity.ID, Name: "x", Type: "CONTRA", Currency: "IDR"},
			wantErr: domain.ErrInvalidAccountType,
		},
		{
			name:    "unsupported currency",
			input:   usecase.CreateAccountInput{EntityID: b.entity.ID, Name: "x", Type: domain.AccountTypeAsset, Currency: "XYZ"},
			wantErr: domain.ErrInvalidCurrency,
		},
		{
			name:    "unknown entity",
			input:   usecase.CreateAccountInput{EntityID: "missing", Name: "x", Type: domain.AccountTypeAsset, Currency: "IDR"},
			wantErr: domain.ErrEntityNotFound,
		},
		{
			name:    "parent from another entity",
			input:   usecase.CreateAccountInput{EntityID: b.entity.ID, Name: "x", Type: domain.AccountTypeAsset, Currency: "IDR", ParentAccountID: &other.cash.ID},
			wantErr: domain.ErrAccountMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc, err := f.accountUC.CreateAccount(context.Background(), tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, acc)
				return
			}

			require.NoError(t, err)
			assert.True(t, acc.Active)
			assert.Equal(t, domain.NormalizeCurrency(tt.input.Currency), acc.Currency)
		})
	}
}

func TestAccountUseCase_ListAccounts(t *testing.T) {
	f := newFixture(t)
	b := f.genesis(t)
	f.genesis(t)

	accounts, err := f.accountUC.ListAccounts(context.Background(), usecase.ListAccountsInput{EntityID: b.entity.ID})
	require.NoError(t, err)
	assert.Len(t, accounts, 5)

	for _, a := range accounts {
		assert.Equal(t, b.entity.ID, a.EntityID)
	}
}

func TestAccountUseCase_DeactivateAccount(t *testing.T) {
	f := newFixture(t)
	b := f.genesis(t)
	ctx := context.Background()

	acc, err := f.accountUC.DeactivateAccount(ctx, b.cash.ID)
	require.NoError(t, err)
	assert.False(t, acc.Active)

	again, err := f.accountUC.DeactivateAccount(ctx, b.cash.ID)
	require.NoError(t, err)
	assert.False(t, again.Active)

	got, err := f.accountUC.GetAccount(ctx, b.cash.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)

	_, err = f.accountUC.DeactivateAccount(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}
