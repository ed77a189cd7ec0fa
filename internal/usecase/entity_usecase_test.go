package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/govledger/internal/domain"
	"github.com/iho/govledger/internal/usecase"
)

func TestEntityUseCase_CreateEntity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	root, err := f.entityUC.CreateEntity(ctx, usecase.CreateEntityInput{Name: "Holding", Jurisdiction: "US-MAINLAND"})
	require.NoError(t, err)
	assert.Equal(t, domain.EntityStatusActive, root.Status)
	assert.Equal(t, int64(1), root.Version)

	child, err := f.entityUC.CreateEntity(ctx, usecase.CreateEntityInput{Name: "Sub", ParentID: &root.ID})
	require.NoError(t, err)
	require.NotNil(t, child.ParentID)
	assert.Equal(t, root.ID, *child.ParentID)

	missing := "missing"
	tests := []struct {
		name    string
		input   usecase.CreateEntityInput
		wantErr error
	}{
		{name: "empty name", input: usecase.CreateEntityInput{Name: "  "}, wantErr: domain.ErrInvalidName},
		{name: "unknown parent", input: usecase.CreateEntityInput{Name: "x", ParentID: &missing}, wantErr: domain.ErrEntityNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.entityUC.CreateEntity(ctx, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestEntityUseCase_CreateEntity_RepositoryError(t *testing.T) {
	f := newFixture(t)
	f.entities.CreateFunc = func(ctx context.Context, entity *domain.Entity) error {
		return errors.New("database error")
	}

	_, err := f.entityUC.CreateEntity(context.Background(), usecase.CreateEntityInput{Name: "Holding"})
	assert.Error(t, err)
}

func TestEntityUseCase_UpdateEntityStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	e, err := f.entityUC.CreateEntity(ctx, usecase.CreateEntityInput{Name: "Holding"})
	require.NoError(t, err)

	updated, err := f.entityUC.UpdateEntityStatus(ctx, e.ID, domain.EntityStatusSuspended)
	require.NoError(t, err)
	assert.Equal(t, domain.EntityStatusSuspended, updated.Status)
	assert.Equal(t, int64(2), updated.Version)

	got, err := f.entityUC.GetEntity(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EntityStatusSuspended, got.Status)

	_, err = f.entityUC.UpdateEntityStatus(ctx, e.ID, "FROZEN")
	assert.ErrorIs(t, err, domain.ErrInvalidEntityStatus)

	_, err = f.entityUC.UpdateEntityStatus(ctx, "missing", domain.EntityStatusActive)
	assert.ErrorIs(t, err, domain.ErrEntityNotFound)
}

func TestEntityUseCase_ListEntities(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, name := range []string{"A", "B", "C"} {
		_, err := f.entityUC.CreateEntity(ctx, usecase.CreateEntityInput{Name: name})
		require.NoError(t, err)
	}

	all, err := f.entityUC.ListEntities(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	page, err := f.entityUC.ListEntities(ctx, 2, 1)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "B", page[0].Name)
}
