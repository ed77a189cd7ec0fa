package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/govledger/internal/domain"
)

const entityColumns = `id, name, parent_id, jurisdiction, risk_appetite_profile, capital_buffer_ref, status, version, created_at, updated_at`

// EntityRepository implements usecase.EntityRepository.
type EntityRepository struct {
	db DBTX
}

// NewEntityRepository creates a new EntityRepository.
func NewEntityRepository(pool *pgxpool.Pool) *EntityRepository {
	return newEntityRepository(pool)
}

func newEntityRepository(db DBTX) *EntityRepository {
	return &EntityRepository{db: db}
}

// Create inserts a new entity.
func (r *EntityRepository) Create(ctx context.Context, entity *domain.Entity) error {
	query := `
		INSERT INTO entities (` + entityColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Exec(ctx, query,
		entity.ID,
		entity.Name,
		entity.ParentID,
		entity.Jurisdiction,
		entity.RiskAppetiteProfile,
		entity.CapitalBufferRef,
		string(entity.Status),
		entity.Version,
		entity.CreatedAt,
		entity.UpdatedAt,
	)

	return err
}

// GetByID retrieves an entity by ID.
func (r *EntityRepository) GetByID(ctx context.Context, id string) (*domain.Entity, error) {
	query := `SELECT ` + entityColumns + ` FROM entities WHERE id = $1`

	entity, err := scanEntity(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrEntityNotFound, id)
	}

	return entity, err
}

// UpdateStatus persists status and version.
func (r *EntityRepository) UpdateStatus(ctx context.Context, entity *domain.Entity) error {
	query := `
		UPDATE entities
		SET status = $2, version = $3, updated_at = $4
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, entity.ID, string(entity.Status), entity.Version, entity.UpdatedAt)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrEntityNotFound, entity.ID)
	}

	return nil
}

// List retrieves entities in creation order.
func (r *EntityRepository) List(ctx context.Context, limit, offset int) ([]*domain.Entity, error) {
	query := `SELECT ` + entityColumns + ` FROM entities ORDER BY created_at, id LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entities []*domain.Entity
	for rows.Next() {
		entity, err := scanEntity(rows)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}

	return entities, rows.Err()
}

func scanEntity(row pgx.Row) (*domain.Entity, error) {
	var (
		e        domain.Entity
		parentID pgtype.Text
		status   string
	)

	err := row.Scan(
		&e.ID,
		&e.Name,
		&parentID,
		&e.Jurisdiction,
		&e.RiskAppetiteProfile,
		&e.CapitalBufferRef,
		&status,
		&e.Version,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if parentID.Valid {
		e.ParentID = &parentID.String
	}
	e.Status = domain.EntityStatus(status)

	return &e, nil
}
