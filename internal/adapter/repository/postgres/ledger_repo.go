package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/govledger/internal/domain"
	"github.com/iho/govledger/internal/usecase"
)

const ledgerColumns = `id, entity_id, period_start, period_end, opening_balance_hash, closing_balance_hash, head_hash, status, created_at, updated_at, locked_at`

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	db DBTX
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return newLedgerRepository(pool)
}

func newLedgerRepository(db DBTX) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Create inserts a new ledger.
func (r *LedgerRepository) Create(ctx context.Context, ledger *domain.Ledger) error {
	query := `
		INSERT INTO ledgers (` + ledgerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.Exec(ctx, query,
		ledger.ID,
		ledger.EntityID,
		ledger.PeriodStart,
		ledger.PeriodEnd,
		ledger.OpeningBalanceHash,
		ledger.ClosingBalanceHash,
		ledger.HeadHash,
		string(ledger.Status),
		ledger.CreatedAt,
		ledger.UpdatedAt,
		optionalTime(ledger.LockedAt),
	)

	return err
}

// GetByID retrieves a ledger by ID.
func (r *LedgerRepository) GetByID(ctx context.Context, id string) (*domain.Ledger, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledgers WHERE id = $1`

	return r.get(ctx, r.db, query, id)
}

// GetByIDForUpdate retrieves a ledger and holds its row lock until tx ends.
func (r *LedgerRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Ledger, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledgers WHERE id = $1 FOR UPDATE`

	return r.get(ctx, querier(r.db, tx), query, id)
}

// UpdateHead moves the ledger head to the latest event hash.
func (r *LedgerRepository) UpdateHead(ctx context.Context, tx usecase.Transaction, id, headHash string, updatedAt time.Time) error {
	query := `UPDATE ledgers SET head_hash = $2, updated_at = $3 WHERE id = $1 AND status <> 'LOCKED'`

	tag, err := querier(r.db, tx).Exec(ctx, query, id, headHash, updatedAt)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrLedgerLocked, id)
	}

	return nil
}

// Lock persists the LOCKED status and closing hash. The row must not
// already be locked.
func (r *LedgerRepository) Lock(ctx context.Context, tx usecase.Transaction, ledger *domain.Ledger) error {
	query := `
		UPDATE ledgers
		SET status = $2, closing_balance_hash = $3, updated_at = $4, locked_at = $5
		WHERE id = $1 AND status <> 'LOCKED'
	`

	tag, err := querier(r.db, tx).Exec(ctx, query,
		ledger.ID,
		string(ledger.Status),
		ledger.ClosingBalanceHash,
		ledger.UpdatedAt,
		optionalTime(ledger.LockedAt),
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrLedgerLocked, ledger.ID)
	}

	return nil
}

func (r *LedgerRepository) get(ctx context.Context, db DBTX, query, id string) (*domain.Ledger, error) {
	var (
		l        domain.Ledger
		status   string
		lockedAt pgtype.Timestamptz
	)

	err := db.QueryRow(ctx, query, id).Scan(
		&l.ID,
		&l.EntityID,
		&l.PeriodStart,
		&l.PeriodEnd,
		&l.OpeningBalanceHash,
		&l.ClosingBalanceHash,
		&l.HeadHash,
		&status,
		&l.CreatedAt,
		&l.UpdatedAt,
		&lockedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrLedgerNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	l.Status = domain.LedgerStatus(status)
	l.LockedAt = timePtr(lockedAt)

	return &l, nil
}
