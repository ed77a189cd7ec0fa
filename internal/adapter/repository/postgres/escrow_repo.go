package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/govledger/internal/domain"
	"github.com/iho/govledger/internal/usecase"
)

const contractColumns = `id, project_name, total_budget, locked_funds, released_funds, currency, ledger_id, funding_account_id, payout_account_id, created_at, updated_at`

// EscrowRepository implements usecase.EscrowRepository.
type EscrowRepository struct {
	db DBTX
}

// NewEscrowRepository creates a new EscrowRepository.
func NewEscrowRepository(pool *pgxpool.Pool) *EscrowRepository {
	return newEscrowRepository(pool)
}

func newEscrowRepository(db DBTX) *EscrowRepository {
	return &EscrowRepository{db: db}
}

// Create inserts a new contract. Milestones are added through Update.
func (r *EscrowRepository) Create(ctx context.Context, contract *domain.EscrowContract) error {
	query := `
		INSERT INTO escrow_contracts (` + contractColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.Exec(ctx, query,
		contract.ID,
		contract.ProjectName,
		decimalToNumeric(contract.TotalBudget),
		decimalToNumeric(contract.LockedFunds),
		decimalToNumeric(contract.ReleasedFunds),
		contract.Currency,
		contract.LedgerID,
		contract.FundingAccountID,
		contract.PayoutAccountID,
		contract.CreatedAt,
		contract.UpdatedAt,
	)

	return err
}

// GetByID retrieves a contract with its milestones.
func (r *EscrowRepository) GetByID(ctx context.Context, id string) (*domain.EscrowContract, error) {
	query := `SELECT ` + contractColumns + ` FROM escrow_contracts WHERE id = $1`

	return r.get(ctx, r.db, query, id)
}

// GetByIDForUpdate retrieves a contract and locks it until tx ends.
func (r *EscrowRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.EscrowContract, error) {
	query := `SELECT ` + contractColumns + ` FROM escrow_contracts WHERE id = $1 FOR UPDATE`

	return r.get(ctx, querier(r.db, tx), query, id)
}

// Update persists fund totals and upserts milestones.
func (r *EscrowRepository) Update(ctx context.Context, tx usecase.Transaction, contract *domain.EscrowContract) error {
	db := querier(r.db, tx)

	query := `
		UPDATE escrow_contracts
		SET locked_funds = $2, released_funds = $3, updated_at = $4
		WHERE id = $1
	`

	tag, err := db.Exec(ctx, query,
		contract.ID,
		decimalToNumeric(contract.LockedFunds),
		decimalToNumeric(contract.ReleasedFunds),
		contract.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrContractNotFound, contract.ID)
	}

	milestoneQuery := `
		INSERT INTO escrow_milestones (contract_id, idx, phase, percentage, allocation, status, auditor, proof_hash, released_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (contract_id, idx) DO UPDATE
		SET status = EXCLUDED.status,
			auditor = EXCLUDED.auditor,
			proof_hash = EXCLUDED.proof_hash,
			released_at = EXCLUDED.released_at
	`

	for _, m := range contract.Milestones {
		_, err := db.Exec(ctx, milestoneQuery,
			contract.ID,
			m.Index,
			m.Phase,
			decimalToNumeric(m.Percentage),
			decimalToNumeric(m.Allocation),
			string(m.Status),
			m.Auditor,
			m.ProofHash,
			optionalTime(m.ReleasedAt),
		)
		if err != nil {
			return fmt.Errorf("upsert milestone %d: %w", m.Index, err)
		}
	}

	return nil
}

func (r *EscrowRepository) get(ctx context.Context, db DBTX, query, id string) (*domain.EscrowContract, error) {
	var (
		c                       domain.EscrowContract
		budget, locked, release pgtype.Numeric
	)

	err := db.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.ProjectName,
		&budget,
		&locked,
		&release,
		&c.Currency,
		&c.LedgerID,
		&c.FundingAccountID,
		&c.PayoutAccountID,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrContractNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	c.TotalBudget = numericToDecimal(budget)
	c.LockedFunds = numericToDecimal(locked)
	c.ReleasedFunds = numericToDecimal(release)

	rows, err := db.Query(ctx, `
		SELECT idx, phase, percentage, allocation, status, auditor, proof_hash, released_at
		FROM escrow_milestones
		WHERE contract_id = $1
		ORDER BY idx
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			m                      domain.Milestone
			percentage, allocation pgtype.Numeric
			status                 string
			releasedAt             pgtype.Timestamptz
		)

		err := rows.Scan(&m.Index, &m.Phase, &percentage, &allocation, &status, &m.Auditor, &m.ProofHash, &releasedAt)
		if err != nil {
			return nil, err
		}

		m.Percentage = numericToDecimal(percentage)
		m.Allocation = numericToDecimal(allocation)
		m.Status = domain.MilestoneStatus(status)
		m.ReleasedAt = timePtr(releasedAt)
		c.Milestones = append(c.Milestones, &m)
	}

	return &c, rows.Err()
}
