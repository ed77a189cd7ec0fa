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

const proposalColumns = `id, title, amount, destination, created_by, status, required, created_at, updated_at, executed_at, consumed_by, consumed_at`

// VaultRepository implements usecase.VaultRepository. Signatures live in
// vault_signatures keyed by (proposal_id, signer).
type VaultRepository struct {
	db DBTX
}

// NewVaultRepository creates a new VaultRepository.
func NewVaultRepository(pool *pgxpool.Pool) *VaultRepository {
	return newVaultRepository(pool)
}

func newVaultRepository(db DBTX) *VaultRepository {
	return &VaultRepository{db: db}
}

// Create inserts a new proposal without signatures.
func (r *VaultRepository) Create(ctx context.Context, proposal *domain.SignatureProposal) error {
	query := `
		INSERT INTO vault_proposals (` + proposalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.Exec(ctx, query,
		proposal.ID,
		proposal.Title,
		decimalToNumeric(proposal.Amount),
		proposal.Destination,
		proposal.CreatedBy,
		string(proposal.Status),
		proposal.Required,
		proposal.CreatedAt,
		proposal.UpdatedAt,
		optionalTime(proposal.ExecutedAt),
		stringToText(proposal.ConsumedBy),
		optionalTime(proposal.ConsumedAt),
	)

	return err
}

// GetByID retrieves a proposal with its signatures.
func (r *VaultRepository) GetByID(ctx context.Context, id string) (*domain.SignatureProposal, error) {
	query := `SELECT ` + proposalColumns + ` FROM vault_proposals WHERE id = $1`

	return r.get(ctx, r.db, query, id)
}

// GetByIDForUpdate retrieves a proposal and locks it until tx ends.
func (r *VaultRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.SignatureProposal, error) {
	query := `SELECT ` + proposalColumns + ` FROM vault_proposals WHERE id = $1 FOR UPDATE`

	return r.get(ctx, querier(r.db, tx), query, id)
}

// Update persists status and consumption and appends signatures not yet
// stored.
func (r *VaultRepository) Update(ctx context.Context, tx usecase.Transaction, proposal *domain.SignatureProposal) error {
	db := querier(r.db, tx)

	query := `
		UPDATE vault_proposals
		SET status = $2, updated_at = $3, executed_at = $4, consumed_by = $5, consumed_at = $6
		WHERE id = $1
	`

	tag, err := db.Exec(ctx, query,
		proposal.ID,
		string(proposal.Status),
		proposal.UpdatedAt,
		optionalTime(proposal.ExecutedAt),
		stringToText(proposal.ConsumedBy),
		optionalTime(proposal.ConsumedAt),
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrProposalNotFound, proposal.ID)
	}

	sigQuery := `
		INSERT INTO vault_signatures (proposal_id, signer, signed_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (proposal_id, signer) DO NOTHING
	`

	for _, s := range proposal.Signatures {
		if _, err := db.Exec(ctx, sigQuery, proposal.ID, s.Signer, s.SignedAt); err != nil {
			return err
		}
	}

	return nil
}

func (r *VaultRepository) get(ctx context.Context, db DBTX, query, id string) (*domain.SignatureProposal, error) {
	var (
		p          domain.SignatureProposal
		amount     pgtype.Numeric
		status     string
		executedAt pgtype.Timestamptz
		consumedBy pgtype.Text
		consumedAt pgtype.Timestamptz
	)

	err := db.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.Title,
		&amount,
		&p.Destination,
		&p.CreatedBy,
		&status,
		&p.Required,
		&p.CreatedAt,
		&p.UpdatedAt,
		&executedAt,
		&consumedBy,
		&consumedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrProposalNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	p.Amount = numericToDecimal(amount)
	p.Status = domain.VaultStatus(status)
	p.ExecutedAt = timePtr(executedAt)
	p.ConsumedBy = textToString(consumedBy)
	p.ConsumedAt = timePtr(consumedAt)

	rows, err := db.Query(ctx, `
		SELECT signer, signed_at
		FROM vault_signatures
		WHERE proposal_id = $1
		ORDER BY signed_at, signer
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var s domain.Signature
		if err := rows.Scan(&s.Signer, &s.SignedAt); err != nil {
			return nil, err
		}
		p.Signatures = append(p.Signatures, s)
	}

	return &p, rows.Err()
}
