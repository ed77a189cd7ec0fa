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

const accountColumns = `id, entity_id, name, type, currency, risk_category, liquidity_class, parent_account_id, active, created_at, updated_at`

// AccountRepository implements usecase.AccountRepository. Balances are
// never stored; they are summed from journal_lines on read.
type AccountRepository struct {
	db DBTX
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return newAccountRepository(pool)
}

func newAccountRepository(db DBTX) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create creates a new account.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.Exec(ctx, query,
		account.ID,
		account.EntityID,
		account.Name,
		string(account.Type),
		account.Currency,
		account.RiskCategory,
		account.LiquidityClass,
		account.ParentAccountID,
		account.Active,
		account.CreatedAt,
		account.UpdatedAt,
	)

	return err
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	account, err := scanAccount(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, id)
	}

	return account, err
}

// GetByIDs loads accounts with a shared lock so they cannot be deactivated
// while a posting against them is in flight.
func (r *AccountRepository) GetByIDs(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = ANY($1) ORDER BY id FOR SHARE`

	return r.queryAccounts(ctx, querier(r.db, tx), query, ids)
}

// ListByEntity lists accounts owned by an entity.
func (r *AccountRepository) ListByEntity(ctx context.Context, entityID string, limit, offset int) ([]*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE entity_id = $1
		ORDER BY created_at, id
		LIMIT $2 OFFSET $3
	`

	return r.queryAccounts(ctx, r.db, query, entityID, limit, offset)
}

// Deactivate marks an account inactive. Deactivating twice is not an error.
func (r *AccountRepository) Deactivate(ctx context.Context, id string, updatedAt time.Time) error {
	query := `UPDATE accounts SET active = FALSE, updated_at = $2 WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, updatedAt)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrAccountNotFound, id)
	}

	return nil
}

// Balance sums posted lines for one account.
func (r *AccountRepository) Balance(ctx context.Context, accountID string) (*domain.AccountBalance, error) {
	query := `
		SELECT a.id, a.type, a.currency,
			COALESCE(SUM(l.debit), 0), COALESCE(SUM(l.credit), 0)
		FROM accounts a
		LEFT JOIN journal_lines l ON l.account_id = a.id
		WHERE a.id = $1
		GROUP BY a.id, a.type, a.currency
	`

	balance, err := scanBalance(r.db.QueryRow(ctx, query, accountID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, accountID)
	}
	if err != nil {
		return nil, err
	}

	return &balance, nil
}

// BalancesByEntity sums posted lines for every account of an entity.
func (r *AccountRepository) BalancesByEntity(ctx context.Context, tx usecase.Transaction, entityID string) ([]domain.AccountBalance, error) {
	query := `
		SELECT a.id, a.type, a.currency,
			COALESCE(SUM(l.debit), 0), COALESCE(SUM(l.credit), 0)
		FROM accounts a
		LEFT JOIN journal_lines l ON l.account_id = a.id
		WHERE a.entity_id = $1
		GROUP BY a.id, a.type, a.currency
		ORDER BY a.id
	`

	rows, err := querier(r.db, tx).Query(ctx, query, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var balances []domain.AccountBalance
	for rows.Next() {
		b, err := scanBalance(rows)
		if err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}

	return balances, rows.Err()
}

func (r *AccountRepository) queryAccounts(ctx context.Context, db DBTX, query string, args ...any) ([]*domain.Account, error) {
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		a        domain.Account
		typ      string
		parentID pgtype.Text
	)

	err := row.Scan(
		&a.ID,
		&a.EntityID,
		&a.Name,
		&typ,
		&a.Currency,
		&a.RiskCategory,
		&a.LiquidityClass,
		&parentID,
		&a.Active,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.Type = domain.AccountType(typ)
	if parentID.Valid {
		a.ParentAccountID = &parentID.String
	}

	return &a, nil
}

func scanBalance(row pgx.Row) (domain.AccountBalance, error) {
	var (
		b             domain.AccountBalance
		typ           string
		debit, credit pgtype.Numeric
	)

	if err := row.Scan(&b.AccountID, &typ, &b.Currency, &debit, &credit); err != nil {
		return domain.AccountBalance{}, err
	}

	b.Type = domain.AccountType(typ)
	b.Debit = numericToDecimal(debit)
	b.Credit = numericToDecimal(credit)

	return b, nil
}
