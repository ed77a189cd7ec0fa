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

const (
	eventColumns = `id, ledger_id, type, source_system, decision_reference, authority_signature_hash, occurred_at, previous_hash, event_hash`
	entryColumns = `id, ledger_id, event_id, transaction_type, approval_status, total_debit, total_credit, created_by, approved_by, reversal_of, created_at`
	lineColumns  = `id, journal_id, account_id, debit, credit, currency, fx_rate_ref, risk_tag`
)

// JournalRepository implements usecase.JournalRepository. The journal
// tables are append-only; the schema rejects UPDATE and DELETE.
type JournalRepository struct {
	db DBTX
}

// NewJournalRepository creates a new JournalRepository.
func NewJournalRepository(pool *pgxpool.Pool) *JournalRepository {
	return newJournalRepository(pool)
}

func newJournalRepository(db DBTX) *JournalRepository {
	return &JournalRepository{db: db}
}

// CreateEvent appends a transaction event.
func (r *JournalRepository) CreateEvent(ctx context.Context, tx usecase.Transaction, event *domain.TransactionEvent) error {
	query := `
		INSERT INTO transaction_events (` + eventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := querier(r.db, tx).Exec(ctx, query,
		event.ID,
		event.LedgerID,
		string(event.Type),
		event.SourceSystem,
		event.DecisionReference,
		event.AuthoritySignatureHash,
		event.Timestamp,
		event.PreviousHash,
		event.EventHash,
	)

	return err
}

// CreateEntry writes the entry header and its lines in order.
func (r *JournalRepository) CreateEntry(ctx context.Context, tx usecase.Transaction, entry *domain.JournalEntry) error {
	db := querier(r.db, tx)

	query := `
		INSERT INTO journal_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := db.Exec(ctx, query,
		entry.ID,
		entry.LedgerID,
		entry.EventID,
		string(entry.TransactionType),
		string(entry.ApprovalStatus),
		decimalToNumeric(entry.TotalDebit),
		decimalToNumeric(entry.TotalCredit),
		entry.CreatedBy,
		entry.ApprovedBy,
		stringToText(entry.ReversalOf),
		entry.CreatedAt,
	)
	if isUniqueViolation(err) && entry.ReversalOf != "" {
		return fmt.Errorf("%w: %s", domain.ErrAlreadyReversed, entry.ReversalOf)
	}
	if err != nil {
		return err
	}

	lineQuery := `
		INSERT INTO journal_lines (` + lineColumns + `, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	for i, line := range entry.Lines {
		_, err := db.Exec(ctx, lineQuery,
			line.ID,
			entry.ID,
			line.AccountID,
			decimalToNumeric(line.Debit),
			decimalToNumeric(line.Credit),
			line.Currency,
			line.FXRateRef,
			line.RiskTag,
			i,
		)
		if err != nil {
			return fmt.Errorf("insert line %d: %w", i, err)
		}
	}

	return nil
}

// GetByID retrieves an entry with its lines.
func (r *JournalRepository) GetByID(ctx context.Context, id string) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE id = $1`

	entry, err := scanEntry(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrJournalNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	if err := r.attachLines(ctx, []*domain.JournalEntry{entry}); err != nil {
		return nil, err
	}

	return entry, nil
}

// ListByLedger returns entries with lines in posting order.
func (r *JournalRepository) ListByLedger(ctx context.Context, ledgerID string, limit, offset int) ([]*domain.JournalEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM journal_entries
		WHERE ledger_id = $1
		ORDER BY seq
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, ledgerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.JournalEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachLines(ctx, entries); err != nil {
		return nil, err
	}

	return entries, nil
}

// ListEvents returns every event of a ledger in posting order.
func (r *JournalRepository) ListEvents(ctx context.Context, ledgerID string) ([]*domain.TransactionEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM transaction_events WHERE ledger_id = $1 ORDER BY seq`

	rows, err := r.db.Query(ctx, query, ledgerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*domain.TransactionEvent
	for rows.Next() {
		var (
			e   domain.TransactionEvent
			typ string
		)

		err := rows.Scan(
			&e.ID,
			&e.LedgerID,
			&typ,
			&e.SourceSystem,
			&e.DecisionReference,
			&e.AuthoritySignatureHash,
			&e.Timestamp,
			&e.PreviousHash,
			&e.EventHash,
		)
		if err != nil {
			return nil, err
		}

		e.Type = domain.EventType(typ)
		events = append(events, &e)
	}

	return events, rows.Err()
}

// IsReversed reports whether a reversal entry already references journalID.
func (r *JournalRepository) IsReversed(ctx context.Context, tx usecase.Transaction, journalID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM journal_entries WHERE reversal_of = $1)`

	var reversed bool
	err := querier(r.db, tx).QueryRow(ctx, query, journalID).Scan(&reversed)

	return reversed, err
}

func (r *JournalRepository) attachLines(ctx context.Context, entries []*domain.JournalEntry) error {
	if len(entries) == 0 {
		return nil
	}

	ids := make([]string, len(entries))
	byID := make(map[string]*domain.JournalEntry, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
		byID[e.ID] = e
	}

	query := `
		SELECT ` + lineColumns + `
		FROM journal_lines
		WHERE journal_id = ANY($1)
		ORDER BY journal_id, position
	`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			l             domain.JournalLine
			debit, credit pgtype.Numeric
		)

		err := rows.Scan(&l.ID, &l.JournalID, &l.AccountID, &debit, &credit, &l.Currency, &l.FXRateRef, &l.RiskTag)
		if err != nil {
			return err
		}

		l.Debit = numericToDecimal(debit)
		l.Credit = numericToDecimal(credit)

		if e, ok := byID[l.JournalID]; ok {
			e.Lines = append(e.Lines, &l)
		}
	}

	return rows.Err()
}

func scanEntry(row pgx.Row) (*domain.JournalEntry, error) {
	var (
		e                  domain.JournalEntry
		typ, approval      string
		totalDebit, credit pgtype.Numeric
		reversalOf         pgtype.Text
	)

	err := row.Scan(
		&e.ID,
		&e.LedgerID,
		&e.EventID,
		&typ,
		&approval,
		&totalDebit,
		&credit,
		&e.CreatedBy,
		&e.ApprovedBy,
		&reversalOf,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	e.TransactionType = domain.EventType(typ)
	e.ApprovalStatus = domain.ApprovalStatus(approval)
	e.TotalDebit = numericToDecimal(totalDebit)
	e.TotalCredit = numericToDecimal(credit)
	e.ReversalOf = textToString(reversalOf)

	return &e, nil
}
