package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
)

var readCommitted = pgx.TxOptions{IsoLevel: pgx.ReadCommitted}

func TestTxManager_Begin(t *testing.T) {
	beginErr := errors.New("begin failed")

	tests := []struct {
		name    string
		expect  func(pgxmock.PgxPoolIface)
		finish  func(context.Context, *Tx) error
		wantErr error
	}{
		{
			name: "commit",
			expect: func(m pgxmock.PgxPoolIface) {
				m.ExpectBeginTx(readCommitted)
				m.ExpectCommit()
			},
			finish: func(ctx context.Context, tx *Tx) error { return tx.Commit(ctx) },
		},
		{
			name: "rollback",
			expect: func(m pgxmock.PgxPoolIface) {
				m.ExpectBeginTx(readCommitted)
				m.ExpectRollback()
			},
			finish: func(ctx context.Context, tx *Tx) error { return tx.Rollback(ctx) },
		},
		{
			name: "begin error",
			expect: func(m pgxmock.PgxPoolIface) {
				m.ExpectBeginTx(readCommitted).WillReturnError(beginErr)
			},
			wantErr: beginErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			mockPool := newMockPool(t)
			tt.expect(mockPool)

			tx, err := newTxManagerWithPool(mockPool).Begin(ctx)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got err=%v tx=%v", tt.wantErr, err, tx)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if err := tt.finish(ctx, tx.(*Tx)); err != nil {
				t.Fatalf("finish failed: %v", err)
			}

			assertExpectations(t, mockPool)
		})
	}
}

func TestQuerier(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectBeginTx(readCommitted)

	if got := querier(mockPool, nil); got != DBTX(mockPool) {
		t.Fatal("expected pool when no transaction is active")
	}

	tx, err := newTxManagerWithPool(mockPool).Begin(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := querier(mockPool, tx); got != DBTX(tx.(*Tx).PgxTx()) {
		t.Fatal("expected the transaction to be used")
	}
}

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	pool, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgxmock pool: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func assertExpectations(t *testing.T, pool pgxmock.PgxPoolIface) {
	t.Helper()
	if err := pool.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations were not met: %v", err)
	}
}
