package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/iho/govledger/internal/domain"
	"github.com/iho/govledger/internal/governance"
	"github.com/iho/govledger/internal/signals"
	"github.com/iho/govledger/internal/usecase"
	"github.com/iho/govledger/internal/usecase/mocks"
)

var calmSignals = governance.Signals{StressScore: 5, SovereigntyScore: 10, AlertLevel: 0}

type fixture struct {
	txMgr    *mocks.MockTransactionManager
	idGen    *mocks.MockIDGenerator
	entities *mocks.MockEntityRepository
	accounts *mocks.MockAccountRepository
	ledgers  *mocks.MockLedgerRepository
	journal  *mocks.MockJournalRepository
	vaults   *mocks.MockVaultRepository
	escrows  *mocks.MockEscrowRepository
	outbox   *mocks.MockOutboxRepository

	entityUC     *usecase.EntityUseCase
	accountUC    *usecase.AccountUseCase
	ledgerUC     *usecase.LedgerUseCase
	postingUC    *usecase.PostingUseCase
	vaultUC      *usecase.VaultUseCase
	governanceUC *usecase.GovernanceUseCase
	escrowUC     *usecase.EscrowUseCase
}

type fixtureOptions struct {
	signals usecase.SignalProvider
	posting []usecase.PostingOption
	cache   usecase.Cache
}

func newFixture(t *testing.T, opts ...func(*fixtureOptions)) *fixture {
	t.Helper()

	o := fixtureOptions{signals: signals.Static{Value: calmSignals}}
	for _, opt := range opts {
		opt(&o)
	}

	f := &fixture{
		txMgr:    mocks.NewMockTransactionManager(),
		idGen:    mocks.NewMockIDGenerator(),
		entities: mocks.NewMockEntityRepository(),
		accounts: mocks.NewMockAccountRepository(),
		ledgers:  mocks.NewMockLedgerRepository(),
		journal:  mocks.NewMockJournalRepository(),
		vaults:   mocks.NewMockVaultRepository(),
		escrows:  mocks.NewMockEscrowRepository(),
		outbox:   mocks.NewMockOutboxRepository(),
	}
	f.accounts.Journal = f.journal

	logger := zerolog.Nop()

	f.entityUC = usecase.NewEntityUseCase(f.entities, f.idGen)
	f.accountUC = usecase.NewAccountUseCase(f.accounts, f.entities, f.idGen)
	f.ledgerUC = usecase.NewLedgerUseCase(f.txMgr, f.entities, f.ledgers, f.accounts, f.journal, f.outbox, f.idGen, o.cache, logger)
	postingOpts := append([]usecase.PostingOption{usecase.WithAuthorizations(f.vaults)}, o.posting...)
	f.postingUC = usecase.NewPostingUseCase(f.txMgr, f.ledgers, f.accounts, f.journal, f.outbox, f.idGen, logger, postingOpts...)
	f.vaultUC = usecase.NewVaultUseCase(f.txMgr, f.vaults, f.outbox, f.idGen, testVaultConfig(t), nil, logger)

	chain := governance.New(governance.DefaultConfig(), f.vaultUC)
	f.governanceUC = usecase.NewGovernanceUseCase(chain, o.signals, f.postingUC, f.txMgr,
		f.entities, f.ledgers, f.accounts, f.outbox, f.idGen, nil, logger)
	f.escrowUC = usecase.NewEscrowUseCase(f.txMgr, f.escrows, f.ledgers, f.accounts, f.outbox,
		f.governanceUC, f.idGen, nil, logger)

	return f
}

func withSignals(s usecase.SignalProvider) func(*fixtureOptions) {
	return func(o *fixtureOptions) { o.signals = s }
}

func withPostingOptions(opts ...usecase.PostingOption) func(*fixtureOptions) {
	return func(o *fixtureOptions) { o.posting = append(o.posting, opts...) }
}

func withCache(c usecase.Cache) func(*fixtureOptions) {
	return func(o *fixtureOptions) { o.cache = c }
}

var testSigners = map[string]string{
	"alice": "alice-secret",
	"bob":   "bob-secret",
	"carol": "carol-secret",
}

func testVaultConfig(t *testing.T) usecase.VaultConfig {
	t.Helper()

	cfg := usecase.VaultConfig{RequiredSignatures: 2}
	for _, name := range []string{"alice", "bob", "carol"} {
		hash, err := bcrypt.GenerateFromPassword([]byte(testSigners[name]), bcrypt.MinCost)
		if err != nil {
			t.Fatalf("hash credential: %v", err)
		}
		cfg.Signers = append(cfg.Signers, usecase.VaultSigner{Identity: name, CredentialHash: string(hash)})
	}

	return cfg
}

// books is a freshly created entity with one account per type and an open ledger.
type books struct {
	entity    *domain.Entity
	ledger    *domain.Ledger
	cash      *domain.Account
	liability *domain.Account
	equity    *domain.Account
	revenue   *domain.Account
	expense   *domain.Account
}

func (f *fixture) genesis(t *testing.T) *books {
	t.Helper()
	ctx := context.Background()

	entity, err := f.entityUC.CreateEntity(ctx, usecase.CreateEntityInput{
		Name:         "F",
		Jurisdiction: "ID-NEUTRAL-ZONE",
	})
	if err != nil {
		t.Fatalf("create entity: %v", err)
	}

	b := &books{entity: entity}

	newAccount := func(name string, typ domain.AccountType) *domain.Account {
		acc, err := f.accountUC.CreateAccount(ctx, usecase.CreateAccountInput{
			EntityID: entity.ID,
			Name:     name,
			Type:     typ,
			Currency: "IDR",
		})
		if err != nil {
			t.Fatalf("create account %s: %v", name, err)
		}
		return acc
	}

	b.equity = newAccount("Founders Equity", domain.AccountTypeEquity)
	b.cash = newAccount("Operating Cash", domain.AccountTypeAsset)
	b.liability = newAccount("Payables", domain.AccountTypeLiability)
	b.revenue = newAccount("Grants", domain.AccountTypeRevenue)
	b.expense = newAccount("Project Spend", domain.AccountTypeExpense)

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	b.ledger, err = f.ledgerUC.OpenLedger(ctx, usecase.OpenLedgerInput{
		EntityID:    entity.ID,
		PeriodStart: start,
		PeriodEnd:   start.AddDate(1, 0, 0),
	})
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}

	return b
}

func amount(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func transferInput(ledgerID, debitID, creditID string, v int64) usecase.PostInput {
	return usecase.PostInput{
		LedgerID: ledgerID,
		Lines: []usecase.PostLine{
			{AccountID: debitID, Debit: amount(v), Credit: decimal.Zero, Currency: "IDR"},
			{AccountID: creditID, Debit: decimal.Zero, Credit: amount(v), Currency: "IDR"},
		},
		Metadata: usecase.PostMetadata{
			EventType:    domain.EventTypeCapitalInjection,
			SourceSystem: "genesis",
			CreatedBy:    "board",
			ApprovedBy:   "board",
		},
	}
}

func (f *fixture) injectCapital(t *testing.T, b *books, v int64) *usecase.PostResult {
	t.Helper()

	res, err := f.postingUC.Post(context.Background(), transferInput(b.ledger.ID, b.cash.ID, b.equity.ID, v))
	if err != nil {
		t.Fatalf("inject capital: %v", err)
	}
	return res
}

// executedVaultProposal returns a board authorization to pay v into destination.
func (f *fixture) executedVaultProposal(t *testing.T, v int64, destination string) *domain.SignatureProposal {
	t.Helper()
	ctx := context.Background()

	p, err := f.vaultUC.Create(ctx, usecase.CreateVaultProposalInput{
		Title:       "Board authorization",
		Amount:      amount(v),
		Destination: destination,
		CreatedBy:   "treasurer",
	})
	if err != nil {
		t.Fatalf("create vault proposal: %v", err)
	}

	for _, signer := range []string{"alice", "bob"} {
		p, err = f.vaultUC.Sign(ctx, usecase.SignInput{ProposalID: p.ID, Signer: signer, Credential: testSigners[signer]})
		if err != nil {
			t.Fatalf("sign as %s: %v", signer, err)
		}
	}

	if p.Status != domain.VaultStatusExecuted {
		t.Fatalf("vault proposal status = %s, want EXECUTED", p.Status)
	}

	return p
}

func (f *fixture) balance(t *testing.T, accountID string) decimal.Decimal {
	t.Helper()

	b, err := f.ledgerUC.GetAccountBalance(context.Background(), accountID)
	if err != nil {
		t.Fatalf("balance of %s: %v", accountID, err)
	}
	return b.Balance()
}
