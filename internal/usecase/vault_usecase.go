package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/iho/govledger/internal/domain"
)

// DefaultRequiredSignatures is the vault quorum when none is configured.
const DefaultRequiredSignatures = 2

// VaultSigner is a registered signer and the bcrypt hash of its credential.
type VaultSigner struct {
	Identity       string
	CredentialHash string
}

// VaultConfig is the signer roster and quorum threshold.
type VaultConfig struct {
	RequiredSignatures int
	Signers            []VaultSigner
}

// Validate checks that the quorum is reachable with the roster.
func (c VaultConfig) Validate() error {
	if c.RequiredSignatures < 1 {
		return fmt.Errorf("vault: required signatures must be at least 1, got %d", c.RequiredSignatures)
	}

	if c.RequiredSignatures > len(c.Signers) {
		return fmt.Errorf("vault: required signatures %d exceeds roster size %d", c.RequiredSignatures, len(c.Signers))
	}

	seen := make(map[string]bool, len(c.Signers))
	for _, s := range c.Signers {
		if s.Identity == "" || s.CredentialHash == "" {
			return errors.New("vault: signer identity and credential hash are required")
		}
		if seen[s.Identity] {
			return fmt.Errorf("vault: duplicate signer %q", s.Identity)
		}
		seen[s.Identity] = true
	}

	return nil
}

// VaultUseCase runs the multi-signature quorum state machine.
type VaultUseCase struct {
	txManager  TransactionManager
	vaultRepo  VaultRepository
	outboxRepo OutboxRepository
	idGen      IDGenerator
	required   int
	roster     map[string][]byte
	recorder   Recorder
	logger     zerolog.Logger
}

// NewVaultUseCase creates a new VaultUseCase. The config must already be valid.
func NewVaultUseCase(
	txManager TransactionManager,
	vaultRepo VaultRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	cfg VaultConfig,
	recorder Recorder,
	logger zerolog.Logger,
) *VaultUseCase {
	if recorder == nil {
		recorder = NopRecorder{}
	}

	required := cfg.RequiredSignatures
	if required <= 0 {
		required = DefaultRequiredSignatures
	}

	roster := make(map[string][]byte, len(cfg.Signers))
	for _, s := range cfg.Signers {
		roster[s.Identity] = []byte(s.CredentialHash)
	}

	return &VaultUseCase{
		txManager:  txManager,
		vaultRepo:  vaultRepo,
		outboxRepo: outboxRepo,
		idGen:      idGen,
		required:   required,
		roster:     roster,
		recorder:   recorder,
		logger:     logger,
	}
}

// CreateVaultProposalInput represents input for creating a signature proposal.
type CreateVaultProposalInput struct {
	Title       string
	Amount      decimal.Decimal
	Destination string
	CreatedBy   string
}

// Create opens a PENDING proposal with no signatures.
func (uc *VaultUseCase) Create(ctx context.Context, input CreateVaultProposalInput) (*domain.SignatureProposal, error) {
	if err := domain.ValidateName(input.Title); err != nil {
		return nil, err
	}

	if err := domain.ValidatePositiveMoney(input.Amount); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	proposal := &domain.SignatureProposal{
		ID:          uc.idGen.Generate(),
		Title:       input.Title,
		Amount:      input.Amount,
		Destination: input.Destination,
		CreatedBy:   input.CreatedBy,
		Status:      domain.VaultStatusPending,
		Signatures:  []domain.Signature{},
		Required:    uc.required,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.vaultRepo.Create(ctx, proposal); err != nil {
		return nil, err
	}

	return proposal, nil
}

// Get retrieves a proposal by ID.
func (uc *VaultUseCase) Get(ctx context.Context, id string) (*domain.SignatureProposal, error) {
	return uc.vaultRepo.GetByID(ctx, id)
}

// QuorumStatus reports the signature state of a proposal. It backs the
// governance quorum gate.
func (uc *VaultUseCase) QuorumStatus(ctx context.Context, proposalID string) (domain.QuorumStatus, error) {
	p, err := uc.vaultRepo.GetByID(ctx, proposalID)
	if err != nil {
		return domain.QuorumStatus{}, err
	}

	return p.QuorumStatus(), nil
}

// SignInput represents a signer's approval of a proposal.
type SignInput struct {
	ProposalID string
	Signer     string
	Credential string
}

// Sign records a signature. The proposal row stays locked for the whole
// check-and-append so concurrent signers never lose an update. The
// signature that first reaches quorum executes the proposal and writes the
// release directive in the same transaction.
func (uc *VaultUseCase) Sign(ctx context.Context, input SignInput) (*domain.SignatureProposal, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	proposal, err := uc.vaultRepo.GetByIDForUpdate(ctx, tx, input.ProposalID)
	if err != nil {
		return nil, err
	}

	if proposal.Status == domain.VaultStatusExecuted {
		return nil, domain.ErrAlreadyExecuted
	}

	if err := uc.authenticate(input.Signer, input.Credential); err != nil {
		uc.logger.Warn().Str("proposal_id", proposal.ID).Str("signer", input.Signer).Msg("signer authentication failed")
		return nil, err
	}

	now := time.Now().UTC()

	executed, err := proposal.AddSignature(input.Signer, now)
	if err != nil {
		return nil, err
	}

	if err := uc.vaultRepo.Update(ctx, tx, proposal); err != nil {
		return nil, err
	}

	if executed {
		signers := make([]string, len(proposal.Signatures))
		for i, s := range proposal.Signatures {
			signers[i] = s.Signer
		}

		event := &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			AggregateID:   proposal.ID,
			AggregateType: domain.AggregateTypeVault,
			EventType:     domain.EventVaultExecuted,
			Payload: map[string]any{
				"proposal_id": proposal.ID,
				"amount":      proposal.Amount.String(),
				"destination": proposal.Destination,
				"signers":     signers,
			},
			CreatedAt: now,
		}

		if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	uc.recorder.VaultSigned(executed)

	logEvent := uc.logger.Info().
		Str("proposal_id", proposal.ID).
		Str("signer", input.Signer).
		Int("signatures", proposal.SignerCount()).
		Int("required", proposal.Required)
	if executed {
		logEvent.Msg("vault proposal executed")
	} else {
		logEvent.Msg("vault proposal signed")
	}

	return proposal, nil
}

// authenticate compares the credential with the roster's bcrypt hash.
// Unknown signers fail the same way as wrong credentials.
func (uc *VaultUseCase) authenticate(signer, credential string) error {
	hash, ok := uc.roster[signer]
	if !ok {
		return domain.ErrAuthenticationFailed
	}

	if err := bcrypt.CompareHashAndPassword(hash, []byte(credential)); err != nil {
		return domain.ErrAuthenticationFailed
	}

	return nil
}

// HashCredential returns the bcrypt hash to register a signer credential.
func HashCredential(credential string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(credential), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
