package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iho/govledger/internal/adapter/http/dto"
	"github.com/iho/govledger/internal/adapter/http/middleware"
	"github.com/iho/govledger/internal/domain"
	"github.com/iho/govledger/internal/usecase"
)

type vaultServiceStub struct {
	createFn func(ctx context.Context, input usecase.CreateVaultProposalInput) (*domain.SignatureProposal, error)
	getFn    func(ctx context.Context, id string) (*domain.SignatureProposal, error)
	signFn   func(ctx context.Context, input usecase.SignInput) (*domain.SignatureProposal, error)
}

func (s *vaultServiceStub) Create(ctx context.Context, input usecase.CreateVaultProposalInput) (*domain.SignatureProposal, error) {
	return s.createFn(ctx, input)
}

func (s *vaultServiceStub) Get(ctx context.Context, id string) (*domain.SignatureProposal, error) {
	return s.getFn(ctx, id)
}

func (s *vaultServiceStub) Sign(ctx context.Context, input usecase.SignInput) (*domain.SignatureProposal, error) {
	return s.signFn(ctx, input)
}

func TestVaultHandler_Sign(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		signErr    error
		wantStatus int
		wantSigner string
	}{
		{name: "explicit signer", body: `{"signer":"minister","credential":"pw"}`, wantStatus: http.StatusOK, wantSigner: "minister"},
		{name: "defaults to operator", body: `{"credential":"pw"}`, wantStatus: http.StatusOK, wantSigner: "op-signer"},
		{name: "bad credential", body: `{"credential":"wrong"}`, signErr: domain.ErrAuthenticationFailed, wantStatus: http.StatusUnauthorized},
		{name: "duplicate", body: `{"credential":"pw"}`, signErr: domain.ErrDuplicateSignature, wantStatus: http.StatusConflict},
		{name: "executed", body: `{"credential":"pw"}`, signErr: domain.ErrAlreadyExecuted, wantStatus: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured usecase.SignInput
			handler := NewVaultHandler(&vaultServiceStub{
				signFn: func(ctx context.Context, input usecase.SignInput) (*domain.SignatureProposal, error) {
					captured = input
					if tt.signErr != nil {
						return nil, tt.signErr
					}
					return &domain.SignatureProposal{
						ID:         input.ProposalID,
						Status:     domain.VaultStatusPending,
						Required:   3,
						Signatures: []domain.Signature{{Signer: input.Signer}},
					}, nil
				},
			})

			req := httptest.NewRequest(http.MethodPost, "/vault/proposals/vp-1/signatures", bytes.NewBufferString(tt.body))
			req = withURLParams(req, "id", "vp-1")
			req = req.WithContext(middleware.WithOperator(req.Context(), &domain.Operator{ID: "op-signer", Role: domain.RoleSigner}))
			rec := httptest.NewRecorder()

			handler.Sign(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if captured.ProposalID != "vp-1" {
				t.Fatalf("expected proposal vp-1, got %s", captured.ProposalID)
			}
			if tt.wantSigner != "" && captured.Signer != tt.wantSigner {
				t.Fatalf("expected signer %s, got %s", tt.wantSigner, captured.Signer)
			}
		})
	}
}

func TestVaultHandler_Create(t *testing.T) {
	handler := NewVaultHandler(&vaultServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateVaultProposalInput) (*domain.SignatureProposal, error) {
			return &domain.SignatureProposal{ID: "vp-1", Title: input.Title, Amount: input.Amount, CreatedBy: input.CreatedBy, Required: 3, Status: domain.VaultStatusPending}, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/vault/proposals", bytes.NewBufferString(`{"title":"Bridge","amount":"750","destination":"contractor"}`))
	req = req.WithContext(middleware.WithOperator(req.Context(), &domain.Operator{ID: "treasurer-1", Role: domain.RoleTreasurer}))
	rec := httptest.NewRecorder()
	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp dto.VaultProposalResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.CreatedBy != "treasurer-1" || resp.Status != "PENDING" || resp.Amount.String() != "750" {
		t.Fatalf("unexpected response %+v", resp)
	}
}
