package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/govledger/internal/adapter/http/dto"
	"github.com/iho/govledger/internal/domain"
	"github.com/iho/govledger/internal/usecase"
)

type accountServiceStub struct {
	createFn     func(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error)
	getFn        func(ctx context.Context, id string) (*domain.Account, error)
	listFn       func(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error)
	deactivateFn func(ctx context.Context, id string) (*domain.Account, error)
	balanceFn    func(ctx context.Context, id string) (*domain.AccountBalance, error)
}

func (s *accountServiceStub) CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
	return s.createFn(ctx, input)
}

func (s *accountServiceStub) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return s.getFn(ctx, id)
}

func (s *accountServiceStub) ListAccounts(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error) {
	return s.listFn(ctx, input)
}

func (s *accountServiceStub) DeactivateAccount(ctx context.Context, id string) (*domain.Account, error) {
	return s.deactivateFn(ctx, id)
}

func (s *accountServiceStub) GetAccountBalance(ctx context.Context, id string) (*domain.AccountBalance, error) {
	return s.balanceFn(ctx, id)
}

// withURLParams attaches chi route params to a request.
func withURLParams(req *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestAccountHandler_Create_Success(t *testing.T) {
	var captured usecase.CreateAccountInput
	stub := &accountServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
			captured = input
			return &domain.Account{ID: "acc-1", EntityID: input.EntityID, Name: input.Name, Type: input.Type, Currency: "IDR", Active: true}, nil
		},
	}
	handler := NewAccountHandler(stub, stub)

	body, _ := json.Marshal(dto.CreateAccountRequest{EntityID: "ent-1", Name: "Reserve", Type: "ASSET", Currency: "IDR"})
	req := httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.EntityID != "ent-1" || captured.Type != domain.AccountTypeAsset {
		t.Fatalf("expected input to match request, got %+v", captured)
	}

	var resp dto.AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "acc-1" || !resp.Active {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestAccountHandler_Create_ValidationError(t *testing.T) {
	stub := &accountServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
			return nil, domain.ErrInvalidAccountType
		},
	}
	handler := NewAccountHandler(stub, stub)

	req := httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewBufferString(`{"type":"CONTRA"}`))
	rec := httptest.NewRecorder()
	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAccountHandler_Create_InvalidBody(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewBufferString(`{`))
	rec := httptest.NewRecorder()
	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAccountHandler_Get_NotFound(t *testing.T) {
	stub := &accountServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.Account, error) {
			return nil, domain.ErrAccountNotFound
		},
	}
	handler := NewAccountHandler(stub, stub)

	req := withURLParams(httptest.NewRequest(http.MethodGet, "/accounts/missing", nil), "id", "missing")
	rec := httptest.NewRecorder()
	handler.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAccountHandler_Get_MissingID(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{}, nil)

	rec := httptest.NewRecorder()
	handler.Get(rec, httptest.NewRequest(http.MethodGet, "/accounts/", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAccountHandler_List_PassesFilters(t *testing.T) {
	var captured usecase.ListAccountsInput
	stub := &accountServiceStub{
		listFn: func(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error) {
			captured = input
			return []*domain.Account{{ID: "a"}, {ID: "b"}}, nil
		},
	}
	handler := NewAccountHandler(stub, stub)

	rec := httptest.NewRecorder()
	handler.List(rec, httptest.NewRequest(http.MethodGet, "/accounts?entity_id=ent-1&limit=5&offset=10", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured.EntityID != "ent-1" || captured.Limit != 5 || captured.Offset != 10 {
		t.Fatalf("unexpected input %+v", captured)
	}

	var resp dto.ListAccountsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 2 {
		t.Fatalf("expected 2 accounts, got %d", resp.Total)
	}
}

func TestAccountHandler_Balance(t *testing.T) {
	stub := &accountServiceStub{
		balanceFn: func(ctx context.Context, id string) (*domain.AccountBalance, error) {
			return &domain.AccountBalance{
				AccountID: id,
				Type:      domain.AccountTypeAsset,
				Currency:  "IDR",
				Debit:     decimal.NewFromInt(1_000),
				Credit:    decimal.NewFromInt(250),
			}, nil
		},
	}
	handler := NewAccountHandler(stub, stub)

	req := withURLParams(httptest.NewRequest(http.MethodGet, "/accounts/cash/balance", nil), "id", "cash")
	rec := httptest.NewRecorder()
	handler.Balance(rec, req)

	var resp dto.BalanceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Balance.Equal(decimal.NewFromInt(750)) {
		t.Fatalf("expected balance 750, got %s", resp.Balance)
	}
}

func TestAccountHandler_Deactivate(t *testing.T) {
	stub := &accountServiceStub{
		deactivateFn: func(ctx context.Context, id string) (*domain.Account, error) {
			return &domain.Account{ID: id, Active: false}, nil
		},
	}
	handler := NewAccountHandler(stub, stub)

	req := withURLParams(httptest.NewRequest(http.MethodPost, "/accounts/cash/deactivate", nil), "id", "cash")
	rec := httptest.NewRecorder()
	handler.Deactivate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
