package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/iho/govledger/internal/adapter/http/handler"
	apimiddleware "github.com/iho/govledger/internal/adapter/http/middleware"
	"github.com/iho/govledger/internal/domain"
	"github.com/iho/govledger/internal/infrastructure/auth"
	"github.com/iho/govledger/internal/infrastructure/metrics"
	"github.com/iho/govledger/internal/usecase"
)

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /health to return 200, got %d", rec.Code)
	}
}

func TestNewRouter_RateLimiterBlocksExcessRequests(t *testing.T) {
	rl := apimiddleware.NewRateLimiter(1, 1)
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.RateLimiter = rl
	}))

	req1 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req1.RemoteAddr = "1.2.3.4:1234"
	rec1 := httptest.NewRecorder()
	router.ServeHTTP(rec1, req1)
	if rec1.Code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", rec1.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req2.RemoteAddr = "1.2.3.4:1234"
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled, got %d", rec2.Code)
	}
}

func TestNewRouter_IdempotencyMiddlewareInvokesStore(t *testing.T) {
	store := &stubIdempotencyStore{}
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.IdempotencyStore = store
	}))

	body := `{"entity_id":"ent-1","name":"Cash","type":"ASSET","currency":"IDR"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apimiddleware.IdempotencyKeyHeader, "key-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if !store.checkCalled {
		t.Fatalf("expected idempotency store to be used")
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if !store.updateCalled {
		t.Fatalf("expected stored response to be finalized")
	}
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.MetricsHandler = http.NotFoundHandler()
	}))

	chiRoutes, ok := router.(chi.Router)
	if !ok {
		t.Fatal("router does not implement chi.Routes")
	}

	seen := map[string]bool{}
	if err := chi.Walk(chiRoutes, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		seen[method+" "+route] = true
		return nil
	}); err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	expected := []string{
		"GET /health",
		"GET /ready",
		"GET /metrics",
		"POST /api/v1/entities/",
		"GET /api/v1/entities/{id}/balance-sheet",
		"POST /api/v1/accounts/",
		"POST /api/v1/accounts/{id}/deactivate",
		"POST /api/v1/ledgers/",
		"POST /api/v1/ledgers/{id}/lock",
		"GET /api/v1/ledgers/{id}/verify",
		"POST /api/v1/journal-entries/",
		"POST /api/v1/journal-entries/{id}/reverse",
		"POST /api/v1/proposals/",
		"POST /api/v1/proposals/evaluate",
		"POST /api/v1/vault/proposals/{id}/signatures",
		"POST /api/v1/escrows/{id}/milestones/{index}/release",
	}

	for _, route := range expected {
		if !seen[route] {
			t.Fatalf("expected route %s to be registered", route)
		}
	}
}

func TestNewRouter_RoleEnforcement(t *testing.T) {
	jwtManager := auth.NewJWTManager("router-secret", time.Hour)
	m := metrics.New(prometheus.NewRegistry())
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.TokenVerifier = jwtManager
		cfg.Metrics = m
	}))

	token := func(role domain.Role) string {
		tok, err := jwtManager.Generate(&domain.Operator{ID: "op-" + string(role), Role: role})
		if err != nil {
			t.Fatalf("generate token: %v", err)
		}
		return tok
	}

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		token      string
		wantStatus int
	}{
		{name: "no token", method: http.MethodGet, path: "/api/v1/accounts/acc-1", wantStatus: http.StatusUnauthorized},
		{name: "viewer reads", method: http.MethodGet, path: "/api/v1/accounts/acc-1", token: token(domain.RoleViewer), wantStatus: http.StatusOK},
		{name: "viewer cannot lock", method: http.MethodPost, path: "/api/v1/ledgers/led-1/lock", token: token(domain.RoleViewer), wantStatus: http.StatusForbidden},
		{name: "treasurer cannot post directly", method: http.MethodPost, path: "/api/v1/journal-entries/", body: `{}`, token: token(domain.RoleTreasurer), wantStatus: http.StatusForbidden},
		{name: "signer cannot release", method: http.MethodPost, path: "/api/v1/escrows/esc-1/milestones/0/release", body: `{}`, token: token(domain.RoleSigner), wantStatus: http.StatusForbidden},
		{name: "treasurer creates account", method: http.MethodPost, path: "/api/v1/accounts/", body: `{"entity_id":"ent-1","name":"Cash","type":"ASSET","currency":"IDR"}`, token: token(domain.RoleTreasurer), wantStatus: http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestNewRouter_AuthDisabledRunsAsSystem(t *testing.T) {
	var created usecase.CreateAccountInput
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.AccountHandler = handler.NewAccountHandler(&stubAccountService{onCreate: func(in usecase.CreateAccountInput) {
			created = in
		}}, stubBalanceService{})
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts/", strings.NewReader(`{"entity_id":"ent-1","name":"Cash","type":"ASSET","currency":"IDR"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if created.Name != "Cash" {
		t.Fatalf("expected account service to be called, got %+v", created)
	}
}

func newRouterConfig(opts ...func(*RouterConfig)) RouterConfig {
	cfg := RouterConfig{
		HealthHandler:     handler.NewHealthHandler(nil, nil),
		EntityHandler:     handler.NewEntityHandler(nil, nil),
		AccountHandler:    handler.NewAccountHandler(&stubAccountService{}, stubBalanceService{}),
		LedgerHandler:     handler.NewLedgerHandler(nil),
		JournalHandler:    handler.NewJournalHandler(nil, nil),
		GovernanceHandler: handler.NewGovernanceHandler(nil),
		VaultHandler:      handler.NewVaultHandler(nil),
		EscrowHandler:     handler.NewEscrowHandler(nil),
		Logger:            zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

type stubAccountService struct {
	onCreate func(usecase.CreateAccountInput)
}

func (s *stubAccountService) CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
	if s.onCreate != nil {
		s.onCreate(input)
	}
	return &domain.Account{ID: "acc", EntityID: input.EntityID, Name: input.Name, Type: input.Type, Currency: input.Currency, Active: true}, nil
}

func (s *stubAccountService) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return &domain.Account{ID: id, Active: true}, nil
}

func (s *stubAccountService) ListAccounts(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error) {
	return []*domain.Account{}, nil
}

func (s *stubAccountService) DeactivateAccount(ctx context.Context, id string) (*domain.Account, error) {
	return &domain.Account{ID: id}, nil
}

type stubBalanceService struct{}

func (stubBalanceService) GetAccountBalance(ctx context.Context, accountID string) (*domain.AccountBalance, error) {
	return &domain.AccountBalance{AccountID: accountID, Type: domain.AccountTypeAsset}, nil
}

type stubIdempotencyStore struct {
	checkCalled  bool
	updateCalled bool
}

func (s *stubIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	s.checkCalled = true
	return false, nil, nil
}

func (s *stubIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	s.updateCalled = true
	return nil
}

func (s *stubIdempotencyStore) Release(ctx context.Context, key string) error {
	return nil
}
