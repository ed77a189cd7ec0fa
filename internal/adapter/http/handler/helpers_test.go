package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/iho/govledger/internal/adapter/http/dto"
	"github.com/iho/govledger/internal/domain"
)

func TestParseIntQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/accounts?limit=50", nil)
	if got := parseIntQuery(req, "limit", 10); got != 50 {
		t.Fatalf("expected limit=50, got %d", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/accounts?limit=invalid", nil)
	if got := parseIntQuery(req, "limit", 10); got != 10 {
		t.Fatalf("expected fallback to default, got %d", got)
	}

	req.URL = &url.URL{RawQuery: ""}
	if got := parseIntQuery(req, "limit", 25); got != 25 {
		t.Fatalf("expected default when missing, got %d", got)
	}
}

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"account not found", domain.ErrAccountNotFound, http.StatusNotFound},
		{"wrapped ledger not found", fmt.Errorf("load: %w", domain.ErrLedgerNotFound), http.StatusNotFound},
		{"ledger locked", domain.ErrLedgerLocked, http.StatusConflict},
		{"duplicate signature", domain.ErrDuplicateSignature, http.StatusConflict},
		{"already executed", domain.ErrAlreadyExecuted, http.StatusConflict},
		{"already released", domain.ErrAlreadyReleased, http.StatusConflict},
		{"imbalanced", domain.ErrImbalancedEntry, http.StatusUnprocessableEntity},
		{"governance rejected", &domain.GovernanceRejectedError{}, http.StatusUnprocessableEntity},
		{"governance required", fmt.Errorf("%w: OUTFLOW", domain.ErrGovernanceRequired), http.StatusUnprocessableEntity},
		{"bad credential", domain.ErrAuthenticationFailed, http.StatusUnauthorized},
		{"invalid line", domain.ErrInvalidLine, http.StatusBadRequest},
		{"over allocated", domain.ErrOverAllocated, http.StatusBadRequest},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapDomainError(tt.err); got != tt.expected {
				t.Fatalf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	payload := map[string]string{"status": "ok"}

	writeJSON(rr, http.StatusCreated, payload)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected JSON content type, got %s", ct)
	}
}

func TestWriteDomainError_HidesInternalErrors(t *testing.T) {
	rr := httptest.NewRecorder()
	writeDomainError(rr, "failed", errors.New("pq: connection refused"))

	var resp dto.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rr.Code != http.StatusInternalServerError || resp.Message != "internal error" {
		t.Fatalf("unexpected response %d %+v", rr.Code, resp)
	}
}

func TestWriteDomainError_IncludesGovernanceReasons(t *testing.T) {
	rr := httptest.NewRecorder()
	writeDomainError(rr, "rejected", &domain.GovernanceRejectedError{Reasons: []domain.Reason{
		{Gate: domain.GateEnvelope, Code: "RAE_OUTFLOW_LIMIT", Message: "too large"},
	}})

	var resp dto.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rr.Code)
	}
	if len(resp.Reasons) != 1 || resp.Reasons[0].Code != "RAE_OUTFLOW_LIMIT" {
		t.Fatalf("expected reasons in body, got %+v", resp.Reasons)
	}
}
