package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"
)

func captureOutput(t *testing.T, fn func()) string {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	fn()

	_ = w.Close()
	os.Stdout = origStdout

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		t.Fatalf("failed to read stdout: %v", err)
	}
	return buf.String()
}

func withServer(t *testing.T, h http.HandlerFunc) {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	origURL, origToken, origTimeout := baseURL, token, timeout
	baseURL, token, timeout = srv.URL, "tok-123", 5*time.Second
	t.Cleanup(func() { baseURL, token, timeout = origURL, origToken, origTimeout })
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("expected short unchanged, got %q", got)
	}

	if got := truncate("longerstring", 6); got != "lon..." {
		t.Fatalf("expected lon..., got %q", got)
	}

	if got := truncate("abcdef", 2); got != "ab" {
		t.Fatalf("expected ab, got %q", got)
	}
}

func TestPrintJSON(t *testing.T) {
	out := captureOutput(t, func() {
		printJSON(struct {
			A int `json:"a"`
		}{A: 1})
	})

	expected := "{\n  \"a\": 1\n}\n"
	if out != expected {
		t.Fatalf("unexpected json output:\n%s", out)
	}
}

func TestHashCredentialCmd(t *testing.T) {
	orig := hashCredential
	hashCredential = func(credential string) (string, error) {
		return "hashed-" + credential, nil
	}
	defer func() { hashCredential = orig }()

	cmd := hashCredentialCmd()
	cmd.SetArgs([]string{"secret"})

	out := captureOutput(t, func() {
		if err := cmd.Execute(); err != nil {
			t.Fatalf("command failed: %v", err)
		}
	})

	if strings.TrimSpace(out) != "hashed-secret" {
		t.Fatalf("expected hashed-secret, got %q", out)
	}
}

func TestIssueTokenCmd_RejectsUnknownRole(t *testing.T) {
	cmd := issueTokenCmd()
	cmd.SetArgs([]string{"--secret", "s", "--id", "op-1", "--role", "root"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestCall_SendsJSONWithBearer(t *testing.T) {
	var gotAuth, gotPath string
	var gotBody map[string]any

	withServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"vp-1"}`))
	})

	var out struct {
		ID string `json:"id"`
	}
	if err := call(http.MethodPost, "/api/v1/vault/proposals", map[string]any{"title": "Bridge"}, &out); err != nil {
		t.Fatalf("call failed: %v", err)
	}

	if gotAuth != "Bearer tok-123" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
	if gotPath != "/api/v1/vault/proposals" || gotBody["title"] != "Bridge" {
		t.Fatalf("unexpected request %s %v", gotPath, gotBody)
	}
	if out.ID != "vp-1" {
		t.Fatalf("unexpected response %+v", out)
	}
}

func TestCall_ReturnsAPIError(t *testing.T) {
	withServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"ledger is locked"}`))
	})

	err := call(http.MethodPost, "/api/v1/ledgers/led-1/lock", nil, nil)

	var apiErr *apiError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected apiError, got %v", err)
	}
	if apiErr.Status != http.StatusConflict || !strings.Contains(apiErr.Error(), "ledger is locked") {
		t.Fatalf("unexpected error %v", apiErr)
	}
}

func TestLedgerEntriesCmd_PrintsTable(t *testing.T) {
	withServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("limit") != "5" {
			t.Errorf("expected limit=5, got %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`[{"id":"01HZX0000000000000000000AA","transaction_type":"INFLOW","total_debit":"100","created_by":"admin"}]`))
	})

	cmd := ledgerCmd()
	cmd.SetArgs([]string{"entries", "led-1", "--limit", "5"})

	out := captureOutput(t, func() {
		if err := cmd.Execute(); err != nil {
			t.Fatalf("command failed: %v", err)
		}
	})

	if !strings.Contains(out, "01HZX0000...") || !strings.Contains(out, "INFLOW") {
		t.Fatalf("unexpected table:\n%s", out)
	}
}
