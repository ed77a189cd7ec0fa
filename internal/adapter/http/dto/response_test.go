package dto

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/govledger/internal/domain"
	"github.com/iho/govledger/internal/usecase"
)

func TestBalanceFromDomain(t *testing.T) {
	b := &domain.AccountBalance{
		AccountID: "acc-1",
		Type:      domain.AccountTypeLiability,
		Currency:  "IDR",
		Debit:     decimal.NewFromInt(200),
		Credit:    decimal.NewFromInt(1_000),
	}

	resp := BalanceFromDomain(b)
	if !resp.Balance.Equal(decimal.NewFromInt(800)) {
		t.Fatalf("expected credit-normal balance 800, got %s", resp.Balance)
	}
}

func TestPostingFromUseCase_EncodesAmountsAsStrings(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	res := &usecase.PostResult{
		Entry: &domain.JournalEntry{
			ID:          "je-1",
			TotalDebit:  decimal.NewFromInt(5),
			TotalCredit: decimal.NewFromInt(5),
			Lines: []*domain.JournalLine{
				{ID: "l-1", AccountID: "a", Debit: decimal.NewFromInt(5), Credit: decimal.Zero, Currency: "IDR"},
			},
		},
		Event: &domain.TransactionEvent{ID: "ev-1", Timestamp: now, EventHash: "h1", PreviousHash: "h0"},
	}

	data, err := json.Marshal(PostingFromUseCase(res))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	body := string(data)
	if !strings.Contains(body, `"total_debit":"5"`) {
		t.Fatalf("expected string-encoded totals, got %s", body)
	}
	if !strings.Contains(body, `"event_hash":"h1"`) {
		t.Fatalf("expected event hash, got %s", body)
	}

	if PostingFromUseCase(nil) != nil {
		t.Fatal("expected nil for nil result")
	}
}

func TestEscrowFromDomain(t *testing.T) {
	c := &domain.EscrowContract{
		ID:          "esc-1",
		TotalBudget: decimal.NewFromInt(1_000),
		LockedFunds: decimal.NewFromInt(1_000),
		Milestones: []*domain.Milestone{
			{Index: 0, Phase: "foundation", Percentage: decimal.NewFromInt(30), Allocation: decimal.NewFromInt(300), Status: domain.MilestoneStatusLocked},
		},
	}

	resp := EscrowFromDomain(c)
	if len(resp.Milestones) != 1 || resp.Milestones[0].Status != "LOCKED" {
		t.Fatalf("unexpected milestones %+v", resp.Milestones)
	}
}
