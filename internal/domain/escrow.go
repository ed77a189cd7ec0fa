package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// MilestoneStatus is the release state of a milestone.
type MilestoneStatus string

const (
	MilestoneStatusLocked   MilestoneStatus = "LOCKED"
	MilestoneStatusReleased MilestoneStatus = "RELEASED"
)

var hundred = decimal.NewFromInt(100)

// Milestone is one phase of an escrow contract.
type Milestone struct {
	Index      int
	Phase      string
	Percentage decimal.Decimal
	Allocation decimal.Decimal
	Status     MilestoneStatus
	Auditor    string
	ProofHash  string
	ReleasedAt *time.Time
}

// EscrowContract tracks milestone-based release of a fixed budget. Its
// bookkeeping is advisory; the ledger of record is the journal.
type EscrowContract struct {
	ID               string
	ProjectName      string
	TotalBudget      decimal.Decimal
	LockedFunds      decimal.Decimal
	ReleasedFunds    decimal.Decimal
	Currency         string
	LedgerID         string
	FundingAccountID string
	PayoutAccountID  string
	Milestones       []*Milestone
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// AllocatedPercentage sums the percentages of all milestones.
func (c *EscrowContract) AllocatedPercentage() decimal.Decimal {
	total := decimal.Zero
	for _, m := range c.Milestones {
		total = total.Add(m.Percentage)
	}

	return total
}

// DefineMilestone appends a milestone with allocation = trunc(budget * pct / 100).
func (c *EscrowContract) DefineMilestone(phase string, percentage decimal.Decimal, now time.Time) (*Milestone, error) {
	if !percentage.IsPositive() || percentage.GreaterThan(hundred) {
		return nil, ErrInvalidPercentage
	}

	if c.AllocatedPercentage().Add(percentage).GreaterThan(hundred) {
		return nil, fmt.Errorf("%w: %s already allocated", ErrOverAllocated, c.AllocatedPercentage())
	}

	m := &Milestone{
		Index:      len(c.Milestones),
		Phase:      phase,
		Percentage: percentage,
		Allocation: c.TotalBudget.Mul(percentage).Div(hundred).Truncate(0),
		Status:     MilestoneStatusLocked,
	}
	c.Milestones = append(c.Milestones, m)
	c.UpdatedAt = now

	return m, nil
}

// Release flips milestone index to RELEASED and moves its allocation from
// locked to released funds. A second release fails without changing funds.
func (c *EscrowContract) Release(index int, auditor, proofHash string, now time.Time) (*Milestone, error) {
	if index < 0 || index >= len(c.Milestones) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidIndex, index)
	}

	m := c.Milestones[index]
	if m.Status == MilestoneStatusReleased {
		return nil, ErrAlreadyReleased
	}

	m.Status = MilestoneStatusReleased
	m.Auditor = auditor
	m.ProofHash = proofHash
	m.ReleasedAt = &now

	c.LockedFunds = c.LockedFunds.Sub(m.Allocation)
	c.ReleasedFunds = c.ReleasedFunds.Add(m.Allocation)
	c.UpdatedAt = now

	return m, nil
}
