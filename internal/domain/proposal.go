package domain

import (
	"github.com/shopspring/decimal"
)

// FlowType is the direction of a proposed capital movement.
type FlowType string

const (
	FlowTypeInflow   FlowType = "INFLOW"
	FlowTypeOutflow  FlowType = "OUTFLOW"
	FlowTypeInternal FlowType = "INTERNAL"
)

// IsValid reports whether f is a known flow type.
func (f FlowType) IsValid() bool {
	switch f {
	case FlowTypeInflow, FlowTypeOutflow, FlowTypeInternal:
		return true
	default:
		return false
	}
}

// EventType maps the flow to the event type recorded on posting.
func (f FlowType) EventType() EventType {
	switch f {
	case FlowTypeInflow:
		return EventTypeInflow
	case FlowTypeOutflow:
		return EventTypeOutflow
	case FlowTypeInternal:
		return EventTypeInternalTransfer
	default:
		return ""
	}
}

// Proposal is a capital movement submitted for governance review. Approved
// proposals are posted as a two-line entry: debit DebitAccountID, credit
// CreditAccountID.
type Proposal struct {
	ID                string
	FlowType          FlowType
	EventType         EventType
	LedgerID          string
	DebitAccountID    string
	CreditAccountID   string
	Amount            decimal.Decimal
	Currency          string
	RiskTags          []string
	VaultProposalID   string
	DecisionReference string
	SourceSystem      string
	Jurisdiction      string
	CapitalMobility   int
	Headlines         []string
	SubmittedBy       string
}

// ResolvedEventType returns the explicit event type or the flow default.
func (p *Proposal) ResolvedEventType() EventType {
	if p.EventType != "" {
		return p.EventType
	}

	return p.FlowType.EventType()
}

// VerdictStatus is the outcome of the governance gate chain.
type VerdictStatus string

const (
	VerdictApproved VerdictStatus = "APPROVED_FOR_EXECUTION"
	VerdictRejected VerdictStatus = "REJECTED"
)

// Gate identifies a governance gate.
type Gate string

const (
	GateEnvelope     Gate = "RISK_APPETITE_ENVELOPE"
	GateQuorum       Gate = "MULTI_SIGNATURE_QUORUM"
	GateConstitution Gate = "CONSTITUTIONAL_CONSTRAINTS"
)

// Reason explains a single gate violation.
type Reason struct {
	Gate      Gate   `json:"gate"`
	Code      string `json:"code"`
	Principle int    `json:"principle,omitempty"`
	Message   string `json:"message"`
}

// Verdict is the structured result of evaluating a proposal.
type Verdict struct {
	Status  VerdictStatus `json:"status"`
	Reasons []Reason      `json:"reasons,omitempty"`
}

// Approved reports whether every gate passed.
func (v Verdict) Approved() bool {
	return v.Status == VerdictApproved
}

// Err converts a rejected verdict into a GovernanceRejectedError.
func (v Verdict) Err() error {
	if v.Approved() {
		return nil
	}

	return &GovernanceRejectedError{Reasons: v.Reasons}
}
