// Package validation checks parsed transactions against required fields and
// the configured settlement rules.
package validation

import (
	"fmt"

	"github.com/Veraticus/restaurant-ai/internal/model"
	"github.com/shopspring/decimal"
)

// IssueKind classifies a validation issue.
type IssueKind string

// Issue kinds. Only missing fields, a failed upstream result, or an empty
// transaction list make a report invalid unless the validator is strict.
const (
	IssueProcessingFailed IssueKind = "processing_failed"
	IssueNoTransactions   IssueKind = "no_transactions"
	IssueMissingField     IssueKind = "missing_field"
	IssueAmountMismatch   IssueKind = "amount_mismatch"
	IssueStatusMismatch   IssueKind = "status_mismatch"
)

// Issue is a single human-readable problem found in a result.
type Issue struct {
	Kind    IssueKind `json:"kind"`
	Message string    `json:"message"`
}

// Report is the outcome of validating one normalized result.
type Report struct {
	Issues []Issue `json:"issues"`
	Valid  bool    `json:"valid"`
}

// Messages returns the issue messages in order.
func (r Report) Messages() []string {
	out := make([]string, 0, len(r.Issues))
	for _, issue := range r.Issues {
		out = append(out, issue.Message)
	}
	return out
}

// Count returns how many issues of kind were raised.
func (r Report) Count(kind IssueKind) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Kind == kind {
			n++
		}
	}
	return n
}

func (r *Report) add(kind IssueKind, invalidates bool, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{Kind: kind, Message: fmt.Sprintf(format, args...)})
	if invalidates {
		r.Valid = false
	}
}

// StatusResolver maps a category to its expected settlement status.
type StatusResolver interface {
	ExpectedStatus(category string) string
}

// Validator applies the business rules to normalized model output.
type Validator struct {
	rules  StatusResolver
	strict bool
}

// Option configures a Validator.
type Option func(*Validator)

// WithStrict makes amount and status mismatches invalidate the report.
func WithStrict(strict bool) Option {
	return func(v *Validator) {
		v.strict = strict
	}
}

// New creates a validator. A nil rules resolver treats every category as
// expecting model.DefaultSettlementStatus.
func New(rules StatusResolver, opts ...Option) *Validator {
	v := &Validator{rules: rules}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ExpectedStatus returns the settlement status expected for category.
func (v *Validator) ExpectedStatus(category string) string {
	if v.rules == nil {
		return model.DefaultSettlementStatus
	}
	return v.rules.ExpectedStatus(category)
}

// Validate checks every transaction in out. expected may be nil when no
// amount is known. Checking continues past invalid records so the report
// lists every issue.
func (v *Validator) Validate(out model.NormalizedOutput, expected *decimal.Decimal) Report {
	report := Report{Valid: true, Issues: []Issue{}}

	if !out.Succeeded() {
		report.add(IssueProcessingFailed, true, "processing failed")
		return report
	}

	records := out.Records()
	if len(records) == 0 {
		report.add(IssueNoTransactions, true, "no transactions found")
		return report
	}

	for i, record := range records {
		index := i + 1

		for _, field := range model.RequiredFields {
			if _, ok := record[field]; !ok {
				report.add(IssueMissingField, true, "transaction %d is missing field %s", index, field)
			}
		}

		txn, err := model.TransactionFromMap(record)

		if expected != nil {
			if _, present := record[model.FieldAmount]; present {
				switch {
				case err != nil:
					report.add(IssueAmountMismatch, v.strict, "transaction %d amount mismatch: expected %s, got %v", index, expected.String(), record[model.FieldAmount])
				case !txn.HasAmount || !txn.Amount.Equal(*expected):
					report.add(IssueAmountMismatch, v.strict, "transaction %d amount mismatch: expected %s, got %s", index, expected.String(), amountString(txn))
				}
			}
		}

		if _, present := record[model.FieldStatus]; present {
			want := v.ExpectedStatus(txn.Category)
			if txn.Status != want {
				report.add(IssueStatusMismatch, v.strict, "transaction %d status may be wrong: %s should be %s, got %s", index, txn.Category, want, txn.Status)
			}
		}
	}

	return report
}

func amountString(txn model.Transaction) string {
	if !txn.HasAmount {
		return "null"
	}
	return txn.Amount.String()
}
