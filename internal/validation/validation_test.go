package validation

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/Veraticus/restaurant-ai/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ruleTable is a fixed StatusResolver for tests.
type ruleTable map[string]string

func (r ruleTable) ExpectedStatus(category string) string {
	if status, ok := r[category]; ok {
		return status
	}
	return model.DefaultSettlementStatus
}

var rules = ruleTable{
	"dine-in":           "paid",
	"delivery-platform": "receivable",
}

func output(records ...map[string]any) model.NormalizedOutput {
	list := make([]any, 0, len(records))
	for _, r := range records {
		list = append(list, r)
	}
	return model.NormalizedOutput{Data: map[string]any{"transactions": list}}
}

func record(txnType, category string, amount any, status string) map[string]any {
	return map[string]any{
		"type":     txnType,
		"category": category,
		"amount":   amount,
		"status":   status,
	}
}

func amount(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestValidator_FailedUpstream(t *testing.T) {
	report := New(rules).Validate(model.NormalizedOutput{Err: errors.New("no JSON found")}, nil)

	assert.False(t, report.Valid)
	assert.Equal(t, []string{"processing failed"}, report.Messages())
	assert.Equal(t, 1, report.Count(IssueProcessingFailed))
}

func TestValidator_NoTransactions(t *testing.T) {
	tests := []struct {
		name string
		out  model.NormalizedOutput
	}{
		{name: "absent key", out: model.NormalizedOutput{Data: map[string]any{"total": 100}}},
		{name: "empty list", out: model.NormalizedOutput{Data: map[string]any{"transactions": []any{}}}},
		{name: "wrong type", out: model.NormalizedOutput{Data: map[string]any{"transactions": "none"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := New(rules).Validate(tt.out, nil)
			assert.False(t, report.Valid)
			assert.Equal(t, []string{"no transactions found"}, report.Messages())
		})
	}
}

func TestValidator_MissingStatus(t *testing.T) {
	rec := record("income", "dine-in", 100, "")
	delete(rec, "status")

	report := New(rules).Validate(output(rec), nil)

	assert.False(t, report.Valid)
	require.Equal(t, 1, report.Count(IssueMissingField))
	assert.Equal(t, "transaction 1 is missing field status", report.Issues[0].Message)
	assert.Len(t, report.Issues, 1)
}

func TestValidator_StatusMismatchIsAdvisory(t *testing.T) {
	out := output(record("income", "delivery-platform", 250, "paid"))

	report := New(rules).Validate(out, nil)

	assert.True(t, report.Valid)
	require.Len(t, report.Issues, 1)
	assert.Equal(t, IssueStatusMismatch, report.Issues[0].Kind)
	assert.Equal(t, "transaction 1 status may be wrong: delivery-platform should be receivable, got paid", report.Issues[0].Message)
}

func TestValidator_Strict(t *testing.T) {
	out := output(record("income", "delivery-platform", 250, "paid"))

	report := New(rules, WithStrict(true)).Validate(out, amount("300"))

	assert.False(t, report.Valid)
	assert.Equal(t, 1, report.Count(IssueStatusMismatch))
	assert.Equal(t, 1, report.Count(IssueAmountMismatch))
}

func TestValidator_ExpectedAmount(t *testing.T) {
	tests := []struct {
		amount       any
		name         string
		expected     *decimal.Decimal
		wantMismatch bool
	}{
		{name: "json number equal", amount: json.Number("100"), expected: amount("100")},
		{name: "numeric string equal", amount: "100", expected: amount("100")},
		{name: "float equal", amount: 100.0, expected: amount("100.00")},
		{name: "string amount equal", amount: "1,250.50", expected: amount("1250.5")},
		{name: "different", amount: 80, expected: amount("100"), wantMismatch: true},
		{name: "not numeric", amount: "lots", expected: amount("100"), wantMismatch: true},
		{name: "null amount", amount: nil, expected: amount("100"), wantMismatch: true},
		{name: "no expectation", amount: 80},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := New(rules).Validate(output(record("income", "dine-in", tt.amount, "paid")), tt.expected)

			assert.True(t, report.Valid, "amount mismatches are advisory")
			if tt.wantMismatch {
				assert.Equal(t, 1, report.Count(IssueAmountMismatch))
			} else {
				assert.Empty(t, report.Issues)
			}
		})
	}
}

func TestValidator_AccumulatesAcrossRecords(t *testing.T) {
	missingType := record("", "dine-in", 100, "paid")
	delete(missingType, "type")
	missingBoth := record("expense", "", 0, "")
	delete(missingBoth, "category")
	delete(missingBoth, "amount")

	out := output(
		record("income", "dine-in", 100, "paid"),
		missingType,
		missingBoth,
		record("income", "delivery-platform", 100, "paid"),
	)

	report := New(rules).Validate(out, nil)

	assert.False(t, report.Valid)
	assert.Equal(t, []string{
		"transaction 2 is missing field type",
		"transaction 3 is missing field category",
		"transaction 3 is missing field amount",
		"transaction 3 status may be wrong:  should be paid, got ",
		"transaction 4 status may be wrong: delivery-platform should be receivable, got paid",
	}, report.Messages())
}

func TestValidator_ExpectedStatus(t *testing.T) {
	assert.Equal(t, "paid", New(rules).ExpectedStatus("unknown-category"))
	assert.Equal(t, "receivable", New(rules).ExpectedStatus("delivery-platform"))
	assert.Equal(t, "paid", New(nil).ExpectedStatus("delivery-platform"))
}

func TestValidator_NonObjectRecord(t *testing.T) {
	out := model.NormalizedOutput{Data: map[string]any{"transactions": []any{"lunch 100"}}}

	report := New(rules).Validate(out, nil)

	assert.False(t, report.Valid)
	assert.Equal(t, 4, report.Count(IssueMissingField))
}
