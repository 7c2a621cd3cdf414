// Package model defines the core domain models used throughout the application.
package model

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Field names of a transaction record as emitted by the model.
const (
	FieldType     = "type"
	FieldCategory = "category"
	FieldAmount   = "amount"
	FieldStatus   = "status"
)

// RequiredFields lists the fields every transaction record must carry, in report order.
var RequiredFields = []string{FieldType, FieldCategory, FieldAmount, FieldStatus}

// Transaction is a single restaurant transaction extracted from a model reply.
type Transaction struct {
	Type     string // income or expense
	Category string // e.g. dine-in, takeout, delivery platform
	Status   string // settlement status, e.g. paid or receivable
	Amount   decimal.Decimal
	// HasAmount is false when the record carried no usable amount.
	HasAmount bool
}

// TransactionFromMap builds a typed Transaction from a decoded JSON record.
// Missing fields are left empty; an amount that is present but not numeric is an error.
func TransactionFromMap(record map[string]any) (Transaction, error) {
	txn := Transaction{
		Type:     stringField(record, FieldType),
		Category: stringField(record, FieldCategory),
		Status:   stringField(record, FieldStatus),
	}

	raw, ok := record[FieldAmount]
	if !ok || raw == nil {
		return txn, nil
	}

	amount, err := ParseAmount(raw)
	if err != nil {
		return txn, err
	}
	txn.Amount = amount
	txn.HasAmount = true

	return txn, nil
}

// ParseAmount converts a decoded JSON amount (number or numeric string) to a decimal.
func ParseAmount(raw any) (decimal.Decimal, error) {
	switch v := raw.(type) {
	case json.Number:
		return decimal.NewFromString(v.String())
	case float64:
		return decimal.NewFromFloat(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case string:
		cleaned := strings.TrimSpace(strings.ReplaceAll(v, ",", ""))
		return decimal.NewFromString(cleaned)
	default:
		return decimal.Zero, fmt.Errorf("unsupported amount type %T", raw)
	}
}

func stringField(record map[string]any, key string) string {
	v, ok := record[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
