package model

// DefaultSettlementStatus is assumed for categories without a settlement rule.
const DefaultSettlementStatus = "paid"

// SettlementRule describes how a category is expected to settle.
type SettlementRule struct {
	Status    string
	DelayDays int
}
