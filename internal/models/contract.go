package models

import "github.com/shopspring/decimal"

// Contract is a read-only snapshot of a billing contract owned by the
// contract-management subsystem. The engine only consumes it as input to
// the recurring generator.
type Contract struct {
	Id string

	// RecurrenceEnabled turns monthly generation on for this contract.
	RecurrenceEnabled bool

	// RecurrenceDayOfMonth is the day a receipt falls due, valid range 1-28.
	RecurrenceDayOfMonth int

	MonthlyAmount decimal.Decimal

	PayerName     string
	PayerDocument string
	Description   string

	// SignatureRef is inherited by generated documents when present.
	SignatureRef string
}

// RecurrenceValid reports whether the contract is eligible for generation:
// recurrence is enabled and the day of month is in the 1-28 range.
func (c Contract) RecurrenceValid() bool {
	return c.RecurrenceEnabled && c.RecurrenceDayOfMonth >= 1 && c.RecurrenceDayOfMonth <= 28
}
