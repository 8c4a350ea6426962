package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmribeiro/recibox/internal/models"
)

// defaultLookaheadDays is the inclusive window before a contract's
// recurrence date during which a receipt may be auto-generated.
const defaultLookaheadDays = 10

// GeneratorOptions tunes receipt generation.
type GeneratorOptions struct {
	// DefaultPaymentMethod is stamped on every generated receipt.
	DefaultPaymentMethod string

	// LookaheadDays overrides the generation window; zero means the
	// default of 10 days.
	LookaheadDays int
}

// Generate computes the receipts to synthesize for the current month.
//
// It is a pure function: for each eligible contract (recurrence enabled, day
// of month 1-28) whose recurrence date this month lies between today and
// today+lookahead inclusive, a receipt is generated unless one for the same
// contract and calendar month already exists. Callers must merge the output
// into existingDocuments before calling again; given that, a second call with
// the same inputs generates nothing.
func Generate(today time.Time, contracts []models.Contract, existingDocuments []models.Document, opts GeneratorOptions) []models.Document {
	lookahead := opts.LookaheadDays
	if lookahead == 0 {
		lookahead = defaultLookaheadDays
	}

	// de-duplication key is contract + calendar month, not exact day
	seen := make(map[string]struct{}, len(existingDocuments))
	for _, d := range existingDocuments {
		if d.ContractId == "" {
			continue
		}
		seen[d.ContractId+"|"+d.MonthKey()] = struct{}{}
	}

	day := dateOf(today)

	var generated []models.Document
	for _, c := range contracts {
		if !c.RecurrenceValid() {
			continue
		}

		target := time.Date(day.Year(), day.Month(), c.RecurrenceDayOfMonth, 0, 0, 0, 0, day.Location())
		diffDays := daysBetween(day, target)
		if diffDays < 0 || diffDays > lookahead {
			continue
		}

		key := c.Id + "|" + target.Format("2006-01")
		if _, ok := seen[key]; ok {
			continue
		}

		generated = append(generated, models.Document{
			Id:            uuid.NewString(),
			SequenceLabel: fmt.Sprintf("REC-%s-%s", target.Format("200601"), c.Id),
			PayerName:     c.PayerName,
			PayerDocument: c.PayerDocument,
			Amount:        c.MonthlyAmount,
			IssueDate:     target,
			Description:   c.Description,
			PaymentMethod: opts.DefaultPaymentMethod,
			Status:        models.StatusIssued,
			SignatureRef:  c.SignatureRef,
			ContractId:    c.Id,
			Pending:       true,
		})
		seen[key] = struct{}{}
	}

	return generated
}

// dateOf truncates a timestamp to its calendar date.
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// daysBetween counts calendar days from a to b. Both dates are re-anchored at
// UTC midnight first; wall-clock subtraction would be off by an hour around
// DST transitions and truncate to the wrong day count.
func daysBetween(a, b time.Time) int {
	au := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bu := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bu.Sub(au).Hours() / 24)
}
