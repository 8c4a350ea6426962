// Package models defines the client-side data model of the receipt engine:
// documents (receipts), contracts and the status register.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status classifies the lifecycle state of a document.
type Status string

const (
	StatusIssued    Status = "issued"
	StatusSent      Status = "sent"
	StatusPaid      Status = "paid"
	StatusOverdue   Status = "overdue"
	StatusSuspended Status = "suspended"
	StatusRevoked   Status = "revoked"
)

// Valid reports whether s is one of the known status values.
func (s Status) Valid() bool {
	switch s {
	case StatusIssued, StatusSent, StatusPaid, StatusOverdue, StatusSuspended, StatusRevoked:
		return true
	}
	return false
}

// Issuer is an optional name/document pair used when a receipt is emitted
// on behalf of someone other than the account owner.
type Issuer struct {
	Name     string `json:"name"`
	Document string `json:"document"`
}

// Document is a single receipt record held in the local cache.
//
// The Id is globally unique within the cache: either assigned by the remote
// store that created the record first, or a client-generated UUID for
// local-only records. SequenceLabel is the human-readable number; client
// records carry a provisional label until a remote confirms a canonical one.
type Document struct {
	// Id is a globally unique identifier for the document.
	Id string

	// SequenceLabel is the human-readable receipt number.
	SequenceLabel string

	PayerName     string
	PayerDocument string

	// Amount is the receipt value. Stored as exact decimal, never float.
	Amount decimal.Decimal

	// IssueDate is the emission date; only the calendar date is significant.
	IssueDate time.Time

	Description   string
	PaymentMethod string

	Status Status

	// LogoRef and SignatureRef are opaque references to external assets.
	LogoRef      string
	SignatureRef string

	// IssuerOverride, when set, marks the document as emitted on behalf of
	// a third party. SignatureRef then points to the override's signature.
	IssuerOverride *Issuer

	// ContractId back-references the originating contract. Used only for
	// recurrence de-duplication, not an ownership relation.
	ContractId string

	// Pending marks a record that has not been confirmed by any remote
	// store yet (local-only, awaiting sync).
	Pending bool
}

// MonthKey returns the "YYYY-MM" bucket of the issue date, the
// de-duplication key used by the recurring generator.
func (d Document) MonthKey() string {
	return d.IssueDate.Format("2006-01")
}
