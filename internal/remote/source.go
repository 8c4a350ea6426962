// Package remote contains the adapters for the two remote receipt stores.
// Each adapter converts its store's wire schema into models.Document and
// converts transport failures into sentinel errors; no raw transport error
// ever leaves this package.
package remote

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmribeiro/recibox/internal/models"
)

var (
	// ErrUnavailable means the store could not be reached at all.
	ErrUnavailable = errors.New("remote source unavailable")

	// ErrRejected means the store answered but refused the operation.
	ErrRejected = errors.New("remote source rejected the request")
)

// TokenProvider returns a bearer token for outbound requests. An empty token
// with nil error means "send the request unauthenticated".
type TokenProvider func(ctx context.Context) (string, error)

// CreatePayload carries the fields a store needs to create a receipt.
// Adapters pick the subset their schema supports.
type CreatePayload struct {
	PayerName     string
	PayerDocument string
	Amount        decimal.Decimal
	IssueDate     time.Time
	Description   string
	PaymentMethod string

	// LinkedIncomeId optionally ties the receipt to an income record.
	// Only the primary store understands it.
	LinkedIncomeId string

	// SignatureId optionally selects a signature asset.
	SignatureId string

	// IssuerName/IssuerDocument form the optional issuer override.
	IssuerName     string
	IssuerDocument string

	ContractId string
}

// Source is the capability set shared by both remote stores.
type Source interface {
	// List fetches every receipt the store knows about, already mapped to
	// Documents. Records that fail to map are skipped, not fatal.
	List(ctx context.Context) ([]models.Document, error)

	// Create stores a new receipt and returns it with the store-assigned
	// id and sequence label.
	Create(ctx context.Context, payload CreatePayload) (*models.Document, error)

	// Remove deletes a receipt by id.
	Remove(ctx context.Context, id string) error

	// ProbeAvailability reports whether the store is reachable right now.
	// It never returns an error; absence of network is a normal outcome.
	ProbeAvailability(ctx context.Context) bool
}
