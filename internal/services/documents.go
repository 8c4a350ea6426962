package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmribeiro/recibox/internal/dbx"
	"github.com/dmribeiro/recibox/internal/logging"
	"github.com/dmribeiro/recibox/internal/models"
	"github.com/dmribeiro/recibox/internal/remote"
	"github.com/dmribeiro/recibox/internal/repositories/documents"
	"github.com/dmribeiro/recibox/internal/repositories/tombstones"
)

var (
	ErrInvalidStatus = errors.New("invalid status")
	ErrDeleted       = errors.New("document was deleted")
)

// Reauthenticator re-validates the current user's password. Deletes are
// irreversible and must pass this check before any state changes.
type Reauthenticator interface {
	Reauthenticate(ctx context.Context, password []byte) error
}

// CreateInput carries the user-supplied fields of a new receipt.
type CreateInput struct {
	PayerName      string
	PayerDocument  string
	Amount         decimal.Decimal
	IssueDate      time.Time
	Description    string
	PaymentMethod  string
	LogoRef        string
	SignatureRef   string
	IssuerOverride *models.Issuer
	ContractId     string
	LinkedIncomeId string
}

// DocumentService exposes the user-facing mutations on the document
// collection: create with remote fallback, irreversible delete, and status
// transitions.
type DocumentService interface {
	List(ctx context.Context) ([]models.Document, error)
	Create(ctx context.Context, input CreateInput) (*models.Document, error)
	Delete(ctx context.Context, id string, password []byte) error
	UpdateStatus(ctx context.Context, id string, status models.Status) error
}

type documentService struct {
	db        *sql.DB
	docs      documents.Repository
	tombs     tombstones.Repository
	primary   remote.Source
	secondary remote.Source
	auth      Reauthenticator
	logger    logging.Logger
}

func NewDocumentService(
	db *sql.DB,
	docs documents.Repository,
	tombs tombstones.Repository,
	primary, secondary remote.Source,
	auth Reauthenticator,
	logger logging.Logger,
) DocumentService {
	return &documentService{
		db:        db,
		docs:      docs,
		tombs:     tombs,
		primary:   primary,
		secondary: secondary,
		auth:      auth,
		logger:    logger.With("component", "documents"),
	}
}

func (s *documentService) List(ctx context.Context) ([]models.Document, error) {
	docs, err := s.docs.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing documents: %w", err)
	}
	return docs, nil
}

// Create builds the document optimistically in the local cache, then tries
// to propagate it: primary first, secondary on primary failure. Whichever
// store succeeds supplies the canonical id and sequence label, replacing the
// provisional ones. If both fail the local-only record stays, flagged
// Pending. The returned document is always settled.
func (s *documentService) Create(ctx context.Context, input CreateInput) (*models.Document, error) {
	local := &models.Document{
		Id:             uuid.NewString(),
		SequenceLabel:  provisionalLabel(),
		PayerName:      input.PayerName,
		PayerDocument:  input.PayerDocument,
		Amount:         input.Amount,
		IssueDate:      input.IssueDate,
		Description:    input.Description,
		PaymentMethod:  input.PaymentMethod,
		Status:         models.StatusIssued,
		LogoRef:        input.LogoRef,
		SignatureRef:   input.SignatureRef,
		IssuerOverride: input.IssuerOverride,
		ContractId:     input.ContractId,
		Pending:        true,
	}

	// optimistic local write; a failed save is logged, not fatal
	if err := s.docs.Upsert(ctx, local); err != nil {
		s.logger.Error(ctx, "optimistic local save failed", "id", local.Id, "error", err)
	}

	payload := remote.CreatePayload{
		PayerName:      input.PayerName,
		PayerDocument:  input.PayerDocument,
		Amount:         input.Amount,
		IssueDate:      input.IssueDate,
		Description:    input.Description,
		PaymentMethod:  input.PaymentMethod,
		LinkedIncomeId: input.LinkedIncomeId,
		SignatureId:    input.SignatureRef,
		ContractId:     input.ContractId,
	}
	if input.IssuerOverride != nil {
		payload.IssuerName = input.IssuerOverride.Name
		payload.IssuerDocument = input.IssuerOverride.Document
	}

	created := s.tryRemoteCreate(ctx, s.primary, "primary", payload)
	if created == nil {
		created = s.tryRemoteCreate(ctx, s.secondary, "secondary", payload)
	}
	if created == nil {
		s.logger.Warn(ctx, "document not yet synced to any store", "id", local.Id)
		return local, nil
	}

	// the winner's id and label are canonical; carry over fields the
	// store's schema may have dropped
	settled := *created
	settled.Pending = false
	if settled.LogoRef == "" {
		settled.LogoRef = input.LogoRef
	}
	if settled.SignatureRef == "" {
		settled.SignatureRef = input.SignatureRef
	}
	if settled.IssuerOverride == nil {
		settled.IssuerOverride = input.IssuerOverride
	}
	if settled.ContractId == "" {
		settled.ContractId = input.ContractId
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := documents.NewSQLiteRepository(tx)
		if settled.Id != local.Id {
			if err := repo.DeleteByID(ctx, local.Id); err != nil {
				return err
			}
		}
		return repo.Upsert(ctx, &settled)
	})
	if err != nil {
		s.logger.Error(ctx, "failed to settle created document", "id", settled.Id, "error", err)
	}

	return &settled, nil
}

func (s *documentService) tryRemoteCreate(ctx context.Context, src remote.Source, name string, payload remote.CreatePayload) *models.Document {
	if !src.ProbeAvailability(ctx) {
		s.logger.Info(ctx, "store unavailable for create", "source", name)
		return nil
	}
	created, err := src.Create(ctx, payload)
	if err != nil {
		s.logger.Warn(ctx, "remote create failed", "source", name, "error", err)
		return nil
	}
	return created
}

// Delete removes a document forever. The password is re-validated first;
// a failed re-auth aborts with no state change. Once past that gate, the
// tombstone and local removal are unconditional, and remote removal is
// best-effort only.
func (s *documentService) Delete(ctx context.Context, id string, password []byte) error {
	if err := s.auth.Reauthenticate(ctx, password); err != nil {
		return fmt.Errorf("re-authentication failed: %w", err)
	}

	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("error retrieving document: %w", err)
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := tombstones.NewSQLiteRepository(tx).Add(ctx, id); err != nil {
			return err
		}
		return documents.NewSQLiteRepository(tx).DeleteByID(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("error deleting document: %w", err)
	}

	// local-only records were never pushed anywhere
	if doc.Pending {
		return nil
	}

	if s.primary.ProbeAvailability(ctx) {
		if err := s.primary.Remove(ctx, id); err == nil {
			return nil
		} else {
			s.logger.Warn(ctx, "primary removal failed", "id", id, "error", err)
		}
	}
	if s.secondary.ProbeAvailability(ctx) {
		if err := s.secondary.Remove(ctx, id); err != nil {
			s.logger.Warn(ctx, "secondary removal failed", "id", id, "error", err)
		}
	}
	return nil
}

// UpdateStatus moves a document to any of the known states. There is no
// enforced ordering between them; only deletion is terminal.
func (s *documentService) UpdateStatus(ctx context.Context, id string, status models.Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	deleted, err := s.tombs.Contains(ctx, id)
	if err != nil {
		return fmt.Errorf("error checking tombstones: %w", err)
	}
	if deleted {
		return ErrDeleted
	}

	if err := s.docs.UpdateStatus(ctx, id, status); err != nil {
		return fmt.Errorf("error updating status: %w", err)
	}
	return nil
}

// provisionalLabel builds the placeholder sequence label a record carries
// until a remote store confirms a canonical number.
func provisionalLabel() string {
	return "TMP-" + uuid.NewString()[:8]
}
