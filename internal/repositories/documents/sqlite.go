package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmribeiro/recibox/internal/dbx"
	"github.com/dmribeiro/recibox/internal/models"
)

// issue dates keep calendar-date precision only
const dateLayout = "2006-01-02"

var ErrNotFound = errors.New("document not found")

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const allColumns = `id, sequence_label, payer_name, payer_document, amount, issue_date,
	description, payment_method, status, logo_ref, signature_ref,
	issuer_name, issuer_document, contract_id, pending`

func args(d *models.Document) []any {
	issuerName, issuerDocument := "", ""
	if d.IssuerOverride != nil {
		issuerName = d.IssuerOverride.Name
		issuerDocument = d.IssuerOverride.Document
	}
	return []any{
		d.Id, d.SequenceLabel, d.PayerName, d.PayerDocument,
		d.Amount.String(), d.IssueDate.Format(dateLayout),
		d.Description, d.PaymentMethod, string(d.Status),
		d.LogoRef, d.SignatureRef, issuerName, issuerDocument,
		d.ContractId, d.Pending,
	}
}

func scan(row interface{ Scan(...any) error }) (*models.Document, error) {
	var (
		d                          models.Document
		amount, issueDate, status  string
		issuerName, issuerDocument string
	)
	err := row.Scan(&d.Id, &d.SequenceLabel, &d.PayerName, &d.PayerDocument,
		&amount, &issueDate, &d.Description, &d.PaymentMethod, &status,
		&d.LogoRef, &d.SignatureRef, &issuerName, &issuerDocument,
		&d.ContractId, &d.Pending)
	if err != nil {
		return nil, err
	}
	d.Status = models.Status(status)
	if d.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("bad amount for document %s: %w", d.Id, err)
	}
	if d.IssueDate, err = time.Parse(dateLayout, issueDate); err != nil {
		return nil, fmt.Errorf("bad issue date for document %s: %w", d.Id, err)
	}
	if issuerName != "" || issuerDocument != "" {
		d.IssuerOverride = &models.Issuer{Name: issuerName, Document: issuerDocument}
	}
	return &d, nil
}

// Upsert inserts or overwrites a document by id.
func (r *SQLiteRepository) Upsert(ctx context.Context, d *models.Document) error {
	query := `INSERT INTO documents (` + allColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			sequence_label = excluded.sequence_label,
			payer_name = excluded.payer_name,
			payer_document = excluded.payer_document,
			amount = excluded.amount,
			issue_date = excluded.issue_date,
			description = excluded.description,
			payment_method = excluded.payment_method,
			status = excluded.status,
			logo_ref = excluded.logo_ref,
			signature_ref = excluded.signature_ref,
			issuer_name = excluded.issuer_name,
			issuer_document = excluded.issuer_document,
			contract_id = excluded.contract_id,
			pending = excluded.pending
	`
	if _, err := r.db.ExecContext(ctx, query, args(d)...); err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}
	return nil
}

// MergeRemote upserts a remote record unless its id is tombstoned. The guard
// is part of the statement itself, so the check and the write are one atomic
// step against the live tombstone set.
func (r *SQLiteRepository) MergeRemote(ctx context.Context, d *models.Document) (bool, error) {
	query := `INSERT INTO documents (` + allColumns + `)
		SELECT ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0
		WHERE NOT EXISTS (SELECT 1 FROM tombstones WHERE id = ?)
		ON CONFLICT(id) DO UPDATE SET
			sequence_label = excluded.sequence_label,
			payer_name = excluded.payer_name,
			payer_document = excluded.payer_document,
			amount = excluded.amount,
			issue_date = excluded.issue_date,
			description = excluded.description,
			payment_method = excluded.payment_method,
			status = excluded.status,
			logo_ref = excluded.logo_ref,
			signature_ref = excluded.signature_ref,
			issuer_name = excluded.issuer_name,
			issuer_document = excluded.issuer_document,
			contract_id = excluded.contract_id,
			pending = excluded.pending
	`
	a := args(d)
	a = append(a[:len(a)-1], d.Id) // replace pending arg with the tombstone guard id
	res, err := r.db.ExecContext(ctx, query, a...)
	if err != nil {
		return false, fmt.Errorf("failed to merge document %s: %w", d.Id, err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return ra > 0, nil
}

// GetAll returns all cached documents.
func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Document, error) {
	query := `SELECT ` + allColumns + ` FROM documents ORDER BY issue_date, id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select documents: %w", err)
	}
	defer rows.Close()

	var result []models.Document
	for rows.Next() {
		d, err := scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetByID returns a single document, or ErrNotFound.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	query := `SELECT ` + allColumns + ` FROM documents WHERE id = ?`
	d, err := scan(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return d, nil
}

// DeleteByID removes a document row.
func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

// UpdateStatus sets the status of an existing document. It expects exactly
// one row to be affected.
func (r *SQLiteRepository) UpdateStatus(ctx context.Context, id string, status models.Status) error {
	res, err := r.db.ExecContext(ctx, `UPDATE documents SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra != 1 {
		return ErrNotFound
	}
	return nil
}
