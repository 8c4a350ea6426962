package contracts

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/dmribeiro/recibox/internal/dbx"
	"github.com/dmribeiro/recibox/internal/models"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Contract, error) {
	query := `SELECT id, recurrence_enabled, recurrence_day, monthly_amount,
		payer_name, payer_document, description, signature_ref FROM contracts`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select contracts: %w", err)
	}
	defer rows.Close()

	var result []models.Contract
	for rows.Next() {
		var (
			c      models.Contract
			amount string
		)
		err := rows.Scan(&c.Id, &c.RecurrenceEnabled, &c.RecurrenceDayOfMonth,
			&amount, &c.PayerName, &c.PayerDocument, &c.Description, &c.SignatureRef)
		if err != nil {
			return nil, err
		}
		if c.MonthlyAmount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("bad amount for contract %s: %w", c.Id, err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) ReplaceAll(ctx context.Context, contracts []models.Contract) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM contracts`); err != nil {
		return fmt.Errorf("failed to clear contracts: %w", err)
	}
	query := `INSERT INTO contracts (id, recurrence_enabled, recurrence_day, monthly_amount,
		payer_name, payer_document, description, signature_ref)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	for _, c := range contracts {
		_, err := r.db.ExecContext(ctx, query, c.Id, c.RecurrenceEnabled, c.RecurrenceDayOfMonth,
			c.MonthlyAmount.String(), c.PayerName, c.PayerDocument, c.Description, c.SignatureRef)
		if err != nil {
			return fmt.Errorf("failed to insert contract %s: %w", c.Id, err)
		}
	}
	return nil
}
