package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/dmribeiro/recibox/internal/models"
)

// Contracts prints the current contract snapshot the recurring generator
// works from.
func (a *App) Contracts(ctx context.Context) error {
	snapshot, err := a.contracts.GetAll(ctx)
	if err != nil {
		a.logger.Error(ctx, "error listing contracts", "error", err)
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPAYER\tAMOUNT\tDAY\tRECURRING")
	for _, c := range snapshot {
		recurring := "no"
		if c.RecurrenceEnabled {
			recurring = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			c.Id, c.PayerName, c.MonthlyAmount.StringFixed(2),
			c.RecurrenceDayOfMonth, recurring)
	}
	return w.Flush()
}

// contractRecord is the JSON shape of one contract in an exported snapshot.
type contractRecord struct {
	Id                   string          `json:"id"`
	RecurrenceEnabled    bool            `json:"recurrenceEnabled"`
	RecurrenceDayOfMonth int             `json:"recurrenceDay"`
	MonthlyAmount        decimal.Decimal `json:"monthlyAmount"`
	PayerName            string          `json:"payerName"`
	PayerDocument        string          `json:"payerDocument"`
	Description          string          `json:"description"`
	SignatureRef         string          `json:"signatureRef"`
}

// loadContractSnapshot reads a snapshot file exported by the
// contract-management subsystem.
func loadContractSnapshot(path string) ([]models.Contract, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var records []contractRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("malformed snapshot %s: %w", path, err)
	}

	result := make([]models.Contract, 0, len(records))
	for _, r := range records {
		if r.Id == "" {
			return nil, fmt.Errorf("snapshot %s contains a contract without an id", path)
		}
		result = append(result, models.Contract{
			Id:                   r.Id,
			RecurrenceEnabled:    r.RecurrenceEnabled,
			RecurrenceDayOfMonth: r.RecurrenceDayOfMonth,
			MonthlyAmount:        r.MonthlyAmount,
			PayerName:            r.PayerName,
			PayerDocument:        r.PayerDocument,
			Description:          r.Description,
			SignatureRef:         r.SignatureRef,
		})
	}
	return result, nil
}

// ImportContracts replaces the stored contract snapshot with one read from a
// JSON file. The next reconciliation pass generates from the new snapshot.
func (a *App) ImportContracts(ctx context.Context) error {
	path, err := GetSimpleText(a.reader, "Snapshot file to import", os.Stdout)
	if err != nil {
		return err
	}

	snapshot, err := loadContractSnapshot(path)
	if err != nil {
		printlnFn("Cannot read snapshot:", err)
		return err
	}

	if err := a.contracts.ReplaceAll(ctx, snapshot); err != nil {
		a.logger.Error(ctx, "error importing contracts", "error", err)
		return err
	}

	printlnFn(fmt.Sprintf("Imported %d contracts.", len(snapshot)))
	return nil
}
