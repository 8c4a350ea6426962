package cli

import (
	"context"
	"os"

	"github.com/dmribeiro/recibox/internal/models"
)

// SetStatus moves a document to another lifecycle state.
func (a *App) SetStatus(ctx context.Context) error {
	id, err := GetSimpleText(a.reader, "Enter document id", os.Stdout)
	if err != nil {
		return err
	}
	status, err := GetSimpleText(a.reader, "New status (issued/sent/paid/overdue/suspended/revoked)", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.documents.UpdateStatus(ctx, id, models.Status(status)); err != nil {
		a.logger.Error(ctx, "error updating status", "error", err)
		return err
	}
	printlnFn("Status updated.")
	return nil
}
