package cli

import (
	"context"
	"errors"
	"os"

	"github.com/dmribeiro/recibox/internal/services"
	"github.com/dmribeiro/recibox/internal/shared"
)

// Delete removes a document for good. Because deletion is irreversible the
// password is asked again; a failed check aborts without touching anything.
func (a *App) Delete(ctx context.Context) error {
	id, err := GetSimpleText(a.reader, "Enter document id to delete", os.Stdout)
	if err != nil {
		return err
	}

	printlnFn("Deletion is permanent. Confirm with your password.")
	password, err := GetPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(password)

	err = a.documents.Delete(ctx, id, password)
	if err != nil {
		if errors.Is(err, services.ErrUnauthorized) {
			printlnFn("Wrong password, nothing was deleted. Try again.")
			return err
		}
		a.logger.Error(ctx, "error deleting document", "error", err)
		return err
	}

	printlnFn("Deleted.")
	return nil
}
