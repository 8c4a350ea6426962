package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
)

// List prints the cached document collection. Records not yet confirmed by
// any remote store are marked "not synced".
func (a *App) List(ctx context.Context) error {
	docs, err := a.documents.List(ctx)
	if err != nil {
		a.logger.Error(ctx, "error listing documents", "error", err)
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNUMBER\tDATE\tPAYER\tAMOUNT\tSTATUS\tSYNC")
	for _, d := range docs {
		sync := ""
		if d.Pending {
			sync = "not synced"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			d.Id, d.SequenceLabel, d.IssueDate.Format("2006-01-02"),
			d.PayerName, d.Amount.StringFixed(2), d.Status, sync)
	}
	return w.Flush()
}
