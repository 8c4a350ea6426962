package cli

import (
	"context"
	"fmt"
)

// Refresh runs a reconciliation pass on demand.
func (a *App) Refresh(ctx context.Context) error {
	sum, err := a.reconciler.Run(ctx)
	if err != nil {
		a.logger.Error(ctx, "reconciliation failed", "error", err)
		return err
	}

	source := func(ok bool) string {
		if ok {
			return "ok"
		}
		return "unavailable"
	}
	printlnFn(fmt.Sprintf("primary: %s (%d merged), secondary: %s (%d merged), generated: %d",
		source(sum.PrimaryAvailable), sum.MergedFromPrimary,
		source(sum.SecondaryAvailable), sum.MergedFromSecondary,
		sum.Generated))
	return nil
}
