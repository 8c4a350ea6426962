package services

import (
	"context"
	"time"

	"github.com/dmribeiro/recibox/internal/logging"
	"github.com/dmribeiro/recibox/internal/remote"
	"github.com/dmribeiro/recibox/internal/repositories/contracts"
	"github.com/dmribeiro/recibox/internal/repositories/documents"
)

// Reconciler runs one reconciliation pass: fetch the remote snapshots, merge
// them into the local cache respecting tombstones, then run the recurring
// generator against the merged collection.
//
// The pass is resilient by design: an unreachable or failing source degrades
// to "unavailable" for this pass only, and the caller is left with
// stale-but-consistent local data instead of an error.
type Reconciler struct {
	docs      documents.Repository
	contracts contracts.Repository
	primary   remote.Source
	secondary remote.Source
	genOpts   GeneratorOptions
	logger    logging.Logger

	// now is a test seam for the generator clock.
	now func() time.Time
}

// Summary reports what one pass did.
type Summary struct {
	PrimaryAvailable    bool
	SecondaryAvailable  bool
	MergedFromPrimary   int
	MergedFromSecondary int
	Generated           int
}

func NewReconciler(
	docs documents.Repository,
	contractRepo contracts.Repository,
	primary, secondary remote.Source,
	genOpts GeneratorOptions,
	logger logging.Logger,
) *Reconciler {
	return &Reconciler{
		docs:      docs,
		contracts: contractRepo,
		primary:   primary,
		secondary: secondary,
		genOpts:   genOpts,
		logger:    logger.With("component", "reconciler"),
		now:       time.Now,
	}
}

// Run executes one pass. Concurrent passes are safe: merges are idempotent
// and tombstones are consulted per record at merge time, so a newer pass or
// a mid-merge delete simply wins.
func (r *Reconciler) Run(ctx context.Context) (*Summary, error) {
	sum := &Summary{}

	// Secondary first, primary second: on id conflicts the primary's
	// values land last and win. Pinned by tests; do not reorder.
	sum.MergedFromSecondary, sum.SecondaryAvailable = r.mergeSource(ctx, r.secondary, "secondary")
	sum.MergedFromPrimary, sum.PrimaryAvailable = r.mergeSource(ctx, r.primary, "primary")

	sum.Generated = r.generate(ctx)

	return sum, nil
}

// mergeSource probes one source and merges its listing record by record.
// Any failure degrades the source for this pass; it never aborts the pass.
func (r *Reconciler) mergeSource(ctx context.Context, src remote.Source, name string) (merged int, available bool) {
	if !src.ProbeAvailability(ctx) {
		r.logger.Info(ctx, "source unavailable, skipping", "source", name)
		return 0, false
	}

	docs, err := src.List(ctx)
	if err != nil {
		r.logger.Warn(ctx, "listing failed, degrading source", "source", name, "error", err)
		return 0, false
	}

	for i := range docs {
		written, err := r.docs.MergeRemote(ctx, &docs[i])
		if err != nil {
			r.logger.Error(ctx, "merge failed for record", "source", name, "id", docs[i].Id, "error", err)
			continue
		}
		if written {
			merged++
		}
	}
	r.logger.Info(ctx, "merged remote snapshot", "source", name, "fetched", len(docs), "merged", merged)
	return merged, true
}

// generate runs the recurring generator against the merged collection and
// appends its output to the cache.
func (r *Reconciler) generate(ctx context.Context) int {
	existing, err := r.docs.GetAll(ctx)
	if err != nil {
		r.logger.Error(ctx, "cannot load documents for generation", "error", err)
		return 0
	}

	snapshot, err := r.contracts.GetAll(ctx)
	if err != nil {
		r.logger.Error(ctx, "cannot load contract snapshot", "error", err)
		return 0
	}

	generated := Generate(r.now(), snapshot, existing, r.genOpts)
	saved := 0
	for i := range generated {
		if err := r.docs.Upsert(ctx, &generated[i]); err != nil {
			r.logger.Error(ctx, "cannot persist generated document", "id", generated[i].Id, "error", err)
			continue
		}
		saved++
	}
	if saved > 0 {
		r.logger.Info(ctx, "generated recurring documents", "count", saved)
	}
	return saved
}
