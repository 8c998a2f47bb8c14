package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/quotewall/quotewall/internal/ports"
)

// ReconcileReport summarizes one reconciliation run.
type ReconcileReport struct {
	Checked  int
	Repaired int
}

// Reconciler recomputes the denormalized quote counters from the vote
// ledger and repairs any drift. The cast-vote transaction keeps the two in
// lock-step; this job is the safety net for manual data edits and bugs.
type Reconciler struct {
	quotes  ports.QuoteRepository
	votes   ports.VoteRepository
	workers int
	logger  *slog.Logger
}

// ReconcilerConfig contains dependencies for the reconciler.
type ReconcilerConfig struct {
	Quotes  ports.QuoteRepository
	Votes   ports.VoteRepository
	Workers int
	Logger  *slog.Logger
}

// NewReconciler creates a reconciler.
func NewReconciler(cfg ReconcilerConfig) *Reconciler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	workers := cfg.Workers
	if workers < 1 {
		workers = 4
	}

	return &Reconciler{
		quotes:  cfg.Quotes,
		votes:   cfg.Votes,
		workers: workers,
		logger:  logger.With(slog.String("component", "app.Reconciler")),
	}
}

// Run tallies every quote's votes and overwrites counters that drifted.
func (r *Reconciler) Run(ctx context.Context) (ReconcileReport, error) {
	ids, err := r.quotes.ListIDs(ctx)
	if err != nil {
		return ReconcileReport{}, fmt.Errorf("listing quotes: %w", err)
	}

	var (
		mu     sync.Mutex
		report = ReconcileReport{Checked: len(ids)}
	)

	err = ForEach(ctx, ids, r.workers, func(ctx context.Context, id uuid.UUID) error {
		repaired, err := r.reconcileOne(ctx, id)
		if err != nil {
			return err
		}

		if repaired {
			mu.Lock()
			report.Repaired++
			mu.Unlock()
		}

		return nil
	})
	if err != nil {
		return report, fmt.Errorf("reconciling counters: %w", err)
	}

	r.logger.InfoContext(ctx, "reconciliation complete",
		slog.Int("checked", report.Checked),
		slog.Int("repaired", report.Repaired),
	)

	return report, nil
}

func (r *Reconciler) reconcileOne(ctx context.Context, id uuid.UUID) (bool, error) {
	view, err := r.quotes.GetView(ctx, id, nil)
	if err != nil {
		return false, err
	}

	up, down, err := r.votes.Tally(ctx, id)
	if err != nil {
		return false, err
	}

	if view.UpVoteCount == up && view.DownVoteCount == down {
		return false, nil
	}

	r.logger.WarnContext(ctx, "counter drift detected",
		slog.String("quote_id", id.String()),
		slog.Int("stored_up", view.UpVoteCount),
		slog.Int("stored_down", view.DownVoteCount),
		slog.Int("tallied_up", up),
		slog.Int("tallied_down", down),
	)

	if err := r.quotes.SetCounters(ctx, id, up, down); err != nil {
		return false, err
	}

	return true, nil
}
