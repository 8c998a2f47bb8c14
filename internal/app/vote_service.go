// Package app contains application services that orchestrate use cases.
// This is the application layer in Clean Architecture - it coordinates
// domain logic and infrastructure through ports.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/quotewall/quotewall/internal/domain"
	"github.com/quotewall/quotewall/internal/platform/logging"
	"github.com/quotewall/quotewall/internal/platform/telemetry"
	"github.com/quotewall/quotewall/internal/ports"
)

// RetryPolicy bounds retries of vote transactions that hit a write conflict.
type RetryPolicy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryPolicy is used when no policy is configured.
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts:     3,
	InitialInterval: 25 * time.Millisecond,
	MaxInterval:     250 * time.Millisecond,
}

// VoteService processes vote requests against the vote ledger.
type VoteService struct {
	ledger  ports.VoteLedger
	retry   RetryPolicy
	metrics *telemetry.VoteMetrics
	logger  *slog.Logger
}

// VoteServiceConfig contains dependencies for the vote service.
type VoteServiceConfig struct {
	Ledger  ports.VoteLedger
	Retry   RetryPolicy
	Metrics *telemetry.VoteMetrics
	Logger  *slog.Logger
}

// NewVoteService creates a vote service.
func NewVoteService(cfg VoteServiceConfig) *VoteService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	retry := cfg.Retry
	if retry.MaxAttempts < 1 {
		retry = DefaultRetryPolicy
	}

	return &VoteService{
		ledger:  cfg.Ledger,
		retry:   retry,
		metrics: cfg.Metrics,
		logger:  logger.With(slog.String("component", "app.VoteService")),
	}
}

// CastVote applies one vote request for a (quote, user) pair. The vote row
// mutation and both counter updates happen in a single transaction, so a
// reader never observes a vote without its counter effect. Write conflicts
// are retried up to the configured attempt limit.
func (s *VoteService) CastVote(ctx context.Context, quoteID, userID uuid.UUID, value domain.VoteValue) (*domain.VoteResult, error) {
	if !value.ValidRequest() {
		return nil, domain.NewValidationError("value", "must be -1, 0 or 1")
	}

	logger := logging.FromContext(ctx).With(
		slog.String("quote_id", quoteID.String()),
		slog.String("user_id", userID.String()),
		slog.Int("value", int(value)),
	)

	interval := s.retry.InitialInterval

	for attempt := 1; ; attempt++ {
		result, transition, err := s.castOnce(ctx, quoteID, userID, value)
		if err == nil {
			s.metrics.RecordCast(ctx, actionLabel(transition.Action))
			logger.InfoContext(ctx, "vote processed",
				slog.String("action", actionLabel(transition.Action)),
				slog.String("message", transition.Message),
			)

			return result, nil
		}

		if !domain.IsWriteConflict(err) || attempt >= s.retry.MaxAttempts {
			return nil, err
		}

		s.metrics.RecordRetry(ctx)
		logger.WarnContext(ctx, "vote transaction conflicted, retrying",
			slog.Int("attempt", attempt),
			slog.Any("error", err),
		)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("casting vote: %w", ctx.Err())
		case <-time.After(interval):
		}

		interval *= 2
		if interval > s.retry.MaxInterval {
			interval = s.retry.MaxInterval
		}
	}
}

// castOnce runs a single cast-vote transaction.
func (s *VoteService) castOnce(ctx context.Context, quoteID, userID uuid.UUID, value domain.VoteValue) (*domain.VoteResult, domain.VoteTransition, error) {
	var (
		result     domain.VoteResult
		transition domain.VoteTransition
	)

	err := s.ledger.InTx(ctx, func(tx ports.VoteTx) error {
		// Locking the quote row serializes concurrent votes on the
		// same quote and pins the counters we are about to adjust.
		quote, err := tx.QuoteForUpdate(ctx, quoteID)
		if err != nil {
			return err
		}

		existing, err := tx.Vote(ctx, quoteID, userID)
		if err != nil {
			return err
		}

		transition = domain.TransitionVote(existing, value)

		switch transition.Action {
		case domain.VoteActionCreate:
			err = tx.CreateVote(ctx, &domain.Vote{
				ID:      uuid.New(),
				QuoteID: quoteID,
				UserID:  userID,
				Value:   transition.NewValue,
			})
		case domain.VoteActionUpdate:
			err = tx.UpdateVote(ctx, existing.ID, transition.NewValue)
		case domain.VoteActionDelete:
			err = tx.DeleteVote(ctx, existing.ID)
		case domain.VoteActionNone:
			// Idempotent request, nothing to write.
		}
		if err != nil {
			return err
		}

		up := quote.UpVoteCount + transition.UpDelta
		down := quote.DownVoteCount + transition.DownDelta

		if transition.Changed() {
			if err := tx.SetQuoteCounters(ctx, quoteID, up, down); err != nil {
				return err
			}
		}

		result = domain.VoteResult{
			QuoteID:       quoteID,
			Value:         transition.ResultValue,
			UpVoteCount:   up,
			DownVoteCount: down,
			Message:       transition.Message,
		}

		return nil
	})
	if err != nil {
		return nil, domain.VoteTransition{}, fmt.Errorf("casting vote: %w", err)
	}

	return &result, transition, nil
}

// actionLabel maps a transition action to its metric label.
func actionLabel(action domain.VoteAction) string {
	switch action {
	case domain.VoteActionCreate:
		return "created"
	case domain.VoteActionUpdate:
		return "updated"
	case domain.VoteActionDelete:
		return "deleted"
	default:
		return "noop"
	}
}
