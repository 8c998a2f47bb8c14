package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// VoteMetrics holds instruments for the vote ledger.
type VoteMetrics struct {
	castTotal  metric.Int64Counter
	retryTotal metric.Int64Counter
}

// NewVoteMetrics creates vote ledger metrics.
func NewVoteMetrics() (*VoteMetrics, error) {
	meter := otel.Meter(instrumentationName)

	castTotal, err := meter.Int64Counter(
		"votes.cast.total",
		metric.WithDescription("Total number of processed vote requests by outcome"),
	)
	if err != nil {
		return nil, err
	}

	retryTotal, err := meter.Int64Counter(
		"votes.cast.retries.total",
		metric.WithDescription("Total number of vote transactions retried after a write conflict"),
	)
	if err != nil {
		return nil, err
	}

	return &VoteMetrics{
		castTotal:  castTotal,
		retryTotal: retryTotal,
	}, nil
}

// RecordCast counts a completed vote request. The action label is one of
// created, updated, deleted or noop. Nil receivers are safe so callers can
// skip metric setup in tests.
func (m *VoteMetrics) RecordCast(ctx context.Context, action string) {
	if m == nil {
		return
	}

	m.castTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("action", action)))
}

// RecordRetry counts one retried vote transaction.
func (m *VoteMetrics) RecordRetry(ctx context.Context) {
	if m == nil {
		return
	}

	m.retryTotal.Add(ctx, 1)
}
