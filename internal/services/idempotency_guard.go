package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cyphera/cyphera-rebalancer/internal/constants"
	"github.com/cyphera/cyphera-rebalancer/internal/db"
	"github.com/cyphera/cyphera-rebalancer/internal/helpers"
	"github.com/cyphera/cyphera-rebalancer/internal/logger"
)

// Reasons reported by the idempotency guard.
const (
	ReasonForced        = "forced"
	ReasonFirstRun      = "no run today"
	ReasonAlreadyRan    = "already ran today"
	ReasonFailClosed    = "skipped, fail-closed"
	ReasonClaimedByPeer = "day claimed by another run"
)

// IdempotencyDecision is the guard's verdict for one run start.
type IdempotencyDecision struct {
	Proceed bool
	Reason  string
}

// StartOfDay returns midnight UTC of t's day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IdempotencyGuard allows at most one run per UTC day. When the state cannot be read it
// refuses to run.
type IdempotencyGuard struct {
	queries db.Querier
	logger  *zap.Logger
}

// NewIdempotencyGuard builds a guard over the execution log.
func NewIdempotencyGuard(queries db.Querier, log *zap.Logger) *IdempotencyGuard {
	if log == nil {
		log = logger.Log
	}
	return &IdempotencyGuard{queries: queries, logger: log}
}

// Check decides whether a run starting at now may proceed.
func (g *IdempotencyGuard) Check(ctx context.Context, now time.Time, force bool) IdempotencyDecision {
	if force {
		g.logger.Warn("Idempotency guard bypassed by force flag")
		return IdempotencyDecision{Proceed: true, Reason: ReasonForced}
	}

	since := StartOfDay(now)
	// correction batches repair earlier days and do not stand in for today's run
	ran, err := g.queries.HasRunSince(ctx, db.HasRunSinceParams{
		Since:          helpers.TimeToNullableTimestamptz(since),
		ExcludedStatus: constants.RunStatusCorrection,
	})
	if err != nil {
		g.logger.Error("Could not determine whether today's run happened, skipping",
			zap.Time("since", since),
			zap.Error(err))
		return IdempotencyDecision{Reason: ReasonFailClosed}
	}
	if ran {
		g.logger.Info("Run already recorded today, skipping", zap.Time("since", since))
		return IdempotencyDecision{Reason: ReasonAlreadyRan}
	}
	return IdempotencyDecision{Proceed: true, Reason: ReasonFirstRun}
}
