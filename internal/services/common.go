package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"gorm.io/gorm"

	"github.com/yungbote/roadmap-backend/internal/domain/progress"
	"github.com/yungbote/roadmap-backend/internal/observability"
	"github.com/yungbote/roadmap-backend/internal/platform/dbctx"
	"github.com/yungbote/roadmap-backend/internal/userlock"
)

var tracer = otel.Tracer("github.com/yungbote/roadmap-backend/internal/services")

// Clock returns the current time. Tests substitute a fixed clock.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

// inTx runs fn inside dbc.Tx when present, otherwise inside a new transaction.
func inTx(db *gorm.DB, dbc dbctx.Context, fn func(dbc dbctx.Context) error) error {
	if dbc.Tx != nil {
		return fn(dbc)
	}
	return db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbc.WithTx(tx))
	})
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, progress.ErrStorageFailure, err)
}

// lockUser takes the per-user lock. Failing to get it in time is reported as a conflict.
func lockUser(ctx context.Context, locker userlock.Locker, metrics *observability.Metrics, userID uuid.UUID) (func(), error) {
	start := time.Now()
	unlock, err := locker.Lock(ctx, userID)
	if err != nil {
		metrics.ObserveLockWait("timeout", time.Since(start))
		return nil, fmt.Errorf("%w: %w", progress.ErrConflictingUpdate, err)
	}
	metrics.ObserveLockWait("acquired", time.Since(start))
	return unlock, nil
}
