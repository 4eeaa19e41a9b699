package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gocraft/dbr/v2"
	"go.uber.org/zap"
)

type aiUsageRow struct {
	DayBucket    string `db:"day_bucket"`
	DayCount     int    `db:"day_count"`
	MinuteBucket string `db:"minute_bucket"`
	MinuteCount  int    `db:"minute_count"`
}

// ConsumeAiQuota reserves one unit of AI usage for (scope, user) or fails
// with a typed quota error. A zero limit disables that check. Buckets are
// UTC and roll over naturally; a stale bucket resets its counter to zero
// before the increment. The read-check-write runs under SERIALIZABLE so
// concurrent consumers cannot both slip under the limit.
func (s *Store) ConsumeAiQuota(ctx context.Context, scope, userID string, perMinute, perDay int) error {
	now := time.Now().UTC()
	dayBucket := now.Format("20060102")
	minuteBucket := now.Format("200601021504")

	err := s.serializableTx(ctx, func(tx *dbr.Tx) error {
		var row aiUsageRow

		err := tx.
			Select("day_bucket", "day_count", "minute_bucket", "minute_count").
			From("ai_usage").
			Where("scope = ? AND user_id = ?", scope, userID).
			LoadOneContext(ctx, &row)

		if err != nil && err != dbr.ErrNotFound {
			return fmt.Errorf("read ai usage: %w", err)
		}

		dayCount, minuteCount := 0, 0
		if row.DayBucket == dayBucket {
			dayCount = row.DayCount
		}
		if row.MinuteBucket == minuteBucket {
			minuteCount = row.MinuteCount
		}

		if perMinute > 0 && minuteCount >= perMinute {
			return ErrQuotaMinuteExceeded
		}
		if perDay > 0 && dayCount >= perDay {
			return ErrQuotaDayExceeded
		}

		query := `
			INSERT INTO ai_usage (
				scope, user_id, day_bucket, day_count,
				minute_bucket, minute_count, updated_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, NOW())
			ON CONFLICT (scope, user_id) DO UPDATE SET
				day_bucket = EXCLUDED.day_bucket,
				day_count = EXCLUDED.day_count,
				minute_bucket = EXCLUDED.minute_bucket,
				minute_count = EXCLUDED.minute_count,
				updated_at = NOW()
		`

		_, err = tx.
			InsertBySql(query,
				scope,
				userID,
				dayBucket,
				dayCount+1,
				minuteBucket,
				minuteCount+1,
			).
			ExecContext(ctx)

		if err != nil {
			return fmt.Errorf("write ai usage: %w", err)
		}
		return nil
	})

	if errors.Is(err, ErrQuotaExceeded) {
		s.logger.Warn("ai quota exceeded",
			zap.String("scope", scope),
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return err
	}

	if err != nil {
		s.logger.Error("failed to consume ai quota",
			zap.String("scope", scope),
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return fmt.Errorf("consume ai quota: %w", err)
	}

	return nil
}
