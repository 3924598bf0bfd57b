package db

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

// StartStaleClaimCleaner strips claim-list entries that reference deleted
// users with the given interval. Cascading deletes are best effort and not
// atomic across items, so an interrupted cascade can leave stale usernames
// behind; this job closes that window.
func StartStaleClaimCleaner(
	ctx context.Context,
	db *sql.DB,
	interval time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				res, err := db.ExecContext(ctx, `
                    UPDATE items
                       SET claimed_by = (
                           SELECT COALESCE(array_agg(c ORDER BY ord), '{}')
                             FROM unnest(claimed_by) WITH ORDINALITY AS u(c, ord)
                            WHERE c IN (SELECT username FROM users)
                       )
                     WHERE EXISTS (
                           SELECT 1 FROM unnest(claimed_by) AS c
                            WHERE c NOT IN (SELECT username FROM users)
                       )
                `)
				if err != nil {
					log.Error("failed to clean stale claims", zap.Error(err))
					continue
				}
				if rows, _ := res.RowsAffected(); rows > 0 {
					log.Info("cleaned stale claims", zap.Int64("items", rows))
				}
			}
		}
	}()
}
