package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/mediaload/mediaload-bot/internal/models"
)

// UsageStats собирает агрегированную статистику одним запросом.
// Активной считается подписка, заканчивающаяся строго позже now.
func (s *Storage) UsageStats(ctx context.Context, now time.Time) (*models.UsageStats, error) {
	const op = "storage.UsageStats"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT
			      (SELECT COUNT(*) FROM users),
			      (SELECT COUNT(*) FROM users WHERE subscription_end > $1),
			      (SELECT COALESCE(SUM(downloads_count), 0) FROM users),
			      (SELECT COUNT(*) FROM coupons WHERE used = FALSE),
			      (SELECT COUNT(*) FROM admins),
			      (SELECT COUNT(*) FROM mandatory_channels)`
	var stats models.UsageStats
	row := s.DB.QueryRowContext(ctx, query, now)
	if err := row.Scan(&stats.TotalUsers, &stats.ActiveSubscriptions,
		&stats.TotalDownloads, &stats.UnusedCoupons,
		&stats.TotalAdmins, &stats.TotalChannels); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &stats, nil
}
