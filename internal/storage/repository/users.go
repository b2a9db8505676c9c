package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mediaload/mediaload-bot/internal/models"
)

// EnsureUser создаёт запись пользователя, если её ещё нет.
// Повторный вызов для существующего пользователя ничего не меняет.
func (s *Storage) EnsureUser(ctx context.Context, userID int64) error {
	const op = "storage.EnsureUser"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO users (user_id, downloads_count)
			  VALUES ($1, 0)
			  ON CONFLICT (user_id) DO NOTHING`
	if _, err := s.DB.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetUser возвращает пользователя по его Telegram ID.
func (s *Storage) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_id, downloads_count, subscription_end, created_at
			  FROM users
			  WHERE user_id = $1`
	u := &models.User{}
	row := s.DB.QueryRowContext(ctx, query, userID)

	var subscriptionEnd sql.NullTime
	if err := row.Scan(&u.ID, &u.UserID, &u.DownloadsCount,
		&subscriptionEnd, &u.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if subscriptionEnd.Valid {
		u.SubscriptionEnd = &subscriptionEnd.Time
	}
	return u, nil
}

// TryIncrementDownloads атомарно проверяет право пользователя на загрузку
// и увеличивает счётчик. Загрузка разрешена, пока действует подписка либо
// счётчик меньше freeLimit. Возвращает true, если счётчик увеличен.
// Проверка и инкремент выполняются одним UPDATE, поэтому параллельные
// запросы одного пользователя не могут превысить лимит.
func (s *Storage) TryIncrementDownloads(ctx context.Context, userID int64, freeLimit int, now time.Time) (bool, error) {
	const op = "storage.TryIncrementDownloads"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET downloads_count = downloads_count + 1
			  WHERE user_id = $1
			    AND ((subscription_end IS NOT NULL AND subscription_end > $2)
			      OR downloads_count < $3)`
	result, err := s.DB.ExecContext(ctx, query, userID, now, freeLimit)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected == 1, nil
}

// ListUserIDs возвращает Telegram ID пользователей для рассылки.
// segment: "all" — все, "premium" — с действующей подпиской,
// "free" — без действующей подписки.
func (s *Storage) ListUserIDs(ctx context.Context, segment string, now time.Time) ([]int64, error) {
	const op = "storage.ListUserIDs"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT user_id FROM users`
	switch segment {
	case "premium":
		query += ` WHERE subscription_end IS NOT NULL AND subscription_end > $1`
	case "free":
		query += ` WHERE subscription_end IS NULL OR subscription_end <= $1`
	case "all":
		query += ` WHERE $1::timestamptz IS NOT NULL`
	default:
		return nil, fmt.Errorf("%s: unknown segment %q", op, segment)
	}
	query += ` ORDER BY id`

	rows, err := s.DB.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
