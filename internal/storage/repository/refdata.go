package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mediaload/mediaload-bot/internal/models"
)

// AddAdmin добавляет администратора.
func (s *Storage) AddAdmin(ctx context.Context, userID int64, username string) error {
	const op = "storage.AddAdmin"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO admins (user_id, username) VALUES ($1, $2)`
	if _, err := s.DB.ExecContext(ctx, query, userID, nullableString(username)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// RemoveAdmin удаляет администратора по Telegram ID,
// возвращает количество удалённых строк.
func (s *Storage) RemoveAdmin(ctx context.Context, userID int64) (int, error) {
	const op = "storage.RemoveAdmin"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM admins WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// IsAdmin проверяет, числится ли пользователь в списке администраторов.
func (s *Storage) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	const op = "storage.IsAdmin"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM admins WHERE user_id = $1)`
	if err := s.DB.QueryRowContext(ctx, query, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// ListAdmins возвращает всех администраторов.
func (s *Storage) ListAdmins(ctx context.Context) ([]*models.Admin, error) {
	const op = "storage.ListAdmins"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_id, username, created_at FROM admins ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Admin
	for rows.Next() {
		var a models.Admin
		var username sql.NullString
		if err := rows.Scan(&a.ID, &a.UserID, &username, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		a.Username = username.String
		result = append(result, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// AddChannel добавляет обязательный канал.
func (s *Storage) AddChannel(ctx context.Context, channelID, name, username string) error {
	const op = "storage.AddChannel"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO mandatory_channels (channel_id, channel_name, channel_username)
			  VALUES ($1, $2, $3)`
	if _, err := s.DB.ExecContext(ctx, query, channelID, name, nullableString(username)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// RemoveChannel удаляет обязательный канал, возвращает количество удалённых строк.
func (s *Storage) RemoveChannel(ctx context.Context, channelID string) (int, error) {
	const op = "storage.RemoveChannel"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM mandatory_channels WHERE channel_id = $1`, channelID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ListChannels возвращает все обязательные каналы.
func (s *Storage) ListChannels(ctx context.Context) ([]*models.Channel, error) {
	const op = "storage.ListChannels"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, channel_id, channel_name, channel_username, created_at
			  FROM mandatory_channels
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Channel
	for rows.Next() {
		var c models.Channel
		var username sql.NullString
		if err := rows.Scan(&c.ID, &c.ChannelID, &c.Name, &username, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		c.Username = username.String
		result = append(result, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
