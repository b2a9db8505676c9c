package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mediaload/mediaload-bot/internal/models"
)

// CreateCoupon сохраняет новый купон. Код должен быть уникален,
// повторная вставка того же кода вернёт ошибку уникального индекса.
func (s *Storage) CreateCoupon(ctx context.Context, code string, duration models.CouponDuration) error {
	const op = "storage.CreateCoupon"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO coupons (code, duration) VALUES ($1, $2)`
	if _, err := s.DB.ExecContext(ctx, query, code, string(duration)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetCoupon возвращает купон по коду.
func (s *Storage) GetCoupon(ctx context.Context, code string) (*models.Coupon, error) {
	const op = "storage.GetCoupon"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, code, duration, used, used_by, created_at, used_at
			  FROM coupons
			  WHERE code = $1`
	c := &models.Coupon{}
	row := s.DB.QueryRowContext(ctx, query, code)

	var usedBy sql.NullInt64
	var usedAt sql.NullTime
	var duration string
	if err := row.Scan(&c.ID, &c.Code, &duration, &c.Used, &usedBy,
		&c.CreatedAt, &usedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	c.Duration = models.CouponDuration(duration)
	if usedBy.Valid {
		c.UsedBy = &usedBy.Int64
	}
	if usedAt.Valid {
		c.UsedAt = &usedAt.Time
	}
	return c, nil
}

// ActivateCoupon атомарно активирует купон для пользователя.
// Купон помечается использованным, а пользователю выставляется
// subscription_end = now + длительность купона. Прежняя дата окончания
// перезаписывается, даже если была позже. Возвращает false без изменений,
// если купон не существует, уже использован или его длительность неизвестна.
// Конкурирующие активации одного кода разрешаются блокировкой строки:
// успешной окажется ровно одна.
func (s *Storage) ActivateCoupon(ctx context.Context, userID int64, code string, now time.Time) (bool, error) {
	const op = "storage.ActivateCoupon"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `UPDATE coupons
			  SET used = TRUE, used_by = $1, used_at = $2
			  WHERE code = $3 AND used = FALSE
			  RETURNING duration`
	var duration string
	err = tx.QueryRowContext(ctx, query, userID, now, code).Scan(&duration)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	days, ok := models.CouponDuration(duration).Days()
	if !ok {
		return false, nil
	}
	subscriptionEnd := now.AddDate(0, 0, days)

	query = `INSERT INTO users (user_id, downloads_count, subscription_end)
			 VALUES ($1, 0, $2)
			 ON CONFLICT (user_id) DO UPDATE SET subscription_end = $2`
	if _, err := tx.ExecContext(ctx, query, userID, subscriptionEnd); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

// CountUnusedCoupons возвращает количество неиспользованных купонов.
func (s *Storage) CountUnusedCoupons(ctx context.Context) (int, error) {
	const op = "storage.CountUnusedCoupons"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var count int
	query := `SELECT COUNT(*) FROM coupons WHERE used = FALSE`
	if err := s.DB.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}
