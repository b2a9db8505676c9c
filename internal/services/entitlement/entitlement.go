// Package entitlement содержит бизнес-логику учёта загрузок,
// купонов и подписок.
package entitlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mediaload/mediaload-bot/internal/lib/coupon"
	"github.com/mediaload/mediaload-bot/internal/lib/sl"
	"github.com/mediaload/mediaload-bot/internal/metrics"
	"github.com/mediaload/mediaload-bot/internal/models"
)

// ErrUnknownDuration переданная длительность купона не поддерживается.
var ErrUnknownDuration = errors.New("unknown coupon duration")

const statsCacheKey = "stats:usage"

// Repository определяет методы хранилища, нужные для учёта.
type Repository interface {
	// EnsureUser регистрирует пользователя при первом обращении.
	EnsureUser(ctx context.Context, userID int64) error
	// TryIncrementDownloads атомарно проверяет лимит и списывает загрузку.
	TryIncrementDownloads(ctx context.Context, userID int64, freeLimit int, now time.Time) (bool, error)
	// GetUser возвращает пользователя по Telegram ID.
	GetUser(ctx context.Context, userID int64) (*models.User, error)
	// CreateCoupon сохраняет новый купон.
	CreateCoupon(ctx context.Context, code string, duration models.CouponDuration) error
	// ActivateCoupon атомарно активирует купон для пользователя.
	ActivateCoupon(ctx context.Context, userID int64, code string, now time.Time) (bool, error)
	// IsAdmin проверяет, является ли пользователь администратором.
	IsAdmin(ctx context.Context, userID int64) (bool, error)
	// UsageStats возвращает агрегированную статистику.
	UsageStats(ctx context.Context, now time.Time) (*models.UsageStats, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Service реализует учёт загрузок и купонную модель.
type Service struct {
	repo      Repository
	cache     Cache
	log       *slog.Logger
	freeLimit int
}

// New создаёт сервис учёта. freeLimit — количество бесплатных загрузок.
func New(repo Repository, cache Cache, log *slog.Logger, freeLimit int) *Service {
	return &Service{
		repo:      repo,
		cache:     cache,
		log:       log,
		freeLimit: freeLimit,
	}
}

// Admit решает, можно ли пользователю скачивать, и сразу списывает
// загрузку. Проверка и списание выполняются одним запросом, поэтому
// параллельные обращения не могут превысить лимит. Любая ошибка
// хранилища означает отказ.
func (s *Service) Admit(ctx context.Context, userID int64) (bool, error) {
	const op = "entitlement.Admit"

	if err := s.repo.EnsureUser(ctx, userID); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	admitted, err := s.repo.TryIncrementDownloads(ctx, userID, s.freeLimit, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return admitted, nil
}

// FreeLimit возвращает количество бесплатных загрузок.
func (s *Service) FreeLimit() int {
	return s.freeLimit
}

// IssueCoupon создаёт одноразовый купон на заданную длительность
// и возвращает его код.
func (s *Service) IssueCoupon(ctx context.Context, duration models.CouponDuration) (string, error) {
	const op = "entitlement.IssueCoupon"

	if _, ok := duration.Days(); !ok {
		return "", fmt.Errorf("%s: %w", op, ErrUnknownDuration)
	}

	code := coupon.NewCode(time.Now().UTC())
	if err := s.repo.CreateCoupon(ctx, code, duration); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("issued coupon", slog.String("duration", string(duration)))
	s.invalidateStats()
	return code, nil
}

// ActivateCoupon активирует купон для пользователя. Возвращает false,
// если купон не существует, уже использован или просрочен по смыслу.
func (s *Service) ActivateCoupon(ctx context.Context, userID int64, code string) (bool, error) {
	const op = "entitlement.ActivateCoupon"

	activated, err := s.repo.ActivateCoupon(ctx, userID, code, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if activated {
		metrics.CouponsActivatedTotal.Inc()
		s.log.Info("coupon activated", slog.Int64("user_id", userID))
		s.invalidateStats()
	}
	return activated, nil
}

// IsAdmin проверяет права администратора.
func (s *Service) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	const op = "entitlement.IsAdmin"

	isAdmin, err := s.repo.IsAdmin(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return isAdmin, nil
}

// Stats возвращает статистику использования. Результат кэшируется
// на минуту, активации купонов сбрасывают кэш.
func (s *Service) Stats(ctx context.Context) (*models.UsageStats, error) {
	const op = "entitlement.Stats"

	var cached models.UsageStats
	found, err := s.cache.Get(statsCacheKey, &cached)
	if err != nil {
		s.log.Warn("failed to read stats from cache", sl.Err(err))
	}
	if found {
		return &cached, nil
	}

	stats, err := s.repo.UsageStats(ctx, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.cache.Set(statsCacheKey, stats, time.Minute); err != nil {
		s.log.Warn("failed to cache stats", sl.Err(err))
	}
	return stats, nil
}

func (s *Service) invalidateStats() {
	if err := s.cache.Invalidate(statsCacheKey); err != nil {
		s.log.Warn("failed to invalidate stats cache", sl.Err(err))
	}
}
