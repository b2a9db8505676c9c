// Package downloader связывает конвейер обработки ссылки: определение
// платформы, списание лимита, извлечение медиа и доставку пользователю.
package downloader

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mediaload/mediaload-bot/internal/extractor"
	"github.com/mediaload/mediaload-bot/internal/fetcher"
	"github.com/mediaload/mediaload-bot/internal/lib/sl"
	"github.com/mediaload/mediaload-bot/internal/metrics"
	"github.com/mediaload/mediaload-bot/internal/models"
	"github.com/mediaload/mediaload-bot/internal/telegram"
)

// Outcome итог обработки ссылки. Используется для метрик и выбора
// сообщения пользователю.
type Outcome string

const (
	OutcomeDelivered           Outcome = "delivered"
	OutcomeUnsupportedLink     Outcome = "unsupported_link"
	OutcomeAdmissionDenied     Outcome = "admission_denied"
	OutcomeUpstreamUnavailable Outcome = "upstream_unavailable"
	OutcomeNoMedia             Outcome = "no_media"
	OutcomeTooLarge            Outcome = "payload_too_large"
	OutcomeDeliveryRejected    Outcome = "delivery_rejected"
	OutcomeUnknown             Outcome = "unknown"
)

// Admitter решает, разрешена ли пользователю загрузка.
type Admitter interface {
	Admit(ctx context.Context, userID int64) (bool, error)
}

// Extractor извлекает прямые ссылки на медиа из поста.
type Extractor interface {
	Extract(ctx context.Context, rawURL string, platform extractor.Platform) (*models.ExtractionResult, error)
}

// Deliverer доставляет извлечённое медиа в чат.
type Deliverer interface {
	Deliver(ctx context.Context, chatID int64, platform extractor.Platform, result *models.ExtractionResult) error
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Service конвейер обработки ссылок.
type Service struct {
	log       *slog.Logger
	admitter  Admitter
	extractor Extractor
	deliverer Deliverer
	cache     Cache
	cacheTTL  time.Duration
}

// New создаёт конвейер. cacheTTL задаёт время жизни кэша результатов
// извлечения, повторная ссылка не тратит квоту внешнего API.
func New(log *slog.Logger, admitter Admitter, ext Extractor, deliverer Deliverer, cache Cache, cacheTTL time.Duration) *Service {
	return &Service{
		log:       log,
		admitter:  admitter,
		extractor: ext,
		deliverer: deliverer,
		cache:     cache,
		cacheTTL:  cacheTTL,
	}
}

// Process обрабатывает присланную пользователем ссылку от начала до конца.
// Загрузка списывается до обращения к внешним API; неподдерживаемые
// ссылки отклоняются раньше и лимит не тратят.
func (s *Service) Process(ctx context.Context, userID, chatID int64, rawURL string) Outcome {
	platform := extractor.DetectPlatform(rawURL)
	if platform == extractor.PlatformUnknown {
		return OutcomeUnsupportedLink
	}

	admitted, err := s.admitter.Admit(ctx, userID)
	if err != nil {
		s.log.Error("admission check failed", sl.Err(err))
		return s.finish(platform, OutcomeAdmissionDenied)
	}
	if !admitted {
		return s.finish(platform, OutcomeAdmissionDenied)
	}

	result, err := s.extract(ctx, rawURL, platform)
	if err != nil {
		s.log.Warn("extraction failed", slog.String("platform", string(platform)), sl.Err(err))
		return s.finish(platform, classify(err))
	}

	if err := s.deliverer.Deliver(ctx, chatID, platform, result); err != nil {
		s.log.Warn("delivery failed", slog.String("platform", string(platform)), sl.Err(err))
		return s.finish(platform, classify(err))
	}

	return s.finish(platform, OutcomeDelivered)
}

// extract возвращает закэшированный результат извлечения либо
// обращается к API и кэширует успешный ответ.
func (s *Service) extract(ctx context.Context, rawURL string, platform extractor.Platform) (*models.ExtractionResult, error) {
	cacheKey := "extract:" + rawURL

	var cached models.ExtractionResult
	found, err := s.cache.Get(cacheKey, &cached)
	if err != nil {
		s.log.Warn("failed to read extraction cache", sl.Err(err))
	}
	if found {
		return &cached, nil
	}

	result, err := s.extractor.Extract(ctx, rawURL, platform)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(cacheKey, result, s.cacheTTL); err != nil {
		s.log.Warn("failed to cache extraction result", sl.Err(err))
	}
	return result, nil
}

func (s *Service) finish(platform extractor.Platform, outcome Outcome) Outcome {
	metrics.DownloadsTotal.WithLabelValues(string(platform), string(outcome)).Inc()
	return outcome
}

// classify сводит ошибку конвейера к итогу по известным сигнальным ошибкам.
func classify(err error) Outcome {
	switch {
	case errors.Is(err, extractor.ErrNoMedia):
		return OutcomeNoMedia
	case errors.Is(err, extractor.ErrUnavailable):
		return OutcomeUpstreamUnavailable
	case errors.Is(err, fetcher.ErrTooLarge):
		return OutcomeTooLarge
	case errors.Is(err, telegram.ErrRejected):
		return OutcomeDeliveryRejected
	default:
		return OutcomeUnknown
	}
}
