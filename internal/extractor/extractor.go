// Package extractor извлекает прямые ссылки на медиа из постов
// социальных сетей через сторонние API, а для Pinterest дополнительно
// умеет разбирать HTML страницы.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mediaload/mediaload-bot/internal/lib/sl"
	"github.com/mediaload/mediaload-bot/internal/models"
)

var (
	// ErrNoMedia в посте нет видео или изображений.
	ErrNoMedia = errors.New("no media found")
	// ErrUnavailable API извлечения недоступен или вернул ошибку.
	ErrUnavailable = errors.New("extraction service unavailable")
)

// Service извлекает медиа для всех поддерживаемых платформ.
type Service struct {
	log        *slog.Logger
	client     *Client
	httpClient *http.Client
}

// New создаёт сервис извлечения. httpClient используется для
// разворачивания коротких ссылок и скачивания HTML страниц.
func New(log *slog.Logger, client *Client) *Service {
	return &Service{
		log:        log,
		client:     client,
		httpClient: &http.Client{Timeout: 20 * time.Second},
	}
}

// Extract возвращает прямые ссылки на медиа для поста.
// Возвращает ErrNoMedia, если пост не содержит видео или изображений,
// и ErrUnavailable при недоступности внешних API.
func (s *Service) Extract(ctx context.Context, rawURL string, platform Platform) (*models.ExtractionResult, error) {
	const op = "extractor.Extract"

	switch platform {
	case PlatformTikTok:
		return s.extractTikTok(ctx, rawURL)
	case PlatformPinterest:
		return s.extractPinterest(ctx, rawURL)
	case PlatformInstagram, PlatformTwitter, PlatformYouTube, PlatformFacebook:
		return s.extractGeneric(ctx, rawURL)
	default:
		return nil, fmt.Errorf("%s: unsupported platform %q", op, platform)
	}
}

// extractGeneric обрабатывает платформы, полностью покрытые универсальным API.
// Ответ со списком links трактуется как видео-пост: если подходящей ссылки
// в нём нет, изображения не рассматриваются.
func (s *Service) extractGeneric(ctx context.Context, rawURL string) (*models.ExtractionResult, error) {
	const op = "extractor.extractGeneric"

	resp, err := s.client.GetAll(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if len(resp.Links) > 0 {
		videoURL := selectVideoLink(resp.Links)
		if videoURL == "" {
			return nil, fmt.Errorf("%s: %w", op, ErrNoMedia)
		}
		return models.Video(videoURL), nil
	}
	if len(resp.Images) > 0 {
		return models.Images(resp.Images), nil
	}
	return nil, fmt.Errorf("%s: %w", op, ErrNoMedia)
}

// extractTikTok сначала пробует универсальный API, затем специализированный.
// Перед запросами короткая ссылка разворачивается, а трекинговые
// параметры отбрасываются.
func (s *Service) extractTikTok(ctx context.Context, rawURL string) (*models.ExtractionResult, error) {
	const op = "extractor.extractTikTok"

	cleaned := s.cleanTikTokURL(ctx, rawURL)

	if resp, err := s.client.GetAll(ctx, cleaned); err == nil {
		if videoURL := videoFromResponse(resp); videoURL != "" {
			return models.Video(videoURL), nil
		}
	} else {
		s.log.Warn("generic endpoint failed, trying specialized", sl.Err(err))
	}

	resp, err := s.client.TikTokNoWatermark(ctx, cleaned)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if videoURL := videoFromResponse(resp); videoURL != "" {
		return models.Video(videoURL), nil
	}
	return nil, fmt.Errorf("%s: %w", op, ErrNoMedia)
}

// cleanTikTokURL разворачивает короткие ссылки vt.tiktok.com и отрезает
// параметры запроса. При любой ошибке возвращается исходная ссылка.
func (s *Service) cleanTikTokURL(ctx context.Context, rawURL string) string {
	cleaned := rawURL
	if strings.Contains(cleaned, "vt.tiktok.com") {
		resolved, err := s.resolveRedirect(ctx, cleaned, 10*time.Second)
		if err != nil {
			s.log.Warn("failed to resolve short link", sl.Err(err))
			return rawURL
		}
		cleaned = resolved
	}

	if idx := strings.Index(cleaned, "?"); idx != -1 {
		cleaned = cleaned[:idx]
	}
	return cleaned
}
