package extractor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/mediaload/mediaload-bot/internal/lib/sl"
	"github.com/mediaload/mediaload-bot/internal/models"
)

// pinterestImagePatterns упорядочены от лучшего качества к худшему.
var pinterestImagePatterns = []*regexp.Regexp{
	regexp.MustCompile(`"url":"(https://i\.pinimg\.com/originals/[^"]+)"`),
	regexp.MustCompile(`"url":"(https://i\.pinimg\.com/736x/[^"]+)"`),
	regexp.MustCompile(`"images":\{"orig":\{"url":"([^"]+)"`),
	regexp.MustCompile(`property="og:image" content="([^"]+)"`),
	regexp.MustCompile(`"image_large_url":"([^"]+)"`),
	regexp.MustCompile(`"image_medium_url":"([^"]+)"`),
}

// extractPinterest сначала пробует универсальный API. Его ответу можно
// верить только при явном success: true. Если API не помог, изображение
// вытаскивается прямо из HTML страницы пина.
func (s *Service) extractPinterest(ctx context.Context, rawURL string) (*models.ExtractionResult, error) {
	const op = "extractor.extractPinterest"

	if resp, err := s.client.GetAll(ctx, rawURL); err == nil && resp.Success != nil && *resp.Success {
		if len(resp.Links) > 0 {
			if videoURL := selectVideoLink(resp.Links); videoURL != "" {
				return models.Video(videoURL), nil
			}
		} else if len(resp.Images) == 1 {
			return models.Images(resp.Images), nil
		}
	} else if err != nil {
		s.log.Warn("pinterest api failed, falling back to page scrape", sl.Err(err))
	}

	imageURL, err := s.scrapePinterestImage(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return models.Images([]string{imageURL}), nil
}

// scrapePinterestImage скачивает страницу пина и ищет ссылку на изображение
// по известным шаблонам разметки. Среди совпадений предпочитаются оригиналы.
func (s *Service) scrapePinterestImage(ctx context.Context, rawURL string) (string, error) {
	pageURL := rawURL
	if strings.Contains(pageURL, "pin.it") {
		resolved, err := s.resolveRedirect(ctx, pageURL, 10*time.Second)
		if err != nil {
			return "", fmt.Errorf("%w: %s", ErrUnavailable, err)
		}
		pageURL = resolved
	}

	reqCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrUnavailable, err)
	}

	html := string(body)
	for _, pattern := range pinterestImagePatterns {
		matches := pattern.FindAllStringSubmatch(html, -1)
		if len(matches) == 0 {
			continue
		}
		for _, m := range matches {
			if strings.Contains(m[1], "originals") || strings.Contains(m[1], "736x") {
				return m[1], nil
			}
		}
		return matches[0][1], nil
	}
	return "", ErrNoMedia
}

// resolveRedirect проходит по цепочке редиректов и возвращает конечный адрес.
func (s *Service) resolveRedirect(ctx context.Context, rawURL string, timeout time.Duration) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	final := resp.Request.URL.String()
	_ = resp.Body.Close()
	return final, nil
}
