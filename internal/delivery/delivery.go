// Package delivery отправляет извлечённые медиа пользователю:
// скачивает файлы с ограничением размера и доставляет их через Telegram.
package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mediaload/mediaload-bot/internal/extractor"
	"github.com/mediaload/mediaload-bot/internal/fetcher"
	"github.com/mediaload/mediaload-bot/internal/lib/sl"
	"github.com/mediaload/mediaload-bot/internal/models"
	"github.com/mediaload/mediaload-bot/internal/telegram"
)

// Transport отправляет медиа в чат. Реализуется клиентом Telegram.
type Transport interface {
	SendVideo(ctx context.Context, chatID int64, file telegram.InputFile, caption string) error
	SendPhoto(ctx context.Context, chatID int64, file telegram.InputFile, caption string) error
	SendDocument(ctx context.Context, chatID int64, file telegram.InputFile, caption string) error
	SendMediaGroup(ctx context.Context, chatID int64, items []telegram.PhotoItem) error
}

// Orchestrator скачивает медиа и доставляет его в чат.
type Orchestrator struct {
	log           *slog.Logger
	transport     Transport
	fetcher       *fetcher.Fetcher
	maxVideoBytes int64
	maxImageBytes int64
	pause         time.Duration
}

// New создаёт оркестратор доставки с лимитами размеров файлов.
func New(log *slog.Logger, transport Transport, f *fetcher.Fetcher, maxVideoBytes, maxImageBytes int64) *Orchestrator {
	return &Orchestrator{
		log:           log,
		transport:     transport,
		fetcher:       f,
		maxVideoBytes: maxVideoBytes,
		maxImageBytes: maxImageBytes,
		pause:         time.Second,
	}
}

// Deliver доставляет результат извлечения в чат. Видео для всех платформ,
// кроме Instagram, дублируется документом без перекодирования.
func (o *Orchestrator) Deliver(ctx context.Context, chatID int64, platform extractor.Platform, result *models.ExtractionResult) error {
	const op = "delivery.Deliver"

	switch result.Kind {
	case models.MediaVideo:
		return o.deliverVideo(ctx, chatID, platform, result.VideoURL)
	case models.MediaImage:
		return o.deliverImage(ctx, chatID, platform, result.ImageURLs[0])
	case models.MediaImageSet:
		return o.deliverAlbum(ctx, chatID, platform, result.ImageURLs)
	default:
		return fmt.Errorf("%s: %w", op, extractor.ErrNoMedia)
	}
}

func (o *Orchestrator) deliverVideo(ctx context.Context, chatID int64, platform extractor.Platform, videoURL string) error {
	const op = "delivery.deliverVideo"

	content, err := o.fetcher.Download(ctx, videoURL, o.maxVideoBytes)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	title := platformTitle(platform)
	file := telegram.InputFile{
		Name: string(platform) + "_video.mp4",
		Data: content,
	}
	caption := fmt.Sprintf("%s Видео из %s", videoEmoji(platform), title)
	if err := o.transport.SendVideo(ctx, chatID, file, caption); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	// Instagram получает только видео, остальные платформы ещё и файл
	if platform == extractor.PlatformInstagram {
		return nil
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	case <-time.After(o.pause):
	}

	doc := telegram.InputFile{
		Name: fmt.Sprintf("%s_video_%d.mp4", platform, chatID),
		Data: content,
	}
	docCaption := fmt.Sprintf("📁 Видео из %s (файл)", title)
	if err := o.transport.SendDocument(ctx, chatID, doc, docCaption); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (o *Orchestrator) deliverImage(ctx context.Context, chatID int64, platform extractor.Platform, imageURL string) error {
	const op = "delivery.deliverImage"

	content, err := o.fetcher.Download(ctx, imageURL, o.maxImageBytes)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	file := telegram.InputFile{
		Name: imageFileName(platform, imageURL, 0),
		Data: content,
	}
	caption := fmt.Sprintf("%s Изображение из %s", photoEmoji(platform), platformTitle(platform))
	if err := o.transport.SendPhoto(ctx, chatID, file, caption); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// deliverAlbum отправляет альбом одной медиа-группой. Изображения,
// которые не удалось скачать, пропускаются; ошибка возвращается
// только если не скачалось ни одно.
func (o *Orchestrator) deliverAlbum(ctx context.Context, chatID int64, platform extractor.Platform, imageURLs []string) error {
	const op = "delivery.deliverAlbum"

	items := make([]telegram.PhotoItem, 0, len(imageURLs))
	var lastErr error
	for i, imageURL := range imageURLs {
		content, err := o.fetcher.Download(ctx, imageURL, o.maxImageBytes)
		if err != nil {
			lastErr = err
			o.log.Warn("skipping album image", sl.Err(err))
			continue
		}
		items = append(items, telegram.PhotoItem{
			File: telegram.InputFile{
				Name: imageFileName(platform, imageURL, i+1),
				Data: content,
			},
		})
	}
	if len(items) == 0 {
		return fmt.Errorf("%s: %w", op, lastErr)
	}

	items[0].Caption = fmt.Sprintf("%s Изображения из %s (%d шт.)",
		photoEmoji(platform), platformTitle(platform), len(items))

	if err := o.transport.SendMediaGroup(ctx, chatID, items); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// imageFileName подбирает имя файла по расширению в ссылке.
// Неизвестные расширения считаются jpg.
func imageFileName(platform extractor.Platform, imageURL string, index int) string {
	lower := strings.ToLower(imageURL)
	ext := ".jpg"
	switch {
	case strings.HasSuffix(lower, ".png"):
		ext = ".png"
	case strings.HasSuffix(lower, ".webp"):
		ext = ".webp"
	case strings.HasSuffix(lower, ".jpg"), strings.HasSuffix(lower, ".jpeg"):
		ext = ".jpg"
	}
	if index > 0 {
		return fmt.Sprintf("%s_photo_%d%s", platform, index, ext)
	}
	return string(platform) + "_photo" + ext
}

func platformTitle(platform extractor.Platform) string {
	switch platform {
	case extractor.PlatformInstagram:
		return "Instagram"
	case extractor.PlatformTikTok:
		return "TikTok"
	case extractor.PlatformTwitter:
		return "Twitter/X"
	case extractor.PlatformYouTube:
		return "YouTube"
	case extractor.PlatformFacebook:
		return "Facebook"
	case extractor.PlatformPinterest:
		return "Pinterest"
	default:
		return "интернета"
	}
}

func videoEmoji(platform extractor.Platform) string {
	switch platform {
	case extractor.PlatformTikTok:
		return "🎵"
	case extractor.PlatformPinterest:
		return "📌"
	default:
		return "📹"
	}
}

func photoEmoji(platform extractor.Platform) string {
	if platform == extractor.PlatformPinterest {
		return "📌"
	}
	return "📸"
}
