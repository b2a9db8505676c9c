// Package bot реализует цикл обработки обновлений Telegram: long polling,
// разбор команд и диалог активации купона.
package bot

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mediaload/mediaload-bot/internal/extractor"
	"github.com/mediaload/mediaload-bot/internal/lib/sl"
	"github.com/mediaload/mediaload-bot/internal/models"
	"github.com/mediaload/mediaload-bot/internal/services/downloader"
	"github.com/mediaload/mediaload-bot/internal/telegram"
)

// API описывает методы Bot API, которые использует цикл обработки.
type API interface {
	DeleteWebhook(ctx context.Context) error
	GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]telegram.Update, error)
	SendMessage(ctx context.Context, chatID int64, text string, replyMarkup *telegram.InlineKeyboardMarkup) (*telegram.Message, error)
	DeleteMessage(ctx context.Context, chatID, messageID int64) error
	EditMessageText(ctx context.Context, chatID, messageID int64, text string) error
	AnswerCallbackQuery(ctx context.Context, callbackID string) error
}

// Downloader описывает конвейер обработки присланной ссылки.
type Downloader interface {
	Process(ctx context.Context, userID, chatID int64, rawURL string) downloader.Outcome
}

// Entitlements описывает бизнес-логику лимитов, купонов и прав администратора.
type Entitlements interface {
	FreeLimit() int
	IssueCoupon(ctx context.Context, duration models.CouponDuration) (string, error)
	ActivateCoupon(ctx context.Context, userID int64, code string) (bool, error)
	IsAdmin(ctx context.Context, userID int64) (bool, error)
	Stats(ctx context.Context) (*models.UsageStats, error)
}

// Bot получает обновления long polling-ом и раздаёт их обработчикам.
type Bot struct {
	log          *slog.Logger
	api          API
	downloader   Downloader
	entitlements Entitlements
	pollTimeout  time.Duration

	mu             sync.Mutex
	awaitingCoupon map[int64]struct{}
}

// New создаёт цикл обработки обновлений.
func New(log *slog.Logger, api API, dl Downloader, ent Entitlements, pollTimeout time.Duration) *Bot {
	return &Bot{
		log:            log,
		api:            api,
		downloader:     dl,
		entitlements:   ent,
		pollTimeout:    pollTimeout,
		awaitingCoupon: make(map[int64]struct{}),
	}
}

// Run запускает long polling до отмены контекста. Перед стартом
// удаляется webhook, иначе getUpdates вернёт ошибку 409.
func (b *Bot) Run(ctx context.Context) error {
	const op = "bot.Run"

	if err := b.api.DeleteWebhook(ctx); err != nil {
		b.log.Warn("failed to delete webhook", sl.Err(err))
	}

	var offset int64
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		updates, err := b.api.GetUpdates(ctx, offset, b.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			b.log.Error("failed to get updates", slog.String("op", op), sl.Err(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(5 * time.Second):
			}
			continue
		}

		for _, upd := range updates {
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
			go b.handleUpdate(ctx, upd)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, upd telegram.Update) {
	switch {
	case upd.CallbackQuery != nil:
		b.handleCallback(ctx, upd.CallbackQuery)
	case upd.Message != nil && upd.Message.From != nil && upd.Message.Text != "":
		b.handleMessage(ctx, upd.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *telegram.Message) {
	text := strings.TrimSpace(msg.Text)
	userID := msg.From.ID
	chatID := msg.Chat.ID

	if strings.HasPrefix(text, "/") {
		b.handleCommand(ctx, userID, chatID, text)
		return
	}

	if b.takeAwaitingCoupon(userID) {
		b.activateCoupon(ctx, userID, chatID, text)
		return
	}

	b.processLink(ctx, userID, chatID, text)
}

func (b *Bot) handleCommand(ctx context.Context, userID, chatID int64, text string) {
	cmd := strings.SplitN(text, " ", 2)[0]
	if i := strings.Index(cmd, "@"); i >= 0 {
		cmd = cmd[:i]
	}

	switch cmd {
	case "/start":
		b.send(ctx, chatID, welcomeMessage(b.entitlements.FreeLimit()))
	case "/help":
		b.sendHelp(ctx, userID, chatID)
	case "/activate_coupon":
		b.setAwaitingCoupon(userID)
		b.send(ctx, chatID, couponPromptMessage)
	case "/generate_coupon":
		b.sendCouponKeyboard(ctx, userID, chatID)
	case "/stats":
		b.sendStats(ctx, userID, chatID)
	default:
		b.send(ctx, chatID, unsupportedMessage)
	}
}

func (b *Bot) sendHelp(ctx context.Context, userID, chatID int64) {
	text := helpMessage(b.entitlements.FreeLimit())
	isAdmin, err := b.entitlements.IsAdmin(ctx, userID)
	if err != nil {
		b.log.Warn("failed to check admin rights", sl.Err(err))
	}
	if isAdmin {
		text += adminHelpSuffix
	}
	b.send(ctx, chatID, text)
}

func (b *Bot) sendCouponKeyboard(ctx context.Context, userID, chatID int64) {
	if !b.requireAdmin(ctx, userID, chatID) {
		return
	}
	keyboard := &telegram.InlineKeyboardMarkup{
		InlineKeyboard: [][]telegram.InlineKeyboardButton{
			{{Text: "1️⃣ 1 месяц", CallbackData: "coupon_1month"}},
			{{Text: "3️⃣ 3 месяца", CallbackData: "coupon_3months"}},
			{{Text: "♾️ Навсегда", CallbackData: "coupon_lifetime"}},
		},
	}
	if _, err := b.api.SendMessage(ctx, chatID, chooseDurationMessage, keyboard); err != nil {
		b.log.Error("failed to send coupon keyboard", sl.Err(err))
	}
}

func (b *Bot) sendStats(ctx context.Context, userID, chatID int64) {
	if !b.requireAdmin(ctx, userID, chatID) {
		return
	}
	stats, err := b.entitlements.Stats(ctx)
	if err != nil {
		b.log.Error("failed to collect stats", sl.Err(err))
		b.send(ctx, chatID, "❌ Не удалось получить статистику.")
		return
	}
	b.send(ctx, chatID, statsMessage(stats))
}

func (b *Bot) handleCallback(ctx context.Context, cb *telegram.CallbackQuery) {
	if err := b.api.AnswerCallbackQuery(ctx, cb.ID); err != nil {
		b.log.Warn("failed to answer callback query", sl.Err(err))
	}
	if cb.Message == nil {
		return
	}
	chatID := cb.Message.Chat.ID

	durations := map[string]models.CouponDuration{
		"coupon_1month":   models.DurationOneMonth,
		"coupon_3months":  models.DurationThreeMonths,
		"coupon_lifetime": models.DurationLifetime,
	}
	duration, ok := durations[cb.Data]
	if !ok {
		b.send(ctx, chatID, "❌ Неизвестное действие!")
		return
	}

	code, err := b.entitlements.IssueCoupon(ctx, duration)
	if err != nil {
		b.log.Error("failed to issue coupon", sl.Err(err))
		b.send(ctx, chatID, "❌ Ошибка при создании купона!")
		return
	}
	b.send(ctx, chatID, couponIssuedMessage(code, duration))
}

func (b *Bot) activateCoupon(ctx context.Context, userID, chatID int64, code string) {
	activated, err := b.entitlements.ActivateCoupon(ctx, userID, code)
	if err != nil {
		b.log.Error("failed to activate coupon", sl.Err(err))
	}
	if activated {
		b.send(ctx, chatID, couponActivatedMessage)
		return
	}
	b.send(ctx, chatID, couponFailedMessage)
}

// processLink прогоняет ссылку через конвейер загрузки. На время
// обработки в чате висит сообщение о прогрессе: при успехе оно
// удаляется, при ошибке заменяется на описание проблемы.
func (b *Bot) processLink(ctx context.Context, userID, chatID int64, rawURL string) {
	if extractor.DetectPlatform(rawURL) == extractor.PlatformUnknown {
		b.send(ctx, chatID, unsupportedMessage)
		return
	}

	processing, err := b.api.SendMessage(ctx, chatID, processingMessage, nil)
	if err != nil {
		b.log.Error("failed to send processing message", sl.Err(err))
	}

	outcome := b.downloader.Process(ctx, userID, chatID, rawURL)

	if outcome == downloader.OutcomeDelivered {
		if processing != nil {
			if err := b.api.DeleteMessage(ctx, chatID, processing.MessageID); err != nil {
				b.log.Warn("failed to delete processing message", sl.Err(err))
			}
		}
		return
	}

	text := b.outcomeMessage(outcome)
	if processing != nil {
		if err := b.api.EditMessageText(ctx, chatID, processing.MessageID, text); err != nil {
			b.log.Warn("failed to edit processing message", sl.Err(err))
		}
		return
	}
	b.send(ctx, chatID, text)
}

func (b *Bot) outcomeMessage(outcome downloader.Outcome) string {
	switch outcome {
	case downloader.OutcomeUnsupportedLink:
		return unsupportedMessage
	case downloader.OutcomeAdmissionDenied:
		return limitExceededMessage(b.entitlements.FreeLimit())
	case downloader.OutcomeUpstreamUnavailable:
		return "❌ Сервис временно недоступен, попробуйте позже."
	case downloader.OutcomeNoMedia:
		return "❌ Не удалось найти медиа по этой ссылке."
	case downloader.OutcomeTooLarge:
		return "❌ Файл слишком большой для отправки."
	case downloader.OutcomeDeliveryRejected:
		return "❌ Telegram не принял файл — возможно, он слишком большой."
	default:
		return "❌ Ошибка при обработке контента."
	}
}

func (b *Bot) requireAdmin(ctx context.Context, userID, chatID int64) bool {
	isAdmin, err := b.entitlements.IsAdmin(ctx, userID)
	if err != nil {
		b.log.Error("failed to check admin rights", sl.Err(err))
	}
	if !isAdmin {
		b.send(ctx, chatID, adminOnlyMessage)
		return false
	}
	return true
}

func (b *Bot) send(ctx context.Context, chatID int64, text string) {
	if _, err := b.api.SendMessage(ctx, chatID, text, nil); err != nil {
		b.log.Error("failed to send message", sl.Err(err))
	}
}

func (b *Bot) setAwaitingCoupon(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.awaitingCoupon[userID] = struct{}{}
}

// takeAwaitingCoupon снимает флаг ожидания кода и сообщает, был ли он
// установлен. Следующее сообщение пользователя трактуется как код купона
// ровно один раз.
func (b *Bot) takeAwaitingCoupon(userID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.awaitingCoupon[userID]; !ok {
		return false
	}
	delete(b.awaitingCoupon, userID)
	return true
}
