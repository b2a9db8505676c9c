package bot

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/mediaload/mediaload-bot/internal/models"
	"github.com/mediaload/mediaload-bot/internal/services/downloader"
	"github.com/mediaload/mediaload-bot/internal/telegram"
)

type APIMock struct{ mock.Mock }

func (m *APIMock) DeleteWebhook(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *APIMock) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]telegram.Update, error) {
	args := m.Called(ctx, offset, timeout)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]telegram.Update), args.Error(1)
}

func (m *APIMock) SendMessage(ctx context.Context, chatID int64, text string, replyMarkup *telegram.InlineKeyboardMarkup) (*telegram.Message, error) {
	args := m.Called(ctx, chatID, text, replyMarkup)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*telegram.Message), args.Error(1)
}

func (m *APIMock) DeleteMessage(ctx context.Context, chatID, messageID int64) error {
	args := m.Called(ctx, chatID, messageID)
	return args.Error(0)
}

func (m *APIMock) EditMessageText(ctx context.Context, chatID, messageID int64, text string) error {
	args := m.Called(ctx, chatID, messageID, text)
	return args.Error(0)
}

func (m *APIMock) AnswerCallbackQuery(ctx context.Context, callbackID string) error {
	args := m.Called(ctx, callbackID)
	return args.Error(0)
}

type DownloaderMock struct{ mock.Mock }

func (m *DownloaderMock) Process(ctx context.Context, userID, chatID int64, rawURL string) downloader.Outcome {
	args := m.Called(ctx, userID, chatID, rawURL)
	return args.Get(0).(downloader.Outcome)
}

type EntitlementsMock struct{ mock.Mock }

func (m *EntitlementsMock) FreeLimit() int {
	args := m.Called()
	return args.Int(0)
}

func (m *EntitlementsMock) IssueCoupon(ctx context.Context, duration models.CouponDuration) (string, error) {
	args := m.Called(ctx, duration)
	return args.String(0), args.Error(1)
}

func (m *EntitlementsMock) ActivateCoupon(ctx context.Context, userID int64, code string) (bool, error) {
	args := m.Called(ctx, userID, code)
	return args.Bool(0), args.Error(1)
}

func (m *EntitlementsMock) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *EntitlementsMock) Stats(ctx context.Context) (*models.UsageStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UsageStats), args.Error(1)
}

func newBot(api *APIMock, dl *DownloaderMock, ent *EntitlementsMock) *Bot {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(log, api, dl, ent, time.Second)
}

func message(userID, chatID int64, text string) *telegram.Message {
	return &telegram.Message{
		MessageID: 1,
		From:      &telegram.User{ID: userID},
		Chat:      telegram.Chat{ID: chatID},
		Text:      text,
	}
}

func TestHandleMessage_StartCommand(t *testing.T) {
	api := new(APIMock)
	dl := new(DownloaderMock)
	ent := new(EntitlementsMock)

	ent.On("FreeLimit").Return(100)
	api.On("SendMessage", mock.Anything, int64(10), mock.MatchedBy(func(text string) bool {
		return strings.Contains(text, "100 бесплатных загрузок")
	}), (*telegram.InlineKeyboardMarkup)(nil)).Return(&telegram.Message{MessageID: 2}, nil)

	b := newBot(api, dl, ent)
	b.handleMessage(context.Background(), message(5, 10, "/start"))
	api.AssertExpectations(t)
}

func TestHandleMessage_HelpShowsAdminCommands(t *testing.T) {
	api := new(APIMock)
	dl := new(DownloaderMock)
	ent := new(EntitlementsMock)

	ent.On("FreeLimit").Return(100)
	ent.On("IsAdmin", mock.Anything, int64(5)).Return(true, nil)
	api.On("SendMessage", mock.Anything, int64(10), mock.MatchedBy(func(text string) bool {
		return strings.Contains(text, "/generate_coupon")
	}), (*telegram.InlineKeyboardMarkup)(nil)).Return(&telegram.Message{MessageID: 2}, nil)

	b := newBot(api, dl, ent)
	b.handleMessage(context.Background(), message(5, 10, "/help"))
	api.AssertExpectations(t)
}

func TestHandleMessage_HelpHidesAdminCommands(t *testing.T) {
	api := new(APIMock)
	dl := new(DownloaderMock)
	ent := new(EntitlementsMock)

	ent.On("FreeLimit").Return(100)
	ent.On("IsAdmin", mock.Anything, int64(5)).Return(false, nil)
	api.On("SendMessage", mock.Anything, int64(10), mock.MatchedBy(func(text string) bool {
		return !strings.Contains(text, "/generate_coupon")
	}), (*telegram.InlineKeyboardMarkup)(nil)).Return(&telegram.Message{MessageID: 2}, nil)

	b := newBot(api, dl, ent)
	b.handleMessage(context.Background(), message(5, 10, "/help"))
	api.AssertExpectations(t)
}

func TestProcessLink_DeliveredDeletesProcessingMessage(t *testing.T) {
	api := new(APIMock)
	dl := new(DownloaderMock)
	ent := new(EntitlementsMock)

	api.On("SendMessage", mock.Anything, int64(10), processingMessage, (*telegram.InlineKeyboardMarkup)(nil)).
		Return(&telegram.Message{MessageID: 77}, nil)
	dl.On("Process", mock.Anything, int64(5), int64(10), "https://www.tiktok.com/@user/video/1").
		Return(downloader.OutcomeDelivered)
	api.On("DeleteMessage", mock.Anything, int64(10), int64(77)).Return(nil)

	b := newBot(api, dl, ent)
	b.handleMessage(context.Background(), message(5, 10, "https://www.tiktok.com/@user/video/1"))
	api.AssertExpectations(t)
	dl.AssertExpectations(t)
}

func TestProcessLink_LimitExceededEditsProcessingMessage(t *testing.T) {
	api := new(APIMock)
	dl := new(DownloaderMock)
	ent := new(EntitlementsMock)

	ent.On("FreeLimit").Return(100)
	api.On("SendMessage", mock.Anything, int64(10), processingMessage, (*telegram.InlineKeyboardMarkup)(nil)).
		Return(&telegram.Message{MessageID: 77}, nil)
	dl.On("Process", mock.Anything, int64(5), int64(10), "https://www.instagram.com/reel/abc/").
		Return(downloader.OutcomeAdmissionDenied)
	api.On("EditMessageText", mock.Anything, int64(10), int64(77), mock.MatchedBy(func(text string) bool {
		return strings.Contains(text, "Лимит бесплатных загрузок исчерпан")
	})).Return(nil)

	b := newBot(api, dl, ent)
	b.handleMessage(context.Background(), message(5, 10, "https://www.instagram.com/reel/abc/"))
	api.AssertExpectations(t)
}

func TestProcessLink_DeliveryRejectedEditsProcessingMessage(t *testing.T) {
	api := new(APIMock)
	dl := new(DownloaderMock)
	ent := new(EntitlementsMock)

	api.On("SendMessage", mock.Anything, int64(10), processingMessage, (*telegram.InlineKeyboardMarkup)(nil)).
		Return(&telegram.Message{MessageID: 77}, nil)
	dl.On("Process", mock.Anything, int64(5), int64(10), "https://www.tiktok.com/@user/video/2").
		Return(downloader.OutcomeDeliveryRejected)
	api.On("EditMessageText", mock.Anything, int64(10), int64(77), mock.MatchedBy(func(text string) bool {
		return strings.Contains(text, "Telegram не принял файл")
	})).Return(nil)

	b := newBot(api, dl, ent)
	b.handleMessage(context.Background(), message(5, 10, "https://www.tiktok.com/@user/video/2"))
	api.AssertExpectations(t)
	dl.AssertExpectations(t)
}

func TestOutcomeMessages_Distinct(t *testing.T) {
	b := newBot(new(APIMock), new(DownloaderMock), new(EntitlementsMock))

	// Отказ Bot API принять файл и неизвестный сбой — разные ситуации,
	// пользователь должен видеть разные тексты.
	assert.NotEqual(t,
		b.outcomeMessage(downloader.OutcomeUnknown),
		b.outcomeMessage(downloader.OutcomeDeliveryRejected))
	assert.NotEqual(t,
		b.outcomeMessage(downloader.OutcomeTooLarge),
		b.outcomeMessage(downloader.OutcomeDeliveryRejected))
}

func TestProcessLink_UnsupportedLinkSkipsPipeline(t *testing.T) {
	api := new(APIMock)
	dl := new(DownloaderMock)
	ent := new(EntitlementsMock)

	api.On("SendMessage", mock.Anything, int64(10), unsupportedMessage, (*telegram.InlineKeyboardMarkup)(nil)).
		Return(&telegram.Message{MessageID: 2}, nil)

	b := newBot(api, dl, ent)
	b.handleMessage(context.Background(), message(5, 10, "https://example.com/video"))
	api.AssertExpectations(t)
	dl.AssertNotCalled(t, "Process", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCouponActivationDialog(t *testing.T) {
	api := new(APIMock)
	dl := new(DownloaderMock)
	ent := new(EntitlementsMock)

	api.On("SendMessage", mock.Anything, int64(10), couponPromptMessage, (*telegram.InlineKeyboardMarkup)(nil)).
		Return(&telegram.Message{MessageID: 2}, nil)
	ent.On("ActivateCoupon", mock.Anything, int64(5), "COUPON-20260828120000").Return(true, nil)
	api.On("SendMessage", mock.Anything, int64(10), couponActivatedMessage, (*telegram.InlineKeyboardMarkup)(nil)).
		Return(&telegram.Message{MessageID: 3}, nil)

	b := newBot(api, dl, ent)
	b.handleMessage(context.Background(), message(5, 10, "/activate_coupon"))
	b.handleMessage(context.Background(), message(5, 10, "COUPON-20260828120000"))

	api.AssertExpectations(t)
	ent.AssertExpectations(t)
	assert.False(t, b.takeAwaitingCoupon(5), "awaiting state must be consumed")
}

func TestCouponActivationFailed(t *testing.T) {
	api := new(APIMock)
	dl := new(DownloaderMock)
	ent := new(EntitlementsMock)

	api.On("SendMessage", mock.Anything, int64(10), couponPromptMessage, (*telegram.InlineKeyboardMarkup)(nil)).
		Return(&telegram.Message{MessageID: 2}, nil)
	ent.On("ActivateCoupon", mock.Anything, int64(5), "COUPON-BAD").Return(false, nil)
	api.On("SendMessage", mock.Anything, int64(10), couponFailedMessage, (*telegram.InlineKeyboardMarkup)(nil)).
		Return(&telegram.Message{MessageID: 3}, nil)

	b := newBot(api, dl, ent)
	b.handleMessage(context.Background(), message(5, 10, "/activate_coupon"))
	b.handleMessage(context.Background(), message(5, 10, "COUPON-BAD"))
	api.AssertExpectations(t)
}

func TestGenerateCoupon_NonAdminRejected(t *testing.T) {
	api := new(APIMock)
	dl := new(DownloaderMock)
	ent := new(EntitlementsMock)

	ent.On("IsAdmin", mock.Anything, int64(5)).Return(false, nil)
	api.On("SendMessage", mock.Anything, int64(10), adminOnlyMessage, (*telegram.InlineKeyboardMarkup)(nil)).
		Return(&telegram.Message{MessageID: 2}, nil)

	b := newBot(api, dl, ent)
	b.handleMessage(context.Background(), message(5, 10, "/generate_coupon"))
	api.AssertExpectations(t)
	ent.AssertNotCalled(t, "IssueCoupon", mock.Anything, mock.Anything)
}

func TestGenerateCoupon_AdminGetsKeyboard(t *testing.T) {
	api := new(APIMock)
	dl := new(DownloaderMock)
	ent := new(EntitlementsMock)

	ent.On("IsAdmin", mock.Anything, int64(5)).Return(true, nil)
	api.On("SendMessage", mock.Anything, int64(10), chooseDurationMessage, mock.MatchedBy(func(kb *telegram.InlineKeyboardMarkup) bool {
		return kb != nil && len(kb.InlineKeyboard) == 3 &&
			kb.InlineKeyboard[0][0].CallbackData == "coupon_1month" &&
			kb.InlineKeyboard[2][0].CallbackData == "coupon_lifetime"
	})).Return(&telegram.Message{MessageID: 2}, nil)

	b := newBot(api, dl, ent)
	b.handleMessage(context.Background(), message(5, 10, "/generate_coupon"))
	api.AssertExpectations(t)
}

func TestHandleCallback_IssuesCoupon(t *testing.T) {
	api := new(APIMock)
	dl := new(DownloaderMock)
	ent := new(EntitlementsMock)

	api.On("AnswerCallbackQuery", mock.Anything, "cb1").Return(nil)
	ent.On("IssueCoupon", mock.Anything, models.DurationThreeMonths).Return("COUPON-20260828120000", nil)
	api.On("SendMessage", mock.Anything, int64(10), mock.MatchedBy(func(text string) bool {
		return strings.Contains(text, "COUPON-20260828120000") && strings.Contains(text, "3 месяца")
	}), (*telegram.InlineKeyboardMarkup)(nil)).Return(&telegram.Message{MessageID: 2}, nil)

	b := newBot(api, dl, ent)
	b.handleCallback(context.Background(), &telegram.CallbackQuery{
		ID:      "cb1",
		From:    telegram.User{ID: 5},
		Message: &telegram.Message{Chat: telegram.Chat{ID: 10}},
		Data:    "coupon_3months",
	})
	api.AssertExpectations(t)
	ent.AssertExpectations(t)
}

func TestStatsCommand(t *testing.T) {
	api := new(APIMock)
	dl := new(DownloaderMock)
	ent := new(EntitlementsMock)

	ent.On("IsAdmin", mock.Anything, int64(5)).Return(true, nil)
	ent.On("Stats", mock.Anything).Return(&models.UsageStats{
		TotalUsers:          42,
		ActiveSubscriptions: 7,
		TotalDownloads:      1500,
		UnusedCoupons:       3,
	}, nil)
	api.On("SendMessage", mock.Anything, int64(10), mock.MatchedBy(func(text string) bool {
		return strings.Contains(text, "42") && strings.Contains(text, "1500")
	}), (*telegram.InlineKeyboardMarkup)(nil)).Return(&telegram.Message{MessageID: 2}, nil)

	b := newBot(api, dl, ent)
	b.handleMessage(context.Background(), message(5, 10, "/stats"))
	api.AssertExpectations(t)
}

func TestCommandWithBotMention(t *testing.T) {
	api := new(APIMock)
	dl := new(DownloaderMock)
	ent := new(EntitlementsMock)

	ent.On("FreeLimit").Return(100)
	api.On("SendMessage", mock.Anything, int64(10), mock.MatchedBy(func(text string) bool {
		return strings.Contains(text, "Привет")
	}), (*telegram.InlineKeyboardMarkup)(nil)).Return(&telegram.Message{MessageID: 2}, nil)

	b := newBot(api, dl, ent)
	b.handleMessage(context.Background(), message(5, 10, "/start@mediaload_bot"))
	api.AssertExpectations(t)
}
