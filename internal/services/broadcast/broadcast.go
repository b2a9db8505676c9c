// Package broadcast реализует массовую рассылку сообщений пользователям
// бота через очередь RabbitMQ: постановку задач и их доставку.
package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/mediaload/mediaload-bot/internal/lib/sl"
	"github.com/mediaload/mediaload-bot/internal/metrics"
	"github.com/mediaload/mediaload-bot/internal/rabbitmq"
	"github.com/mediaload/mediaload-bot/internal/telegram"
)

// Message единица рассылки в очереди, одно сообщение на получателя.
type Message struct {
	UserID int64  `json:"user_id"`
	Text   string `json:"text"`
}

// Repository выбирает получателей рассылки.
type Repository interface {
	// ListUserIDs возвращает Telegram ID пользователей сегмента:
	// all, premium или free.
	ListUserIDs(ctx context.Context, segment string, now time.Time) ([]int64, error)
}

// Publisher кладёт сообщение в очередь.
type Publisher interface {
	Publish(message any) error
}

// Sender доставляет сообщение пользователю.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string, replyMarkup *telegram.InlineKeyboardMarkup) (*telegram.Message, error)
}

// AMQPPublisher публикует сообщения рассылки в RabbitMQ.
type AMQPPublisher struct {
	ch *amqp.Channel
}

func NewAMQPPublisher(ch *amqp.Channel) *AMQPPublisher {
	return &AMQPPublisher{ch: ch}
}

func (p *AMQPPublisher) Publish(message any) error {
	return rabbitmq.PublishMessage(p.ch, rabbitmq.BroadcastExchange, rabbitmq.BroadcastRoutingKey, message)
}

// Service ставит рассылки в очередь и доставляет их получателям.
type Service struct {
	log       *slog.Logger
	repo      Repository
	publisher Publisher
	sender    Sender
}

// New создаёт сервис рассылки.
func New(log *slog.Logger, repo Repository, publisher Publisher, sender Sender) *Service {
	return &Service{
		log:       log,
		repo:      repo,
		publisher: publisher,
		sender:    sender,
	}
}

// Enqueue раскладывает рассылку по очереди, по сообщению на получателя.
// Возвращает количество поставленных задач.
func (s *Service) Enqueue(ctx context.Context, segment, text string) (int, error) {
	const op = "broadcast.Enqueue"

	userIDs, err := s.repo.ListUserIDs(ctx, segment, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	enqueued := 0
	for _, userID := range userIDs {
		msg := Message{UserID: userID, Text: text}
		if err := s.publisher.Publish(msg); err != nil {
			s.log.Error("failed to enqueue broadcast message",
				slog.Int64("user_id", userID), sl.Err(err))
			continue
		}
		enqueued++
	}

	s.log.Info("broadcast enqueued",
		slog.String("segment", segment), slog.Int("recipients", enqueued))
	return enqueued, nil
}

// HandleDelivery обрабатывает одно сообщение очереди. Отказ Telegram
// (бот заблокирован и т.п.) не возвращает сообщение в очередь,
// сетевые ошибки — возвращают.
func (s *Service) HandleDelivery(body []byte) error {
	const op = "broadcast.HandleDelivery"

	var msg Message
	if err := json.Unmarshal(body, &msg); err != nil {
		s.log.Error("malformed broadcast message", sl.Err(err))
		metrics.BroadcastDeliveries.WithLabelValues("malformed").Inc()
		return nil
	}

	_, err := s.sender.SendMessage(context.Background(), msg.UserID, msg.Text, nil)
	if errors.Is(err, telegram.ErrRejected) {
		s.log.Warn("broadcast rejected by telegram",
			slog.Int64("user_id", msg.UserID), sl.Err(err))
		metrics.BroadcastDeliveries.WithLabelValues("rejected").Inc()
		return nil
	}
	if err != nil {
		metrics.BroadcastDeliveries.WithLabelValues("retried").Inc()
		return fmt.Errorf("%s: %w", op, err)
	}

	metrics.BroadcastDeliveries.WithLabelValues("delivered").Inc()
	return nil
}

// Run подписывает обработчик на очередь рассылки.
func (s *Service) Run(ctx context.Context, ch *amqp.Channel, queueName string) error {
	const op = "broadcast.Run"

	if err := rabbitmq.ConsumerMessage(ctx, ch, queueName, s.HandleDelivery); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
