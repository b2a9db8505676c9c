// Package telegram содержит минимальный клиент Telegram Bot API
// поверх net/http: длинный опрос обновлений, отправка текста,
// медиафайлов и медиа-групп.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"
)

// ErrRejected означает, что Bot API принял запрос, но отказался его
// выполнять (например, слишком большой файл). Сетевые ошибки в него
// не заворачиваются.
var ErrRejected = errors.New("telegram rejected request")

type apiEnvelope struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result,omitempty"`
	Description string          `json:"description,omitempty"`
	ErrorCode   int             `json:"error_code,omitempty"`
}

// Client клиент Bot API для одного бота.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент. apiBaseURL обычно https://api.telegram.org,
// pollTimeout задаёт длительность длинного опроса getUpdates.
func NewClient(token, apiBaseURL string, pollTimeout time.Duration) *Client {
	// HTTP-таймаут должен переживать длинный опрос
	clientTimeout := pollTimeout + 30*time.Second
	return &Client{
		baseURL:    apiBaseURL + "/bot" + token,
		httpClient: &http.Client{Timeout: clientTimeout},
	}
}

// GetUpdates забирает обновления длинным опросом начиная с offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error) {
	const op = "telegram.GetUpdates"

	payload := map[string]any{
		"offset":          offset,
		"timeout":         int(timeout.Seconds()),
		"allowed_updates": []string{"message", "callback_query"},
	}
	var updates []Update
	if err := c.callJSON(ctx, "getUpdates", payload, &updates); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return updates, nil
}

// DeleteWebhook снимает вебхук, иначе getUpdates вернёт конфликт.
func (c *Client) DeleteWebhook(ctx context.Context) error {
	const op = "telegram.DeleteWebhook"
	if err := c.callJSON(ctx, "deleteWebhook", map[string]any{}, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SendMessage отправляет HTML-сообщение, replyMarkup может быть nil.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, replyMarkup *InlineKeyboardMarkup) (*Message, error) {
	const op = "telegram.SendMessage"

	payload := map[string]any{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "HTML",
	}
	if replyMarkup != nil {
		payload["reply_markup"] = replyMarkup
	}
	var msg Message
	if err := c.callJSON(ctx, "sendMessage", payload, &msg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &msg, nil
}

// DeleteMessage удаляет сообщение бота.
func (c *Client) DeleteMessage(ctx context.Context, chatID, messageID int64) error {
	const op = "telegram.DeleteMessage"

	payload := map[string]any{
		"chat_id":    chatID,
		"message_id": messageID,
	}
	if err := c.callJSON(ctx, "deleteMessage", payload, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// EditMessageText заменяет текст отправленного сообщения.
func (c *Client) EditMessageText(ctx context.Context, chatID, messageID int64, text string) error {
	const op = "telegram.EditMessageText"

	payload := map[string]any{
		"chat_id":    chatID,
		"message_id": messageID,
		"text":       text,
	}
	if err := c.callJSON(ctx, "editMessageText", payload, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// AnswerCallbackQuery подтверждает обработку нажатия кнопки.
func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackID string) error {
	const op = "telegram.AnswerCallbackQuery"

	payload := map[string]any{"callback_query_id": callbackID}
	if err := c.callJSON(ctx, "answerCallbackQuery", payload, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SendVideo отправляет видео из памяти.
func (c *Client) SendVideo(ctx context.Context, chatID int64, file InputFile, caption string) error {
	const op = "telegram.SendVideo"

	fields := map[string]string{
		"chat_id": strconv.FormatInt(chatID, 10),
		"caption": caption,
	}
	if err := c.callMultipart(ctx, "sendVideo", fields, []filePart{{field: "video", file: file}}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SendPhoto отправляет фотографию из памяти.
func (c *Client) SendPhoto(ctx context.Context, chatID int64, file InputFile, caption string) error {
	const op = "telegram.SendPhoto"

	fields := map[string]string{
		"chat_id": strconv.FormatInt(chatID, 10),
		"caption": caption,
	}
	if err := c.callMultipart(ctx, "sendPhoto", fields, []filePart{{field: "photo", file: file}}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SendDocument отправляет файл как документ без перекодирования.
func (c *Client) SendDocument(ctx context.Context, chatID int64, file InputFile, caption string) error {
	const op = "telegram.SendDocument"

	fields := map[string]string{
		"chat_id": strconv.FormatInt(chatID, 10),
		"caption": caption,
		"disable_content_type_detection": "true",
	}
	if err := c.callMultipart(ctx, "sendDocument", fields, []filePart{{field: "document", file: file}}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SendMediaGroup отправляет альбом фотографий. Подпись берётся
// из первого элемента.
func (c *Client) SendMediaGroup(ctx context.Context, chatID int64, items []PhotoItem) error {
	const op = "telegram.SendMediaGroup"

	type inputMediaPhoto struct {
		Type    string `json:"type"`
		Media   string `json:"media"`
		Caption string `json:"caption,omitempty"`
	}

	media := make([]inputMediaPhoto, 0, len(items))
	files := make([]filePart, 0, len(items))
	for i, item := range items {
		attachName := "photo" + strconv.Itoa(i)
		media = append(media, inputMediaPhoto{
			Type:    "photo",
			Media:   "attach://" + attachName,
			Caption: item.Caption,
		})
		files = append(files, filePart{field: attachName, file: item.File})
	}

	mediaJSON, err := json.Marshal(media)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	fields := map[string]string{
		"chat_id": strconv.FormatInt(chatID, 10),
		"media":   string(mediaJSON),
	}
	if err := c.callMultipart(ctx, "sendMediaGroup", fields, files); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

type filePart struct {
	field string
	file  InputFile
}

func (c *Client) callJSON(ctx context.Context, method string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+method, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) callMultipart(ctx context.Context, method string, fields map[string]string, files []filePart) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return err
		}
	}
	for _, part := range files {
		fw, err := writer.CreateFormFile(part.field, part.file.Name)
		if err != nil {
			return err
		}
		if _, err := fw.Write(part.file.Data); err != nil {
			return err
		}
	}
	if err := writer.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+method, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return c.do(req, nil)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var envelope apiEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("unexpected response: status %d", resp.StatusCode)
	}
	if !envelope.OK {
		return fmt.Errorf("%w: %s (code %d)", ErrRejected, envelope.Description, envelope.ErrorCode)
	}
	if out != nil {
		if err := json.Unmarshal(envelope.Result, out); err != nil {
			return err
		}
	}
	return nil
}
