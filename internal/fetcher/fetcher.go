// Package fetcher скачивает медиафайлы по прямым ссылкам с контролем размера.
package fetcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrTooLarge возвращается, когда файл превышает переданный лимит размера.
var ErrTooLarge = errors.New("file exceeds size limit")

type Fetcher struct {
	httpClient *http.Client
}

// New создаёт загрузчик с общим таймаутом на весь запрос.
func New(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Download скачивает файл целиком в память, но не более maxBytes.
// Если сервер заранее объявил больший Content-Length, тело не читается вовсе.
// Заголовку доверять нельзя, поэтому лимит проверяется и по ходу чтения:
// как только получено больше maxBytes, загрузка обрывается с ErrTooLarge.
func (f *Fetcher) Download(ctx context.Context, url string, maxBytes int64) ([]byte, error) {
	const op = "fetcher.Download"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: unexpected status: %s", op, resp.Status)
	}

	if resp.ContentLength > maxBytes {
		return nil, fmt.Errorf("%s: %w", op, ErrTooLarge)
	}

	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if n > maxBytes {
		return nil, fmt.Errorf("%s: %w", op, ErrTooLarge)
	}
	return buf.Bytes(), nil
}
