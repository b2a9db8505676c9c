package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// apiLink один вариант скачивания из ответа универсального API.
type apiLink struct {
	Quality string `json:"quality"`
	Link    string `json:"link"`
}

// tiktokData вложенный объект ответа специализированного TikTok API.
type tiktokData struct {
	HDPlay string `json:"hdplay"`
	Play   string `json:"play"`
	WMPlay string `json:"wmplay"`
}

// apiResponse покрывает все известные формы ответов обоих API.
type apiResponse struct {
	Success     *bool       `json:"success,omitempty"`
	Message     string      `json:"message,omitempty"`
	Links       []apiLink   `json:"links,omitempty"`
	Images      []string    `json:"images,omitempty"`
	VideoURL    string      `json:"video_url,omitempty"`
	DownloadURL string      `json:"download_url,omitempty"`
	Data        *tiktokData `json:"data,omitempty"`
}

// Client обращается к API извлечения медиа через RapidAPI.
type Client struct {
	apiKey      string
	genericBase string
	genericHost string
	tiktokBase  string
	tiktokHost  string
	httpClient  *http.Client
}

// NewClient создаёт клиент API. Хосты передаются без схемы.
func NewClient(apiKey, genericHost, tiktokHost string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiKey:      apiKey,
		genericBase: "https://" + genericHost + "/smvd/get/all",
		genericHost: genericHost,
		tiktokBase:  "https://" + tiktokHost + "/",
		tiktokHost:  tiktokHost,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// GetAll запрашивает универсальный эндпоинт для любой поддерживаемой платформы.
func (c *Client) GetAll(ctx context.Context, target string) (*apiResponse, error) {
	const op = "extractor.GetAll"

	query := url.Values{}
	query.Set("url", target)
	resp, err := c.getJSON(ctx, c.genericBase, c.genericHost, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return resp, nil
}

// TikTokNoWatermark запрашивает специализированный TikTok эндпоинт,
// отдающий видео без водяного знака.
func (c *Client) TikTokNoWatermark(ctx context.Context, target string) (*apiResponse, error) {
	const op = "extractor.TikTokNoWatermark"

	query := url.Values{}
	query.Set("url", target)
	query.Set("hd", "1")
	resp, err := c.getJSON(ctx, c.tiktokBase, c.tiktokHost, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return resp, nil
}

func (c *Client) getJSON(ctx context.Context, base, host string, query url.Values) (*apiResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-rapidapi-key", c.apiKey)
	req.Header.Set("x-rapidapi-host", host)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var parsed apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, err)
	}
	return &parsed, nil
}

// selectVideoLink выбирает лучшую ссылку на видео из списка вариантов.
// Сначала ищется качество с пометкой video, затем любой не-аудио вариант,
// у которого mp4 в ссылке или video в качестве.
func selectVideoLink(links []apiLink) string {
	for _, l := range links {
		if strings.Contains(l.Quality, "video_hd_original") || strings.Contains(l.Quality, "video") {
			return l.Link
		}
	}
	for _, l := range links {
		if strings.Contains(l.Quality, "audio") {
			continue
		}
		if strings.Contains(l.Link, "mp4") || strings.Contains(l.Quality, "video") {
			return l.Link
		}
	}
	return ""
}

// videoFromResponse достаёт ссылку на видео из любой известной формы ответа.
func videoFromResponse(resp *apiResponse) string {
	if len(resp.Links) > 0 {
		return selectVideoLink(resp.Links)
	}
	if resp.Data != nil {
		switch {
		case resp.Data.HDPlay != "":
			return resp.Data.HDPlay
		case resp.Data.Play != "":
			return resp.Data.Play
		case resp.Data.WMPlay != "":
			return resp.Data.WMPlay
		}
	}
	if resp.VideoURL != "" {
		return resp.VideoURL
	}
	return resp.DownloadURL
}
