package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownload_Success(t *testing.T) {
	payload := []byte("small file content")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	f := New(5 * time.Second)
	data, err := f.Download(context.Background(), srv.URL, 1024)
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestDownload_DeclaredTooLarge(t *testing.T) {
	// Сервер объявляет размер больше лимита, тело читать не нужно
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Length", "2048")
		_, _ = w.Write(make([]byte, 2048))
	}))
	defer srv.Close()

	f := New(5 * time.Second)
	_, err := f.Download(context.Background(), srv.URL, 1024)
	require.ErrorIs(t, err, ErrTooLarge)
}

func TestDownload_UndeclaredTooLarge(t *testing.T) {
	// Сервер не сообщает Content-Length, лимит срабатывает по ходу чтения
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		flusher := w.(http.Flusher)
		chunk := make([]byte, 512)
		for range 8 {
			_, _ = w.Write(chunk)
			flusher.Flush()
		}
	}))
	defer srv.Close()

	f := New(5 * time.Second)
	_, err := f.Download(context.Background(), srv.URL, 1024)
	require.ErrorIs(t, err, ErrTooLarge)
}

func TestDownload_ExactLimit(t *testing.T) {
	payload := make([]byte, 1024)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	f := New(5 * time.Second)
	data, err := f.Download(context.Background(), srv.URL, 1024)
	require.NoError(t, err)
	assert.Len(t, data, 1024)
}

func TestDownload_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	f := New(5 * time.Second)
	_, err := f.Download(context.Background(), srv.URL, 1024)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTooLarge)
}

func TestDownload_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte("late"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := New(5 * time.Second)
	_, err := f.Download(ctx, srv.URL, 1024)
	require.Error(t, err)
}
