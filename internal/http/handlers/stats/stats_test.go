package stats

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mediaload/mediaload-bot/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Stats(ctx context.Context) (*models.UsageStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UsageStats), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStatsHandler_Success(t *testing.T) {
	serviceMock := new(ServiceMock)
	serviceMock.On("Stats", mock.Anything).Return(&models.UsageStats{
		TotalUsers:          42,
		ActiveSubscriptions: 7,
		TotalDownloads:      1500,
		UnusedCoupons:       3,
		TotalAdmins:         2,
		TotalChannels:       1,
	}, nil)

	handler := New(newNoopLogger(), serviceMock)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var got map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "OK", got["status"])

	data, ok := got["data"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 42, data["total_users"])
	assert.EqualValues(t, 7, data["active_subscriptions"])
	assert.EqualValues(t, 1500, data["total_downloads"])
	serviceMock.AssertExpectations(t)
}

func TestStatsHandler_ServiceError(t *testing.T) {
	serviceMock := new(ServiceMock)
	serviceMock.On("Stats", mock.Anything).Return(nil, errors.New("db down"))

	handler := New(newNoopLogger(), serviceMock)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var got map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "Error", got["status"])
	assert.Equal(t, "failed to collect stats", got["error"])
}
