package add

import (
	"bytes"
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
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) AddAdmin(ctx context.Context, userID int64, username string) error {
	args := m.Called(ctx, userID, username)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAddHandler_Success(t *testing.T) {
	serviceMock := new(ServiceMock)
	serviceMock.On("AddAdmin", mock.Anything, int64(100), "new_admin").Return(nil)

	handler := New(newNoopLogger(), serviceMock)

	body, _ := json.Marshal(Request{UserID: 100, Username: "new_admin"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admins", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var got map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "OK", got["status"])
	serviceMock.AssertExpectations(t)
}

func TestAddHandler_MissingUserID(t *testing.T) {
	serviceMock := new(ServiceMock)
	handler := New(newNoopLogger(), serviceMock)

	body, _ := json.Marshal(Request{Username: "no_id"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admins", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	serviceMock.AssertNotCalled(t, "AddAdmin", mock.Anything, mock.Anything, mock.Anything)
}

func TestAddHandler_ServiceError(t *testing.T) {
	serviceMock := new(ServiceMock)
	serviceMock.On("AddAdmin", mock.Anything, int64(100), "").Return(errors.New("db down"))

	handler := New(newNoopLogger(), serviceMock)

	body, _ := json.Marshal(Request{UserID: 100})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admins", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var got map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "failed to add admin", got["error"])
}
