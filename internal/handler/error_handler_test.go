package handler_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"ecapi/internal/handler"
	"ecapi/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveError(t *testing.T, err error) (*httptest.ResponseRecorder, *logtest.Hook) {
	t.Helper()

	log, hook := logtest.NewNullLogger()
	e := echo.New()
	e.HTTPErrorHandler = handler.ErrorHandler(log)
	e.GET("/boom", func(c echo.Context) error { return err })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	return rec, hook
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handler.ErrorResponse {
	t.Helper()
	var body handler.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestErrorHandler_HTTPError(t *testing.T) {
	rec, hook := serveError(t, usecase.NewNotFound("item not found"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "item not found", decodeError(t, rec).Error)
	assert.Empty(t, hook.AllEntries())
}

func TestErrorHandler_ValidationDetails(t *testing.T) {
	rec, _ := serveError(t, usecase.NewValidation([]usecase.FieldError{{Field: "price", Message: "is required"}}))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "validation failed", body.Error)
	require.Len(t, body.Details, 1)
	assert.Equal(t, "price", body.Details[0].Field)
}

func TestErrorHandler_EchoError(t *testing.T) {
	rec, _ := serveError(t, echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded"))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "rate limit exceeded", decodeError(t, rec).Error)
}

// 想定外のエラーは中身を出さずに500、ログには残す
func TestErrorHandler_Unknown(t *testing.T) {
	rec, hook := serveError(t, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal error", decodeError(t, rec).Error)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}
