package handler

import (
	"errors"
	"fmt"
	"net/http"

	"ecapi/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error   string               `json:"error"`
	Details []usecase.FieldError `json:"details,omitempty"`
}

// エラーをレスポンスに変換するのはここだけ。
// handler/middlewareはエラーを返すだけで、書き込まない。
func ErrorHandler(log logrus.FieldLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := toErrorResponse(err)
		if status >= http.StatusInternalServerError {
			log.WithError(err).WithFields(logrus.Fields{
				"method": c.Request().Method,
				"uri":    c.Request().RequestURI,
			}).Error("request failed")
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(status)
		} else {
			werr = c.JSON(status, body)
		}
		if werr != nil {
			log.WithError(werr).Error("write error response")
		}
	}
}

func toErrorResponse(err error) (int, ErrorResponse) {
	if he, ok := usecase.AsHTTPError(err); ok {
		return he.Status, ErrorResponse{Error: he.Message, Details: he.Details}
	}

	// ルート無し(404)、BodyLimit(413)、RateLimiter(429) など
	var eh *echo.HTTPError
	if errors.As(err, &eh) {
		msg := http.StatusText(eh.Code)
		if s, ok := eh.Message.(string); ok && s != "" {
			msg = s
		} else if eh.Message != nil {
			msg = fmt.Sprint(eh.Message)
		}
		return eh.Code, ErrorResponse{Error: msg}
	}

	//500
	return http.StatusInternalServerError, ErrorResponse{Error: "internal error"}
}
