package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"ecapi/internal/usecase"

	"github.com/labstack/echo/v4"
)

type HTTPObserver interface {
	IncInFlight()
	DecInFlight()
	ObserveHTTP(method, path, status string, seconds float64)
}

// リクエスト数・処理時間・処理中の数を記録する。
// pathはルートのパターン。マッチしなかったものは "unmatched"
func Metrics(obs HTTPObserver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			obs.IncInFlight()
			defer obs.DecInFlight()

			start := time.Now()
			err := next(c)

			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			status := c.Response().Status
			if err != nil {
				status = statusOf(err)
			}
			obs.ObserveHTTP(c.Request().Method, path, strconv.Itoa(status), time.Since(start).Seconds())
			return err
		}
	}
}

// ErrorHandlerと同じ規則でステータスを決める
func statusOf(err error) int {
	if he, ok := usecase.AsHTTPError(err); ok {
		return he.Status
	}
	var eh *echo.HTTPError
	if errors.As(err, &eh) {
		return eh.Code
	}
	return http.StatusInternalServerError
}
