package middleware

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/url"

	"ecapi/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 検証済みの値を入れるcontextのキー
const CtxValidatedKey = "validated"

// Validated は ValidateQuery / ValidateJSON が入れた値を取り出す。
func Validated[T any](c echo.Context) (T, bool) {
	v, ok := c.Get(CtxValidatedKey).(T)
	return v, ok
}

// クエリ文字列を parse で型付きにして保存する。
// parse のエラー（422）はそのまま返す。
func ValidateQuery[T any](parse func(url.Values) (T, error)) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			v, err := parse(c.QueryParams())
			if err != nil {
				return err
			}
			c.Set(CtxValidatedKey, v)
			return next(c)
		}
	}
}

// bodyをTにデコードし、echo.Validatorで検証してから保存する。
// Tは構造体でも構造体のスライスでもよい。
func ValidateJSON[T any]() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var body T
			if err := (&echo.DefaultBinder{}).BindBody(c, &body); err != nil {
				var he *echo.HTTPError
				if errors.As(err, &he) && he.Code == http.StatusUnsupportedMediaType {
					return err
				}
				return usecase.NewBadRequest("invalid json body")
			}

			if err := c.Validate(body); err != nil {
				return err
			}

			c.Set(CtxValidatedKey, body)
			return next(c)
		}
	}
}

// JSONのオブジェクトか配列以外のbody（"str", 123, null など）は400。
func RequireJSONBody() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Body == nil {
				return errInvalidBody()
			}

			raw, err := io.ReadAll(req.Body)
			if err != nil {
				return err
			}
			// 後続が読めるように戻す
			req.Body = io.NopCloser(bytes.NewReader(raw))

			trimmed := bytes.TrimSpace(raw)
			if len(trimmed) == 0 || (trimmed[0] != '{' && trimmed[0] != '[') {
				return errInvalidBody()
			}

			return next(c)
		}
	}
}

func errInvalidBody() error {
	return usecase.NewBadRequest("request body must be a JSON object or array")
}
