package usecase

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
)

// 入力のどこが不正か（422のdetails）
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// 業務エラー。HTTPへの変換はhandler.ErrorHandlerだけが行う。
type HTTPError struct {
	Status  int
	Message string
	Details []FieldError
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func NewBadRequest(message string) error {
	return NewHTTPError(http.StatusBadRequest, message)
}

func NewUnauthorized(message string) error {
	return NewHTTPError(http.StatusUnauthorized, message)
}

func NewForbidden(message string) error {
	return NewHTTPError(http.StatusForbidden, message)
}

func NewNotFound(message string) error {
	return NewHTTPError(http.StatusNotFound, message)
}

// スキーマ違反は422
func NewValidation(details []FieldError) error {
	return &HTTPError{
		Status:  http.StatusUnprocessableEntity,
		Message: "validation failed",
		Details: details,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// 想定外のDBエラーはログだけ残して500
func dbError(log logrus.FieldLogger, op string, err error) error {
	log.WithError(err).WithField("op", op).Error("db error")
	return NewHTTPError(http.StatusInternalServerError, "db error")
}
