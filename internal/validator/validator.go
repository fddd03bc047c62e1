package validator

import (
	"fmt"
	"reflect"
	"strings"

	"ecapi/internal/usecase"

	playground "github.com/go-playground/validator/v10"
)

// Validator は go-playground/validator を echo.Validator として使うためのアダプタ。
// エラーは usecase.NewValidation（422）で返す。
type Validator struct {
	v *playground.Validate
}

func New() *Validator {
	v := playground.New(playground.WithRequiredStructEnabled())

	// エラーのフィールド名はJSONの名前にする
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})

	return &Validator{v: v}
}

// 構造体か、構造体のスライスを検証する。
// スライスはnilなら必須エラー、要素ごとに "[i].field" で報告。
func (cv *Validator) Validate(i interface{}) error {
	rv := reflect.ValueOf(i)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return usecase.NewValidation([]usecase.FieldError{{Field: "body", Message: "is required"}})
		}
		rv = rv.Elem()
	}

	if rv.Kind() != reflect.Slice {
		return toValidation(cv.v.Struct(rv.Interface()), "")
	}

	if rv.IsNil() {
		return usecase.NewValidation([]usecase.FieldError{{Field: "body", Message: "is required"}})
	}

	var details []usecase.FieldError
	for idx := 0; idx < rv.Len(); idx++ {
		err := cv.v.Struct(rv.Index(idx).Interface())
		if err == nil {
			continue
		}
		he, ok := usecase.AsHTTPError(toValidation(err, fmt.Sprintf("[%d].", idx)))
		if !ok {
			return err
		}
		details = append(details, he.Details...)
	}
	if len(details) > 0 {
		return usecase.NewValidation(details)
	}
	return nil
}

func toValidation(err error, prefix string) error {
	if err == nil {
		return nil
	}
	verrs, ok := err.(playground.ValidationErrors)
	if !ok {
		return err
	}

	details := make([]usecase.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, usecase.FieldError{
			Field:   prefix + fe.Field(),
			Message: messageFor(fe),
		})
	}
	return usecase.NewValidation(details)
}

func messageFor(fe playground.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	default:
		return "is invalid"
	}
}
