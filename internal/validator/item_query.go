package validator

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"ecapi/internal/usecase"
)

// GET /api/items のクエリを型付きにして検証する。
// 数値は文字列から変換し、変換できなければ422。
func (cv *Validator) ParseItemQuery(values url.Values) (usecase.ItemQuery, error) {
	var (
		q       usecase.ItemQuery
		invalid []usecase.FieldError
	)

	if values.Has("name_like") {
		s := values.Get("name_like")
		q.NameLike = &s
	}

	parseInt64 := func(key string) *int64 {
		if !values.Has(key) {
			return nil
		}
		n, ok := coerceInt(values.Get(key))
		if !ok {
			invalid = append(invalid, usecase.FieldError{Field: key, Message: "must be an integer"})
			return nil
		}
		return &n
	}
	parseInt := func(key string) *int {
		p := parseInt64(key)
		if p == nil {
			return nil
		}
		// 32bit環境でintに収まらない値は黙って切り詰めない
		if strconv.IntSize == 32 && (*p > math.MaxInt32 || *p < math.MinInt32) {
			invalid = append(invalid, usecase.FieldError{Field: key, Message: "is out of range"})
			return nil
		}
		n := int(*p)
		return &n
	}

	q.PriceGte = parseInt64("price_gte")
	q.PriceLte = parseInt64("price_lte")
	q.PriceGt = parseInt64("price_gt")
	q.PriceLt = parseInt64("price_lt")
	q.Limit = parseInt("limit")
	q.Page = parseInt("page")

	if len(invalid) > 0 {
		return usecase.ItemQuery{}, usecase.NewValidation(invalid)
	}
	if err := cv.Validate(q); err != nil {
		return usecase.ItemQuery{}, err
	}
	return q, nil
}

// 数値文字列を整数に寄せる。
// 前後の空白は無視、空文字は0、"2.0"のような整数値の小数表記も受け付ける。
func coerceInt(raw string) (int64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, true
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) {
		return 0, false
	}
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}
