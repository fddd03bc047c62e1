package usecase

import (
	"net/url"
	"strconv"

	"ecapi/internal/domain/model"
	repo "ecapi/internal/repository"
)

const (
	ItemsPath      = "/api/items"
	DefaultPerPage = 10

	// (page-1)*limit がint64に収まる範囲に抑える
	MaxPerPage = 100
	MaxPage    = 1000000
)

// GET /api/items のクエリ（validator.ParseItemQueryで正規化済み）。
// nilは「指定なし」
type ItemQuery struct {
	NameLike *string `json:"name_like,omitempty"`
	PriceGte *int64  `json:"price_gte,omitempty" validate:"omitempty,gte=0"`
	PriceLte *int64  `json:"price_lte,omitempty" validate:"omitempty,gte=0"`
	PriceGt  *int64  `json:"price_gt,omitempty" validate:"omitempty,gte=0"`
	PriceLt  *int64  `json:"price_lt,omitempty" validate:"omitempty,gte=0"`
	Limit    *int    `json:"limit,omitempty" validate:"omitempty,gte=1,lte=100"`
	Page     *int    `json:"page,omitempty" validate:"omitempty,gte=1,lte=1000000"`
}

func (q ItemQuery) perPage() int {
	if q.Limit != nil && *q.Limit > 0 {
		return *q.Limit
	}
	return DefaultPerPage
}

func (q ItemQuery) currentPage() int {
	if q.Page != nil && *q.Page > 0 {
		return *q.Page
	}
	return 1
}

func (q ItemQuery) toRepo() repo.ItemListQuery {
	return repo.ItemListQuery{
		NameLike: q.NameLike,
		PriceGte: q.PriceGte,
		PriceLte: q.PriceLte,
		PriceGt:  q.PriceGt,
		PriceLt:  q.PriceLt,
		Page:     q.currentPage(),
		Limit:    q.perPage(),
	}
}

// 指定されたパラメータだけをクエリ文字列に戻す
func (q ItemQuery) Values() url.Values {
	v := url.Values{}
	if q.NameLike != nil {
		v.Set("name_like", *q.NameLike)
	}
	setInt64 := func(key string, p *int64) {
		if p != nil {
			v.Set(key, strconv.FormatInt(*p, 10))
		}
	}
	setInt64("price_gte", q.PriceGte)
	setInt64("price_lte", q.PriceLte)
	setInt64("price_gt", q.PriceGt)
	setInt64("price_lt", q.PriceLt)
	if q.Limit != nil {
		v.Set("limit", strconv.Itoa(*q.Limit))
	}
	if q.Page != nil {
		v.Set("page", strconv.Itoa(*q.Page))
	}
	return v
}

// ページネーション付きレスポンス
type ItemPage struct {
	Total       int64        `json:"total"`
	PerPage     int          `json:"perPage"`
	CurrentPage int          `json:"currentPage"`
	LastPage    int          `json:"lastPage"`
	From        int64        `json:"from"`
	To          int64        `json:"to"`
	NextPageURL *string      `json:"nextPageUrl"`
	PrevPageURL *string      `json:"prevPageUrl"`
	Path        string       `json:"path"`
	Data        []model.Item `json:"data"`
}

// BuildItemPage はリポジトリの結果からレスポンスを組み立てる。
// total=0でもlastPageは1、from/toは0。
func BuildItemPage(q ItemQuery, items []model.Item, total int64) ItemPage {
	perPage := q.perPage()
	currentPage := q.currentPage()

	// 常に切り上げ
	lastPage := 1
	if total > 0 {
		lastPage = int((total + int64(perPage) - 1) / int64(perPage))
	}

	var from, to int64
	if total > 0 {
		from = int64(currentPage-1)*int64(perPage) + 1
		to = from + int64(len(items)) - 1
	}

	buildURL := func(page int) *string {
		v := q.Values()
		v.Set("page", strconv.Itoa(page))
		if !v.Has("limit") {
			v.Set("limit", strconv.Itoa(perPage))
		}
		s := ItemsPath + "?" + v.Encode()
		return &s
	}

	var next, prev *string
	if currentPage < lastPage {
		next = buildURL(currentPage + 1)
	}
	if currentPage > 1 {
		prev = buildURL(currentPage - 1)
	}

	if items == nil {
		items = []model.Item{}
	}

	return ItemPage{
		Total:       total,
		PerPage:     perPage,
		CurrentPage: currentPage,
		LastPage:    lastPage,
		From:        from,
		To:          to,
		NextPageURL: next,
		PrevPageURL: prev,
		Path:        ItemsPath,
		Data:        items,
	}
}
