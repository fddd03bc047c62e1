package repository

import (
	"context"
	"errors"

	"ecapi/internal/domain/model"
)

var (
	ErrNotFound         = errors.New("not found")
	// 他テーブルから参照されているため削除できない
	ErrReferenced       = errors.New("referenced by other records")
	// 参照先（商品など）が存在しない
	ErrMissingReference = errors.New("referenced record does not exist")
	ErrConflict         = errors.New("conflict")
)

// 一覧検索。nilは「指定なし」
type ItemListQuery struct {
	NameLike *string
	PriceGte *int64
	PriceLte *int64
	PriceGt  *int64
	PriceLt  *int64
	Page     int
	Limit    int
}

// 部分更新の入力。nilのフィールドは触らない。
type ItemPatch struct {
	Name    *string
	Content *string
	Price   *int64
	Image   *string
}

func (p ItemPatch) IsEmpty() bool {
	return p.Name == nil && p.Content == nil && p.Price == nil && p.Image == nil
}

// 商品の永続化だけを約束。
type ItemRepository interface {
	FindAllWithFilters(ctx context.Context, q ItemListQuery) ([]model.Item, int64, error)
	FindByID(ctx context.Context, id int64) (model.Item, error)

	Create(ctx context.Context, item model.Item) (model.Item, error)
	Update(ctx context.Context, id int64, patch ItemPatch) (model.Item, error)
	Delete(ctx context.Context, id int64) error
}
