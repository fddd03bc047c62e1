package repository

import (
	"context"
	"strings"

	"ecapi/internal/domain/model"
	repo "ecapi/internal/repository"

	"gorm.io/gorm"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

type ItemGormRepository struct {
	db *gorm.DB
}

// DI
func NewItemGormRepository(db *gorm.DB) *ItemGormRepository {
	return &ItemGormRepository{db: db}
}

// 名前/価格帯で絞り込み、ページ分と総件数を返す。
func (r *ItemGormRepository) FindAllWithFilters(ctx context.Context, q repo.ItemListQuery) ([]model.Item, int64, error) {
	var items []model.Item
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.Item{})

	// name_like 大文字小文字を区別しない部分一致
	if q.NameLike != nil && strings.TrimSpace(*q.NameLike) != "" {
		like := "%" + strings.ToLower(strings.TrimSpace(*q.NameLike)) + "%"
		tx = tx.Where("LOWER(name) LIKE ?", like)
	}

	//価格帯
	if q.PriceGte != nil {
		tx = tx.Where("price >= ?", *q.PriceGte)
	}
	if q.PriceLte != nil {
		tx = tx.Where("price <= ?", *q.PriceLte)
	}
	if q.PriceGt != nil {
		tx = tx.Where("price > ?", *q.PriceGt)
	}
	if q.PriceLt != nil {
		tx = tx.Where("price < ?", *q.PriceLt)
	}

	//total（件数）
	if err := tx.Count(&total).Error; err != nil {
		return []model.Item{}, 0, translate(err, "count items", nil)
	}

	page, limit := q.Page, q.Limit
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}

	// 最終ページより後ろはDBに聞くまでもなく空
	if int64(page-1) >= (total+int64(limit)-1)/int64(limit) {
		return []model.Item{}, total, nil
	}

	offset := (page - 1) * limit
	if err := tx.Order("id asc").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return []model.Item{}, 0, translate(err, "find items", nil)
	}

	return items, total, nil
}

// IDで商品を取得
func (r *ItemGormRepository) FindByID(ctx context.Context, id int64) (model.Item, error) {
	var it model.Item
	if err := r.db.WithContext(ctx).First(&it, id).Error; err != nil {
		return model.Item{}, translate(err, "find item", nil)
	}
	return it, nil
}

// 商品の作成
func (r *ItemGormRepository) Create(ctx context.Context, it model.Item) (model.Item, error) {
	if err := r.db.WithContext(ctx).Create(&it).Error; err != nil {
		return model.Item{}, translate(err, "create item", nil)
	}
	return it, nil
}

// 指定されたフィールドだけ更新して、更新後の商品を返す
func (r *ItemGormRepository) Update(ctx context.Context, id int64, patch repo.ItemPatch) (model.Item, error) {
	if patch.IsEmpty() {
		return r.FindByID(ctx, id)
	}

	updates := map[string]interface{}{}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.Content != nil {
		updates["content"] = *patch.Content
	}
	if patch.Price != nil {
		updates["price"] = *patch.Price
	}
	if patch.Image != nil {
		updates["image"] = *patch.Image
	}

	res := r.db.WithContext(ctx).Model(&model.Item{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return model.Item{}, translate(res.Error, "update item", nil)
	}
	if res.RowsAffected == 0 {
		return model.Item{}, repo.ErrNotFound
	}

	return r.FindByID(ctx, id)
}

// 商品削除。カートから参照されていれば ErrReferenced
func (r *ItemGormRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Item{}, id)
	if res.Error != nil {
		return translate(res.Error, "delete item", repo.ErrReferenced)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
