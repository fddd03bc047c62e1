package repository

import (
	"context"

	"ecapi/internal/domain/model"
	repo "ecapi/internal/repository"

	"gorm.io/gorm"
)

type CartGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartGormRepository(db *gorm.DB) *CartGormRepository {
	return &CartGormRepository{db: db}
}

// 全カート行をitem付きで取得
func (r *CartGormRepository) FindAll(ctx context.Context) ([]model.Cart, error) {
	var carts []model.Cart

	if err := r.db.WithContext(ctx).
		Preload("Item").
		Order("id asc").
		Find(&carts).Error; err != nil {
		return []model.Cart{}, translate(err, "find carts", nil)
	}

	return carts, nil
}

func (r *CartGormRepository) FindByID(ctx context.Context, id int64) (model.Cart, error) {
	var cart model.Cart

	if err := r.db.WithContext(ctx).
		Preload("Item").
		Where("id = ?", id).
		First(&cart).Error; err != nil {
		return model.Cart{}, translate(err, "find cart", nil)
	}
	return cart, nil
}

// (user, item) の行を取得。無ければ ErrNotFound
func (r *CartGormRepository) FindByUserAndItem(ctx context.Context, userID int64, itemID int64) (model.Cart, error) {
	var cart model.Cart

	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND item_id = ?", userID, itemID).
		First(&cart).Error; err != nil {
		return model.Cart{}, translate(err, "find cart by user and item", nil)
	}
	return cart, nil
}

// 作成してitem付きで返す
func (r *CartGormRepository) Create(ctx context.Context, cart model.Cart) (model.Cart, error) {
	cart.Item = nil
	if err := r.db.WithContext(ctx).Create(&cart).Error; err != nil {
		return model.Cart{}, translate(err, "create cart", repo.ErrMissingReference)
	}
	return r.FindByID(ctx, cart.ID)
}

// 数量を上書き（加算ではない）
func (r *CartGormRepository) UpdateQuantity(ctx context.Context, id int64, qty int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.Cart{}).
		Where("id = ?", id).
		Update("quantity", qty)

	if res.Error != nil {
		return translate(res.Error, "update cart quantity", nil)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *CartGormRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Cart{}, id)

	if res.Error != nil {
		return translate(res.Error, "delete cart", nil)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
