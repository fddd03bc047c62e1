package repository

import (
	"context"

	"ecapi/internal/domain/model"
)

type CartRepository interface {
	// 全ユーザー分（itemをpreload）
	FindAll(ctx context.Context) ([]model.Cart, error)
	FindByID(ctx context.Context, id int64) (model.Cart, error)
	FindByUserAndItem(ctx context.Context, userID int64, itemID int64) (model.Cart, error)

	Create(ctx context.Context, cart model.Cart) (model.Cart, error)
	UpdateQuantity(ctx context.Context, id int64, qty int64) error
	Delete(ctx context.Context, id int64) error
}
