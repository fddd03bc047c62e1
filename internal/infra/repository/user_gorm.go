package repository

import (
	"context"
	"errors"

	"ecapi/internal/domain/model"
	domainrepo "ecapi/internal/repository"

	"gorm.io/gorm"
)

type userGormRepository struct {
	db *gorm.DB
}

// DI
// main.goでこれをnewしてmiddlewareに注入します。
func NewUserGormRepository(db *gorm.DB) domainrepo.UserRepository {
	return &userGormRepository{db: db}
}

// IDでユーザーを1件取得
func (r *userGormRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	var u model.User

	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&u).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, translate(err, "find user", nil)
	}

	return &u, nil
}

// emailで探し、無ければ作る
func (r *userGormRepository) EnsureByEmail(ctx context.Context, email string, role model.Role) (*model.User, error) {
	var u model.User

	// 作成時はWhereの値とAttrsが使われる
	err := r.db.WithContext(ctx).
		Where(model.User{Email: email}).
		Attrs(model.User{Role: role, IsActive: true}).
		FirstOrCreate(&u).Error
	if err != nil {
		return nil, translate(err, "ensure user", nil)
	}
	return &u, nil
}
