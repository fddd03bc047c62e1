package repository

import (
	"context"

	repo "ecapi/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	carts repo.CartRepository
	items repo.ItemRepository
}

func (r *txReposGorm) Carts() repo.CartRepository { return r.carts }
func (r *txReposGorm) Items() repo.ItemRepository { return r.items }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

// fnがerrorを返したらrollback
func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			carts: NewCartGormRepository(tx),
			items: NewItemGormRepository(tx),
		}
		return fn(r)
	})
}
