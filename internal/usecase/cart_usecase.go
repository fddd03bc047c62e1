package usecase

import (
	"context"
	"errors"
	"fmt"

	"ecapi/internal/domain/model"
	repo "ecapi/internal/repository"

	"github.com/sirupsen/logrus"
)

// 1件のintentが何をしたか（メトリクス用）
const (
	CartActionCreated = "created"
	CartActionUpdated = "updated"
	CartActionDeleted = "deleted"
	CartActionNoop    = "noop"
)

type CartIntentRecorder interface {
	ObserveCartIntent(action string)
}

// CartUsecase は /api/carts の業務ロジックです。
type CartUsecase struct {
	cartRepo repo.CartRepository
	tx       repo.TransactionManager
	recorder CartIntentRecorder
	log      logrus.FieldLogger
}

func NewCartUsecase(
	cartRepo repo.CartRepository,
	tx repo.TransactionManager,
	recorder CartIntentRecorder,
	log logrus.FieldLogger,
) *CartUsecase {
	return &CartUsecase{
		cartRepo: cartRepo,
		tx:       tx,
		recorder: recorder,
		log:      log,
	}
}

// 「この商品をこの数量にしたい」という指定。
// quantity=0は削除。
type CartIntent struct {
	ItemID   int64
	Quantity int64
}

func (u *CartUsecase) List(ctx context.Context) ([]model.Cart, error) {
	carts, err := u.cartRepo.FindAll(ctx)
	if err != nil {
		return nil, dbError(u.log, "list carts", err)
	}
	if carts == nil {
		carts = []model.Cart{}
	}
	return carts, nil
}

func (u *CartUsecase) Get(ctx context.Context, id int64) (model.Cart, error) {
	if id <= 0 {
		return model.Cart{}, NewBadRequest("invalid cart id")
	}

	cart, err := u.cartRepo.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Cart{}, NewNotFound("cart not found")
	}
	if err != nil {
		return model.Cart{}, dbError(u.log, "find cart", err)
	}
	return cart, nil
}

// Reconcile はintentを順番に反映し、処理後のカート全件（全ユーザー分）を返す。
//   - quantity=0: 行があれば削除、無ければ何もしない
//   - quantity>0: 行があれば数量を上書き、無ければ作成
//
// バッチ全体を1つのトランザクションで実行する。途中で失敗したら全部rollback。
func (u *CartUsecase) Reconcile(ctx context.Context, userID int64, intents []CartIntent) ([]model.Cart, error) {
	if intents == nil {
		return nil, NewValidation([]FieldError{{Field: "body", Message: "cart items are required"}})
	}
	if userID <= 0 {
		return nil, NewUnauthorized("unauthorized")
	}

	// 1件でも不正なら何も処理しない
	var invalid []FieldError
	for i, in := range intents {
		if in.ItemID <= 0 {
			invalid = append(invalid, FieldError{Field: fmt.Sprintf("[%d].item_id", i), Message: "must be a positive integer"})
		}
		if in.Quantity < 0 {
			invalid = append(invalid, FieldError{Field: fmt.Sprintf("[%d].quantity", i), Message: "must be a non-negative integer"})
		}
	}
	if len(invalid) > 0 {
		return nil, NewValidation(invalid)
	}

	actions := make([]string, 0, len(intents))
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		actions = actions[:0]
		for _, in := range intents {
			action, err := reconcileOne(ctx, r, userID, in)
			if err != nil {
				return err
			}
			actions = append(actions, action)
		}
		return nil
	})
	if errors.Is(err, repo.ErrMissingReference) {
		return nil, NewBadRequest("item not found")
	}
	if err != nil {
		return nil, dbError(u.log, "reconcile cart", err)
	}

	if u.recorder != nil {
		for _, a := range actions {
			u.recorder.ObserveCartIntent(a)
		}
	}

	return u.List(ctx)
}

func reconcileOne(ctx context.Context, r repo.TxRepos, userID int64, in CartIntent) (string, error) {
	carts := r.Carts()
	existing, err := carts.FindByUserAndItem(ctx, userID, in.ItemID)
	found := err == nil
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return "", err
	}

	if in.Quantity == 0 {
		if !found {
			return CartActionNoop, nil
		}
		if err := carts.Delete(ctx, existing.ID); err != nil {
			return "", err
		}
		return CartActionDeleted, nil
	}

	if found {
		if err := carts.UpdateQuantity(ctx, existing.ID, in.Quantity); err != nil {
			return "", err
		}
		return CartActionUpdated, nil
	}

	// 新規行は同じTx内で商品の存在を確かめてから作る
	if _, err := r.Items().FindByID(ctx, in.ItemID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", repo.ErrMissingReference
		}
		return "", err
	}

	if _, err := carts.Create(ctx, model.Cart{
		UserID:   userID,
		ItemID:   in.ItemID,
		Quantity: in.Quantity,
	}); err != nil {
		return "", err
	}
	return CartActionCreated, nil
}
