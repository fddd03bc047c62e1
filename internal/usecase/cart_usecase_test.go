package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"ecapi/internal/domain/model"
	repo "ecapi/internal/repository"
	"ecapi/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newCartUsecase() (*usecase.CartUsecase, *CartRepoMock, *fakeTxManager, *recorderStub) {
	carts := new(CartRepoMock)
	tx := &fakeTxManager{carts: carts, items: new(ItemRepoMock)}
	rec := &recorderStub{}
	return usecase.NewCartUsecase(carts, tx, rec, nullLogger()), carts, tx, rec
}

func txItems(tx *fakeTxManager) *ItemRepoMock {
	return tx.items.(*ItemRepoMock)
}

func TestCartUsecase_Reconcile_CreatesMissingRow(t *testing.T) {
	uc, carts, tx, rec := newCartUsecase()
	ctx := context.Background()

	carts.On("FindByUserAndItem", mock.Anything, int64(1), int64(10)).Return(model.Cart{}, repo.ErrNotFound)
	txItems(tx).On("FindByID", mock.Anything, int64(10)).Return(model.Item{ID: 10}, nil)
	carts.On("Create", mock.Anything, model.Cart{UserID: 1, ItemID: 10, Quantity: 5}).
		Return(model.Cart{ID: 100, UserID: 1, ItemID: 10, Quantity: 5}, nil)
	carts.On("FindAll", mock.Anything).Return([]model.Cart{{ID: 100, UserID: 1, ItemID: 10, Quantity: 5}}, nil)

	out, err := uc.Reconcile(ctx, 1, []usecase.CartIntent{{ItemID: 10, Quantity: 5}})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, int64(5), out[0].Quantity)
	assert.Equal(t, 1, tx.calls)
	assert.Equal(t, []string{usecase.CartActionCreated}, rec.actions)

	carts.AssertExpectations(t)
	txItems(tx).AssertExpectations(t)
}

// 既存行は加算ではなく上書き
func TestCartUsecase_Reconcile_OverwritesQuantity(t *testing.T) {
	uc, carts, _, rec := newCartUsecase()

	carts.On("FindByUserAndItem", mock.Anything, int64(1), int64(10)).Return(model.Cart{ID: 100, UserID: 1, ItemID: 10, Quantity: 5}, nil)
	carts.On("UpdateQuantity", mock.Anything, int64(100), int64(5)).Return(nil)
	carts.On("FindAll", mock.Anything).Return([]model.Cart{{ID: 100, UserID: 1, ItemID: 10, Quantity: 5}}, nil)

	out, err := uc.Reconcile(context.Background(), 1, []usecase.CartIntent{{ItemID: 10, Quantity: 5}})
	require.NoError(t, err)
	assert.Equal(t, int64(5), out[0].Quantity)
	assert.Equal(t, []string{usecase.CartActionUpdated}, rec.actions)

	carts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	carts.AssertExpectations(t)
}

func TestCartUsecase_Reconcile_ZeroDeletesExistingRow(t *testing.T) {
	uc, carts, _, rec := newCartUsecase()

	carts.On("FindByUserAndItem", mock.Anything, int64(1), int64(10)).Return(model.Cart{ID: 100}, nil)
	carts.On("Delete", mock.Anything, int64(100)).Return(nil)
	carts.On("FindAll", mock.Anything).Return([]model.Cart{}, nil)

	out, err := uc.Reconcile(context.Background(), 1, []usecase.CartIntent{{ItemID: 10, Quantity: 0}})
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, []string{usecase.CartActionDeleted}, rec.actions)
}

// 無い行へのquantity=0は何もしない
func TestCartUsecase_Reconcile_ZeroOnMissingRowIsNoop(t *testing.T) {
	uc, carts, _, rec := newCartUsecase()

	carts.On("FindByUserAndItem", mock.Anything, int64(1), int64(10)).Return(model.Cart{}, repo.ErrNotFound)
	carts.On("FindAll", mock.Anything).Return(nil, nil)

	out, err := uc.Reconcile(context.Background(), 1, []usecase.CartIntent{{ItemID: 10, Quantity: 0}})
	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)
	assert.Equal(t, []string{usecase.CartActionNoop}, rec.actions)

	carts.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	carts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCartUsecase_Reconcile_NilIntents(t *testing.T) {
	uc, _, tx, _ := newCartUsecase()

	_, err := uc.Reconcile(context.Background(), 1, nil)
	requireHTTPError(t, err, http.StatusUnprocessableEntity, "validation failed")
	assert.Equal(t, 0, tx.calls)
}

// 1件でも不正なら何もしない
func TestCartUsecase_Reconcile_InvalidIntentRejectsBatch(t *testing.T) {
	uc, carts, tx, _ := newCartUsecase()

	_, err := uc.Reconcile(context.Background(), 1, []usecase.CartIntent{
		{ItemID: 10, Quantity: 1},
		{ItemID: 0, Quantity: 1},
		{ItemID: 11, Quantity: -1},
	})
	he := requireHTTPError(t, err, http.StatusUnprocessableEntity, "validation failed")
	require.Len(t, he.Details, 2)
	assert.Equal(t, "[1].item_id", he.Details[0].Field)
	assert.Equal(t, "[2].quantity", he.Details[1].Field)

	assert.Equal(t, 0, tx.calls)
	carts.AssertNotCalled(t, "FindByUserAndItem", mock.Anything, mock.Anything, mock.Anything)
}

// 商品の存在はTx内のItemsで確認し、無ければCreateまで行かない
func TestCartUsecase_Reconcile_UnknownItem(t *testing.T) {
	uc, carts, tx, rec := newCartUsecase()

	carts.On("FindByUserAndItem", mock.Anything, int64(1), int64(404)).Return(model.Cart{}, repo.ErrNotFound)
	txItems(tx).On("FindByID", mock.Anything, int64(404)).Return(model.Item{}, fmt.Errorf("find item: %w", repo.ErrNotFound))

	_, err := uc.Reconcile(context.Background(), 1, []usecase.CartIntent{{ItemID: 404, Quantity: 1}})
	requireHTTPError(t, err, http.StatusBadRequest, "item not found")
	assert.Empty(t, rec.actions)
	carts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	carts.AssertNotCalled(t, "FindAll", mock.Anything)
}

// 確認と作成の間に消された場合はFK違反を同じ400にする
func TestCartUsecase_Reconcile_ItemRemovedBeforeInsert(t *testing.T) {
	uc, carts, tx, _ := newCartUsecase()

	carts.On("FindByUserAndItem", mock.Anything, int64(1), int64(10)).Return(model.Cart{}, repo.ErrNotFound)
	txItems(tx).On("FindByID", mock.Anything, int64(10)).Return(model.Item{ID: 10}, nil)
	carts.On("Create", mock.Anything, mock.Anything).Return(model.Cart{}, fmt.Errorf("create cart: %w", repo.ErrMissingReference))

	_, err := uc.Reconcile(context.Background(), 1, []usecase.CartIntent{{ItemID: 10, Quantity: 1}})
	requireHTTPError(t, err, http.StatusBadRequest, "item not found")
}

func TestCartUsecase_Reconcile_StoreErrorStopsBatch(t *testing.T) {
	uc, carts, _, _ := newCartUsecase()

	carts.On("FindByUserAndItem", mock.Anything, int64(1), int64(10)).Return(model.Cart{}, errors.New("connection reset"))

	_, err := uc.Reconcile(context.Background(), 1, []usecase.CartIntent{
		{ItemID: 10, Quantity: 1},
		{ItemID: 11, Quantity: 1},
	})
	requireHTTPError(t, err, http.StatusInternalServerError, "db error")
	carts.AssertNotCalled(t, "FindByUserAndItem", mock.Anything, int64(1), int64(11))
}

func TestCartUsecase_Get(t *testing.T) {
	uc, carts, _, _ := newCartUsecase()

	carts.On("FindByID", mock.Anything, int64(1)).Return(model.Cart{ID: 1, Quantity: 2}, nil)
	carts.On("FindByID", mock.Anything, int64(2)).Return(model.Cart{}, repo.ErrNotFound)

	c, err := uc.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), c.Quantity)

	_, err = uc.Get(context.Background(), 2)
	requireHTTPError(t, err, http.StatusNotFound, "cart not found")
}
