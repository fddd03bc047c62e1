package usecase_test

import (
	"context"
	"testing"

	"ecapi/internal/domain/model"
	repo "ecapi/internal/repository"
	"ecapi/internal/usecase"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =====================
// Mocks
// =====================

type ItemRepoMock struct{ mock.Mock }

func (m *ItemRepoMock) FindAllWithFilters(ctx context.Context, q repo.ItemListQuery) ([]model.Item, int64, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]model.Item)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *ItemRepoMock) FindByID(ctx context.Context, id int64) (model.Item, error) {
	args := m.Called(ctx, id)
	it, _ := args.Get(0).(model.Item)
	return it, args.Error(1)
}

func (m *ItemRepoMock) Create(ctx context.Context, it model.Item) (model.Item, error) {
	args := m.Called(ctx, it)
	created, _ := args.Get(0).(model.Item)
	return created, args.Error(1)
}

func (m *ItemRepoMock) Update(ctx context.Context, id int64, patch repo.ItemPatch) (model.Item, error) {
	args := m.Called(ctx, id, patch)
	updated, _ := args.Get(0).(model.Item)
	return updated, args.Error(1)
}

func (m *ItemRepoMock) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

type ImageStorageMock struct{ mock.Mock }

func (m *ImageStorageMock) SaveForItem(ctx context.Context, key int64, data string, ext string) (string, error) {
	args := m.Called(ctx, key, data, ext)
	return args.String(0), args.Error(1)
}

func (m *ImageStorageMock) Remove(ctx context.Context, url string) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}

type PublisherMock struct{ mock.Mock }

func (m *PublisherMock) Publish(ctx context.Context, ev usecase.ItemEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

type CartRepoMock struct{ mock.Mock }

func (m *CartRepoMock) FindAll(ctx context.Context) ([]model.Cart, error) {
	args := m.Called(ctx)
	carts, _ := args.Get(0).([]model.Cart)
	return carts, args.Error(1)
}

func (m *CartRepoMock) FindByID(ctx context.Context, id int64) (model.Cart, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartRepoMock) FindByUserAndItem(ctx context.Context, userID int64, itemID int64) (model.Cart, error) {
	args := m.Called(ctx, userID, itemID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartRepoMock) Create(ctx context.Context, c model.Cart) (model.Cart, error) {
	args := m.Called(ctx, c)
	created, _ := args.Get(0).(model.Cart)
	return created, args.Error(1)
}

func (m *CartRepoMock) UpdateQuantity(ctx context.Context, id int64, qty int64) error {
	args := m.Called(ctx, id, qty)
	return args.Error(0)
}

func (m *CartRepoMock) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// WithinTx は fn をそのまま呼ぶ
type fakeTxManager struct {
	carts repo.CartRepository
	items repo.ItemRepository
	calls int
}

type fakeTxRepos struct {
	carts repo.CartRepository
	items repo.ItemRepository
}

func (r fakeTxRepos) Carts() repo.CartRepository { return r.carts }
func (r fakeTxRepos) Items() repo.ItemRepository { return r.items }

func (f *fakeTxManager) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	f.calls++
	return fn(fakeTxRepos{carts: f.carts, items: f.items})
}

type recorderStub struct {
	actions []string
}

func (r *recorderStub) ObserveCartIntent(action string) {
	r.actions = append(r.actions, action)
}

// =====================
// helper
// =====================

func nullLogger() logrus.FieldLogger {
	l, _ := logtest.NewNullLogger()
	return l
}

func requireHTTPError(t *testing.T, err error, status int, msg string) *usecase.HTTPError {
	t.Helper()
	require.Error(t, err)
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok, "err=%v is not HTTPError", err)
	assert.Equal(t, status, he.Status)
	if msg != "" {
		assert.Equal(t, msg, he.Message)
	}
	return he
}

func ptr[T any](v T) *T { return &v }
