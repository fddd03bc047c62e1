package repository_test

import (
	"context"
	"testing"

	"ecapi/internal/config"
	"ecapi/internal/domain/model"
	"ecapi/internal/infra/db"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := db.Connect(context.Background(), config.Config{
		AppEnv:    config.EnvTest,
		DBDriver:  config.DriverSQLite,
		SQLiteDSN: ":memory:?_pragma=foreign_keys(1)",
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

func seedItem(t *testing.T, gdb *gorm.DB, name string, price int64) model.Item {
	t.Helper()
	it := model.Item{Name: name, Content: name + " content", Price: price, Image: "/storage/items/seed.png"}
	require.NoError(t, gdb.Create(&it).Error)
	return it
}

func ptr[T any](v T) *T { return &v }
