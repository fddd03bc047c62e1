package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ecapi/internal/config"
	"ecapi/internal/domain/model"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect はDBに接続して *gorm.DB を返す。
// プロセスで1つだけ作り、各Repositoryに注入する。
func Connect(ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	gdb, err := gorm.Open(dialector(cfg), &gorm.Config{
		// ドライバ固有のエラーを gorm.ErrForeignKeyViolated などに変換
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
		Logger:         gormLogger(cfg),
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	configurePool(sqlDB, cfg.DBDriver)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return gdb, nil
}

// Migrate はテーブルを作成/更新する。
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&model.User{},
		&model.Item{},
		&model.Cart{},
		&model.AuditLog{},
	)
}

func dialector(cfg config.Config) gorm.Dialector {
	if cfg.DBDriver == config.DriverSQLite {
		return sqlite.Open(cfg.SQLiteDSN)
	}
	return postgres.Open(cfg.DatabaseDSN())
}

func gormLogger(cfg config.Config) logger.Interface {
	if cfg.IsTest() {
		return logger.Default.LogMode(logger.Silent)
	}
	return logger.Default.LogMode(logger.Warn)
}

func configurePool(sqlDB *sql.DB, driver string) {
	// sqliteは1接続にする（:memory: は接続ごとに別DBになる）
	if driver == config.DriverSQLite {
		sqlDB.SetMaxOpenConns(1)
		return
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)
}
