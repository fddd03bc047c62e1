package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"ecapi/internal/config"
	"ecapi/internal/domain/model"
	"ecapi/internal/handler"
	"ecapi/internal/infra/db"
	"ecapi/internal/infra/events"
	infraRepo "ecapi/internal/infra/repository"
	"ecapi/internal/infra/storage"
	"ecapi/internal/logging"
	"ecapi/internal/metrics"
	"ecapi/internal/server"
	"ecapi/internal/usecase"
	"ecapi/internal/validator"

	"github.com/sirupsen/logrus"
)

type eventPublisher interface {
	usecase.ItemEventPublisher
	Close() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}

	log := logging.New(cfg.LogLevel)
	log.WithFields(logrus.Fields{"env": cfg.AppEnv, "port": cfg.Port}).Info("starting")

	//DB接続
	ctx := context.Background()
	gormDB, err := db.Connect(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("connect db")
	}
	if err := db.Migrate(gormDB); err != nil {
		log.WithError(err).Fatal("migrate db")
	}

	//Repository（GORM実装）生成
	itemRepo := infraRepo.NewItemGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB)

	//ローカル用の初期ADMIN。tokenはJWT_SECRETで sub=id, role, tv を入れて発行する
	if cfg.SeedAdminEmail != "" {
		admin, err := userRepo.EnsureByEmail(ctx, cfg.SeedAdminEmail, model.RoleAdmin)
		if err != nil {
			log.WithError(err).Fatal("seed admin user")
		}
		log.WithFields(logrus.Fields{
			"user_id":       admin.ID,
			"role":          admin.Role,
			"token_version": admin.TokenVersion,
		}).Info("admin user ready")
	}

	//usecaseに渡す部品
	images := storage.NewLocalImageStorage(filepath.Join(cfg.StorageDir, "public", "items"), "/storage/items")

	var publisher eventPublisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaItemTopic)
		log.WithField("topic", cfg.KafkaItemTopic).Info("publishing item events to kafka")
	}

	m := metrics.New()

	//Usecase生成
	itemUC := usecase.NewItemUsecase(itemRepo, auditRepo, images, publisher, log)
	cartUC := usecase.NewCartUsecase(cartRepo, txm, m, log)

	//APIドキュメント（testでは出さない）
	var docs *handler.DocsHandler
	if cfg.IsTest() {
		log.Warn("api docs disabled in test profile")
	} else if docs, err = handler.LoadDocs(cfg.OpenAPISpecPath, cfg.Port); err != nil {
		log.WithError(err).Warn("api docs disabled")
		docs = nil
	}

	srv := server.New(server.Deps{
		Config:    cfg,
		Log:       log,
		Metrics:   m,
		Validator: validator.New(),
		UserRepo:  userRepo,
		Items:     handler.NewItemHandler(itemUC),
		Carts:     handler.NewCartHandler(cartUC),
		Docs:      docs,
	})

	//Server起動
	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.Addr()).Info("listening")
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("shutting down")
	case err := <-errCh:
		if err != nil {
			log.WithError(err).Error("server stopped")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("shutdown server")
	}

	if err := publisher.Close(); err != nil {
		log.WithError(err).Error("close event publisher")
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.WithError(err).Error("close db")
		}
	}
	log.Info("bye")
}
