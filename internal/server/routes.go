package server

import (
	"path/filepath"

	"ecapi/internal/handler"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, d Deps) {
	e.GET("/", handler.Health)
	e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))

	// 画像は STORAGE_DIR/public/items に保存され /storage/items/<file> で見える
	e.Static("/storage", filepath.Join(d.Config.StorageDir, "public"))

	if d.Docs != nil {
		d.Docs.RegisterRoutes(e)
	}

	d.Items.RegisterRoutes(e, d.Config, d.UserRepo, d.Validator)
	d.Carts.RegisterRoutes(e, d.Config, d.UserRepo)
}
