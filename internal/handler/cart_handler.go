package handler

import (
	"net/http"
	"strconv"

	"ecapi/internal/config"
	"ecapi/internal/middleware"
	"ecapi/internal/repository"
	"ecapi/internal/usecase"
	"ecapi/internal/validator"

	"github.com/labstack/echo/v4"
)

// /api/cartsのHTTP
type CartHandler struct {
	uc *usecase.CartUsecase
}

// DI
func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

// /api/carts, /api/carts/:id を登録
func (h *CartHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/api/carts")
	g.Use(middleware.AuthJWT(cfg.JWTSecret))
	g.Use(middleware.TokenVersionGuard(userRepo))

	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.POST("", h.reconcile,
		middleware.RequireJSONBody(),
		middleware.ValidateJSON[[]validator.CartIntentRequest](),
	)
}

func (h *CartHandler) list(c echo.Context) error {
	out, err := h.uc.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) get(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return usecase.NewBadRequest("invalid cart id")
	}

	out, err := h.uc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// 配列で受け取った「商品ごとの希望数量」をまとめて反映する
func (h *CartHandler) reconcile(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return usecase.NewUnauthorized("unauthorized")
	}

	req, ok := middleware.Validated[[]validator.CartIntentRequest](c)
	if !ok {
		return usecase.NewBadRequest("invalid body")
	}

	intents := make([]usecase.CartIntent, 0, len(req))
	for _, r := range req {
		intents = append(intents, usecase.CartIntent{
			ItemID:   *r.ItemID,
			Quantity: *r.Quantity,
		})
	}

	out, err := h.uc.Reconcile(c.Request().Context(), userID, intents)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}
