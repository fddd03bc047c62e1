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

// /api/items のHTTP
type ItemHandler struct {
	uc *usecase.ItemUsecase
}

// DI
func NewItemHandler(uc *usecase.ItemUsecase) *ItemHandler {
	return &ItemHandler{uc: uc}
}

// 参照は公開、作成・更新・削除はADMINのみ
func (h *ItemHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository, v *validator.Validator) {
	g := e.Group("/api/items")

	g.GET("", h.list, middleware.ValidateQuery(v.ParseItemQuery))
	g.GET("/:id", h.get)

	admin := []echo.MiddlewareFunc{
		middleware.AuthJWT(cfg.JWTSecret),
		middleware.TokenVersionGuard(userRepo),
		middleware.AdminRoleGuard(),
	}
	withBody := func(mw echo.MiddlewareFunc) []echo.MiddlewareFunc {
		out := append([]echo.MiddlewareFunc{}, admin...)
		return append(out, middleware.RequireJSONBody(), mw)
	}

	g.POST("", h.create, withBody(middleware.ValidateJSON[validator.CreateItemRequest]())...)
	g.PUT("/:id", h.update, withBody(middleware.ValidateJSON[validator.UpdateItemRequest]())...)
	g.DELETE("/:id", h.delete, admin...)
}

func (h *ItemHandler) list(c echo.Context) error {
	q, ok := middleware.Validated[usecase.ItemQuery](c)
	if !ok {
		return usecase.NewBadRequest("invalid query")
	}

	out, err := h.uc.List(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ItemHandler) get(c echo.Context) error {
	id, err := parseItemID(c)
	if err != nil {
		return err
	}

	it, err := h.uc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, it)
}

func (h *ItemHandler) create(c echo.Context) error {
	req, ok := middleware.Validated[validator.CreateItemRequest](c)
	if !ok {
		return usecase.NewBadRequest("invalid body")
	}

	adminID, ok := middleware.UserID(c)
	if !ok {
		return usecase.NewUnauthorized("unauthorized")
	}

	it, err := h.uc.Create(c.Request().Context(), adminID, usecase.CreateItemInput{
		Name:      req.Name,
		Price:     *req.Price,
		Content:   req.Content,
		Base64:    req.Base64,
		Extension: req.Extension,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, it)
}

func (h *ItemHandler) update(c echo.Context) error {
	id, err := parseItemID(c)
	if err != nil {
		return err
	}

	req, ok := middleware.Validated[validator.UpdateItemRequest](c)
	if !ok {
		return usecase.NewBadRequest("invalid body")
	}

	adminID, ok := middleware.UserID(c)
	if !ok {
		return usecase.NewUnauthorized("unauthorized")
	}

	it, err := h.uc.Update(c.Request().Context(), adminID, id, usecase.UpdateItemInput{
		Name:      req.Name,
		Content:   req.Content,
		Price:     req.Price,
		Base64:    req.Base64,
		Extension: req.Extension,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, it)
}

func (h *ItemHandler) delete(c echo.Context) error {
	id, err := parseItemID(c)
	if err != nil {
		return err
	}

	adminID, ok := middleware.UserID(c)
	if !ok {
		return usecase.NewUnauthorized("unauthorized")
	}

	if err := h.uc.Delete(c.Request().Context(), adminID, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func parseItemID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, usecase.NewBadRequest("invalid item id")
	}
	return id, nil
}
