package server

import (
	"context"
	"net/http"
	"time"

	"ecapi/internal/config"
	"ecapi/internal/handler"
	"ecapi/internal/metrics"
	"ecapi/internal/middleware"
	"ecapi/internal/repository"
	"ecapi/internal/validator"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Deps はルート登録に必要なもの。Docsはnilなら /docs を出さない。
type Deps struct {
	Config    config.Config
	Log       logrus.FieldLogger
	Metrics   *metrics.Metrics
	Validator *validator.Validator
	UserRepo  repository.UserRepository

	Items *handler.ItemHandler
	Carts *handler.CartHandler
	Docs  *handler.DocsHandler
}

type Server struct {
	e    *echo.Echo
	addr string
}

func New(d Deps) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = d.Validator
	e.HTTPErrorHandler = handler.ErrorHandler(d.Log)

	useGlobalMiddleware(e, d)
	RegisterRoutes(e, d)

	return &Server{e: e, addr: d.Config.Addr()}
}

// テストから httptest で叩くため
func (s *Server) Echo() *echo.Echo {
	return s.e
}

// Shutdownで止めた場合はnilを返す
func (s *Server) Start() error {
	if err := s.e.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "start server")
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}

// 順番に意味がある。Recoverが一番外、RequestLoggerはMetricsより外。
func useGlobalMiddleware(e *echo.Echo, d Deps) {
	cfg := d.Config

	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(middleware.Metrics(d.Metrics))
	e.Use(echomw.Secure())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	e.Use(echomw.BodyLimit("10M"))

	if cfg.RateLimitRPS > 0 {
		e.Use(echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
			Store: echomw.NewRateLimiterMemoryStoreWithConfig(echomw.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(cfg.RateLimitRPS),
				Burst:     cfg.RateLimitRPS * 2,
				ExpiresIn: 3 * time.Minute,
			}),
		}))
	}
}
