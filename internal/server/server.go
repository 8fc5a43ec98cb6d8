package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"storefront/internal/metrics"
	"storefront/internal/middleware"
	"storefront/internal/validator"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 10 * time.Second

// サーバーが必要とする部品
type Deps struct {
	Log        zerolog.Logger
	Metrics    *metrics.Metrics
	Sessions   middleware.SessionLookup
	CookieName string
	Handlers   Handlers
}

// echoを組み立てる（ミドルウェア順：recover → request id → log → metrics → session）
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validator.New()

	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(middleware.Metrics(d.Metrics))
	e.Use(middleware.LoadSession(d.Sessions, d.CookieName, d.Log))

	e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))
	RegisterRoutes(e, d.Handlers)
	return e
}

// ctxが終わったらgraceful shutdown
func Start(ctx context.Context, e *echo.Echo, addr string, log zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("server started")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
