package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"orderdesk/internal/handler"
	"orderdesk/internal/observability"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func New(logger *zap.Logger, orderH *handler.OrderHandler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	//PATCH /api/orders/1/ なども同じルートに流す
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(observability.RequestLogger(logger))
	e.Use(middleware.Recover())

	RegisterRoutes(e, orderH)
	return e
}

// Run は ctx が終わるまで待ち、shutdownTimeout 以内に止める。
func Run(ctx context.Context, e *echo.Echo, addr string, shutdownTimeout time.Duration, logger *zap.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server listening", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("http server shutting down")
		return e.Shutdown(sctx)
	})

	return g.Wait()
}
