package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	mid "github.com/signalgraph/signalgraph/internal/server/middleware"
	"github.com/signalgraph/signalgraph/pkg/logger"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

type Options struct {
	// StaticDir, when set, is served at "/".
	StaticDir string
}

// New builds the echo instance with middleware and routes registered.
func New(app *mid.App, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = &CustomValidator{validator: validator.New()}

	if app.Gatherer == nil {
		app.Gatherer = prometheus.DefaultGatherer
	}

	e.Use(mid.AppContextMiddleware(app))
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())

	RegisterRoutes(e, app.Gatherer)

	if opts.StaticDir != "" {
		e.Static("/", opts.StaticDir)
	}
	return e
}

// Run serves on addr until ctx is done, then shuts down within 10 seconds.
func Run(ctx context.Context, e *echo.Echo, addr string) error {
	errc := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
		return err
	}
	logger.Info("Server stopped")
	return nil
}
