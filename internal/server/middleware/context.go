package middleware

import (
	"github.com/signalgraph/signalgraph/internal/cache"
	"github.com/signalgraph/signalgraph/pkg/loader"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

type App struct {
	Graphs   *cache.GraphCache
	Notes    loader.NoteLoader
	Gatherer prometheus.Gatherer
}

type AppContext struct {
	echo.Context
	App *App
}

func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, app}
			return next(cc)
		}
	}
}
