package server

import (
	"github.com/signalgraph/signalgraph/internal/server/routes"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterRoutes(e *echo.Echo, gatherer prometheus.Gatherer) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	apiRoutes := e.Group("/api")

	apiRoutes.GET("/graph", routes.GetGraphHandler)
	apiRoutes.GET("/source", routes.GetSourceHandler)
	apiRoutes.GET("/layout", routes.GetLayoutHandler)
	apiRoutes.GET("/diagnostics", routes.GetDiagnosticsHandler)
}
