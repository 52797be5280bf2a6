package routes

import (
	"net/http"

	"github.com/signalgraph/signalgraph/internal/server/middleware"

	"github.com/labstack/echo/v4"
)

// GetDiagnosticsHandler returns the report of the latest successful build:
// failed notes, skipped paths and identity collisions included. It only
// builds when nothing was built yet.
func GetDiagnosticsHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App

	if res := app.Graphs.Latest(); res != nil {
		return c.JSON(http.StatusOK, res.Report)
	}
	res, err := app.Graphs.Get(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, res.Report)
}
