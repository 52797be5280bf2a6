package routes

import (
	"net/http"

	"github.com/signalgraph/signalgraph/internal/server/middleware"

	"github.com/labstack/echo/v4"
)

type errorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

func GetGraphHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App

	res, err := app.Graphs.Get(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, res.Graph)
}
