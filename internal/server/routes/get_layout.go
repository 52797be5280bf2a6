package routes

import (
	"net/http"

	"github.com/signalgraph/signalgraph/internal/server/middleware"
	"github.com/signalgraph/signalgraph/pkg/common"
	"github.com/signalgraph/signalgraph/pkg/layout"

	"github.com/labstack/echo/v4"
)

func GetLayoutHandler(c echo.Context) error {
	type getLayoutData struct {
		Strategy string  `query:"strategy"`
		Width    float64 `query:"width" validate:"gt=0"`
		Height   float64 `query:"height" validate:"gt=0"`
	}

	type getLayoutResponse struct {
		Layout *layout.Layout `json:"layout"`
		Graph  *common.Graph  `json:"graph"`
	}

	data := &getLayoutData{
		Strategy: string(layout.StrategyForce),
		Width:    1200,
		Height:   800,
	}
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request params"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request params"})
	}
	strategy, err := layout.ParseStrategy(data.Strategy)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	app := c.(*middleware.AppContext).App
	res, err := app.Graphs.Get(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}

	// The cached graph is shared between requests.
	g := res.Graph.Clone()
	l, err := layout.Apply(g, layout.Viewport{Width: data.Width, Height: data.Height}, strategy)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, getLayoutResponse{Layout: l, Graph: g})
}
