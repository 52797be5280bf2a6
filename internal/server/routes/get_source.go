package routes

import (
	"errors"
	"net/http"

	"github.com/signalgraph/signalgraph/internal/server/middleware"
	"github.com/signalgraph/signalgraph/pkg/loader"
	"github.com/signalgraph/signalgraph/pkg/logger"

	"github.com/labstack/echo/v4"
)

func GetSourceHandler(c echo.Context) error {
	type getSourceData struct {
		Path string `query:"path" validate:"required"`
	}

	data := new(getSourceData)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Missing path"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Missing path"})
	}

	app := c.(*middleware.AppContext).App
	text, err := app.Notes.GetSource(c.Request().Context(), data.Path)
	switch {
	case errors.Is(err, loader.ErrPathEscape):
		logger.Warn("[Source] Rejected path outside root", "path", data.Path)
		return c.JSON(http.StatusForbidden, map[string]string{"error": "Access denied"})
	case err != nil:
		logger.Debug("[Source] Lookup failed", "path", data.Path, "err", err)
		return c.JSON(http.StatusNotFound, map[string]string{"error": "File not found"})
	}

	return c.Blob(http.StatusOK, echo.MIMETextPlainCharsetUTF8, text)
}
