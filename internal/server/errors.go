package server

import (
	"errors"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/semsearch/internal/middleware"
	"github.com/nfrund/semsearch/internal/rendering"
	"github.com/nfrund/semsearch/web/src/templates/components"
	"github.com/nfrund/semsearch/web/src/templates/layouts"
)

// setupErrorHandling installs the central HTTP error handler. Known HTTP
// errors keep their status; anything else is logged with a stack trace and
// answered with a generic 500. Browser navigations get an HTML error page
// rendered by renderer.
func setupErrorHandling(e *echo.Echo, renderer rendering.Renderer) {
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		log := middleware.FromContext(c.Request().Context())

		var he *echo.HTTPError
		if errors.As(err, &he) {
			if he.Code >= http.StatusInternalServerError {
				log.Error("Server error", "status", he.Code, "error", err)
			} else {
				log.Debug("Client error", "status", he.Code, "error", err)
			}
			respond(c, renderer, he.Code, he.Message)
			return
		}

		log.Error("Internal Server Error (Unhandled)",
			"error", err.Error(),
			"stack_trace", string(debug.Stack()),
		)
		respond(c, renderer, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}

func respond(c echo.Context, renderer rendering.Renderer, code int, message any) {
	var err error
	switch {
	case c.Request().Method == http.MethodHead:
		err = c.NoContent(code)
	case isJSONRequest(c):
		err = c.JSON(code, map[string]any{"message": message})
	case isPageNavigation(c):
		page := layouts.Base(http.StatusText(code), components.ErrorPage(code, messageText(message)))
		if err = renderer.RenderPage(c, code, page); err != nil {
			middleware.FromContext(c.Request().Context()).Error("Failed to render error page", "error", err)
			err = c.String(code, messageText(message))
		}
	default:
		err = c.String(code, messageText(message))
	}
	if err != nil {
		middleware.FromContext(c.Request().Context()).Error("Failed to write error response", "error", err)
	}
}

func isJSONRequest(c echo.Context) bool {
	return strings.HasPrefix(c.Request().URL.Path, "/api/")
}

// isPageNavigation reports whether a browser is loading a whole page, as
// opposed to an htmx fragment fetch.
func isPageNavigation(c echo.Context) bool {
	req := c.Request()
	return req.Header.Get("HX-Request") != "true" &&
		strings.Contains(req.Header.Get(echo.HeaderAccept), echo.MIMETextHTML)
}

func messageText(message any) string {
	if s, ok := message.(string); ok {
		return s
	}
	return http.StatusText(http.StatusInternalServerError)
}
