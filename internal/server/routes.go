package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/semsearch/internal/handlers"
	"github.com/nfrund/semsearch/internal/middleware"
	"github.com/nfrund/semsearch/web"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes sets up all the application routes.
func (s *Server) RegisterRoutes() {
	rateLimiter := middleware.RateLimiter(s.cfg.RateLimitRPS, s.cfg.RateLimitBurst)

	s.E.StaticFS("/static", echo.MustSubFS(web.FS, "static"))

	// Only the page and its boundaries are scoped to a client.
	s.E.GET("/", s.searchHandler.PageGet, middleware.ClientID)
	s.E.GET(handlers.ResultsPath, s.searchHandler.ResultsGet, rateLimiter, middleware.ClientID)
	s.E.GET("/api/search", s.searchHandler.APISearchGet, rateLimiter)

	s.E.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	s.E.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})
}
