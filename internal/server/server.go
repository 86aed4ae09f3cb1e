package server

import (
	"errors"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/nfrund/semsearch/internal/config"
	"github.com/nfrund/semsearch/internal/domain"
	"github.com/nfrund/semsearch/internal/handlers"
	appmiddleware "github.com/nfrund/semsearch/internal/middleware"
	"github.com/nfrund/semsearch/internal/rendering"
	"github.com/nfrund/semsearch/internal/suspense"
	"github.com/prometheus/client_golang/prometheus"
)

// Dependencies are the services the HTTP server is built from.
type Dependencies struct {
	Config   *config.Config
	Resolver domain.Resolver
	Tracker  *suspense.Tracker
	Gatherer prometheus.Gatherer
	// Echo is optional; a new instance is created when nil.
	Echo *echo.Echo
}

// Server holds the dependencies for the HTTP server.
type Server struct {
	E             *echo.Echo
	cfg           *config.Config
	gatherer      prometheus.Gatherer
	searchHandler *handlers.SearchHandler
}

// New creates a new Server instance with its middleware chain configured.
func New(deps Dependencies) (*Server, error) {
	if deps.Config == nil {
		return nil, errors.New("server: config is required")
	}
	if deps.Resolver == nil {
		return nil, errors.New("server: resolver is required")
	}
	if deps.Tracker == nil {
		deps.Tracker = suspense.NewTracker()
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.NewRegistry()
	}

	e := deps.Echo
	if e == nil {
		e = echo.New()
	}
	e.HideBanner = true
	renderer := rendering.NewUniversalRenderer()
	e.Renderer = renderer
	e.Validator = handlers.NewValidator()
	setupErrorHandling(e, renderer)

	e.Use(middleware.RequestID())
	e.Use(appmiddleware.Logger)
	e.Use(middleware.Recover())

	store := sessions.NewCookieStore([]byte(deps.Config.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 30,
		HttpOnly: true,
		Secure:   deps.Config.SecureCookies(),
		SameSite: http.SameSiteLaxMode,
	}
	e.Use(session.Middleware(store))

	searchHandler := handlers.NewSearchHandler(deps.Resolver, deps.Tracker, handlers.SearchOptions{
		DeployURL:      deps.Config.DeployURL,
		SkeletonCards:  deps.Config.SkeletonCards,
		ResolveTimeout: deps.Config.ResolveTimeout,
	})

	return &Server{
		E:             e,
		cfg:           deps.Config,
		gatherer:      deps.Gatherer,
		searchHandler: searchHandler,
	}, nil
}
