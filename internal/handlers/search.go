package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/semsearch/internal/domain"
	"github.com/nfrund/semsearch/internal/middleware"
	"github.com/nfrund/semsearch/internal/suspense"
	"github.com/nfrund/semsearch/web/src/templates/components"
	"github.com/nfrund/semsearch/web/src/templates/layouts"
	"github.com/nfrund/semsearch/web/src/templates/pages"
	g "maragu.dev/gomponents"
)

// ResultsPath serves the suspended content of the result boundary.
const ResultsPath = "/search/results"

// SearchOptions tunes the SearchHandler.
type SearchOptions struct {
	DeployURL      string
	SkeletonCards  int
	ResolveTimeout time.Duration
}

// SearchHandler serves the search page and its suspended result view.
type SearchHandler struct {
	resolver domain.Resolver
	tracker  *suspense.Tracker
	opts     SearchOptions
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(resolver domain.Resolver, tracker *suspense.Tracker, opts SearchOptions) *SearchHandler {
	return &SearchHandler{
		resolver: resolver,
		tracker:  tracker,
		opts:     opts,
	}
}

func (h *SearchHandler) boundary(slot, query string, seq uint64) suspense.Boundary {
	return suspense.Boundary{
		Slot:     slot,
		Query:    query,
		Seq:      seq,
		Src:      ResultsPath,
		Fallback: components.CardGridSkeleton(h.opts.SkeletonCards),
	}
}

// resultView is what the search region shows for query: a boundary that
// resolves lazily, or a notice when the query cannot be resolved at all.
func (h *SearchHandler) resultView(query string) g.Node {
	if err := domain.ValidateQuery(query); err != nil {
		return components.QueryTooLong(domain.MaxQueryLength)
	}
	return h.boundary(suspense.DefaultSlot, query, h.tracker.Next())
}

// PageGet renders the search page (GET /). An in-place search from the
// search box only receives the search region.
func (h *SearchHandler) PageGet(c echo.Context) error {
	query := c.QueryParam("q")
	results := h.resultView(query)

	res := c.Response()
	res.Header().Set("Cache-Control", "no-store")
	res.Header().Add("Vary", "HX-Request")

	if isHTMX(c) && c.Request().Header.Get("HX-Target") == components.SearchRegionID {
		return c.Render(http.StatusOK, "", pages.SearchRegion(results))
	}

	data := pages.SearchPageData{
		Query:     query,
		ViewID:    uuid.NewString(),
		DeployURL: h.opts.DeployURL,
		Results:   results,
	}
	return c.Render(http.StatusOK, "", layouts.Base("", pages.SearchContent(c.Request().Context(), data)))
}

// ResultsGet resolves a boundary (GET /search/results). A resolution older
// than, or superseded by, another one for the same page is answered with
// 204, which the client does not swap in.
func (h *SearchHandler) ResultsGet(c echo.Context) error {
	var req ResultsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid results request").SetInternal(err)
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	}
	if req.Key != suspense.KeyFor(req.Query) {
		return echo.NewHTTPError(http.StatusBadRequest, domain.ErrKeyMismatch.Error())
	}
	if req.Slot == "" {
		req.Slot = suspense.DefaultSlot
	}

	log := middleware.FromContext(c.Request().Context()).With("slot", req.Slot, "key", req.Key, "seq", req.Seq)
	c.Response().Header().Set("Cache-Control", "no-store")

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.opts.ResolveTimeout)
	defer cancel()
	ctx, done, err := h.tracker.Begin(ctx, owner(c), req.Slot, req.Key, req.Seq)
	if err != nil {
		log.Debug("Dropping stale resolution", "error", err)
		return c.NoContent(http.StatusNoContent)
	}
	defer done()

	results, err := h.resolver.Resolve(ctx, req.Query)

	var content g.Node
	switch {
	case errors.Is(context.Cause(ctx), domain.ErrSuperseded):
		log.Debug("Dropping superseded resolution")
		return c.NoContent(http.StatusNoContent)
	case err != nil && c.Request().Context().Err() != nil:
		log.Debug("Client went away before results resolved")
		return c.NoContent(http.StatusNoContent)
	case err != nil:
		log.Error("Failed to resolve results", "error", err)
		retry := h.boundary(req.Slot, req.Query, req.Seq).ContentURL()
		content = components.ErrorState(retry, suspense.ElementID(req.Key))
	default:
		log.Debug("Resolved results", "count", len(results))
		content = components.ImageGrid(req.Query, results)
	}

	return c.Render(http.StatusOK, "", suspense.Resolved(req.Slot, req.Key, content))
}

// searchAPIResponse is the JSON body of GET /api/search.
type searchAPIResponse struct {
	Query   string          `json:"query"`
	Results []domain.Result `json:"results"`
}

// APISearchGet returns results as JSON (GET /api/search).
func (h *SearchHandler) APISearchGet(c echo.Context) error {
	var req SearchAPIRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid search request").SetInternal(err)
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.opts.ResolveTimeout)
	defer cancel()

	results, err := h.resolver.Resolve(ctx, req.Query)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "search failed").SetInternal(err)
	}
	if results == nil {
		results = []domain.Result{}
	}
	return c.JSON(http.StatusOK, searchAPIResponse{Query: req.Query, Results: results})
}

func isHTMX(c echo.Context) bool {
	return c.Request().Header.Get("HX-Request") == "true"
}

// owner scopes supersession to one open page of one client.
func owner(c echo.Context) string {
	return middleware.GetClientID(c) + "/" + c.Request().Header.Get(pages.ViewIDHeader)
}
