package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/semsearch/internal/domain"
	"github.com/nfrund/semsearch/internal/handlers"
	"github.com/nfrund/semsearch/internal/rendering"
	"github.com/nfrund/semsearch/internal/suspense"
	"github.com/nfrund/semsearch/web/src/templates/pages"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeResolver returns canned results per query. Queries listed in block
// wait until their context ends; queries listed in hold wait until their
// channel is closed.
type fakeResolver struct {
	mu      sync.Mutex
	results map[string][]domain.Result
	block   map[string]bool
	hold    map[string]chan struct{}
	err     error
	started chan string
	seen    []string
}

func (f *fakeResolver) Resolve(ctx context.Context, query string) ([]domain.Result, error) {
	f.mu.Lock()
	f.seen = append(f.seen, query)
	blocked := f.block[query]
	held := f.hold[query]
	f.mu.Unlock()

	if f.started != nil {
		f.started <- query
	}
	if blocked {
		<-ctx.Done()
		return nil, context.Cause(ctx)
	}
	if held != nil {
		select {
		case <-held:
		case <-ctx.Done():
			return nil, context.Cause(ctx)
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.results[query], nil
}

func img(id, title string) domain.Result {
	return domain.Result{Image: domain.Image{ID: id, Title: title, URL: "https://img.example/" + id + ".jpg"}, Score: 0.5}
}

func setup(r domain.Resolver) *echo.Echo {
	e := echo.New()
	e.Validator = handlers.NewValidator()
	e.Renderer = rendering.NewUniversalRenderer()

	h := handlers.NewSearchHandler(r, suspense.NewTracker(), handlers.SearchOptions{
		DeployURL:      "https://deploy.example/new",
		SkeletonCards:  3,
		ResolveTimeout: 2 * time.Second,
	})
	e.GET("/", h.PageGet)
	e.GET(handlers.ResultsPath, h.ResultsGet)
	e.GET("/api/search", h.APISearchGet)
	return e
}

func get(e *echo.Echo, target string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// seq hands out boundary sequence numbers in the order the tests render them.
var seq atomic.Uint64

func resultsURL(query string) string {
	return suspense.Boundary{Query: query, Seq: seq.Add(1), Src: handlers.ResultsPath}.ContentURL()
}

func TestPageGet(t *testing.T) {
	e := setup(&fakeResolver{})

	tests := []struct {
		name      string
		target    string
		wantQuery string
	}{
		{name: "no query", target: "/", wantQuery: ""},
		{name: "empty query", target: "/?q=", wantQuery: ""},
		{name: "tasty food", target: "/?q=tasty+food", wantQuery: "tasty food"},
		{name: "verbatim spacing", target: "/?q=%20%20cats%20", wantQuery: "  cats "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(e, tt.target, nil)
			require.Equal(t, http.StatusOK, rec.Code)
			html := rec.Body.String()

			assert.Contains(t, html, "<!doctype html>")
			assert.Contains(t, html, "Semantic Search")
			assert.Contains(t, html, `value="`+tt.wantQuery+`"`)
			assert.Contains(t, html, `href="https://deploy.example/new"`)

			key := suspense.KeyFor(tt.wantQuery)
			assert.Contains(t, html, `id="`+suspense.ElementID(key)+`"`)
			assert.Contains(t, html, `aria-busy="true"`, "the placeholder is rendered first")
			assert.Equal(t, 3, strings.Count(html, "card-skeleton"))
			assert.NotContains(t, html, `class="card-grid" data-count`, "no results are rendered with the page")
			assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
		})
	}
}

func TestPageGet_EachLoadGetsOwnViewID(t *testing.T) {
	e := setup(&fakeResolver{})

	a := get(e, "/", nil).Body.String()
	b := get(e, "/", nil).Body.String()

	extract := func(html string) string {
		i := strings.Index(html, "X-View-ID&#34;:&#34;")
		require.GreaterOrEqual(t, i, 0)
		rest := html[i+len("X-View-ID&#34;:&#34;"):]
		return rest[:strings.Index(rest, "&#34;")]
	}
	assert.NotEqual(t, extract(a), extract(b))
}

func TestPageGet_InPlaceSearchReturnsRegionOnly(t *testing.T) {
	e := setup(&fakeResolver{})

	rec := get(e, "/?q=cats", map[string]string{"HX-Request": "true", "HX-Target": "search-region"})
	require.Equal(t, http.StatusOK, rec.Code)
	html := rec.Body.String()

	assert.True(t, strings.HasPrefix(html, `<div id="search-region"`))
	assert.NotContains(t, html, "<!doctype html>")
	assert.Contains(t, html, suspense.ElementID(suspense.KeyFor("cats")))
	assert.Contains(t, html, "card-skeleton")
}

func TestPageGet_OverlongQueryShowsNotice(t *testing.T) {
	e := setup(&fakeResolver{})
	query := strings.Repeat("a", domain.MaxQueryLength+1)

	for name, headers := range map[string]map[string]string{
		"full page": nil,
		"region":    {"HX-Request": "true", "HX-Target": "search-region"},
	} {
		t.Run(name, func(t *testing.T) {
			rec := get(e, "/?"+url.Values{"q": {query}}.Encode(), headers)
			require.Equal(t, http.StatusOK, rec.Code)
			html := rec.Body.String()

			assert.Contains(t, html, "Your search is too long")
			assert.NotContains(t, html, "suspense-boundary", "no boundary that could never resolve")
			assert.NotContains(t, html, "hx-trigger")
		})
	}
}

func TestResultsGet_QueryLimitCountsCharacters(t *testing.T) {
	query := strings.Repeat("é", domain.MaxQueryLength)
	e := setup(&fakeResolver{})

	require.NoError(t, domain.ValidateQuery(query))
	rec := get(e, resultsURL(query), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestResultsGet(t *testing.T) {
	r := &fakeResolver{results: map[string][]domain.Result{
		"tasty food": {img("pizza", "Wood-fired pizza"), img("ramen", "Ramen")},
		"":           {img("bridge", "Golden Gate")},
	}}
	e := setup(r)

	t.Run("tasty food", func(t *testing.T) {
		rec := get(e, resultsURL("tasty food"), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		html := rec.Body.String()

		assert.Contains(t, html, `id="`+suspense.ElementID(suspense.KeyFor("tasty food"))+`"`)
		assert.Contains(t, html, `aria-busy="false"`)
		assert.Contains(t, html, `data-image-id="pizza"`)
		assert.Contains(t, html, `data-image-id="ramen"`)
		assert.NotContains(t, html, "bridge")
	})

	t.Run("no query", func(t *testing.T) {
		rec := get(e, resultsURL(""), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `data-image-id="bridge"`)
	})

	t.Run("empty result", func(t *testing.T) {
		rec := get(e, resultsURL("submarine"), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "No results for")
	})

	assert.Equal(t, []string{"tasty food", "", "submarine"}, r.seen, "the resolver sees the exact query")
}

func TestResultsGet_BadRequests(t *testing.T) {
	e := setup(&fakeResolver{})

	tests := []struct {
		name   string
		target string
	}{
		{name: "missing key", target: handlers.ResultsPath + "?seq=1&q=cats"},
		{name: "key of another query", target: handlers.ResultsPath + "?seq=1&q=cats&key=" + suspense.KeyFor("dogs")},
		{name: "bad slot", target: handlers.ResultsPath + "?seq=1&q=cats&slot=a%2Fb&key=" + suspense.KeyFor("cats")},
		{name: "missing seq", target: handlers.ResultsPath + "?q=cats&key=" + suspense.KeyFor("cats")},
		{name: "query too long", target: resultsURL(strings.Repeat("x", domain.MaxQueryLength+1))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(e, tt.target, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestResultsGet_ResolverFailureRendersErrorState(t *testing.T) {
	e := setup(&fakeResolver{err: errors.New("index unavailable")})

	rec := get(e, resultsURL("cats"), nil)
	require.Equal(t, http.StatusOK, rec.Code, "the page-level request must not fail")
	html := rec.Body.String()

	assert.Contains(t, html, `role="alert"`)
	assert.Contains(t, html, `hx-target="#`+suspense.ElementID(suspense.KeyFor("cats"))+`"`)
	assert.Contains(t, html, "Try again")
}

func TestResultsGet_SupersededQueryIsDropped(t *testing.T) {
	r := &fakeResolver{
		results: map[string][]domain.Result{"cats": {img("tabby", "Tabby cat")}},
		block:   map[string]bool{"tasty food": true},
		started: make(chan string, 4),
	}
	e := setup(r)
	view := map[string]string{"HX-Request": "true", pages.ViewIDHeader: "view-1"}

	stale := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		stale <- get(e, resultsURL("tasty food"), view)
	}()
	require.Equal(t, "tasty food", <-r.started)

	rec := get(e, resultsURL("cats"), view)
	require.Equal(t, "cats", <-r.started)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `data-image-id="tabby"`)

	select {
	case old := <-stale:
		assert.Equal(t, http.StatusNoContent, old.Code)
		assert.Empty(t, old.Body.String())
	case <-time.After(2 * time.Second):
		t.Fatal("superseded request did not finish")
	}
}

func TestResultsGet_StaleFetchArrivingLateIsDropped(t *testing.T) {
	release := make(chan struct{})
	r := &fakeResolver{
		results: map[string][]domain.Result{
			"tasty food": {img("pizza", "Wood-fired pizza")},
			"cats":       {img("tabby", "Tabby cat")},
		},
		hold:    map[string]chan struct{}{"cats": release},
		started: make(chan string, 4),
	}
	e := setup(r)
	view := map[string]string{"HX-Request": "true", pages.ViewIDHeader: "view-1"}

	staleURL := resultsURL("tasty food")
	newURL := resultsURL("cats")

	// The fetch for the newer boundary reaches the server first.
	current := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		current <- get(e, newURL, view)
	}()
	require.Equal(t, "cats", <-r.started)

	old := get(e, staleURL, view)
	assert.Equal(t, http.StatusNoContent, old.Code)
	assert.Empty(t, old.Body.String())

	close(release)
	select {
	case rec := <-current:
		require.Equal(t, http.StatusOK, rec.Code, "a stale fetch must not cancel the newer one")
		assert.Contains(t, rec.Body.String(), `data-image-id="tabby"`)
	case <-time.After(2 * time.Second):
		t.Fatal("newer request did not finish")
	}

	// Arriving after the newer one finished changes nothing either.
	old = get(e, staleURL, view)
	assert.Equal(t, http.StatusNoContent, old.Code)

	r.mu.Lock()
	defer r.mu.Unlock()
	assert.Equal(t, []string{"cats"}, r.seen, "stale queries are never resolved")
}

func TestResultsGet_OtherPagesAreNotSuperseded(t *testing.T) {
	r := &fakeResolver{
		results: map[string][]domain.Result{"cats": {img("tabby", "Tabby cat")}},
		block:   map[string]bool{"tasty food": true},
		started: make(chan string, 4),
	}
	e := setup(r)

	stale := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		stale <- get(e, resultsURL("tasty food"), map[string]string{pages.ViewIDHeader: "view-1"})
	}()
	require.Equal(t, "tasty food", <-r.started)

	rec := get(e, resultsURL("cats"), map[string]string{pages.ViewIDHeader: "view-2"})
	<-r.started
	require.Equal(t, http.StatusOK, rec.Code)

	select {
	case <-stale:
		t.Fatal("a different page must not cancel the first resolution")
	case <-time.After(50 * time.Millisecond):
	}

	// The blocked resolution eventually times out into the error state.
	select {
	case old := <-stale:
		assert.Equal(t, http.StatusOK, old.Code)
		assert.Contains(t, old.Body.String(), "Try again")
	case <-time.After(5 * time.Second):
		t.Fatal("blocked request never timed out")
	}
}

func TestAPISearchGet(t *testing.T) {
	r := &fakeResolver{results: map[string][]domain.Result{"cats": {img("tabby", "Tabby cat")}}}
	e := setup(r)

	rec := get(e, "/api/search?"+url.Values{"q": {"cats"}}.Encode(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Query   string          `json:"query"`
		Results []domain.Result `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "cats", body.Query)
	require.Len(t, body.Results, 1)
	assert.Equal(t, "tabby", body.Results[0].Image.ID)

	rec = get(e, "/api/search?q=nothing", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"results":[]`)
}

func TestAPISearchGet_ResolverFailure(t *testing.T) {
	e := setup(&fakeResolver{err: errors.New("down")})
	rec := get(e, "/api/search?q=cats", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
