package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/brntsllvn/devlunch/internal/config"
	"github.com/brntsllvn/devlunch/internal/models"
	"github.com/brntsllvn/devlunch/internal/validation"
	"github.com/brntsllvn/devlunch/internal/views"
	"github.com/brntsllvn/devlunch/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, mutate func(cfg *config.Config)) *httptest.Server {
	t.Helper()
	ctx := context.Background()
	log := logger.New("error")

	cfg := config.Default()
	cfg.Database.Driver = config.DriverSQLite
	cfg.Database.Path = ":memory:"
	if mutate != nil {
		mutate(cfg)
	}

	store, err := OpenStore(ctx, cfg.Database, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	renderer, err := views.New(log)
	require.NoError(t, err)

	router, err := NewRouter(Options{
		Config:    cfg,
		Store:     store,
		Renderer:  renderer,
		Validator: validation.New(),
		Registry:  prometheus.NewRegistry(),
		Version:   "test",
		Logger:    log,
	})
	require.NoError(t, err)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

// noRedirect lets tests inspect 302 responses
func noRedirect(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }

func postForm(t *testing.T, srv *httptest.Server, path string, form url.Values, header http.Header) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, srv.URL+path, strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for k, v := range header {
		req.Header[k] = v
	}
	client := &http.Client{CheckRedirect: noRedirect}
	resp, err := client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func getJSON(t *testing.T, srv *httptest.Server, path string, out any) int {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, srv.URL+path, nil)
	require.NoError(t, err)
	req.Header.Set("Accept", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestRouter_RestaurantLifecycle(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := postForm(t, srv, "/restaurant/create", url.Values{
		"Name": {"Brave Horse"}, "Longitude": {"-122.33"}, "Latitude": {"47.61"},
	}, nil)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/restaurant", resp.Header.Get("Location"))

	var list []models.Restaurant
	require.Equal(t, http.StatusOK, getJSON(t, srv, "/restaurant", &list))
	require.Len(t, list, 1)
	id := list[0].ID
	assert.Equal(t, int64(1), id)

	resp = postForm(t, srv, "/restaurant/edit/1", url.Values{"Name": {"Linda's"}}, nil)
	require.Equal(t, http.StatusFound, resp.StatusCode)

	var got models.Restaurant
	require.Equal(t, http.StatusOK, getJSON(t, srv, "/restaurant/details/1", &got))
	assert.Equal(t, models.Restaurant{ID: 1, Name: "Linda's"}, got)

	resp = postForm(t, srv, "/restaurant/delete/1", url.Values{}, nil)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, http.StatusNotFound, getJSON(t, srv, "/restaurant/details/1", nil))
}

func TestRouter_HTMLPages(t *testing.T) {
	srv := newTestServer(t, nil)
	postForm(t, srv, "/restaurant/create", url.Values{"Name": {"Yard House"}}, nil)

	for _, path := range []string{"/restaurant", "/restaurant/details/1", "/restaurant/create", "/restaurant/edit/1"} {
		t.Run(path, func(t *testing.T) {
			resp, err := http.Get(srv.URL + path)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
		})
	}
}

func TestRouter_RootRedirectsToIndex(t *testing.T) {
	srv := newTestServer(t, nil)
	client := &http.Client{CheckRedirect: noRedirect}

	resp, err := client.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/restaurant", resp.Header.Get("Location"))
}

func TestRouter_APIKeysGuardWrites(t *testing.T) {
	srv := newTestServer(t, func(cfg *config.Config) {
		cfg.Auth.APIKeys = []string{"secret"}
	})
	form := url.Values{"Name": {"Brave Horse"}}

	assert.Equal(t, http.StatusUnauthorized, postForm(t, srv, "/restaurant/create", form, nil).StatusCode)
	assert.Equal(t, http.StatusForbidden,
		postForm(t, srv, "/restaurant/create", form, http.Header{"Api_key": {"nope"}}).StatusCode)
	assert.Equal(t, http.StatusFound,
		postForm(t, srv, "/restaurant/create", form, http.Header{"Api_key": {"secret"}}).StatusCode)

	// reads stay open
	var list []models.Restaurant
	assert.Equal(t, http.StatusOK, getJSON(t, srv, "/restaurant", &list))
	assert.Len(t, list, 1)
}

func TestRouter_IndexDeletesThroughGuardedPost(t *testing.T) {
	srv := newTestServer(t, func(cfg *config.Config) {
		cfg.Auth.APIKeys = []string{"secret"}
	})
	postForm(t, srv, "/restaurant/create", url.Values{"Name": {"Brave Horse"}}, http.Header{"Api_key": {"secret"}})

	resp, err := http.Get(srv.URL + "/restaurant")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `<form method="post" action="/restaurant/delete/1"`)

	resp = postForm(t, srv, "/restaurant/delete/1", url.Values{}, http.Header{"Api_key": {"secret"}})
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, http.StatusNotFound, getJSON(t, srv, "/restaurant/details/1", nil))
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	srv := newTestServer(t, nil)

	var health map[string]any
	require.Equal(t, http.StatusOK, getJSON(t, srv, "/health", &health))
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, "test", health["version"])

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `devlunch_http_requests_total{method="GET",route="/health",status="200"} 1`)
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	store, err := OpenStore(ctx, config.DatabaseConfig{Driver: config.DriverMemory}, nil)
	require.NoError(t, err)
	assert.NoError(t, store.Ping(ctx))
	assert.NoError(t, store.Close())

	_, err = OpenStore(ctx, config.DatabaseConfig{Driver: "postgres"}, nil)
	assert.Error(t, err)
}
