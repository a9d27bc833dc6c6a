package adapthttp_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adapthttp "espresso/internal/adapter/http"
	"espresso/internal/adapter/memory"
	"espresso/internal/app"
	"espresso/internal/domain"
)

// ---------------------------------------------------------------------------
// Test-server helpers
// ---------------------------------------------------------------------------

func newServer(t *testing.T) *adapthttp.Server {
	t.Helper()

	db := memory.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ms, err := app.NewMachineService(context.Background(), db, db,
		app.Capacities{WaterLitres: 2, BeanSpoons: 40}, logger)
	require.NoError(t, err)

	return adapthttp.New(
		ms,
		app.NewProductionService(db),
		app.NewAuthService(db, db.NewSessionRepo()),
		adapthttp.OIDCConfig{},
		logger,
	)
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	ts := httptest.NewServer(newServer(t).WithoutAuth().Handler())
	t.Cleanup(ts.Close)
	return ts
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&m), "decode response body")
	return m
}

func do(t *testing.T, client *http.Client, method, url string, payload any) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp := do(t, http.DefaultClient, http.MethodGet, ts.URL+"/api/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, decodeBody(t, resp)["ok"])
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
}

func TestMachineStatus_Empty(t *testing.T) {
	ts := newTestServer(t)

	resp := do(t, http.DefaultClient, http.MethodGet, ts.URL+"/api/machine/status", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, domain.StatusAddBeansAndWater, body["status"])
	assert.Equal(t, 2.0, body["waterCapacity"])
	assert.Equal(t, 40.0, body["beansCapacity"])
	assert.Equal(t, false, body["needsDescaling"])
}

func TestMachineFillAndBrew(t *testing.T) {
	ts := newTestServer(t)
	c := http.DefaultClient

	resp := do(t, c, http.MethodPost, ts.URL+"/api/machine/water", map[string]any{"litres": 1.0})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, 1.0, body["water"])
	assert.Equal(t, domain.StatusAddBeans, body["status"])

	resp = do(t, c, http.MethodPost, ts.URL+"/api/machine/beans", map[string]any{"spoons": 10})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, 10.0, body["beans"])
	assert.Equal(t, "10 Espressos left", body["status"])

	resp = do(t, c, http.MethodPost, ts.URL+"/api/machine/espresso", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.InDelta(t, 0.05, body["producedLitres"], 1e-9)
	assert.Equal(t, "9 Espressos left", body["status"])

	resp = do(t, c, http.MethodPost, ts.URL+"/api/machine/double-espresso", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.InDelta(t, 0.15, body["producedLitres"], 1e-9)

	resp = do(t, c, http.MethodGet, ts.URL+"/api/machine/events?limit=10", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items, ok := decodeBody(t, resp)["items"].([]any)
	require.True(t, ok)
	assert.Len(t, items, 4)
}

func TestMachineErrors(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		payload    any
		wantStatus int
		wantBody   string
	}{
		{"brew without ingredients", "/api/machine/espresso", nil, http.StatusConflict, domain.StatusAddBeansAndWater},
		{"double without ingredients", "/api/machine/double-espresso", nil, http.StatusConflict, domain.StatusAddBeansAndWater},
		{"descale without water", "/api/machine/descale", nil, http.StatusConflict, domain.StatusAddBeansAndWater},
		{"negative water", "/api/machine/water", map[string]any{"litres": -1.0}, http.StatusBadRequest, domain.StatusAddBeansAndWater},
		{"overfilled water", "/api/machine/water", map[string]any{"litres": 3.0}, http.StatusConflict, domain.StatusAddBeansAndWater},
		{"negative beans", "/api/machine/beans", map[string]any{"spoons": -2}, http.StatusBadRequest, domain.StatusAddBeansAndWater},
		{"overfilled beans", "/api/machine/beans", map[string]any{"spoons": 41}, http.StatusConflict, domain.StatusAddBeansAndWater},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ts := newTestServer(t)

			resp := do(t, http.DefaultClient, http.MethodPost, ts.URL+tc.path, tc.payload)
			require.Equal(t, tc.wantStatus, resp.StatusCode)

			body := decodeBody(t, resp)
			assert.NotEmpty(t, body["error"])
			assert.Equal(t, tc.wantBody, body["status"])
		})
	}
}

func TestMachineBadRequests(t *testing.T) {
	ts := newTestServer(t)

	resp := do(t, http.DefaultClient, http.MethodPost, ts.URL+"/api/machine/water", map[string]any{"gallons": 1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, http.DefaultClient, http.MethodGet, ts.URL+"/api/machine/espresso", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp = do(t, http.DefaultClient, http.MethodPost, ts.URL+"/api/machine/status", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestProductionDaily(t *testing.T) {
	ts := newTestServer(t)
	c := http.DefaultClient

	do(t, c, http.MethodPost, ts.URL+"/api/machine/water", map[string]any{"litres": 1.0})
	do(t, c, http.MethodPost, ts.URL+"/api/machine/beans", map[string]any{"spoons": 5})
	do(t, c, http.MethodPost, ts.URL+"/api/machine/espresso", nil)

	resp := do(t, c, http.MethodGet, ts.URL+"/api/production/daily?days=3", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	points, ok := decodeBody(t, resp)["points"].([]any)
	require.True(t, ok)
	require.Len(t, points, 3)

	today, ok := points[2].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 1.0, today["espressos"])
	assert.InDelta(t, 0.05, today["litres"], 1e-9)
}

func TestAuthRequired(t *testing.T) {
	ts := httptest.NewServer(newServer(t).Handler())
	t.Cleanup(ts.Close)

	resp := do(t, http.DefaultClient, http.MethodGet, ts.URL+"/api/machine/status", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = do(t, http.DefaultClient, http.MethodGet, ts.URL+"/api/production/daily", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Health and auth config stay public.
	resp = do(t, http.DefaultClient, http.MethodGet, ts.URL+"/api/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.DefaultClient, http.MethodGet, ts.URL+"/api/auth/config", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, decodeBody(t, resp)["sso_enabled"])
}

func TestSetupLoginLogout(t *testing.T) {
	ts := httptest.NewServer(newServer(t).Handler())
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	c := &http.Client{Jar: jar}

	creds := map[string]any{"username": "barista", "password": "crema"}

	resp := do(t, c, http.MethodPost, ts.URL+"/api/auth/setup", creds)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, c, http.MethodPost, ts.URL+"/api/auth/setup", creds)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = do(t, c, http.MethodPost, ts.URL+"/api/auth/login", map[string]any{"username": "barista", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = do(t, c, http.MethodPost, ts.URL+"/api/auth/login", creds)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, c, http.MethodGet, ts.URL+"/api/machine/status", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, c, http.MethodPost, ts.URL+"/api/auth/logout", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, c, http.MethodGet, ts.URL+"/api/machine/status", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSetupRejectsEmptyCredentials(t *testing.T) {
	ts := newTestServer(t)

	resp := do(t, http.DefaultClient, http.MethodPost, ts.URL+"/api/auth/setup", map[string]any{"username": "", "password": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestForwardAuthHeader(t *testing.T) {
	ts := httptest.NewServer(newServer(t).Handler())
	t.Cleanup(ts.Close)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/machine/status", nil)
	require.NoError(t, err)
	req.Header.Set("Remote-User", "proxy-user")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSSODisabled(t *testing.T) {
	ts := newTestServer(t)

	resp := do(t, http.DefaultClient, http.MethodGet, ts.URL+"/api/auth/sso/login", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, http.DefaultClient, http.MethodGet, ts.URL+"/api/auth/sso/callback?state=x&code=y", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRequestIDHeader(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		in   string
		keep bool
	}{
		{"valid id is propagated", "abc-123_XYZ", true},
		{"missing id is generated", "", false},
		{"invalid id is replaced", "bad id!", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/health", nil)
			require.NoError(t, err)
			if tc.in != "" {
				req.Header.Set(adapthttp.RequestIDHeader, tc.in)
			}

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close() //nolint:errcheck

			got := resp.Header.Get(adapthttp.RequestIDHeader)
			require.NotEmpty(t, got)
			if tc.keep {
				assert.Equal(t, tc.in, got)
			} else {
				assert.NotEqual(t, tc.in, got)
			}
		})
	}
}
