package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/grantbridge/internal/config"
)

type acme struct {
	srv      *httptest.Server
	app      *App
	publicID string
	secret   string
	session  string
}

// newAcme levanta el servicio completo sobre SQLite con el client "Acme",
// su redirect y el servicio acme_api habilitado.
func newAcme(t *testing.T, mutate func(*config.Config)) *acme {
	t.Helper()
	ctx := context.Background()

	cfg := config.Default()
	cfg.Storage.DSN = filepath.Join(t.TempDir(), "grantbridge.db")
	cfg.Session.Secret = strings.Repeat("s", 32)
	cfg.Metrics.Enabled = true
	cfg.Sweeper.Disabled = true
	if mutate != nil {
		mutate(cfg)
	}

	conn, err := OpenStore(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	app, err := Build(cfg, conn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	client, err := app.Registry.CreateClient(ctx, "Acme")
	require.NoError(t, err)
	_, err = app.Registry.AddRedirect(ctx, client.ID, "https://acme.example/cb")
	require.NoError(t, err)
	issued, err := app.Registry.AddSecret(ctx, client.ID)
	require.NoError(t, err)
	_, err = conn.Services().Create(ctx, "acme_api", "Acme API", true)
	require.NoError(t, err)

	sess, err := app.Sessions.Sign("user-42", false, time.Hour)
	require.NoError(t, err)

	srv := httptest.NewServer(app.Handler)
	t.Cleanup(srv.Close)
	return &acme{srv: srv, app: app, publicID: issued.PublicID, secret: issued.Secret, session: sess}
}

func noRedirects() *http.Client {
	return &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}
}

func (a *acme) authorize(t *testing.T, token string) *http.Response {
	t.Helper()
	q := url.Values{
		"response_type": {"code"},
		"client_id":     {a.publicID},
		"redirect_uri":  {"https://acme.example/cb"},
		"scope":         {"acme_api"},
		"state":         {"xyz"},
	}
	req, err := http.NewRequest(http.MethodGet, a.srv.URL+"/oauth2/authorize?"+q.Encode(), nil)
	require.NoError(t, err)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: a.app.Sessions.CookieName(), Value: token})
	}
	resp, err := noRedirects().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (a *acme) exchange(t *testing.T, form url.Values) (*http.Response, map[string]string) {
	t.Helper()
	resp, err := http.PostForm(a.srv.URL+"/oauth2/token", form)
	require.NoError(t, err)
	defer resp.Body.Close()
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp, body
}

func (a *acme) codeFrom(t *testing.T, resp *http.Response) string {
	t.Helper()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "https://acme.example/cb", loc.Scheme+"://"+loc.Host+loc.Path)
	return loc.Query().Get("code")
}

func TestAcme_EndToEnd(t *testing.T) {
	a := newAcme(t, nil)

	resp := a.authorize(t, a.session)
	code := a.codeFrom(t, resp)
	loc, _ := url.Parse(resp.Header.Get("Location"))
	assert.GreaterOrEqual(t, len(code), 30)
	assert.Equal(t, "xyz", loc.Query().Get("state"))

	form := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"redirect_uri":  {"https://acme.example/cb"},
		"client_id":     {a.publicID},
		"client_secret": {a.secret},
	}
	tokResp, body := a.exchange(t, form)
	require.Equal(t, http.StatusOK, tokResp.StatusCode)
	assert.Equal(t, "bearer", body["token_type"])
	assert.NotEmpty(t, body["access_token"])
	assert.Contains(t, tokResp.Header.Get("Cache-Control"), "no-store")
	assert.Equal(t, "no-cache", tokResp.Header.Get("Pragma"))

	again, body := a.exchange(t, form)
	assert.Equal(t, http.StatusBadRequest, again.StatusCode)
	assert.Equal(t, "invalid_token", body["code"])
}

func TestAcme_BasicAuthAndJSON(t *testing.T) {
	a := newAcme(t, nil)
	code := a.codeFrom(t, a.authorize(t, a.session))

	payload := `{"grant_type":"authorization_code","code":"` + code + `","redirect_uri":"https://acme.example/cb"}`
	req, err := http.NewRequest(http.MethodPost, a.srv.URL+"/oauth2/token", strings.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(a.publicID, a.secret)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "bearer", body["token_type"])
}

func TestAcme_TokenErrors(t *testing.T) {
	a := newAcme(t, nil)

	resp, body := a.exchange(t, url.Values{"grant_type": {"authorization_code"}, "code": {"x"}, "redirect_uri": {"https://acme.example/cb"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "missing_parameter", body["code"])

	resp, body = a.exchange(t, url.Values{
		"grant_type": {"password"}, "code": {"x"}, "redirect_uri": {"https://acme.example/cb"},
		"client_id": {a.publicID}, "client_secret": {a.secret},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "unsupported_grant_type", body["code"])

	resp, body = a.exchange(t, url.Values{
		"grant_type": {"authorization_code"}, "code": {"x"}, "redirect_uri": {"https://acme.example/cb"},
		"client_id": {a.publicID}, "client_secret": {"wrong"},
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "invalid_client", body["code"])

	get, err := http.Get(a.srv.URL + "/oauth2/token")
	require.NoError(t, err)
	_ = get.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, get.StatusCode)
}

func TestAcme_SessionGate(t *testing.T) {
	t.Run("anonymous without login url", func(t *testing.T) {
		a := newAcme(t, nil)
		resp := a.authorize(t, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("anonymous with login url", func(t *testing.T) {
		a := newAcme(t, func(c *config.Config) { c.Session.LoginURL = "https://login.example/start" })
		resp := a.authorize(t, "")
		require.Equal(t, http.StatusFound, resp.StatusCode)
		loc, err := url.Parse(resp.Header.Get("Location"))
		require.NoError(t, err)
		assert.Equal(t, "login.example", loc.Host)
		assert.Contains(t, loc.Query().Get("return_to"), "/oauth2/authorize?")
	})

	t.Run("guest is logged out", func(t *testing.T) {
		a := newAcme(t, nil)
		guest, err := a.app.Sessions.Sign("guest", true, time.Hour)
		require.NoError(t, err)

		resp := a.authorize(t, guest)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		var cleared bool
		for _, c := range resp.Cookies() {
			if c.Name == a.app.Sessions.CookieName() && c.MaxAge < 0 {
				cleared = true
			}
		}
		assert.True(t, cleared)
	})
}

func TestAcme_VerifyExchangeRedirect(t *testing.T) {
	a := newAcme(t, func(c *config.Config) { c.OAuth.VerifyExchangeRedirect = true })
	code := a.codeFrom(t, a.authorize(t, a.session))

	resp, body := a.exchange(t, url.Values{
		"grant_type": {"authorization_code"}, "code": {code}, "redirect_uri": {"https://acme.example/other"},
		"client_id": {a.publicID}, "client_secret": {a.secret},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_redirect", body["code"])
}

func TestAcme_DisabledServiceStopsIssuing(t *testing.T) {
	a := newAcme(t, func(c *config.Config) { c.WebService.CatalogCacheTTL = time.Minute })
	a.codeFrom(t, a.authorize(t, a.session))

	require.NoError(t, a.app.Store.Services().SetEnabled(context.Background(), "acme_api", false))

	resp := a.authorize(t, a.session)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("Location"))
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "service_unavailable", body["code"])
}

func TestAcme_ReadyzAndMetrics(t *testing.T) {
	a := newAcme(t, nil)

	resp, err := http.Get(a.srv.URL + "/readyz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_ = a.codeFrom(t, a.authorize(t, a.session))

	resp, err = http.Get(a.srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	buf := new(strings.Builder)
	_, _ = io.Copy(buf, resp.Body)
	assert.Contains(t, buf.String(), "grant_codes_issued_total 1")
}
