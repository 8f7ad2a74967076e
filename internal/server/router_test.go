package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MachineKe/spa-console/internal/config"
	"github.com/MachineKe/spa-console/internal/db/bunx"
	"github.com/MachineKe/spa-console/internal/guard"
	"github.com/MachineKe/spa-console/internal/identity"
	"github.com/MachineKe/spa-console/internal/policy"
	"github.com/MachineKe/spa-console/internal/session"
	"github.com/MachineKe/spa-console/pkg/sdk"
)

// fakeUpstream simulates the platform API behind the console.
func fakeUpstream(t *testing.T) *httptest.Server {
	t.Helper()

	tokens := map[string]sdk.User{
		"tok-admin": {ID: "a1", Name: "Ada", Email: "ada@example.com", Role: "admin", TenantID: "t1"},
		"tok-emp":   {ID: "e1", Name: "Eve", Email: "eve@example.com", Role: "employee", TenantID: "t1"},
	}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			switch body["email"] {
			case "ada@example.com":
				user := tokens["tok-admin"]
				json.NewEncoder(w).Encode(sdk.LoginResult{Token: "tok-admin", Role: "admin", User: &user})
			case "eve@example.com":
				user := tokens["tok-emp"]
				json.NewEncoder(w).Encode(sdk.LoginResult{Token: "tok-emp", User: &user})
			case "mfa@example.com":
				json.NewEncoder(w).Encode(sdk.LoginResult{Require2FA: true})
			default:
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error": "invalid credentials"}`))
			}
		case "/auth/2fa":
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			if body["code"] != "123456" {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error": "invalid code"}`))
				return
			}
			user := tokens["tok-admin"]
			json.NewEncoder(w).Encode(sdk.LoginResult{Token: "tok-admin", Role: "admin", User: &user})
		case "/auth/me":
			auth := r.Header.Get("Authorization")
			for token, user := range tokens {
				if auth == "Bearer "+token {
					json.NewEncoder(w).Encode(map[string]sdk.User{"user": user})
					return
				}
			}
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": "invalid token"}`))
		case "/tenants/me":
			json.NewEncoder(w).Encode(map[string]sdk.Tenant{"tenant": {ID: "t1", Name: "Mint Spa"}})
		case "/sales/summary":
			json.NewEncoder(w).Encode(sdk.SalesSummary{Total: 120, Count: 3})
		case "/sales/recent":
			w.Write([]byte(`{"sales": [{"id": "s1"}]}`))
		case "/products/top-selling":
			w.Write([]byte(`{"products": [{"id": "p1", "name": "Oil"}]}`))
		case "/employees/e1/attendance":
			w.Write([]byte(`{"attendance": [{"id": "at1"}]}`))
		case "/employees/e1/leave-requests":
			w.Write([]byte(`{"leaves": []}`))
		case "/pagecontent/home":
			w.Write([]byte(`{"page": "home", "sections": []}`))
		case "/notify/email":
			var notification sdk.EmailNotification
			json.NewDecoder(r.Body).Decode(&notification)
			if notification.To == "" {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"error": "recipient required"}`))
				return
			}
			w.Write([]byte(`{"ok": true}`))
		default:
			http.NotFound(w, r)
		}
	}))
}

type consoleFixture struct {
	server   *httptest.Server
	client   *http.Client
	sessions *session.Repository
}

func newConsoleFixture(t *testing.T) *consoleFixture {
	t.Helper()

	upstream := fakeUpstream(t)
	t.Cleanup(upstream.Close)

	db, err := bunx.NewDB("file::memory:?cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { bunx.Close(db) })

	sessions := session.NewRepository(db)
	require.NoError(t, sessions.Init(context.Background()))

	api := sdk.NewClient(upstream.URL, sdk.WithTimeout(5*time.Second))
	resolver := identity.NewResolver(api, identity.WithCacheTTL(time.Minute))
	table, err := policy.NewTable()
	require.NoError(t, err)

	cfg := &config.Config{
		APIBaseURL:        upstream.URL,
		ServerAddr:        "localhost:0",
		DatabaseURL:       "file::memory:?cache=shared",
		RequestTimeout:    5 * time.Second,
		PrincipalCacheTTL: time.Minute,
		Cookie:            config.CookieConfig{Name: "spaconsole_sid", Secure: false},
	}

	router := NewRouter(RouterOptions{
		API:      api,
		Sessions: sessions,
		Resolver: resolver,
		Policy:   table,
		Guard:    guard.New(resolver, table, "/login"),
		Cfg:      cfg,
	})

	console := httptest.NewServer(router)
	t.Cleanup(console.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return &consoleFixture{server: console, client: client, sessions: sessions}
}

func (f *consoleFixture) postJSON(t *testing.T, path string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := f.client.Post(f.server.URL+path, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func (f *consoleFixture) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := f.client.Get(f.server.URL + path)
	require.NoError(t, err)
	return resp
}

func (f *consoleFixture) login(t *testing.T, email string) loginResponse {
	t.Helper()
	resp := f.postJSON(t, "/login", map[string]string{"email": email, "password": "pw"})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var reply loginResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&reply))
	return reply
}

func TestGuardedAreaRedirectsWithoutSession(t *testing.T) {
	f := newConsoleFixture(t)

	for _, path := range []string{"/dashboard", "/superadmin", "/self-service", "/customer"} {
		resp := f.get(t, path)
		resp.Body.Close()
		assert.Equal(t, http.StatusFound, resp.StatusCode, "path %s", path)
		assert.Equal(t, "/login", resp.Header.Get("Location"), "path %s", path)
	}
}

func TestLoginSetsCookieAndReportsHome(t *testing.T) {
	f := newConsoleFixture(t)

	reply := f.login(t, "ada@example.com")
	assert.Equal(t, "admin", reply.Role)
	assert.Equal(t, "/dashboard", reply.Home)
	require.NotNil(t, reply.User)
	assert.Equal(t, "a1", reply.User.ID)

	// The cookie now opens the admin area.
	resp := f.get(t, "/dashboard")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLoginNeverEchoesToken(t *testing.T) {
	f := newConsoleFixture(t)

	resp := f.postJSON(t, "/login", map[string]string{"email": "ada@example.com", "password": "pw"})
	defer resp.Body.Close()

	var raw map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
	_, present := raw["token"]
	assert.False(t, present, "the browser reply must not carry the upstream token")

	for _, c := range resp.Cookies() {
		assert.NotContains(t, c.Value, "tok-", "cookie must hold an opaque id, not the token")
	}
}

func TestEmployeeRoleSeparation(t *testing.T) {
	f := newConsoleFixture(t)

	reply := f.login(t, "eve@example.com")
	assert.Equal(t, "employee", reply.Role)
	assert.Equal(t, "/self-service", reply.Home)

	resp := f.get(t, "/self-service")
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.get(t, "/dashboard/employee")
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.get(t, "/dashboard")
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = f.get(t, "/superadmin")
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestBadCredentialsPassUpstreamStatusThrough(t *testing.T) {
	f := newConsoleFixture(t)

	resp := f.postJSON(t, "/login", map[string]string{"email": "nobody@example.com", "password": "pw"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var body errorBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "invalid credentials", body.Error)
}

func TestTwoFactorFlowDefersSession(t *testing.T) {
	f := newConsoleFixture(t)

	resp := f.postJSON(t, "/login", map[string]string{"email": "mfa@example.com", "password": "pw"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var reply loginResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&reply))
	resp.Body.Close()
	assert.True(t, reply.Require2FA)
	assert.Empty(t, resp.Cookies(), "no session may exist before the second factor")

	// Still locked out between the two steps.
	locked := f.get(t, "/dashboard")
	locked.Body.Close()
	assert.Equal(t, http.StatusFound, locked.StatusCode)

	resp = f.postJSON(t, "/login/2fa", map[string]string{"email": "mfa@example.com", "code": "123456"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	opened := f.get(t, "/dashboard")
	opened.Body.Close()
	assert.Equal(t, http.StatusOK, opened.StatusCode)
}

func TestLogoutEndsSession(t *testing.T) {
	f := newConsoleFixture(t)
	f.login(t, "ada@example.com")

	resp := f.postJSON(t, "/logout", struct{}{})
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	after := f.get(t, "/dashboard")
	after.Body.Close()
	assert.Equal(t, http.StatusFound, after.StatusCode)
}

func TestWhoAmI(t *testing.T) {
	f := newConsoleFixture(t)
	f.login(t, "ada@example.com")

	resp := f.get(t, "/api/me")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var reply whoAmIResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&reply))
	require.NotNil(t, reply.User)
	assert.Equal(t, "a1", reply.User.ID)
	assert.Equal(t, "/dashboard", reply.Home)
}

func TestWhoAmIWithoutSession(t *testing.T) {
	f := newConsoleFixture(t)

	resp := f.get(t, "/api/me")
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLanguagePreference(t *testing.T) {
	f := newConsoleFixture(t)
	f.login(t, "ada@example.com")

	req, err := http.NewRequest(http.MethodPut, f.server.URL+"/api/language", bytes.NewReader([]byte(`{"language": "sw"}`)))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := f.client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	get := f.get(t, "/api/language")
	defer get.Body.Close()
	var body languageBody
	require.NoError(t, json.NewDecoder(get.Body).Decode(&body))
	assert.Equal(t, "sw", body.Language)
}

func TestAdminNotifyRelaysEmail(t *testing.T) {
	f := newConsoleFixture(t)
	f.login(t, "ada@example.com")

	resp := f.postJSON(t, "/dashboard/notify", map[string]string{
		"to":      "eve@example.com",
		"subject": "Schedule change",
		"body":    "Your shift moved to Friday.",
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
}

func TestAdminNotifyRequiresRecipient(t *testing.T) {
	f := newConsoleFixture(t)
	f.login(t, "ada@example.com")

	resp := f.postJSON(t, "/dashboard/notify", map[string]string{"body": "missing envelope"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUnknownPageContentIs404(t *testing.T) {
	f := newConsoleFixture(t)

	resp := f.get(t, "/pagecontent/missing")
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body errorBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "no such page", body.Error)
}

func TestPublicEndpointNeedsNoSession(t *testing.T) {
	f := newConsoleFixture(t)

	resp := f.get(t, "/pagecontent/home")
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSelfServicePanels(t *testing.T) {
	f := newConsoleFixture(t)
	f.login(t, "eve@example.com")

	resp := f.get(t, "/self-service")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var reply panelReply
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&reply))
	assert.NotEmpty(t, reply.RequestID)
}

func TestHealth(t *testing.T) {
	f := newConsoleFixture(t)

	resp := f.get(t, "/health")
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
