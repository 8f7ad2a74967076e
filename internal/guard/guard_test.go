package guard

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MachineKe/spa-console/internal/identity"
	"github.com/MachineKe/spa-console/internal/policy"
	"github.com/MachineKe/spa-console/internal/session"
	"github.com/MachineKe/spa-console/pkg/sdk"
)

// fakeCurrentUserAPI resolves tokens from a fixed map.
type fakeCurrentUserAPI struct {
	users map[string]*sdk.User
	err   error
	calls int
}

func (f *fakeCurrentUserAPI) CurrentUser(ctx context.Context, token string) (*sdk.User, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	user, ok := f.users[token]
	if !ok {
		return nil, &sdk.APIError{Status: http.StatusUnauthorized, Message: "invalid token"}
	}
	return user, nil
}

func newTestGuard(t *testing.T, api identity.CurrentUserAPI) *Guard {
	t.Helper()
	table, err := policy.NewTable()
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	return New(identity.NewResolver(api), table, "/login")
}

func storeWith(t *testing.T, token string) session.Store {
	t.Helper()
	store := session.NewMemStore()
	if token != "" {
		if err := store.Set(token); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}
	return store
}

func TestEvaluateNoCredentialRedirects(t *testing.T) {
	g := newTestGuard(t, &fakeCurrentUserAPI{})

	decision := g.Evaluate(context.Background(), storeWith(t, ""), "/dashboard")
	if decision.State != StateRedirecting {
		t.Fatalf("state = %v, want %v", decision.State, StateRedirecting)
	}
	if decision.RedirectTo != "/login" {
		t.Errorf("RedirectTo = %q, want /login", decision.RedirectTo)
	}
	if decision.Principal != nil {
		t.Error("no principal may be attached to a redirect decision")
	}
}

func TestEvaluateInvalidCredentialRedirects(t *testing.T) {
	g := newTestGuard(t, &fakeCurrentUserAPI{users: map[string]*sdk.User{}})

	decision := g.Evaluate(context.Background(), storeWith(t, "expired-token"), "/dashboard")
	if decision.State != StateRedirecting {
		t.Fatalf("state = %v, want %v", decision.State, StateRedirecting)
	}
}

func TestEvaluateWrongRoleIsUnauthorized(t *testing.T) {
	api := &fakeCurrentUserAPI{users: map[string]*sdk.User{
		"tok-emp": {ID: "e1", Name: "Eve", Role: "employee"},
	}}
	g := newTestGuard(t, api)

	decision := g.Evaluate(context.Background(), storeWith(t, "tok-emp"), "/dashboard")
	if decision.State != StateUnauthorized {
		t.Fatalf("state = %v, want %v", decision.State, StateUnauthorized)
	}
	if decision.RedirectTo != "" {
		t.Errorf("an unauthorized decision must not redirect, got %q", decision.RedirectTo)
	}
}

func TestEvaluateAuthorized(t *testing.T) {
	api := &fakeCurrentUserAPI{users: map[string]*sdk.User{
		"tok-emp": {ID: "e1", Name: "Eve", Role: "employee"},
	}}
	g := newTestGuard(t, api)

	for _, route := range []string{"/self-service", "/self-service/salary", "/dashboard/employee"} {
		decision := g.Evaluate(context.Background(), storeWith(t, "tok-emp"), route)
		if decision.State != StateAuthorized {
			t.Errorf("route %s: state = %v, want %v", route, decision.State, StateAuthorized)
			continue
		}
		if decision.Principal == nil || decision.Principal.ID != "e1" {
			t.Errorf("route %s: principal missing or wrong: %+v", route, decision.Principal)
		}
	}
}

func TestEvaluateResolutionFailureDeniesAccess(t *testing.T) {
	// An upstream outage is not a reason to show a dashboard.
	api := &fakeCurrentUserAPI{err: fmt.Errorf("connection refused")}
	g := newTestGuard(t, api)

	decision := g.Evaluate(context.Background(), storeWith(t, "tok"), "/dashboard")
	if decision.State == StateAuthorized {
		t.Fatal("resolution failure must never authorize")
	}
	if decision.State != StateUnauthorized {
		t.Fatalf("state = %v, want %v", decision.State, StateUnauthorized)
	}
	if decision.Err == nil {
		t.Error("the decision should carry the resolution error")
	}
}

func TestEvaluateAfterClearRedirects(t *testing.T) {
	api := &fakeCurrentUserAPI{users: map[string]*sdk.User{
		"tok-admin": {ID: "a1", Role: "admin"},
	}}
	g := newTestGuard(t, api)
	store := storeWith(t, "tok-admin")

	decision := g.Evaluate(context.Background(), store, "/dashboard")
	if decision.State != StateAuthorized {
		t.Fatalf("before clear: state = %v, want %v", decision.State, StateAuthorized)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	decision = g.Evaluate(context.Background(), store, "/dashboard")
	if decision.State != StateRedirecting {
		t.Fatalf("after clear: state = %v, want %v", decision.State, StateRedirecting)
	}
}

func TestMiddlewareRedirectsBrowser(t *testing.T) {
	g := newTestGuard(t, &fakeCurrentUserAPI{})
	bind := func(r *http.Request) session.Store { return session.NewMemStore() }

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler must not run for an unauthenticated request")
	})
	handler := g.Middleware(bind)(next)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusFound)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location = %q, want /login", loc)
	}
}

func TestMiddlewareReturns401ForJSONClients(t *testing.T) {
	g := newTestGuard(t, &fakeCurrentUserAPI{})
	bind := func(r *http.Request) session.Store { return session.NewMemStore() }

	handler := g.Middleware(bind)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestMiddlewareInjectsPrincipal(t *testing.T) {
	api := &fakeCurrentUserAPI{users: map[string]*sdk.User{
		"tok-admin": {ID: "a1", Name: "Ada", Role: "admin"},
	}}
	g := newTestGuard(t, api)
	store := session.NewMemStore()
	if err := store.Set("tok-admin"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	bind := func(r *http.Request) session.Store { return store }

	var seen *identity.Principal
	handler := g.Middleware(bind)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = PrincipalFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if seen == nil || seen.ID != "a1" {
		t.Fatalf("principal not injected: %+v", seen)
	}
}

func TestMiddlewareForbidsWrongRole(t *testing.T) {
	api := &fakeCurrentUserAPI{users: map[string]*sdk.User{
		"tok-cust": {ID: "c1", Role: "customer"},
	}}
	g := newTestGuard(t, api)
	store := session.NewMemStore()
	if err := store.Set("tok-cust"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	bind := func(r *http.Request) session.Store { return store }

	handler := g.Middleware(bind)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler must not run for a forbidden request")
	}))

	req := httptest.NewRequest(http.MethodGet, "/superadmin", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestStateString(t *testing.T) {
	states := map[State]string{
		StateLoading:      "loading",
		StateRedirecting:  "redirecting",
		StateUnauthorized: "unauthorized",
		StateAuthorized:   "authorized",
	}
	for state, want := range states {
		if got := state.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", state, got, want)
		}
	}
}

func TestLoginPath(t *testing.T) {
	table, err := policy.NewTable()
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	resolver := identity.NewResolver(&fakeCurrentUserAPI{})

	g := New(resolver, table, "/signin")
	if got := g.LoginPath(); got != "/signin" {
		t.Errorf("LoginPath() = %q, want /signin", got)
	}

	g = New(resolver, table, "")
	if got := g.LoginPath(); got != "/login" {
		t.Errorf("LoginPath() with empty config = %q, want /login", got)
	}
}

func TestWantsJSON(t *testing.T) {
	page := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	if WantsJSON(page) {
		t.Error("a plain page request must not count as a JSON client")
	}

	accept := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	accept.Header.Set("Accept", "application/json")
	if !WantsJSON(accept) {
		t.Error("Accept: application/json must count as a JSON client")
	}

	xhr := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	xhr.Header.Set("X-Requested-With", "XMLHttpRequest")
	if !WantsJSON(xhr) {
		t.Error("X-Requested-With: XMLHttpRequest must count as a JSON client")
	}
}
