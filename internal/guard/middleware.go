package guard

import (
	"encoding/json"
	"net/http"

	"github.com/MachineKe/spa-console/internal/session"
	"github.com/MachineKe/spa-console/internal/telemetry"
)

// StoreBinder produces the session store view for one request. The console
// server binds the session cookie to its repository here; tests substitute
// an in-memory store.
type StoreBinder func(r *http.Request) session.Store

// Middleware wraps a protected subtree with the guard evaluation.
//
// Redirecting decisions answer 302 to the login route for page requests
// and 401 JSON for API requests (an XHR cannot follow a login redirect
// usefully). Unauthorized decisions answer 403 with an explicit message.
// Authorized requests proceed with the principal on the context.
func (g *Guard) Middleware(bind StoreBinder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := g.Evaluate(r.Context(), bind(r), r.URL.Path)
			telemetry.CountGuardDecision(r.Context(), r.URL.Path, decision.State.String())

			switch decision.State {
			case StateRedirecting:
				if WantsJSON(r) {
					writeJSONError(w, http.StatusUnauthorized, "authentication required")
					return
				}
				http.Redirect(w, r, decision.RedirectTo, http.StatusFound)
			case StateUnauthorized:
				writeJSONError(w, http.StatusForbidden, "Unauthorized: your role does not permit this area")
			case StateAuthorized:
				ctx := WithPrincipal(r.Context(), decision.Principal)
				next.ServeHTTP(w, r.WithContext(ctx))
			default:
				writeJSONError(w, http.StatusInternalServerError, "guard evaluation incomplete")
			}
		})
	}
}

// WantsJSON reports whether the request came from script rather than a
// page navigation. Such callers get JSON errors instead of redirects.
func WantsJSON(r *http.Request) bool {
	return r.Header.Get("Accept") == "application/json" ||
		r.Header.Get("X-Requested-With") == "XMLHttpRequest"
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
