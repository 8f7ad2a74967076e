package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/MachineKe/spa-console/internal/config"
	"github.com/MachineKe/spa-console/internal/guard"
	"github.com/MachineKe/spa-console/internal/identity"
	"github.com/MachineKe/spa-console/internal/policy"
	"github.com/MachineKe/spa-console/internal/session"
	"github.com/MachineKe/spa-console/pkg/sdk"
)

// CookieStoreBinder returns a StoreBinder that resolves the request's session
// cookie to its stored credential. A request without the cookie binds to an
// empty store, which the guard treats as unauthenticated.
func CookieStoreBinder(sessions *session.Repository, cookieName string) guard.StoreBinder {
	return func(r *http.Request) session.Store {
		id := ""
		if c, err := r.Cookie(cookieName); err == nil {
			id = c.Value
		}
		return session.Bind(r.Context(), sessions, id)
	}
}

func setSessionCookie(w http.ResponseWriter, cfg config.CookieConfig, sessionID string) {
	cookie := &http.Cookie{
		Name:     cfg.Name,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if cfg.MaxAge > 0 {
		cookie.MaxAge = int(cfg.MaxAge.Seconds())
	}
	http.SetCookie(w, cookie)
}

func clearSessionCookie(w http.ResponseWriter, cfg config.CookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.Name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verify2FARequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type loginResponse struct {
	Require2FA bool      `json:"require2fa,omitempty"`
	Role       string    `json:"role,omitempty"`
	Home       string    `json:"home,omitempty"`
	User       *sdk.User `json:"user,omitempty"`
}

// HandleLogin proxies the credential check to the business API and, when it
// yields a token, establishes a browser session:
//  1. Forward email/password to the API.
//  2. If the account requires a second factor, report require2fa and stop.
//     No token exists yet, so no session row and no cookie are created.
//  3. Otherwise persist the token in a new session row and hand the browser
//     the opaque session id as a cookie, never the token itself.
func HandleLogin(api *sdk.Client, sessions *session.Repository, table *policy.Table, cookie config.CookieConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Email == "" {
			respondError(w, http.StatusBadRequest, ErrEmailRequired.Error())
			return
		}
		if req.Password == "" {
			respondError(w, http.StatusBadRequest, ErrPasswordRequired.Error())
			return
		}

		result, err := api.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			respondUpstreamError(w, err)
			return
		}
		if result.Require2FA {
			respondJSON(w, http.StatusOK, loginResponse{Require2FA: true})
			return
		}
		establishSession(w, r, sessions, table, cookie, result)
	}
}

// HandleVerify2FA completes a two-step login. The token only exists once the
// API accepts the code, so this is the first point a session can be created.
func HandleVerify2FA(api *sdk.Client, sessions *session.Repository, table *policy.Table, cookie config.CookieConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req verify2FARequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Email == "" {
			respondError(w, http.StatusBadRequest, ErrEmailRequired.Error())
			return
		}
		if req.Code == "" {
			respondError(w, http.StatusBadRequest, ErrCodeRequired.Error())
			return
		}

		result, err := api.Verify2FA(r.Context(), req.Email, req.Code)
		if err != nil {
			respondUpstreamError(w, err)
			return
		}
		establishSession(w, r, sessions, table, cookie, result)
	}
}

func establishSession(w http.ResponseWriter, r *http.Request, sessions *session.Repository, table *policy.Table, cookie config.CookieConfig, result *sdk.LoginResult) {
	if result.Token == "" {
		respondError(w, http.StatusBadGateway, "login reply carried no token")
		return
	}

	sess, err := sessions.Create(r.Context(), result.Token)
	if err != nil {
		log.Printf("create session: %v", err)
		respondError(w, http.StatusInternalServerError, "could not establish session")
		return
	}
	setSessionCookie(w, cookie, sess.ID)

	role := policy.Normalize(result.EffectiveRole())
	home, err := table.HomeRouteFor(role)
	if err != nil {
		// Unknown roles still get a session; they land on the public root
		// and the guard keeps them out of every gated area.
		home = "/"
	}
	respondJSON(w, http.StatusOK, loginResponse{
		Role: role,
		Home: home,
		User: result.User,
	})
}

// HandleLogout drops the browser session row and expires the cookie. The
// resolver cache entry for the token is invalidated so a replayed session id
// cannot ride a still-warm cache entry.
func HandleLogout(sessions *session.Repository, resolver *identity.Resolver, cookie config.CookieConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(cookie.Name)
		if err != nil {
			respondError(w, http.StatusUnauthorized, ErrNoSession.Error())
			return
		}

		if sess, err := sessions.Get(r.Context(), c.Value); err == nil && sess.Token != "" {
			resolver.Invalidate(sess.Token)
		}
		if err := sessions.Delete(r.Context(), c.Value); err != nil && !errors.Is(err, session.ErrSessionNotFound) {
			log.Printf("delete session %s: %v", c.Value, err)
		}
		clearSessionCookie(w, cookie)
		respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

type whoAmIResponse struct {
	User *identity.Principal `json:"user"`
	Home string              `json:"home"`
}

// HandleWhoAmI resolves the session's credential to a principal and reports
// it together with the role's home route.
func HandleWhoAmI(resolver *identity.Resolver, table *policy.Table, bind guard.StoreBinder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := bind(r).Get()
		if !ok {
			respondError(w, http.StatusUnauthorized, ErrNoSession.Error())
			return
		}
		principal, err := resolver.Resolve(r.Context(), token)
		if err != nil {
			if errors.Is(err, identity.ErrUnauthenticated) || errors.Is(err, identity.ErrInvalidCredential) {
				respondError(w, http.StatusUnauthorized, ErrNoSession.Error())
				return
			}
			respondUpstreamError(w, err)
			return
		}
		home, err := table.HomeRouteFor(principal.Role)
		if err != nil {
			home = "/"
		}
		respondJSON(w, http.StatusOK, whoAmIResponse{User: principal, Home: home})
	}
}

type languageBody struct {
	Language string `json:"language"`
}

// HandleGetLanguage reports the session's stored language preference.
func HandleGetLanguage(sessions *session.Repository, cookie config.CookieConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(cookie.Name)
		if err != nil {
			respondError(w, http.StatusUnauthorized, ErrNoSession.Error())
			return
		}
		sess, err := sessions.Get(r.Context(), c.Value)
		if err != nil {
			respondError(w, http.StatusUnauthorized, ErrNoSession.Error())
			return
		}
		respondJSON(w, http.StatusOK, languageBody{Language: sess.Language})
	}
}

// HandleSetLanguage stores the language preference on the session row. The
// preference survives logout so the login page keeps the visitor's language.
func HandleSetLanguage(sessions *session.Repository, cookie config.CookieConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(cookie.Name)
		if err != nil {
			respondError(w, http.StatusUnauthorized, ErrNoSession.Error())
			return
		}
		var body languageBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := sessions.SetLanguage(r.Context(), c.Value, body.Language); err != nil {
			if errors.Is(err, session.ErrSessionNotFound) {
				respondError(w, http.StatusUnauthorized, ErrNoSession.Error())
				return
			}
			log.Printf("set language on session %s: %v", c.Value, err)
			respondError(w, http.StatusInternalServerError, "internal error")
			return
		}
		respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

type registerRequest struct {
	sdk.RegisterInput
	Employee bool `json:"employee,omitempty"`
}

// HandleRegister proxies account sign-up. Registration never yields a
// session; the new account logs in through the normal flow.
func HandleRegister(api *sdk.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		var err error
		if req.Employee {
			err = api.RegisterEmployee(r.Context(), req.RegisterInput)
		} else {
			err = api.Register(r.Context(), req.RegisterInput)
		}
		if err != nil {
			respondUpstreamError(w, err)
			return
		}
		respondJSON(w, http.StatusCreated, map[string]bool{"ok": true})
	}
}
