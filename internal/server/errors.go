package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/MachineKe/spa-console/pkg/sdk"
)

var (
	// ErrEmailRequired is returned when a login request is missing the email
	ErrEmailRequired = errors.New("email is required")

	// ErrPasswordRequired is returned when a login request is missing the password
	ErrPasswordRequired = errors.New("password is required")

	// ErrCodeRequired is returned when a 2FA verification is missing the code
	ErrCodeRequired = errors.New("code is required")

	// ErrNoSession is returned when a request carries no usable session
	ErrNoSession = errors.New("no active session")
)

type errorBody struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorBody{Error: msg})
}

func decodeBody(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// respondUpstreamError translates an SDK failure into a console response.
// API errors keep their upstream status and message so the browser sees the
// same shape it would have gotten talking to the API directly. Transport
// failures become gateway errors.
func respondUpstreamError(w http.ResponseWriter, err error) {
	var apiErr *sdk.APIError
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = http.StatusText(apiErr.Status)
		}
		respondError(w, apiErr.Status, msg)
		return
	}
	if errors.Is(err, sdk.ErrTimedOut) {
		respondError(w, http.StatusGatewayTimeout, "upstream request timed out")
		return
	}
	var transportErr *sdk.TransportError
	if errors.As(err, &transportErr) {
		respondError(w, http.StatusBadGateway, "upstream unavailable")
		return
	}
	log.Printf("upstream request failed: %v", err)
	respondError(w, http.StatusInternalServerError, "internal error")
}
