package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MachineKe/spa-console/pkg/sdk"
)

// Public endpoints proxy the anonymous parts of the platform API: marketing
// page content, the tenant directory, public service listings, bookings and
// gift card orders. No credential is ever attached.

// HandlePageContent serves CMS content for a named page.
func HandlePageContent(api *sdk.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := chi.URLParam(r, "page")
		content, err := api.PageContent(r.Context(), page)
		if err != nil {
			if sdk.IsNotFound(err) {
				respondError(w, http.StatusNotFound, "no such page")
				return
			}
			respondUpstreamError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, content)
	}
}

// HandlePublicTenants lists tenants visible in the public directory.
func HandlePublicTenants(api *sdk.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenants, err := api.PublicTenants(r.Context())
		if err != nil {
			respondUpstreamError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string][]sdk.Tenant{"tenants": tenants})
	}
}

// HandleRegisterTenant proxies new tenant sign-up.
func HandleRegisterTenant(api *sdk.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input sdk.TenantRegistration
		if err := decodeBody(r, &input); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := api.RegisterTenant(r.Context(), input); err != nil {
			respondUpstreamError(w, err)
			return
		}
		respondJSON(w, http.StatusCreated, map[string]bool{"ok": true})
	}
}

// HandlePublicServices lists bookable services, optionally scoped to one
// tenant via the tenantId query parameter.
func HandlePublicServices(api *sdk.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services, err := api.PublicServices(r.Context(), r.URL.Query().Get("tenantId"))
		if err != nil {
			respondUpstreamError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string][]sdk.Service{"services": services})
	}
}

// HandlePublicBooking accepts a booking from an anonymous visitor.
func HandlePublicBooking(api *sdk.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var booking sdk.Booking
		if err := decodeBody(r, &booking); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := api.CreateBooking(r.Context(), booking); err != nil {
			respondUpstreamError(w, err)
			return
		}
		respondJSON(w, http.StatusCreated, map[string]bool{"ok": true})
	}
}

// HandleGiftCardOrder accepts a gift card purchase from an anonymous visitor.
func HandleGiftCardOrder(api *sdk.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var order sdk.GiftCardOrder
		if err := decodeBody(r, &order); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := api.OrderGiftCard(r.Context(), order); err != nil {
			respondUpstreamError(w, err)
			return
		}
		respondJSON(w, http.StatusCreated, map[string]bool{"ok": true})
	}
}
