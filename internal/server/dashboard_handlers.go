package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/MachineKe/spa-console/internal/guard"
	"github.com/MachineKe/spa-console/internal/identity"
	"github.com/MachineKe/spa-console/internal/panel"
	"github.com/MachineKe/spa-console/pkg/sdk"
)

const (
	// loaderCacheSize caps the number of live panel loaders across all
	// sessions. Evicting a loader only forgets in-flight ordering for a
	// panel nobody has touched recently; the next request recreates it.
	loaderCacheSize = 1024
	loaderCacheTTL  = 30 * time.Minute
)

// Shell serves the role-gated dashboard areas. Handlers run behind the route
// guard, so the principal is always present in the request context.
//
// Panel data is fetched through per-session loaders: when a visitor changes
// a filter while the previous fetch is still in flight, the older response
// is discarded instead of overwriting the newer one.
type Shell struct {
	api       *sdk.Client
	resolver  *identity.Resolver
	bind      guard.StoreBinder
	loginPath string

	mu      sync.Mutex
	loaders *lru.LRU[string, *panel.Loader[any]]
}

// NewShell creates the dashboard shell. loginPath is where the browser is
// sent when the upstream credential turns out to be dead.
func NewShell(api *sdk.Client, resolver *identity.Resolver, bind guard.StoreBinder, loginPath string) *Shell {
	if loginPath == "" {
		loginPath = "/login"
	}
	return &Shell{
		api:       api,
		resolver:  resolver,
		bind:      bind,
		loginPath: loginPath,
		loaders:   lru.NewLRU[string, *panel.Loader[any]](loaderCacheSize, nil, loaderCacheTTL),
	}
}

// loader returns the loader for one panel of one session, creating it on
// first use. Keying by credential keeps sessions isolated from each other.
// The lock covers the get-or-create so two concurrent first requests for
// the same panel cannot race distinct loaders into the cache.
func (s *Shell) loader(token, name string) *panel.Loader[any] {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := token + "\x00" + name
	ld, ok := s.loaders.Get(key)
	if !ok {
		ld = panel.NewLoader[any]()
		s.loaders.Add(key, ld)
	}
	return ld
}

func (s *Shell) token(r *http.Request) string {
	token, _ := s.bind(r).Get()
	return token
}

// handleUpstreamError deals with a failed panel fetch. A 401 means the
// credential died upstream while the session still holds it; the cached
// principal is dropped and the browser is sent back to login.
func (s *Shell) handleUpstreamError(w http.ResponseWriter, r *http.Request, token string, err error) {
	if sdk.IsUnauthorized(err) {
		s.resolver.Invalidate(token)
		if guard.WantsJSON(r) {
			respondError(w, http.StatusUnauthorized, "session expired")
			return
		}
		http.Redirect(w, r, s.loginPath, http.StatusFound)
		return
	}
	respondUpstreamError(w, err)
}

type panelReply struct {
	RequestID string    `json:"requestId"`
	Data      any       `json:"data,omitempty"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// servePanel runs fetch through the session's loader for the named panel
// and writes whichever state won.
func (s *Shell) servePanel(w http.ResponseWriter, r *http.Request, name string, fetch func(context.Context, *sdk.Client) (any, error)) {
	token := s.token(r)
	api := s.api.WithToken(token)

	state := s.loader(token, name).Load(r.Context(), func(ctx context.Context) (any, error) {
		return fetch(ctx, api)
	})
	if state.Err != nil {
		s.handleUpstreamError(w, r, token, state.Err)
		return
	}
	respondJSON(w, http.StatusOK, panelReply{
		RequestID: state.RequestID,
		Data:      state.Data,
		UpdatedAt: state.UpdatedAt,
	})
}

// MountAdminArea wires the /dashboard subtree: overview plus the feature
// panels for tenant admins and managers. The employee and customer variants
// live under the same subtree because the policy table grants those roles
// only their dedicated sub-prefixes.
func (s *Shell) MountAdminArea(r chi.Router) {
	r.Get("/", s.handleAdminOverview)
	r.Get("/sales", s.handleSalesPanel)
	r.Get("/saleslogs", s.handleSalesLogs)
	r.Get("/employees", s.handleEmployeesPanel)
	r.Get("/leave-requests", s.handleTeamLeaveRequests)
	r.Get("/products", s.handleProductsPanel)
	r.Post("/products", s.handleCreateProduct)
	r.Get("/stores", s.handleStoresPanel)
	r.Get("/services", s.handleServicesPanel)
	r.Get("/auditlogs", s.handleAuditLogs)
	r.Post("/notify", s.handleSendNotification)
	r.Get("/employee", s.handleSelfServiceOverview)
	r.Get("/customer", s.handleCustomerOverview)
}

// MountSuperadminArea wires the /superadmin subtree.
func (s *Shell) MountSuperadminArea(r chi.Router) {
	r.Get("/", s.handlePlatformOverview)
	r.Get("/tenants", s.handlePlatformTenants)
	r.Get("/plans", s.handlePlatformPlans)
	r.Get("/usage", s.handlePlatformUsage)
}

// MountSelfServiceArea wires the /self-service subtree for employees.
func (s *Shell) MountSelfServiceArea(r chi.Router) {
	r.Get("/", s.handleSelfServiceOverview)
	r.Get("/salary", s.handleSalaryPanel)
	r.Get("/documents", s.handleDocumentsPanel)
	r.Post("/attendance", s.handleLogAttendance)
	r.Post("/leave-requests", s.handleSubmitLeaveRequest)
}

// MountCustomerArea wires the /customer subtree.
func (s *Shell) MountCustomerArea(r chi.Router) {
	r.Get("/", s.handleCustomerOverview)
	r.Post("/bookings", s.handleCreateBooking)
}

type adminOverview struct {
	User    *identity.Principal `json:"user"`
	Tenant  *sdk.Tenant         `json:"tenant,omitempty"`
	Summary *sdk.SalesSummary   `json:"summary,omitempty"`
	Recent  []sdk.Sale          `json:"recent,omitempty"`
	Top     []sdk.Product       `json:"topProducts,omitempty"`
}

func (s *Shell) handleAdminOverview(w http.ResponseWriter, r *http.Request) {
	principal, _ := guard.PrincipalFromContext(r.Context())
	s.servePanel(w, r, "admin/overview", func(ctx context.Context, api *sdk.Client) (any, error) {
		overview := adminOverview{User: principal}

		var wg sync.WaitGroup
		var tenantErr, summaryErr, recentErr, topErr error
		wg.Add(4)
		go func() {
			defer wg.Done()
			overview.Tenant, tenantErr = api.CurrentTenant(ctx)
		}()
		go func() {
			defer wg.Done()
			overview.Summary, summaryErr = api.SalesSummary(ctx, sdk.SalesFilter{})
		}()
		go func() {
			defer wg.Done()
			overview.Recent, recentErr = api.RecentSales(ctx, sdk.SalesFilter{})
		}()
		go func() {
			defer wg.Done()
			overview.Top, topErr = api.TopSellingProducts(ctx)
		}()
		wg.Wait()

		for _, err := range []error{tenantErr, summaryErr, recentErr, topErr} {
			if err != nil {
				return nil, err
			}
		}
		return overview, nil
	})
}

type salesPanel struct {
	Summary *sdk.SalesSummary `json:"summary"`
	Sales   []sdk.Sale        `json:"sales"`
}

func salesFilterFromQuery(r *http.Request) sdk.SalesFilter {
	q := r.URL.Query()
	return sdk.SalesFilter{
		StoreID:    q.Get("storeId"),
		EmployeeID: q.Get("employeeId"),
		ServiceID:  q.Get("serviceId"),
		From:       q.Get("from"),
		To:         q.Get("to"),
	}
}

func (s *Shell) handleSalesPanel(w http.ResponseWriter, r *http.Request) {
	filter := salesFilterFromQuery(r)
	s.servePanel(w, r, "admin/sales", func(ctx context.Context, api *sdk.Client) (any, error) {
		summary, err := api.SalesSummary(ctx, filter)
		if err != nil {
			return nil, err
		}
		sales, err := api.RecentSales(ctx, filter)
		if err != nil {
			return nil, err
		}
		return salesPanel{Summary: summary, Sales: sales}, nil
	})
}

func (s *Shell) handleSalesLogs(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	s.servePanel(w, r, "admin/saleslogs", func(ctx context.Context, api *sdk.Client) (any, error) {
		return api.SalesLogs(ctx, status)
	})
}

func (s *Shell) handleEmployeesPanel(w http.ResponseWriter, r *http.Request) {
	s.servePanel(w, r, "admin/employees", func(ctx context.Context, api *sdk.Client) (any, error) {
		return api.Employees(ctx)
	})
}

func (s *Shell) handleTeamLeaveRequests(w http.ResponseWriter, r *http.Request) {
	s.servePanel(w, r, "admin/leave-requests", func(ctx context.Context, api *sdk.Client) (any, error) {
		return api.TeamLeaveRequests(ctx)
	})
}

func (s *Shell) handleProductsPanel(w http.ResponseWriter, r *http.Request) {
	s.servePanel(w, r, "admin/products", func(ctx context.Context, api *sdk.Client) (any, error) {
		return api.Products(ctx)
	})
}

func (s *Shell) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var product sdk.Product
	if err := decodeBody(r, &product); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	token := s.token(r)
	if err := s.api.WithToken(token).CreateProduct(r.Context(), product); err != nil {
		s.handleUpstreamError(w, r, token, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]bool{"ok": true})
}

func (s *Shell) handleStoresPanel(w http.ResponseWriter, r *http.Request) {
	s.servePanel(w, r, "admin/stores", func(ctx context.Context, api *sdk.Client) (any, error) {
		return api.Stores(ctx)
	})
}

func (s *Shell) handleServicesPanel(w http.ResponseWriter, r *http.Request) {
	s.servePanel(w, r, "admin/services", func(ctx context.Context, api *sdk.Client) (any, error) {
		return api.Services(ctx)
	})
}

func (s *Shell) handleAuditLogs(w http.ResponseWriter, r *http.Request) {
	s.servePanel(w, r, "admin/auditlogs", func(ctx context.Context, api *sdk.Client) (any, error) {
		return api.AuditLogs(ctx)
	})
}

func (s *Shell) handleSendNotification(w http.ResponseWriter, r *http.Request) {
	var notification sdk.EmailNotification
	if err := decodeBody(r, &notification); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if notification.To == "" || notification.Subject == "" {
		respondError(w, http.StatusBadRequest, "recipient and subject are required")
		return
	}
	token := s.token(r)
	if err := s.api.WithToken(token).SendEmail(r.Context(), notification); err != nil {
		s.handleUpstreamError(w, r, token, err)
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]bool{"ok": true})
}

type platformOverview struct {
	Tenants []sdk.Tenant     `json:"tenants"`
	Plans   []sdk.Plan       `json:"plans"`
	Usage   []sdk.UsageEntry `json:"usage"`
}

func (s *Shell) handlePlatformOverview(w http.ResponseWriter, r *http.Request) {
	s.servePanel(w, r, "superadmin/overview", func(ctx context.Context, api *sdk.Client) (any, error) {
		var overview platformOverview

		var wg sync.WaitGroup
		var tenantsErr, plansErr, usageErr error
		wg.Add(3)
		go func() {
			defer wg.Done()
			overview.Tenants, tenantsErr = api.PlatformTenants(ctx)
		}()
		go func() {
			defer wg.Done()
			overview.Plans, plansErr = api.PlatformPlans(ctx)
		}()
		go func() {
			defer wg.Done()
			overview.Usage, usageErr = api.PlatformUsage(ctx)
		}()
		wg.Wait()

		for _, err := range []error{tenantsErr, plansErr, usageErr} {
			if err != nil {
				return nil, err
			}
		}
		return overview, nil
	})
}

func (s *Shell) handlePlatformTenants(w http.ResponseWriter, r *http.Request) {
	s.servePanel(w, r, "superadmin/tenants", func(ctx context.Context, api *sdk.Client) (any, error) {
		return api.PlatformTenants(ctx)
	})
}

func (s *Shell) handlePlatformPlans(w http.ResponseWriter, r *http.Request) {
	s.servePanel(w, r, "superadmin/plans", func(ctx context.Context, api *sdk.Client) (any, error) {
		return api.PlatformPlans(ctx)
	})
}

func (s *Shell) handlePlatformUsage(w http.ResponseWriter, r *http.Request) {
	s.servePanel(w, r, "superadmin/usage", func(ctx context.Context, api *sdk.Client) (any, error) {
		return api.PlatformUsage(ctx)
	})
}

type selfServiceOverview struct {
	User       *identity.Principal   `json:"user"`
	Attendance []sdk.AttendanceEntry `json:"attendance,omitempty"`
	Leaves     []sdk.LeaveRequest    `json:"leaves,omitempty"`
}

func (s *Shell) handleSelfServiceOverview(w http.ResponseWriter, r *http.Request) {
	principal, _ := guard.PrincipalFromContext(r.Context())
	s.servePanel(w, r, "self-service/overview", func(ctx context.Context, api *sdk.Client) (any, error) {
		overview := selfServiceOverview{User: principal}

		var wg sync.WaitGroup
		var attendanceErr, leavesErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			overview.Attendance, attendanceErr = api.Attendance(ctx, principal.ID)
		}()
		go func() {
			defer wg.Done()
			overview.Leaves, leavesErr = api.LeaveRequests(ctx, principal.ID)
		}()
		wg.Wait()

		if attendanceErr != nil {
			return nil, attendanceErr
		}
		if leavesErr != nil {
			return nil, leavesErr
		}
		return overview, nil
	})
}

func (s *Shell) handleSalaryPanel(w http.ResponseWriter, r *http.Request) {
	principal, _ := guard.PrincipalFromContext(r.Context())
	s.servePanel(w, r, "self-service/salary", func(ctx context.Context, api *sdk.Client) (any, error) {
		return api.SalaryHistory(ctx, principal.ID)
	})
}

func (s *Shell) handleDocumentsPanel(w http.ResponseWriter, r *http.Request) {
	principal, _ := guard.PrincipalFromContext(r.Context())
	s.servePanel(w, r, "self-service/documents", func(ctx context.Context, api *sdk.Client) (any, error) {
		return api.Documents(ctx, principal.ID)
	})
}

func (s *Shell) handleLogAttendance(w http.ResponseWriter, r *http.Request) {
	principal, _ := guard.PrincipalFromContext(r.Context())
	var entry sdk.AttendanceEntry
	if err := decodeBody(r, &entry); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	token := s.token(r)
	if err := s.api.WithToken(token).LogAttendance(r.Context(), principal.ID, entry); err != nil {
		s.handleUpstreamError(w, r, token, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]bool{"ok": true})
}

func (s *Shell) handleSubmitLeaveRequest(w http.ResponseWriter, r *http.Request) {
	principal, _ := guard.PrincipalFromContext(r.Context())
	var req sdk.LeaveRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	token := s.token(r)
	if err := s.api.WithToken(token).SubmitLeaveRequest(r.Context(), principal.ID, req); err != nil {
		s.handleUpstreamError(w, r, token, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]bool{"ok": true})
}

type customerOverview struct {
	User     *identity.Principal `json:"user"`
	Bookings []sdk.Booking       `json:"bookings,omitempty"`
	Services []sdk.Service       `json:"services,omitempty"`
}

func (s *Shell) handleCustomerOverview(w http.ResponseWriter, r *http.Request) {
	principal, _ := guard.PrincipalFromContext(r.Context())
	s.servePanel(w, r, "customer/overview", func(ctx context.Context, api *sdk.Client) (any, error) {
		overview := customerOverview{User: principal}

		var wg sync.WaitGroup
		var bookingsErr, servicesErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			overview.Bookings, bookingsErr = api.Bookings(ctx)
		}()
		go func() {
			defer wg.Done()
			overview.Services, servicesErr = api.Services(ctx)
		}()
		wg.Wait()

		if bookingsErr != nil {
			return nil, bookingsErr
		}
		if servicesErr != nil {
			return nil, servicesErr
		}
		return overview, nil
	})
}

func (s *Shell) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	var booking sdk.Booking
	if err := decodeBody(r, &booking); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	token := s.token(r)
	if err := s.api.WithToken(token).CreateBooking(r.Context(), booking); err != nil {
		s.handleUpstreamError(w, r, token, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]bool{"ok": true})
}
