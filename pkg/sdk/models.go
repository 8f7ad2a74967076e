package sdk

// Domain models mirror the platform API's JSON wire shapes. Field tags
// follow the server's camelCase convention; list endpoints wrap these in
// named arrays ({"employees": [...]}), which the resource methods unwrap.

// User is the authenticated account behind a credential.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	TenantID string `json:"tenantId"`
	Avatar   string `json:"avatar,omitempty"`
}

// Employee is a staff member of one tenant.
type Employee struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Phone    string  `json:"phone,omitempty"`
	Position string  `json:"position,omitempty"`
	StoreID  string  `json:"storeId,omitempty"`
	Salary   float64 `json:"salary,omitempty"`
	Active   bool    `json:"active"`
}

// Payout is one salary disbursement in an employee's history.
type Payout struct {
	ID     string  `json:"id"`
	Amount float64 `json:"amount"`
	Period string  `json:"period"`
	PaidAt string  `json:"paidAt,omitempty"`
	Status string  `json:"status,omitempty"`
}

// AttendanceEntry is one clock-in/clock-out record.
type AttendanceEntry struct {
	ID       string `json:"id,omitempty"`
	Date     string `json:"date"`
	ClockIn  string `json:"clockIn,omitempty"`
	ClockOut string `json:"clockOut,omitempty"`
	Status   string `json:"status,omitempty"`
}

// LeaveRequest is a pending or decided leave application.
type LeaveRequest struct {
	ID         string `json:"id,omitempty"`
	EmployeeID string `json:"employeeId,omitempty"`
	Type       string `json:"type"`
	From       string `json:"from"`
	To         string `json:"to"`
	Reason     string `json:"reason,omitempty"`
	Status     string `json:"status,omitempty"`
}

// Document is a file attached to an employee record.
type Document struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	URL        string `json:"url"`
	UploadedAt string `json:"uploadedAt,omitempty"`
}

// Product is a retail item sold by a tenant.
type Product struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Stock    int     `json:"stock,omitempty"`
	Category string  `json:"category,omitempty"`
	StoreID  string  `json:"storeId,omitempty"`
}

// Store is one physical location of a tenant.
type Store struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// Service is a bookable treatment or offering.
type Service struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Duration    int     `json:"duration,omitempty"`
	TenantID    string  `json:"tenantId,omitempty"`
}

// Sale is one completed transaction.
type Sale struct {
	ID         string  `json:"id"`
	Amount     float64 `json:"amount"`
	StoreID    string  `json:"storeId,omitempty"`
	EmployeeID string  `json:"employeeId,omitempty"`
	ServiceID  string  `json:"serviceId,omitempty"`
	SoldAt     string  `json:"soldAt,omitempty"`
	Status     string  `json:"status,omitempty"`
}

// SalesPoint is one bucket of a sales time series.
type SalesPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// SalesSummary aggregates sales over the active filter window.
type SalesSummary struct {
	Total         float64      `json:"total"`
	Count         int          `json:"count"`
	SalesOverTime []SalesPoint `json:"salesOverTime,omitempty"`
	SalesByStore  []SalesPoint `json:"salesByStore,omitempty"`
}

// Tenant is one business on the platform.
type Tenant struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	PlanID string `json:"planId,omitempty"`
	Active bool   `json:"active"`
}

// Plan is a subscription tier.
type Plan struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Price    float64  `json:"price"`
	Features []string `json:"features,omitempty"`
}

// UsageEntry reports one tenant's platform consumption.
type UsageEntry struct {
	TenantID  string `json:"tenantId"`
	Metric    string `json:"metric"`
	Value     int64  `json:"value"`
	Period    string `json:"period,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// Booking is an appointment for a service.
type Booking struct {
	ID        string `json:"id,omitempty"`
	ServiceID string `json:"serviceId"`
	TenantID  string `json:"tenantId,omitempty"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Date      string `json:"date"`
	Time      string `json:"time,omitempty"`
	Status    string `json:"status,omitempty"`
}

// GiftCardOrder is a gift card purchase from the public storefront.
type GiftCardOrder struct {
	Amount         float64 `json:"amount"`
	RecipientName  string  `json:"recipientName"`
	RecipientEmail string  `json:"recipientEmail"`
	Message        string  `json:"message,omitempty"`
	TenantID       string  `json:"tenantId,omitempty"`
}

// PageSection is one block of CMS page content.
type PageSection struct {
	Title string `json:"title,omitempty"`
	Body  string `json:"body,omitempty"`
	Image string `json:"image,omitempty"`
}

// PageContent is the CMS content of one marketing page.
type PageContent struct {
	Page     string        `json:"page"`
	Sections []PageSection `json:"sections"`
}

// AuditLog is one recorded administrative action.
type AuditLog struct {
	ID        string `json:"id"`
	Actor     string `json:"actor"`
	Action    string `json:"action"`
	Target    string `json:"target,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}
