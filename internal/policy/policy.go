// Package policy is the authorization table of the console: a pure,
// deterministic mapping from role label to reachable route prefixes and a
// canonical home dashboard.
//
// The table is static configuration. It is the single source of truth for
// role-to-route decisions; navigation components and guards must consult it
// rather than carrying their own role literals.
package policy

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

//go:embed model.conf
var casbinModelContent string

// ErrUnknownRole is returned for role labels outside the table. Callers
// must fall back to the generic landing page, never to a dashboard.
var ErrUnknownRole = errors.New("unknown role")

// Entry maps one role to its home dashboard and the route prefixes it may
// reach. Access to anything outside Prefixes is denied by default.
type Entry struct {
	Role     string
	Home     string
	Prefixes []string
}

// aliases maps alternate labels onto canonical roles. The platform uses
// "staff" and "employee" interchangeably.
var aliases = map[string]string{
	"staff": "employee",
}

// table is the canonical role policy. Cross-role dashboard access is
// denied: an employee cannot reach the tenant admin area even though both
// live under authenticated routes.
var table = []Entry{
	{Role: "superadmin", Home: "/superadmin", Prefixes: []string{"/superadmin"}},
	{Role: "admin", Home: "/dashboard", Prefixes: []string{"/dashboard"}},
	{Role: "manager", Home: "/dashboard", Prefixes: []string{"/dashboard"}},
	{Role: "tenant", Home: "/dashboard", Prefixes: []string{"/dashboard"}},
	{Role: "employee", Home: "/self-service", Prefixes: []string{"/self-service", "/dashboard/employee"}},
	{Role: "customer", Home: "/customer", Prefixes: []string{"/customer", "/dashboard/customer"}},
}

// Table answers role-to-route questions against the static policy. It is
// immutable after construction and safe for concurrent use.
type Table struct {
	enforcer casbin.IEnforcer
	homes    map[string]string
}

// NewTable builds the enforcer from the embedded model and the static
// policy entries.
func NewTable() (*Table, error) {
	m, err := model.NewModelFromString(casbinModelContent)
	if err != nil {
		return nil, fmt.Errorf("parse casbin model: %w", err)
	}

	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create casbin enforcer: %w", err)
	}

	homes := make(map[string]string, len(table))
	for _, entry := range table {
		homes[entry.Role] = entry.Home
		for _, prefix := range entry.Prefixes {
			// Two objects per prefix: the exact path and its subtree.
			// keyMatch alone would let "/dashboardx" ride on "/dashboard".
			if _, err := enforcer.AddPolicy(entry.Role, prefix); err != nil {
				return nil, fmt.Errorf("add policy %s %s: %w", entry.Role, prefix, err)
			}
			if _, err := enforcer.AddPolicy(entry.Role, prefix+"/*"); err != nil {
				return nil, fmt.Errorf("add policy %s %s/*: %w", entry.Role, prefix, err)
			}
		}
	}

	return &Table{enforcer: enforcer, homes: homes}, nil
}

// Normalize lowercases a role label and resolves aliases. It does not
// validate: unknown labels pass through unchanged and fail lookups later.
func Normalize(role string) string {
	r := strings.ToLower(strings.TrimSpace(role))
	if canonical, ok := aliases[r]; ok {
		return canonical
	}
	return r
}

// Known reports whether the role label (case-insensitive, aliases resolved)
// has a policy entry.
func (t *Table) Known(role string) bool {
	_, ok := t.homes[Normalize(role)]
	return ok
}

// HomeRouteFor returns the canonical dashboard path for a role. Unknown
// labels fail with ErrUnknownRole; the caller must redirect to the generic
// landing page rather than guessing a dashboard.
func (t *Table) HomeRouteFor(role string) (string, error) {
	home, ok := t.homes[Normalize(role)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	return home, nil
}

// IsAllowed reports whether a role may reach routePath. Unknown roles and
// routes outside the role's prefixes are denied.
func (t *Table) IsAllowed(role, routePath string) bool {
	normalized := Normalize(role)
	if _, ok := t.homes[normalized]; !ok {
		return false
	}
	allowed, err := t.enforcer.Enforce(normalized, routePath)
	if err != nil {
		return false
	}
	return allowed
}

// Roles lists the canonical role labels in the table.
func (t *Table) Roles() []string {
	roles := make([]string, 0, len(table))
	for _, entry := range table {
		roles = append(roles, entry.Role)
	}
	return roles
}

// PrefixesFor returns the route prefixes a role may reach, or nil for
// unknown roles. The slice is a copy.
func (t *Table) PrefixesFor(role string) []string {
	normalized := Normalize(role)
	for _, entry := range table {
		if entry.Role == normalized {
			return append([]string(nil), entry.Prefixes...)
		}
	}
	return nil
}
