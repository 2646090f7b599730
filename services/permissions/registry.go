// Package permissions is the role → page capability table consulted by the
// HTTP layer. A Registry never changes after construction; the role admin
// service builds a new one and swaps it in.
package permissions

import "sort"

// Role identifiers reserved by the application.
const (
	RoleAdmin    = "admin"
	RoleStaff    = "personel"
	RoleDealer   = "bayi"
	RoleCustomer = "musteri"
)

// Page identifiers of the administrative UI and API.
const (
	PageDashboard      = "dashboard"
	PageCases          = "cases"
	PageDocuments      = "documents"
	PageExports        = "exports"
	PageDealers        = "dealers"
	PageUsers          = "users"
	PageRoleManagement = "role-management"
	PageSMS            = "sms"
	PageAuditLogs      = "audit-logs"
	PageReports        = "reports"
)

// Capability names one flag of Capabilities.
type Capability string

const (
	CapView    Capability = "view"
	CapCreate  Capability = "create"
	CapEdit    Capability = "edit"
	CapDelete  Capability = "delete"
	CapViewAll Capability = "view_all"
	CapViewOwn Capability = "view_own"
	CapExport  Capability = "export"
)

// Capabilities is what a role may do on one page. The zero value denies all.
type Capabilities struct {
	View    bool `json:"view"`
	Create  bool `json:"create"`
	Edit    bool `json:"edit"`
	Delete  bool `json:"delete"`
	ViewAll bool `json:"view_all"`
	ViewOwn bool `json:"view_own"`
	Export  bool `json:"export"`
}

// Has reports whether the named flag is set.
func (c Capabilities) Has(cap Capability) bool {
	switch cap {
	case CapView:
		return c.View
	case CapCreate:
		return c.Create
	case CapEdit:
		return c.Edit
	case CapDelete:
		return c.Delete
	case CapViewAll:
		return c.ViewAll
	case CapViewOwn:
		return c.ViewOwn
	case CapExport:
		return c.Export
	}
	return false
}

// IsZero reports whether every flag is false.
func (c Capabilities) IsZero() bool {
	return c == Capabilities{}
}

// Full grants every capability.
func Full() Capabilities {
	return Capabilities{View: true, Create: true, Edit: true, Delete: true, ViewAll: true, ViewOwn: true, Export: true}
}

// Page describes one entry of the navigation.
type Page struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Path  string `json:"path"`
}

// PageAccess is a page together with the capabilities a role has on it.
type PageAccess struct {
	Page
	Capabilities Capabilities `json:"capabilities"`
}

// RoleDefinition is the input row for building a Registry.
type RoleDefinition struct {
	ID          string                  `json:"id"`
	Label       string                  `json:"label"`
	System      bool                    `json:"system"`
	ReadOnly    bool                    `json:"read_only"`
	Permissions map[string]Capabilities `json:"permissions"`
}

var pages = []Page{
	{ID: PageDashboard, Label: "Gösterge Paneli", Path: "/dashboard"},
	{ID: PageCases, Label: "Dosyalar", Path: "/cases"},
	{ID: PageDocuments, Label: "Evraklar", Path: "/documents"},
	{ID: PageExports, Label: "Dışa Aktarım", Path: "/exports"},
	{ID: PageDealers, Label: "Bayiler", Path: "/dealers"},
	{ID: PageUsers, Label: "Kullanıcılar", Path: "/users"},
	{ID: PageRoleManagement, Label: "Rol Yönetimi", Path: "/roles"},
	{ID: PageSMS, Label: "SMS", Path: "/sms"},
	{ID: PageAuditLogs, Label: "İşlem Kayıtları", Path: "/audit-logs"},
	{ID: PageReports, Label: "Raporlar", Path: "/reports"},
}

// Pages returns every page in navigation order.
func Pages() []Page {
	return append([]Page(nil), pages...)
}

// IsPage reports whether id names a known page.
func IsPage(id string) bool {
	for _, p := range pages {
		if p.ID == id {
			return true
		}
	}
	return false
}

// IsSystemRole reports whether id is reserved by the application.
func IsSystemRole(id string) bool {
	switch id {
	case RoleAdmin, RoleStaff, RoleDealer, RoleCustomer:
		return true
	}
	return false
}

// Defaults returns the built-in role grants.
func Defaults() []RoleDefinition {
	admin := map[string]Capabilities{}
	for _, p := range pages {
		admin[p.ID] = Full()
	}

	return []RoleDefinition{
		{ID: RoleAdmin, Label: "Yönetici", System: true, ReadOnly: true, Permissions: admin},
		{
			ID: RoleStaff, Label: "Personel", System: true,
			Permissions: map[string]Capabilities{
				PageDashboard: {View: true},
				PageCases:     {View: true, Create: true, Edit: true, ViewAll: true, Export: true},
				PageDocuments: {View: true, Create: true, Edit: true, Delete: true, ViewAll: true},
				PageExports:   {View: true, ViewAll: true, Export: true},
				PageSMS:       {View: true, Create: true, ViewAll: true},
				PageReports:   {View: true, ViewAll: true, Export: true},
			},
		},
		{
			ID: RoleDealer, Label: "Bayi", System: true,
			Permissions: map[string]Capabilities{
				PageDashboard: {View: true},
				PageCases:     {View: true, Create: true, Edit: true, ViewOwn: true},
				PageDocuments: {View: true, Create: true, Delete: true, ViewOwn: true},
				PageExports:   {View: true, ViewOwn: true, Export: true},
				PageUsers:     {View: true, Create: true, ViewOwn: true},
			},
		},
		{
			ID: RoleCustomer, Label: "Müşteri", System: true,
			Permissions: map[string]Capabilities{
				PageDashboard: {View: true},
				PageCases:     {View: true, ViewOwn: true},
				PageDocuments: {View: true, Create: true, ViewOwn: true},
			},
		},
	}
}

// Registry is an immutable role table. Safe for concurrent readers.
type Registry struct {
	roles map[string]RoleDefinition
	order []string
}

// Default builds a Registry from the built-in grants.
func Default() *Registry {
	return NewRegistry(Defaults())
}

// NewRegistry copies defs into a new Registry. Unknown page ids are dropped.
func NewRegistry(defs []RoleDefinition) *Registry {
	r := &Registry{roles: make(map[string]RoleDefinition, len(defs))}
	for _, d := range defs {
		perms := make(map[string]Capabilities, len(d.Permissions))
		for page, caps := range d.Permissions {
			if IsPage(page) {
				perms[page] = caps
			}
		}
		d.Permissions = perms
		if _, dup := r.roles[d.ID]; !dup {
			r.order = append(r.order, d.ID)
		}
		r.roles[d.ID] = d
	}
	sort.SliceStable(r.order, func(i, j int) bool {
		si, sj := IsSystemRole(r.order[i]), IsSystemRole(r.order[j])
		if si != sj {
			return si
		}
		return false
	})
	return r
}

// CapabilitiesFor returns the grants of role on page; unknown pairs deny all.
func (r *Registry) CapabilitiesFor(role, page string) Capabilities {
	d, ok := r.roles[role]
	if !ok {
		return Capabilities{}
	}
	return d.Permissions[page]
}

// Can is shorthand for CapabilitiesFor(role, page).Has(cap).
func (r *Registry) Can(role, page string, cap Capability) bool {
	return r.CapabilitiesFor(role, page).Has(cap)
}

// PagesFor lists, in navigation order, the pages role may view.
func (r *Registry) PagesFor(role string) []PageAccess {
	d, ok := r.roles[role]
	if !ok {
		return []PageAccess{}
	}
	out := make([]PageAccess, 0, len(pages))
	for _, p := range pages {
		caps := d.Permissions[p.ID]
		if caps.View {
			out = append(out, PageAccess{Page: p, Capabilities: caps})
		}
	}
	return out
}

// Role returns a copy of one role definition.
func (r *Registry) Role(id string) (RoleDefinition, bool) {
	d, ok := r.roles[id]
	if !ok {
		return RoleDefinition{}, false
	}
	return copyDefinition(d), true
}

// Roles returns every role, system roles first.
func (r *Registry) Roles() []RoleDefinition {
	out := make([]RoleDefinition, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, copyDefinition(r.roles[id]))
	}
	return out
}

func copyDefinition(d RoleDefinition) RoleDefinition {
	perms := make(map[string]Capabilities, len(d.Permissions))
	for k, v := range d.Permissions {
		perms[k] = v
	}
	d.Permissions = perms
	return d
}
