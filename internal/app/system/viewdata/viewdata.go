// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"net/http"
	"sync"

	"github.com/dalemusser/stratarefer/internal/app/system/authz"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/gorilla/csrf"
)

// DefaultSiteName is shown when no site name was configured.
const DefaultSiteName = "Portal de Referidos"

var (
	mu       sync.RWMutex
	siteName = DefaultSiteName
)

// Init sets the site name shown in every page header. Call it once at
// startup from bootstrap.
func Init(name string) {
	if name == "" {
		return
	}
	mu.Lock()
	siteName = name
	mu.Unlock()
}

// SiteName returns the configured site name.
func SiteName() string {
	mu.RLock()
	defer mu.RUnlock()
	return siteName
}

// BaseVM contains common fields for all view models.
// Embed this struct in your feature-specific view models.
//
// Usage:
//
//	type listData struct {
//	    viewdata.BaseVM
//	    Rows []vacancyRow
//	}
//
//	data := listData{BaseVM: viewdata.New(r, "Vacantes", "/admin/dashboard")}
type BaseVM struct {
	SiteName string

	// Caller as admitted by the gate; empty on public pages.
	IsLoggedIn bool
	IsAdmin    bool
	UserID     string
	UserEmail  string
	Role       string

	// Page context
	Title       string
	BackURL     string
	CurrentPath string

	// CSRF token for forms (use in hidden input field)
	CSRFToken string

	// Flash messages rendered by the "flash" partial.
	Error  string
	Notice string
}

// New creates a populated BaseVM for a page.
func New(r *http.Request, title, backDefault string) BaseVM {
	role, email, id, signedIn := authz.UserCtx(r)

	vm := BaseVM{
		SiteName:    SiteName(),
		IsLoggedIn:  signedIn,
		IsAdmin:     signedIn && role.IsAdmin(),
		UserEmail:   email,
		Role:        role.String(),
		Title:       title,
		BackURL:     httpnav.ResolveBackURL(r, backDefault),
		CurrentPath: httpnav.CurrentPath(r),
		CSRFToken:   csrf.Token(r),
	}
	if signedIn {
		vm.UserID = id.Hex()
	}
	return vm
}
