// internal/app/features/errors/templates.go
package errors

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

// One page per status the handlers below render: 401, 403, 404 and 500.
//
//go:embed templates/*.gohtml
var statusPages embed.FS

func init() {
	templates.Register(templates.Set{Name: "errors", FS: statusPages, Patterns: []string{"templates/*.gohtml"}})
}
