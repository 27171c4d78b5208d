// internal/app/features/dashboard/templates.go
package dashboard

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates
var dashFS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "dashboard",
		FS:       dashFS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
