// internal/app/features/home/templates.go
package home

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

// Public listing page. Layout partials come from the shared set.
//
//go:embed templates/*.gohtml
var views embed.FS

func init() {
	templates.Register(templates.Set{Name: "home", FS: views, Patterns: []string{"templates/*.gohtml"}})
}
