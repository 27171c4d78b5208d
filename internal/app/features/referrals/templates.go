// internal/app/features/referrals/templates.go
package referrals

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var pages embed.FS

func init() {
	templates.Register(templates.Set{Name: "referrals", FS: pages, Patterns: []string{"templates/*.gohtml"}})
}
