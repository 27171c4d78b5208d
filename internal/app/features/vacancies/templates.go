// internal/app/features/vacancies/templates.go
package vacancies

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/list.gohtml templates/form.gohtml templates/referidos.gohtml
var pages embed.FS

// Template names rendered by this package.
const (
	tplList      = "vacancies/list"
	tplForm      = "vacancies/form"
	tplReferidos = "vacancies/referidos"
)

func init() {
	templates.Register(templates.Set{
		Name:     "vacancies",
		FS:       pages,
		Patterns: []string{"templates/*.gohtml"},
	})
}
