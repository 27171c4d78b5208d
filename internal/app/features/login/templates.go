// internal/app/features/login/templates.go
package login

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/index.gohtml
var loginFS embed.FS

func init() {
	templates.Register(templates.Set{Name: "login", FS: loginFS, Patterns: []string{"templates/index.gohtml"}})
}
