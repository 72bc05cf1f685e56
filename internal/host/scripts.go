package host

import (
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/tpodg/serverprep/internal/strutil"
)

//go:embed scripts/*.sh.tmpl
var hostScriptsFS embed.FS

var hostScriptTemplates = template.Must(template.New("host").Funcs(template.FuncMap{
	"shellEscape": strutil.ShellEscape,
}).Option("missingkey=error").ParseFS(hostScriptsFS, "scripts/*.sh.tmpl"))

func renderScript(name string, data any) (string, error) {
	var buf strings.Builder
	if err := hostScriptTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("execute template %s: %w", name, err)
	}
	return buf.String(), nil
}
