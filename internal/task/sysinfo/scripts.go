package sysinfo

import (
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/tpodg/serverprep/internal/strutil"
)

//go:embed scripts/*.sh.tmpl
var scriptFS embed.FS

var scriptTemplates = template.Must(template.New("sysinfo").
	Option("missingkey=error").
	Funcs(template.FuncMap{"shellEscape": strutil.ShellEscape}).
	ParseFS(scriptFS, "scripts/*.sh.tmpl"))

type scriptData struct {
	Title  string
	Mounts []string
}

func renderScript(data scriptData) (string, error) {
	var buf strings.Builder
	if err := scriptTemplates.ExecuteTemplate(&buf, "sysinfo.sh.tmpl", data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}
	return buf.String(), nil
}
