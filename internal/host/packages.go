package host

import (
	"context"
	"strings"

	"github.com/tpodg/serverprep/internal/strutil"
)

const aptEnv = "env DEBIAN_FRONTEND=noninteractive "

type aptPackages struct {
	sh *shell
}

func (p *aptPackages) Missing(ctx context.Context, names ...string) ([]string, error) {
	if len(names) == 0 {
		return nil, nil
	}
	// dpkg-query exits non-zero when any name is unknown; the known ones are
	// still printed.
	cmd := "dpkg-query -W -f='${Package}\\t${db:Status-Status}\\n' " + joinEscaped(names) + " 2>/dev/null || true"
	output, err := p.sh.run(ctx, cmd)
	if err != nil {
		return nil, &PackageManagerError{Op: "query", Packages: names, Err: err}
	}
	return missingPackages(output, names), nil
}

func (p *aptPackages) Refresh(ctx context.Context) error {
	if output, err := p.sh.runPrivileged(ctx, aptEnv+"apt-get update -q"); err != nil {
		return &PackageManagerError{Op: "update", Err: withOutput(err, lastLines(output, 5))}
	}
	return nil
}

func (p *aptPackages) Install(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		return nil
	}
	if output, err := p.sh.runPrivileged(ctx, aptEnv+"apt-get install -y -q "+joinEscaped(names)); err != nil {
		return &PackageManagerError{Op: "install", Packages: names, Err: withOutput(err, lastLines(output, 5))}
	}
	return nil
}

// missingPackages parses dpkg-query output and returns wanted names that are
// not in the installed state.
func missingPackages(output string, wanted []string) []string {
	installed := make(map[string]bool)
	for _, line := range strings.Split(output, "\n") {
		name, status, ok := strings.Cut(strings.TrimSpace(line), "\t")
		if !ok {
			continue
		}
		if status == "installed" {
			installed[name] = true
		}
	}

	var missing []string
	for _, name := range wanted {
		if !installed[name] {
			missing = append(missing, name)
		}
	}
	return missing
}

func joinEscaped(values []string) string {
	escaped := make([]string, len(values))
	for i, value := range values {
		escaped[i] = strutil.ShellEscape(value)
	}
	return strings.Join(escaped, " ")
}

func lastLines(output string, n int) string {
	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
