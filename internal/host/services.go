package host

import (
	"context"
	"fmt"
	"strings"

	"github.com/tpodg/serverprep/internal/strutil"
)

type systemdServices struct {
	sh *shell
}

func (s *systemdServices) Exists(ctx context.Context, name string) (bool, error) {
	unit := unitName(name)
	output, err := s.sh.run(ctx, "systemctl list-unit-files --no-legend --no-pager "+strutil.ShellEscape(unit)+" 2>/dev/null || true")
	if err != nil {
		return false, fmt.Errorf("look up service %s: %w", unit, err)
	}
	return unitListed(output, unit), nil
}

func (s *systemdServices) Restart(ctx context.Context, name string) error {
	exists, err := s.Exists(ctx, name)
	if err != nil {
		return err
	}
	if !exists {
		return &ServiceNotFoundError{Service: name}
	}
	if output, err := s.sh.runPrivileged(ctx, "systemctl restart "+strutil.ShellEscape(unitName(name))); err != nil {
		return fmt.Errorf("restart %s: %w", name, withOutput(err, output))
	}
	return nil
}

func unitName(name string) string {
	if strings.Contains(name, ".") {
		return name
	}
	return name + ".service"
}

func unitListed(output, unit string) bool {
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) > 0 && fields[0] == unit {
			return true
		}
	}
	return false
}
