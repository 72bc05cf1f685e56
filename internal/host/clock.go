package host

import (
	"context"
	"fmt"
	"strings"

	"github.com/tpodg/serverprep/internal/strutil"
)

type shellClock struct {
	sh *shell
}

type clockScriptData struct {
	Zone string
}

func (c *shellClock) Timezone(ctx context.Context) (string, error) {
	script, err := renderScript("timezone", clockScriptData{})
	if err != nil {
		return "", err
	}
	output, err := c.sh.run(ctx, "sh -c "+strutil.ShellEscape(script))
	if err != nil {
		return "", fmt.Errorf("read timezone: %w", err)
	}
	return strings.TrimSpace(output), nil
}

func (c *shellClock) SetTimezone(ctx context.Context, zone string) error {
	script, err := renderScript("set_timezone", clockScriptData{Zone: zone})
	if err != nil {
		return err
	}
	if output, err := c.sh.runScript(ctx, script); err != nil {
		return fmt.Errorf("set timezone %s: %w", zone, withOutput(err, output))
	}
	return nil
}
