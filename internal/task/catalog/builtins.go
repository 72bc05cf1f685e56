package catalog

import (
	"github.com/tpodg/serverprep/internal/task"
	"github.com/tpodg/serverprep/internal/task/banner"
	"github.com/tpodg/serverprep/internal/task/cpugovernor"
	"github.com/tpodg/serverprep/internal/task/history"
	"github.com/tpodg/serverprep/internal/task/packages"
	"github.com/tpodg/serverprep/internal/task/services"
	"github.com/tpodg/serverprep/internal/task/sshdconfig"
	"github.com/tpodg/serverprep/internal/task/sysinfo"
	"github.com/tpodg/serverprep/internal/task/timezone"
	"github.com/tpodg/serverprep/internal/task/tls"
)

// Builtins returns the built-in task specifications in execution order.
// Services restart after the steps that configure them and history is
// cleared last.
func Builtins() []task.Spec {
	return []task.Spec{
		packages.Spec(),
		timezone.Spec(),
		banner.Spec(),
		sshdconfig.Spec(),
		cpugovernor.Spec(),
		tls.Spec(),
		sysinfo.Spec(),
		services.Spec(),
		history.Spec(),
	}
}
