package report

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tpodg/serverprep/internal/task"
)

const metricsNamespace = "serverprep"

// WriteMetrics writes the outcome of the given reports to path in the
// Prometheus text format, for the node_exporter textfile collector.
func WriteMetrics(path string, reports ...*task.Report) error {
	registry := prometheus.NewRegistry()

	stepStatus := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "step_status",
		Help:      "Outcome of a step in the last run, 1 for the reported status.",
	}, []string{"target", "step", "status", "critical"})
	stepDuration := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "step_duration_seconds",
		Help:      "Duration of a step in the last run.",
	}, []string{"target", "step"})
	runAborted := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "run_aborted",
		Help:      "Whether the last run stopped before its final step.",
	}, []string{"target"})
	runExitCode := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "run_exit_code",
		Help:      "Exit code derived from the last run.",
	}, []string{"target"})
	lastRun := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix time the last run finished.",
	}, []string{"target", "dry_run"})

	registry.MustRegister(stepStatus, stepDuration, runAborted, runExitCode, lastRun)

	for _, r := range reports {
		for _, result := range r.Results {
			stepStatus.WithLabelValues(r.Target, result.Step, result.Status.String(), fmt.Sprint(result.Critical)).Set(1)
			stepDuration.WithLabelValues(r.Target, result.Step).Set(result.Duration.Seconds())
		}
		runAborted.WithLabelValues(r.Target).Set(boolValue(r.Aborted))
		runExitCode.WithLabelValues(r.Target).Set(float64(r.ExitCode()))
		lastRun.WithLabelValues(r.Target, fmt.Sprint(r.DryRun)).Set(float64(r.Finished.Unix()))
	}

	if err := prometheus.WriteToTextfile(path, registry); err != nil {
		return fmt.Errorf("write metrics file %s: %w", path, err)
	}
	return nil
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
