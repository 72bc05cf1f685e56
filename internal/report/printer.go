// Package report renders run progress and outcomes.
package report

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/tpodg/serverprep/internal/task"
)

const (
	glyphSuccess = "✓"
	glyphSkipped = "↷"
	glyphFailed  = "✗"
	glyphPending = "…"
)

var (
	colorGreen  = lipgloss.Color("#22c55e")
	colorRed    = lipgloss.Color("#ef4444")
	colorYellow = lipgloss.Color("#eab308")
	colorDim    = lipgloss.Color("#6b7280")
)

// Printer writes one line per finished step and a summary per report. It is
// a task.Observer.
type Printer struct {
	mu     sync.Mutex
	out    io.Writer
	styled bool

	successStyle lipgloss.Style
	skippedStyle lipgloss.Style
	failedStyle  lipgloss.Style
	pendingStyle lipgloss.Style
	dimStyle     lipgloss.Style
	titleStyle   lipgloss.Style
}

// NewPrinter styles output only when out is a terminal.
func NewPrinter(out io.Writer) *Printer {
	return newPrinter(out, isTerminal(out))
}

func newPrinter(out io.Writer, styled bool) *Printer {
	renderer := lipgloss.NewRenderer(out)
	return &Printer{
		out:          out,
		styled:       styled,
		successStyle: renderer.NewStyle().Foreground(colorGreen),
		skippedStyle: renderer.NewStyle().Foreground(colorDim),
		failedStyle:  renderer.NewStyle().Foreground(colorRed).Bold(true),
		pendingStyle: renderer.NewStyle().Foreground(colorYellow),
		dimStyle:     renderer.NewStyle().Foreground(colorDim),
		titleStyle:   renderer.NewStyle().Bold(true),
	}
}

func isTerminal(out io.Writer) bool {
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Header announces the target before its steps run.
func (p *Printer) Header(target string, dryRun bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	title := "Provisioning " + target
	if dryRun {
		title = "Planning " + target
	}
	fmt.Fprintln(p.out, p.render(p.titleStyle, title))
}

func (p *Printer) StepFinished(_ string, _ int, result task.Result) {
	p.mu.Lock()
	defer p.mu.Unlock()

	glyph := p.glyph(result.Status)
	line := fmt.Sprintf("  %s %s", glyph, result.Step)
	if result.Critical && result.Status == task.StatusFailed {
		line += " (critical)"
	}
	line += " " + p.render(p.dimStyle, formatDuration(result.Duration))
	if reason := result.Reason(); reason != "" {
		line += "\n    " + p.render(p.failedStyle, reason)
	}
	fmt.Fprintln(p.out, line)
}

// Summary closes the output for one report.
func (p *Printer) Summary(r *task.Report) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if r.Err != nil && len(r.Results) == 0 {
		fmt.Fprintf(p.out, "  %s %s\n", p.render(p.failedStyle, glyphFailed), p.render(p.failedStyle, r.Err.Error()))
	}

	counts := r.Counts()
	first := fmt.Sprintf("%d succeeded", counts[task.StatusSuccess])
	if r.DryRun {
		first = fmt.Sprintf("%d to apply", counts[task.StatusPending])
	}
	parts := []string{
		first,
		fmt.Sprintf("%d skipped", counts[task.StatusSkipped]),
		fmt.Sprintf("%d failed", counts[task.StatusFailed]),
	}
	summary := fmt.Sprintf("%s: %s", r.Target, strings.Join(parts, ", "))
	if r.Aborted {
		if r.FailedStep >= 0 && r.FailedStep < len(r.Results) {
			summary += fmt.Sprintf(" (aborted at %q)", r.Results[r.FailedStep].Step)
		} else {
			summary += " (aborted)"
		}
	} else if failed := r.Failed(); len(failed) > 0 {
		names := make([]string, len(failed))
		for i, result := range failed {
			names[i] = strconv.Quote(result.Step)
		}
		summary += " (failed: " + strings.Join(names, ", ") + ")"
	}
	fmt.Fprintln(p.out, p.render(p.titleStyle, summary))
}

func (p *Printer) glyph(status task.Status) string {
	switch status {
	case task.StatusSuccess:
		return p.render(p.successStyle, glyphSuccess)
	case task.StatusSkipped:
		return p.render(p.skippedStyle, glyphSkipped)
	case task.StatusFailed:
		return p.render(p.failedStyle, glyphFailed)
	default:
		return p.render(p.pendingStyle, glyphPending)
	}
}

func (p *Printer) render(style lipgloss.Style, text string) string {
	if !p.styled {
		return text
	}
	return style.Render(text)
}

func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return "(<1ms)"
	}
	return "(" + d.Round(time.Millisecond).String() + ")"
}
