package taskutil

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var warnOut io.Writer = os.Stderr

var warnStyle = lipgloss.NewRenderer(os.Stderr).NewStyle().Foreground(lipgloss.Color("3"))

// Warnf prints a formatted warning to stderr with a colored prefix.
func Warnf(format string, args ...any) {
	message := fmt.Sprintf(format, args...)
	fmt.Fprintln(warnOut, warnStyle.Render("WARN: "+message))
}
