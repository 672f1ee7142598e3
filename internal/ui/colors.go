package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Color scheme for appseek
var (
	// Primary actions
	Success = color.New(color.FgGreen)
	Error   = color.New(color.FgRed, color.Bold)
	Warning = color.New(color.FgYellow)
	Info    = color.New(color.FgCyan)

	// Secondary actions
	Highlight = color.New(color.FgHiCyan, color.Bold)
	Muted     = color.New(color.Faint)
	Bold      = color.New(color.Bold)

	// Status indicators
	CheckMark = color.GreenString("✓")
	CrossMark = color.RedString("✗")
	Arrow     = color.CyanString("→")
	Bullet    = color.HiBlackString("•")

	// Entry kind colors
	KindDesktop = color.New(color.FgMagenta)
	KindBinary  = color.New(color.FgBlue)
)

// InitColors initializes color settings based on environment and the
// configured mode ("auto", "always" or "never")
func InitColors(mode string) {
	switch mode {
	case "never":
		color.NoColor = true
		return
	case "always":
		color.NoColor = false
		return
	}

	// Respect NO_COLOR environment variable
	if os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}

	// Respect TERM environment variable
	if os.Getenv("TERM") == "dumb" {
		color.NoColor = true
	}
}

// PrintSuccess prints a success message
func PrintSuccess(format string, args ...interface{}) {
	Success.Fprintf(os.Stdout, "%s %s\n", CheckMark, fmt.Sprintf(format, args...))
}

// PrintError prints an error message
func PrintError(format string, args ...interface{}) {
	Error.Fprintf(os.Stderr, "%s Error: %s\n", CrossMark, fmt.Sprintf(format, args...))
}

// PrintWarning prints a warning message
func PrintWarning(format string, args ...interface{}) {
	Warning.Fprintf(os.Stderr, "Warning: %s\n", fmt.Sprintf(format, args...))
}

// PrintInfo prints an info message
func PrintInfo(format string, args ...interface{}) {
	Info.Fprintf(os.Stdout, "%s %s\n", Arrow, fmt.Sprintf(format, args...))
}

// PrintHeader prints a section header
func PrintHeader(text string) {
	fmt.Fprintln(os.Stdout)
	Bold.Fprintln(os.Stdout, text)
	Muted.Fprintln(os.Stdout, "────────────────────────────────────────")
}

// PrintSubheader prints a subsection header
func PrintSubheader(text string) {
	fmt.Fprintln(os.Stdout)
	Highlight.Fprintln(os.Stdout, text)
}

// PrintList prints a bulleted list
func PrintList(items []string) {
	for _, item := range items {
		fmt.Fprintf(os.Stdout, "  %s %s\n", Bullet, item)
	}
}

// ColorizeKind returns a colored entry kind string
func ColorizeKind(kind string) string {
	switch kind {
	case "desktop":
		return KindDesktop.Sprint(kind)
	case "bin":
		return KindBinary.Sprint(kind)
	default:
		return kind
	}
}

// HighlightMatches renders s with the bytes at the given offsets highlighted.
// Offsets outside s are ignored; multi-byte runes are highlighted whole.
func HighlightMatches(s string, indices []int) string {
	if len(indices) == 0 {
		return s
	}

	marked := make(map[int]bool, len(indices))
	for _, i := range indices {
		if i >= 0 && i < len(s) {
			marked[i] = true
		}
	}
	if len(marked) == 0 {
		return s
	}

	var b strings.Builder
	var run strings.Builder
	inRun := false
	flush := func() {
		if run.Len() == 0 {
			return
		}
		if inRun {
			b.WriteString(Highlight.Sprint(run.String()))
		} else {
			b.WriteString(run.String())
		}
		run.Reset()
	}

	for i, r := range s {
		if marked[i] != inRun {
			flush()
			inRun = marked[i]
		}
		run.WriteRune(r)
	}
	flush()

	return b.String()
}
