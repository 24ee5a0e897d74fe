package main

import (
	"fmt"
	"io"
	"os"

	"github.com/kalambet/skillmap/internal/learning"
	"github.com/kalambet/skillmap/internal/skill"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

// diag receives status and error lines so stdout stays parseable.
var diag io.Writer = os.Stderr

func colorize(color, text string) string {
	if noColor {
		return text
	}
	return color + text + colorReset
}

// levelColor shades a skill level from cold (new) to warm (expert).
func levelColor(l skill.Level) string {
	switch l {
	case skill.LevelExpert:
		return colorGreen
	case skill.LevelAdvanced:
		return colorCyan
	case skill.LevelBeginner:
		return colorBlue
	default:
		return colorYellow
	}
}

func priorityColor(p string) string {
	if p == learning.PriorityHigh {
		return colorRed
	}
	return colorYellow
}

func printLine(color, prefix, format string, args ...any) {
	fmt.Fprintln(diag, colorize(color, prefix+fmt.Sprintf(format, args...)))
}

func printSuccess(format string, args ...any) { printLine(colorGreen, "✓ ", format, args...) }

func printError(format string, args ...any) { printLine(colorRed, "✗ ", format, args...) }

func printWarning(format string, args ...any) { printLine(colorYellow, "⚠ ", format, args...) }

func printStep(format string, args ...any) { printLine(colorCyan, "→ ", format, args...) }

func printStatus(label string, format string, args ...any) {
	fmt.Fprintf(diag, "  %s %s\n", colorize(colorBold, label+":"), fmt.Sprintf(format, args...))
}
