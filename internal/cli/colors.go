// Package cli provides coloured terminal output for progress messages.
package cli

import (
	"os"
	"strings"

	"golang.org/x/term"
)

// ANSI color codes
const (
	reset   = "\033[0m"
	red     = "\033[31m"
	green   = "\033[32m"
	yellow  = "\033[33m"
	magenta = "\033[35m"
	cyan    = "\033[36m"
	bold    = "\033[1m"
)

// BannerWidth is the column width Banner centres its title in.
const BannerWidth = 60

// ColorsEnabled controls whether colored output is enabled.
var ColorsEnabled = detect()

// detect honours NO_COLOR (https://no-color.org/) and disables colours
// when stdout is not a terminal.
func detect() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// DisableColors turns off colored output.
func DisableColors() {
	ColorsEnabled = false
}

// EnableColors turns colored output back on if the terminal supports it.
func EnableColors() {
	ColorsEnabled = detect()
}

func colorize(color, text string) string {
	if !ColorsEnabled {
		return text
	}
	return color + text + reset
}

// Error formats text in red.
func Error(text string) string {
	return colorize(red, text)
}

// Success formats text in green.
func Success(text string) string {
	return colorize(green, text)
}

// Warning formats text in yellow.
func Warning(text string) string {
	return colorize(yellow, text)
}

// Info formats text in cyan.
func Info(text string) string {
	return colorize(cyan, text)
}

// Bold formats text in bold.
func Bold(text string) string {
	return colorize(bold, text)
}

// Filename formats a path in cyan.
func Filename(text string) string {
	return colorize(cyan, text)
}

// Number formats a number in magenta.
func Number(text string) string {
	return colorize(magenta, text)
}

// Banner centres title in a line of '=' BannerWidth columns wide, e.g.
// "=====Generating Configuration File=====". Titles wider than the banner
// are returned unpadded.
func Banner(title string) string {
	pad := BannerWidth - len(title)
	if pad <= 0 {
		return Bold(title)
	}
	left := pad / 2
	line := strings.Repeat("=", left) + title + strings.Repeat("=", pad-left)
	return Bold(line)
}
