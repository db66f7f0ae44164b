package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	Green     = lipgloss.Color("#22c55e")
	Amber     = lipgloss.Color("#f59e0b")
	Red       = lipgloss.Color("#ef4444")
	Blue      = lipgloss.Color("#3b82f6")
	LightGray = lipgloss.Color("#9ca3af")
)

var (
	Out io.Writer = os.Stdout
	Err io.Writer = os.Stderr
)

var (
	successStyle = lipgloss.NewStyle().Foreground(Green)
	warnStyle    = lipgloss.NewStyle().Foreground(Amber)
	errorStyle   = lipgloss.NewStyle().Foreground(Red).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(Blue)
	mutedStyle   = lipgloss.NewStyle().Foreground(LightGray)
	boldStyle    = lipgloss.NewStyle().Bold(true)
)

func Success(format string, a ...any) {
	fmt.Fprintln(Out, successStyle.Render("✔"), fmt.Sprintf(format, a...))
}

func Warn(format string, a ...any) {
	fmt.Fprintln(Err, warnStyle.Render("⚠"), fmt.Sprintf(format, a...))
}

func Error(format string, a ...any) {
	fmt.Fprintln(Err, errorStyle.Render("✖"), fmt.Sprintf(format, a...))
}

func Info(format string, a ...any) {
	fmt.Fprintln(Out, infoStyle.Render("•"), fmt.Sprintf(format, a...))
}

// Up and Down render a target state word.
func Up() string   { return successStyle.Render("UP") }
func Down() string { return errorStyle.Render("DOWN") }

func Muted(s string) string { return mutedStyle.Render(s) }
func Bold(s string) string  { return boldStyle.Render(s) }
