package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Palette shared by the help printer and status output.
var (
	primaryColor = lipgloss.Color("#005F87") // Speechmark blue
	accentColor  = lipgloss.Color("#FFA500")
	mutedColor   = lipgloss.Color("#888888")
	errorColor   = lipgloss.Color("#A40000")
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(primaryColor).MarginBottom(1)
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(errorColor)
	labelStyle = lipgloss.NewStyle().Foreground(mutedColor)
	valueStyle = lipgloss.NewStyle().Bold(true)
)

// PrintVersion prints the banner and version to stdout.
func PrintVersion(version string) {
	fmt.Println(titleStyle.Render("Speechmark 🎙"))
	fmt.Printf("%s %s\n\n", labelStyle.Render("Version:"), valueStyle.Render(version))
}

// PrintError prints an error line to stderr.
func PrintError(message string) {
	fmt.Fprintf(os.Stderr, "%s %s\n", errorStyle.Render("Error:"), message)
}
