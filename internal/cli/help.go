package cli

import (
	"fmt"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
)

var (
	helpDescStyle    = lipgloss.NewStyle().Foreground(accentColor).Italic(true).MarginBottom(1)
	helpSectionStyle = lipgloss.NewStyle().Bold(true).Foreground(accentColor).MarginTop(1)
	helpFlagStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00AA00"))
	helpArgStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00AAAA"))
)

// helpEntry is one argument or flag line in a help section.
type helpEntry struct {
	term string
	help string
}

// StyledHelpPrinter builds a kong help printer rendering the styled help
// screen instead of kong's default layout.
func StyledHelpPrinter(options kong.HelpOptions) func(options kong.HelpOptions, ctx *kong.Context) error {
	return func(options kong.HelpOptions, ctx *kong.Context) error {
		var sb strings.Builder

		sb.WriteString(titleStyle.Render("Speechmark 🎙"))
		sb.WriteString("\n")
		sb.WriteString(helpDescStyle.Render("Speech recording analyzer: silence trimming, speakers, emotions, subtitles"))
		sb.WriteString("\n")
		sb.WriteString(helpSectionStyle.Render("Usage:"))
		sb.WriteString(fmt.Sprintf("\n  %s [flags] <files> ...\n", ctx.Model.Name))

		writeSection(&sb, "Arguments:", helpArgStyle, arguments(ctx))
		writeSection(&sb, "Flags:", helpFlagStyle, flags(ctx))

		sb.WriteString("\n")
		fmt.Fprint(ctx.Stdout, sb.String())
		return nil
	}
}

func writeSection(sb *strings.Builder, title string, termStyle lipgloss.Style, entries []helpEntry) {
	if len(entries) == 0 {
		return
	}
	sb.WriteString("\n")
	sb.WriteString(helpSectionStyle.Render(title))
	sb.WriteString("\n")
	for _, e := range entries {
		sb.WriteString("  ")
		sb.WriteString(termStyle.Render(e.term))
		if e.help != "" {
			sb.WriteString("  ")
			sb.WriteString(e.help)
		}
		sb.WriteString("\n")
	}
}

func arguments(ctx *kong.Context) []helpEntry {
	var out []helpEntry
	for _, arg := range ctx.Model.Node.Positional {
		out = append(out, helpEntry{term: arg.Summary(), help: arg.Help})
	}
	return out
}

func flags(ctx *kong.Context) []helpEntry {
	out := []helpEntry{{term: "-h, --help", help: "Show context-sensitive help."}}

	for _, f := range ctx.Model.Node.Flags {
		if f.Name == "help" {
			continue
		}
		term := "--" + f.Name
		if f.Short != 0 {
			term = fmt.Sprintf("-%c, --%s", f.Short, f.Name)
		}
		if !f.IsBool() && f.PlaceHolder != "" {
			term += "=" + strings.ToUpper(f.PlaceHolder)
		}
		out = append(out, helpEntry{term: term, help: f.Help})
	}
	return out
}
