package app

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/fpt/notice-cli/pkg/agent/domain"
	"github.com/fpt/notice-cli/pkg/message"
)

// Front-end texts.
const (
	AppTitle        = "⚖️ The Consumer Rights Defender"
	InputPrompt     = "Describe your grievance:"
	InputExample    = "E.g., My landlord is refusing to return my security deposit of ₹20,000..."
	BusyLabel       = "🔍 Agent is searching laws & drafting notice..."
	NoticeHeader    = "📜 Drafted Notice"
	noticeRule      = "---"
	defaultTermCols = 80
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#d4a017"))
	captionStyle = lipgloss.NewStyle().Faint(true)
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#01cdfe"))
	ruleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#9ca3d8"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff5f5f"))
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

// terminalWidth returns the width of stdout, falling back to 80 columns.
func terminalWidth() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return defaultTermCols
}

func styled(s lipgloss.Style, text string, colored bool) string {
	if !colored {
		return text
	}
	return s.Render(text)
}

// WriteSplashScreen writes the title block centered in the terminal.
func WriteSplashScreen(w io.Writer, model, search string, colored bool) {
	if w == nil {
		return
	}
	lines := []string{
		styled(titleStyle, AppTitle, colored),
		styled(captionStyle, fmt.Sprintf("Powered by %s & %s", model, search), colored),
	}
	width := terminalWidth()
	for _, l := range lines {
		pad := (width - lipgloss.Width(l)) / 2
		if pad < 2 {
			pad = 2
		}
		fmt.Fprintf(w, "%s%s\n", strings.Repeat(" ", pad), l)
	}
	fmt.Fprintln(w)
}

// WriteNotice writes the drafted notice framed by horizontal rules.
func WriteNotice(w io.Writer, notice string, colored bool) {
	if w == nil {
		return
	}
	fmt.Fprintln(w, styled(headerStyle, NoticeHeader, colored))
	fmt.Fprintln(w, styled(ruleStyle, noticeRule, colored))
	fmt.Fprintln(w, strings.TrimRight(notice, "\n"))
	fmt.Fprintln(w, styled(ruleStyle, noticeRule, colored))
}

// WriteError writes a rendered error line.
func WriteError(w io.Writer, err error, colored bool) {
	if w == nil || err == nil {
		return
	}
	fmt.Fprintln(w, styled(errorStyle, "❌ "+RenderError(err), colored))
}

// WriteTranscript writes each entry, truncating long texts to maxChars runes.
func WriteTranscript(w io.Writer, entries []domain.TranscriptEntry, maxChars int) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "📜 No conversation history found.")
		return
	}
	for _, e := range entries {
		label := "👤 You:"
		if e.Role == domain.AgentTurn {
			label = "⚖️ Agent:"
		}
		text := e.Text
		if maxChars > 0 {
			text = message.Truncate(text, maxChars)
		}
		fmt.Fprintf(w, "%s %s\n\n", label, text)
	}
}
