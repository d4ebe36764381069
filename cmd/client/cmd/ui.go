package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Color palette and style chains mirror the teacher's terminal UI: a
// primary/accent/warning/error palette composed into a handful of named
// styles, reused across every rendered line instead of raw fmt output.
var (
	primaryColor   = lipgloss.Color("#7C3AED")
	secondaryColor = lipgloss.Color("#06B6D4")
	accentColor    = lipgloss.Color("#10B981")
	warningColor   = lipgloss.Color("#F59E0B")
	errorColor     = lipgloss.Color("#EF4444")
	textColor      = lipgloss.Color("#F8FAFC")
	mutedColor     = lipgloss.Color("#94A3B8")

	baseStyle = lipgloss.NewStyle().Foreground(textColor)

	headerStyle  = baseStyle.Foreground(primaryColor).Bold(true)
	turnStyle    = baseStyle.Foreground(secondaryColor)
	deltaStyle   = baseStyle.Foreground(mutedColor)
	acceptStyle  = baseStyle.Foreground(accentColor)
	rejectStyle  = baseStyle.Foreground(errorColor).Bold(true)
	desyncStyle  = baseStyle.Foreground(errorColor).Bold(true)
	lobbyStyle   = baseStyle.Foreground(secondaryColor)
	hostTagStyle = baseStyle.Foreground(accentColor).Bold(true)
	endStyle     = baseStyle.Foreground(primaryColor).Bold(true)
	notifyStyle  = baseStyle.Foreground(warningColor)
	promptStyle  = baseStyle.Foreground(primaryColor).Bold(true)
)

// termWidth returns the connected terminal's column count the way the
// teacher's UI does: stdout, falling back to stderr, then stdin, then the
// COLUMNS env var, then a fixed default.
func termWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		return w
	}
	if w, _, err := term.GetSize(int(os.Stderr.Fd())); err == nil {
		return w
	}
	if w, _, err := term.GetSize(int(os.Stdin.Fd())); err == nil {
		return w
	}
	if cols := os.Getenv("COLUMNS"); cols != "" {
		if w, err := strconv.Atoi(cols); err == nil {
			return w
		}
	}
	return 80
}

func printHeader(format string, args ...interface{}) {
	fmt.Println(headerStyle.Render(fmt.Sprintf(format, args...)))
}

func printTurn(format string, args ...interface{}) {
	fmt.Println(turnStyle.Render(fmt.Sprintf(format, args...)))
}

func printDelta(format string, args ...interface{}) {
	fmt.Println(deltaStyle.Render(fmt.Sprintf(format, args...)))
}

func printAccepted(format string, args ...interface{}) {
	fmt.Println(acceptStyle.Render(fmt.Sprintf(format, args...)))
}

func printRejected(format string, args ...interface{}) {
	fmt.Println(rejectStyle.Render(fmt.Sprintf(format, args...)))
}

func printDesync(format string, args ...interface{}) {
	fmt.Println(desyncStyle.Render(fmt.Sprintf(format, args...)))
}

func printLobby(format string, args ...interface{}) {
	fmt.Println(lobbyStyle.Render(fmt.Sprintf(format, args...)))
}

func printGameEnded(format string, args ...interface{}) {
	fmt.Println(endStyle.Render(fmt.Sprintf(format, args...)))
}

func printNotification(format string, args ...interface{}) {
	fmt.Println(notifyStyle.Render(fmt.Sprintf(format, args...)))
}

func printError(format string, args ...interface{}) {
	fmt.Println(rejectStyle.Render(fmt.Sprintf(format, args...)))
}

func printPrompt(s string) {
	fmt.Print(promptStyle.Render(s))
}

// separator draws a muted horizontal rule sized to the current terminal,
// the same device the teacher's RenderFullDisplay uses between sections.
func separator() string {
	width := termWidth()
	if width < 10 {
		width = 10
	}
	rule := ""
	for i := 0; i < width; i++ {
		rule += "─"
	}
	return deltaStyle.Render(rule)
}
