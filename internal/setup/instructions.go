package setup

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4f8cff"))
	tokenStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#2fd576"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#9aa4b2"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f2c94c"))
)

// Instructions renders the GitHub Actions setup steps, interpolating the
// minted token and the detected identity.
func Instructions(result *Result, color bool) string {
	style := func(s lipgloss.Style, text string) string {
		if !color {
			return text
		}
		return s.Render(text)
	}

	var b strings.Builder
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "%s\n", style(headerStyle, "Deploy token created: "+result.TokenName))
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "  %s\n", style(tokenStyle, result.Token))
	fmt.Fprintln(&b)

	switch result.CopiedVia {
	case "":
		fmt.Fprintf(&b, "%s\n", style(warningStyle, "No clipboard utility found; copy the token above manually."))
	default:
		fmt.Fprintf(&b, "Token copied to clipboard via %s.\n", result.CopiedVia)
	}
	fmt.Fprintln(&b)

	fmt.Fprintf(&b, "%s\n", style(headerStyle, "Add it to GitHub Actions:"))
	fmt.Fprintln(&b, "  1. Open your repository on GitHub")
	fmt.Fprintln(&b, "  2. Go to Settings > Secrets and variables > Actions")
	fmt.Fprintln(&b, "  3. Click 'New repository secret'")
	fmt.Fprintln(&b, "  4. Name:  FLY_API_TOKEN")
	fmt.Fprintln(&b, "     Value: the token above")
	fmt.Fprintln(&b, "  5. Commit a workflow that runs: flyctl deploy --remote-only")
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "%s\n", style(dimStyle, "Logged in as: "+result.Identity))
	return b.String()
}

func printInstructions(out io.Writer, result *Result, color bool) {
	io.WriteString(out, Instructions(result, color))
}
