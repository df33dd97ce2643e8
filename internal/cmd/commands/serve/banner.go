package serve

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/mitchellh/cli"

	"github.com/hashicorp-forge/workflowy/internal/proxy"
)

var (
	styleTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#83a598"))
	styleKey   = lipgloss.NewStyle().Foreground(lipgloss.Color("#928374")).Width(10)
)

func printBanner(ui cli.Ui, serverURL, basePath, upstream string) {
	ui.Output(styleTitle.Render("Workflowy proxy"))
	ui.Output(fmt.Sprintf("  %s %s", styleKey.Render("Proxy:"), serverURL+basePath))
	ui.Output(fmt.Sprintf("  %s %s", styleKey.Render("Health:"), serverURL+proxy.HealthPath))
	ui.Output(fmt.Sprintf("  %s %s", styleKey.Render("Upstream:"), upstream))
	ui.Output("")
	ui.Output("Press Ctrl+C to stop.")
}
