package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"yolo/internal/buildinfo"
	"yolo/internal/config"
)

const (
	colorAccent lipgloss.Color = "#89b4fa"
	colorLabel  lipgloss.Color = "#7f849c"
	colorValue  lipgloss.Color = "#cdd6f4"
)

const logo = `  _        _          _            _             _
/\ \     /\_\       /\ \         _\ \          /\ \
\ \ \   / / /      /  \ \       /\__ \        /  \ \
 \ \ \_/ / /      / /\ \ \     / /_ \_\      / /\ \ \
  \ \___/ /      / / /\ \ \   / / /\/_/     / / /\ \ \
   \ \ \_/      / / /  \ \_\ / / /         / / /  \ \_\
    \ \ \      / / /   / / // / /         / / /   / / /
     \ \ \    / / /   / / // / / ____    / / /   / / /
      \ \ \  / / /___/ / // /_/_/ ___/\ / / /___/ / /
       \ \_\/ / /____\/ //_______/\__\// / /____\/ /
        \/_/\/_________/ \_______\/    \/_________/`

// printBanner writes the resolved settings and the logo.
func printBanner(w io.Writer, cfg config.Config) {
	r := lipgloss.NewRenderer(w)
	label := r.NewStyle().Foreground(colorLabel).Width(17)
	value := r.NewStyle().Foreground(colorValue)

	vertex := cfg.Vertex
	if vertex == "" {
		vertex = "(built-in)"
	}

	rows := [][2]string{
		{"Fragment Shader:", cfg.Fragment},
		{"Vertex Shader:", vertex},
		{"Screen Width:", fmt.Sprint(cfg.Width)},
		{"Screen Height:", fmt.Sprint(cfg.Height)},
		{"VSync:", fmt.Sprint(cfg.VSync)},
		{"Time:", fmt.Sprint(cfg.TimeStep)},
		{"Backend:", cfg.Backend},
	}
	if cfg.MSAA > 0 {
		rows = append(rows, [2]string{"MSAA:", fmt.Sprintf("%dx", cfg.MSAA)})
	}
	if cfg.Reload {
		rows = append(rows, [2]string{"Reload:", "on"})
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, label.Render(row[0])+value.Render(row[1]))
	}

	box := r.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(colorLabel).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))

	title := r.NewStyle().Bold(true).Foreground(colorAccent).
		Render("yolo " + buildinfo.Short())

	fmt.Fprintln(w, lipgloss.JoinVertical(lipgloss.Left, box, "", title, "", logo))
	fmt.Fprintln(w)
}
