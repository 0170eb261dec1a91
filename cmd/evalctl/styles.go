package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/operacoevilla-web/avalia-o-desempenho/internal/narrative"
	"github.com/operacoevilla-web/avalia-o-desempenho/internal/rubric"
)

var (
	brand = lipgloss.Color("#1e3a8a")
	muted = lipgloss.Color("#64748b")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(brand)
	h1Style      = lipgloss.NewStyle().Bold(true).Foreground(brand).Underline(true)
	h2Style      = lipgloss.NewStyle().Bold(true).Foreground(brand)
	h3Style      = lipgloss.NewStyle().Bold(true)
	boldStyle    = lipgloss.NewStyle().Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(muted)
	bulletStyle  = lipgloss.NewStyle().Foreground(brand)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#16a34a"))
)

func ratingStyle(catalog *rubric.Catalog, r rubric.Rating) lipgloss.Style {
	opt, ok := catalog.Option(r)
	if !ok {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(opt.Color))
}

func renderRuns(runs []narrative.Run) string {
	var b strings.Builder
	for _, run := range runs {
		if run.Bold {
			b.WriteString(boldStyle.Render(run.Text))
			continue
		}
		b.WriteString(run.Text)
	}
	return b.String()
}

// renderBlocks lays out narrative blocks for a terminal.
func renderBlocks(blocks []narrative.Block) string {
	var b strings.Builder
	for _, block := range blocks {
		switch block.Kind {
		case narrative.Heading1:
			b.WriteString(h1Style.Render(block.Text()))
		case narrative.Heading2:
			b.WriteString(h2Style.Render(block.Text()))
		case narrative.Heading3:
			b.WriteString(h3Style.Render(block.Text()))
		case narrative.ListItem:
			b.WriteString(bulletStyle.Render("  • ") + renderRuns(block.Runs))
		case narrative.Spacer:
		default:
			b.WriteString(renderRuns(block.Runs))
		}
		b.WriteString("\n")
	}
	return b.String()
}
