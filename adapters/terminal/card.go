// Package terminal renders session cards for the command line.
package terminal

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/khoahotran/codejourney/internal/domain/platform"
	"github.com/khoahotran/codejourney/internal/domain/session"
)

type Palette struct {
	Foreground lipgloss.Color
	Title      lipgloss.Color
	Label      lipgloss.Color
	Border     lipgloss.Color
	Link       lipgloss.Color
	Error      lipgloss.Color
}

var (
	darkPalette = Palette{
		Foreground: lipgloss.Color("#f2f2f2"),
		Title:      lipgloss.Color("#60a5fa"),
		Label:      lipgloss.Color("#a78bfa"),
		Border:     lipgloss.Color("#3f3f46"),
		Link:       lipgloss.Color("#93c5fd"),
		Error:      lipgloss.Color("#f87171"),
	}
	lightPalette = Palette{
		Foreground: lipgloss.Color("#111827"),
		Title:      lipgloss.Color("#db2777"),
		Label:      lipgloss.Color("#ca8a04"),
		Border:     lipgloss.Color("#d1d5db"),
		Link:       lipgloss.Color("#2563eb"),
		Error:      lipgloss.Color("#dc2626"),
	}
)

func PaletteFor(theme platform.Theme) Palette {
	if theme.IsDark() {
		return darkPalette
	}
	return lightPalette
}

type Renderer struct {
	card  lipgloss.Style
	title lipgloss.Style
	label lipgloss.Style
	value lipgloss.Style
	link  lipgloss.Style
	err   lipgloss.Style
	muted lipgloss.Style
}

func NewRenderer(theme platform.Theme) *Renderer {
	p := PaletteFor(theme)
	return &Renderer{
		card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Border).
			Foreground(p.Foreground).
			Padding(0, 1).
			MarginBottom(1),
		title: lipgloss.NewStyle().Bold(true).Foreground(p.Title),
		label: lipgloss.NewStyle().Foreground(p.Label).Width(18),
		value: lipgloss.NewStyle().Foreground(p.Foreground),
		link:  lipgloss.NewStyle().Foreground(p.Link).Underline(true),
		err:   lipgloss.NewStyle().Bold(true).Foreground(p.Error),
		muted: lipgloss.NewStyle().Faint(true),
	}
}

// RenderView renders the error line, every card in order and the last-updated footer.
func (r *Renderer) RenderView(v session.View, lastUpdated string) string {
	var b strings.Builder
	if v.Error != "" {
		b.WriteString(r.err.Render(v.Error))
		b.WriteString("\n\n")
	}
	for _, c := range v.Cards {
		b.WriteString(r.RenderCard(c))
		b.WriteString("\n")
	}
	if lastUpdated != "" {
		b.WriteString(r.muted.Render("Last updated: " + lastUpdated))
		b.WriteString("\n")
	}
	return b.String()
}

func (r *Renderer) RenderCard(c session.Card) string {
	lines := []string{r.title.Render(cardTitle(c))}

	switch c.Kind {
	case platform.KindImage:
		lines = append(lines, r.row("Card", c.ImageURL))
	case platform.KindJSON:
		if c.AvatarURL != "" {
			lines = append(lines, r.row("Avatar", c.AvatarURL))
		}
		for _, f := range c.Fields {
			if f.Value == "" {
				continue
			}
			lines = append(lines, r.row(f.Label, f.Value))
		}
		if c.FlagURL != "" {
			lines = append(lines, r.row("Flag", c.FlagURL))
		}
	}
	lines = append(lines, r.link.Render(c.ProfileURL))

	return r.card.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (r *Renderer) row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, r.label.Render(label), r.value.Render(value))
}

func cardTitle(c session.Card) string {
	if c.Title != "" {
		return fmt.Sprintf("%s (%s)", c.Title, c.Handle)
	}
	return fmt.Sprintf("%s (%s)", c.Name, c.Handle)
}
