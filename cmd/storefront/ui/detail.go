package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

type detailPage struct {
	viewport viewport.Model
	// shownID is the product currently rendered into the viewport.
	shownID int64
}

func newDetailPage() detailPage {
	return detailPage{viewport: viewport.New(MinimumTerminalWidth, 10)}
}

// refreshDetail renders the selected product once per product and width.
func (m *Model) refreshDetail() {
	p, ok := m.state.Catalog.Selected.Value()
	if !ok {
		m.detail.shownID = 0
		return
	}
	if p.ID == m.detail.shownID {
		return
	}
	m.detail.viewport.SetContent(ProductDetail(p, m.styles, m.layout.MarkdownWidth()))
	m.detail.viewport.GotoTop()
	m.detail.shownID = p.ID
}

func (m *Model) detailKey(k tea.KeyMsg) tea.Cmd {
	switch k.String() {
	case "esc", "backspace":
		m.app.Catalog.ClearSelection()
		m.page = PageCatalog
		return nil
	case "+", "=":
		if p, ok := m.state.Catalog.Selected.Value(); ok {
			m.addToCart(p)
		}
		return nil
	}
	var cmd tea.Cmd
	m.detail.viewport, cmd = m.detail.viewport.Update(k)
	return cmd
}

func (m Model) detailView() string {
	sel := m.state.Catalog.Selected
	switch {
	case sel.IsPending():
		return m.styles.Muted.Render("Loading product...")
	case sel.IsFailed():
		_, msg, _ := sel.Err()
		var sb strings.Builder
		sb.WriteString(m.styles.Error.Render(msg))
		sb.WriteString("\n")
		sb.WriteString(m.styles.Muted.Render("Press esc to go back."))
		return sb.String()
	case sel.IsIdle():
		return m.styles.Muted.Render("Product not found")
	}
	return m.detail.viewport.View()
}
