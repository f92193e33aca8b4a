package ui

// Layout constants for viewport and panel sizing
const (
	HeaderHeight    = 2
	TabBarHeight    = 2
	StatusBarHeight = 1
	FooterHeight    = 1

	// Table dimensions
	TableHeaderHeight = 2

	// Responsive breakpoints
	MinimumTerminalWidth = 60
	CompactModeWidth     = 100

	// Content widths
	MarkdownMaxWidth = 100
	FormWidth        = 40
)

// LayoutConfig provides computed layout dimensions based on terminal size
type LayoutConfig struct {
	TerminalWidth  int
	TerminalHeight int
	IsCompact      bool
}

// NewLayoutConfig creates a layout configuration for the given terminal size
func NewLayoutConfig(width, height int) LayoutConfig {
	return LayoutConfig{
		TerminalWidth:  width,
		TerminalHeight: height,
		IsCompact:      width < CompactModeWidth,
	}
}

// PageHeight is the height left for a page under the header, tabs and
// status line.
func (l LayoutConfig) PageHeight() int {
	h := l.TerminalHeight - HeaderHeight - TabBarHeight - StatusBarHeight - FooterHeight
	if h < 3 {
		return 3
	}
	return h
}

// PageWidth is the usable width for a page.
func (l LayoutConfig) PageWidth() int {
	if l.TerminalWidth < MinimumTerminalWidth {
		return MinimumTerminalWidth
	}
	return l.TerminalWidth
}

// MarkdownWidth caps rendered descriptions at a readable width.
func (l LayoutConfig) MarkdownWidth() int {
	w := l.PageWidth() - 4
	if w > MarkdownMaxWidth {
		return MarkdownMaxWidth
	}
	return w
}
