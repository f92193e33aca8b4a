package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultSearchDelay is how long typing must pause before a search runs.
const DefaultSearchDelay = 350 * time.Millisecond

// debounceMsg fires after a Debouncer delay. Only the latest one is live.
type debounceMsg struct {
	tag string
	seq int
}

// Debouncer collapses bursts of events into one. Each Trigger supersedes the
// previous one; only the newest tick is reported live by Fire.
type Debouncer struct {
	tag      string
	seq      int
	duration time.Duration
}

// NewDebouncer creates a debouncer whose ticks carry tag.
func NewDebouncer(tag string, d time.Duration) *Debouncer {
	return &Debouncer{tag: tag, duration: d}
}

// Trigger restarts the delay and returns the tick command.
func (d *Debouncer) Trigger() tea.Cmd {
	d.seq++
	msg := debounceMsg{tag: d.tag, seq: d.seq}
	return tea.Tick(d.duration, func(time.Time) tea.Msg { return msg })
}

// Cancel makes every pending tick stale.
func (d *Debouncer) Cancel() {
	d.seq++
}

// Fire reports whether msg is this debouncer's newest tick.
func (d *Debouncer) Fire(msg tea.Msg) bool {
	m, ok := msg.(debounceMsg)
	return ok && m.tag == d.tag && m.seq == d.seq
}
