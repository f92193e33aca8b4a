package ui

import (
	"strings"
	"testing"
)

func TestSimpleTable(t *testing.T) {
	table := NewSimpleTable("Test Table", []string{"Col1", "Col2"})
	table.AddRow("Row1Col1", "Row1Col2")

	styles := DefaultStyles()
	view := table.View(styles)

	t.Logf("View:\n%q", view)

	if !strings.Contains(view, "Test Table") {
		t.Error("View missing title")
	}
	if !strings.Contains(view, "Row1Col1") {
		t.Error("View missing cell content")
	}
}

func TestSimpleTable_Empty(t *testing.T) {
	table := NewSimpleTable("Nothing", []string{"A"})
	if view := table.View(DefaultStyles()); view != "" {
		t.Errorf("expected empty view, got %q", view)
	}
}

func TestSimpleTable_RightAlign(t *testing.T) {
	table := NewSimpleTable("", []string{"Name", "Price"}).AlignRight(1)
	table.AddRow("Hat", "$1.00")
	table.AddRow("Coat", "$120.00")

	lines := strings.Split(strings.TrimRight(table.View(DefaultStyles()), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header, divider and two rows, got %d lines", len(lines))
	}
	hat, coat := strings.TrimRight(lines[2], " "), strings.TrimRight(lines[3], " ")
	if !strings.HasSuffix(hat, "$1.00") || !strings.HasSuffix(coat, "$120.00") {
		t.Fatalf("prices not right-aligned:\n%s\n%s", hat, coat)
	}
	if len([]rune(hat)) != len([]rune(coat)) {
		t.Errorf("right-aligned rows should end in the same column:\n%s\n%s", hat, coat)
	}
}
