package console

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"returnsdesk/internal/domain/returns"
)

type staticRecords struct {
	items []returns.ReturnRecord
	err   error
}

func (s staticRecords) Records(context.Context) ([]returns.ReturnRecord, error) {
	return s.items, s.err
}

func consoleRecords() []returns.ReturnRecord {
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	return []returns.ReturnRecord{
		{OrderID: 1, Product: "Widget", StoreName: "Xinyi", Category: returns.CategoryElectronics, Cost: 10, ReturnReason: "Defective", ApprovedFlag: returns.ApprovedYes, Origin: returns.OriginForm, CreatedAt: at},
		{OrderID: 2, Product: "Blender", StoreName: returns.UnknownText, Category: returns.CategoryAppliances, Cost: 0, ReturnReason: "Broken", ApprovedFlag: returns.ApprovedNo, Origin: returns.OriginNaturalLanguage, CreatedAt: at},
	}
}

func loadedModel(t *testing.T) *returnsModel {
	t.Helper()

	source := staticRecords{items: consoleRecords()}
	model := NewReturnsModel(context.Background(), source, Options{}).(*returnsModel)
	msg := model.loadRecordsCmd()()
	updated, _ := model.Update(msg)
	return updated.(*returnsModel)
}

func TestReturnsModelLoadsRecordsAndSummary(t *testing.T) {
	model := loadedModel(t)

	if len(model.visible) != 2 || model.summary.TotalRecords != 2 {
		t.Fatalf("visible = %d, summary = %+v", len(model.visible), model.summary)
	}
	view := model.View()
	for _, want := range []string{"#1 Widget", "#2 Blender", "Total returns", "$10.00", "OrderID: 1"} {
		if !strings.Contains(view, want) {
			t.Fatalf("View() missing %q:\n%s", want, view)
		}
	}
}

func TestReturnsModelOriginFilterAndSelection(t *testing.T) {
	model := loadedModel(t)

	model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	if model.selectedIndex != 1 {
		t.Fatalf("selectedIndex = %d, want 1", model.selectedIndex)
	}

	model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("o")})
	if len(model.visible) != 1 || model.visible[0].Origin != returns.OriginForm {
		t.Fatalf("visible after origin=Form = %+v", model.visible)
	}
	if model.selectedIndex != 0 {
		t.Fatalf("selectedIndex = %d, want clamp to 0", model.selectedIndex)
	}

	model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("o")})
	if len(model.visible) != 1 || model.visible[0].Origin != returns.OriginNaturalLanguage {
		t.Fatalf("visible after origin=NaturalLanguage = %+v", model.visible)
	}
	if !strings.Contains(model.View(), "origin=NaturalLanguage") {
		t.Fatalf("View() does not show origin filter")
	}
}

func TestReturnsModelKeepsRecordsOnRefreshError(t *testing.T) {
	model := loadedModel(t)

	model.Update(recordsLoadedMsg{err: errors.New("database is locked")})
	if len(model.visible) != 2 {
		t.Fatalf("visible = %d, want 2 after failed refresh", len(model.visible))
	}
	if !strings.Contains(model.status, "database is locked") {
		t.Fatalf("status = %q", model.status)
	}
}

func TestWindowKeepsSelectionVisible(t *testing.T) {
	cases := []struct {
		selected, total, size int
		start, end            int
	}{
		{0, 5, 10, 0, 5},
		{0, 30, 10, 0, 10},
		{15, 30, 10, 10, 20},
		{29, 30, 10, 20, 30},
	}
	for _, tc := range cases {
		start, end := window(tc.selected, tc.total, tc.size)
		if start != tc.start || end != tc.end {
			t.Fatalf("window(%d,%d,%d) = %d,%d want %d,%d", tc.selected, tc.total, tc.size, start, end, tc.start, tc.end)
		}
	}
}
