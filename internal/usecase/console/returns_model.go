package console

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"returnsdesk/internal/bootstrap/logging"
	"returnsdesk/internal/domain/returns"
)

const maxShownRecords = 15

// RecordSource is the read side the console polls.
type RecordSource interface {
	Records(ctx context.Context) ([]returns.ReturnRecord, error)
}

type Options struct {
	RefreshInterval time.Duration
}

// originFilters cycles with the "o" key; empty means every origin.
var originFilters = []returns.Origin{"", returns.OriginForm, returns.OriginNaturalLanguage}

type returnsModel struct {
	ctx             context.Context
	source          RecordSource
	refreshInterval time.Duration

	records       []returns.ReturnRecord
	visible       []returns.ReturnRecord
	summary       returns.SummaryTable
	originIndex   int
	selectedIndex int
	status        string
}

type recordsLoadedMsg struct {
	items []returns.ReturnRecord
	err   error
}

type tickMsg struct{}

// NewReturnsModel builds a read-only console over the committed records.
func NewReturnsModel(ctx context.Context, source RecordSource, options Options) tea.Model {
	interval := options.RefreshInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &returnsModel{
		ctx:             ctx,
		source:          source,
		refreshInterval: interval,
		status:          "loading",
	}
}

func (m *returnsModel) Init() tea.Cmd {
	return tea.Batch(m.loadRecordsCmd(), m.tickCmd())
}

func (m *returnsModel) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := message.(type) {
	case tickMsg:
		return m, tea.Batch(m.loadRecordsCmd(), m.tickCmd())
	case recordsLoadedMsg:
		if msg.err != nil {
			m.status = "refresh failed: " + msg.err.Error()
			logging.Warn(m.ctx, "console refresh failed", slog.String("err", msg.err.Error()))
			return m, nil
		}
		m.records = msg.items
		m.applyFilter()
		m.status = fmt.Sprintf("refreshed, %d records", len(m.records))
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "g":
			m.status = "refreshing"
			return m, m.loadRecordsCmd()
		case "o":
			m.originIndex = (m.originIndex + 1) % len(originFilters)
			m.applyFilter()
			return m, nil
		case "up", "k":
			if m.selectedIndex > 0 {
				m.selectedIndex--
			}
			return m, nil
		case "down", "j":
			if m.selectedIndex < len(m.visible)-1 {
				m.selectedIndex++
			}
			return m, nil
		}
	}
	return m, nil
}

func (m *returnsModel) applyFilter() {
	origin := originFilters[m.originIndex]
	m.visible = m.visible[:0]
	for _, r := range m.records {
		if origin == "" || r.Origin == origin {
			m.visible = append(m.visible, r)
		}
	}
	m.summary, _ = returns.Compile(m.visible)

	if m.selectedIndex >= len(m.visible) {
		m.selectedIndex = len(m.visible) - 1
	}
	if m.selectedIndex < 0 {
		m.selectedIndex = 0
	}
}

func (m *returnsModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true)
	sectionStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	selectedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("62"))

	origin := string(originFilters[m.originIndex])
	if origin == "" {
		origin = "all"
	}

	var builder strings.Builder
	builder.WriteString(titleStyle.Render("Returns Console"))
	builder.WriteString("\n")
	builder.WriteString(dimStyle.Render(fmt.Sprintf("origin=%s refresh=%s", origin, m.refreshInterval)))
	builder.WriteString("\n\n")

	builder.WriteString(sectionStyle.Render("Summary"))
	builder.WriteString("\n")
	for _, metric := range m.summary.Metrics() {
		builder.WriteString(fmt.Sprintf("%-18s %s\n", metric.Name, metric.Value))
	}
	builder.WriteString("\n")

	builder.WriteString(sectionStyle.Render("Records"))
	builder.WriteString("\n")
	if len(m.visible) == 0 {
		builder.WriteString(dimStyle.Render("- no records"))
		builder.WriteString("\n\n")
	} else {
		start, end := window(m.selectedIndex, len(m.visible), maxShownRecords)
		for index := start; index < end; index++ {
			r := m.visible[index]
			line := fmt.Sprintf("#%d %s [%s] %s %s", r.OrderID, r.Product, r.Category, r.StoreName, returns.FormatMoney(costDecimal(r)))
			if index == m.selectedIndex {
				builder.WriteString(selectedStyle.Render("> " + line))
			} else {
				builder.WriteString("  " + line)
			}
			builder.WriteString("\n")
		}
		builder.WriteString("\n")
	}

	builder.WriteString(sectionStyle.Render("Detail"))
	builder.WriteString("\n")
	if len(m.visible) == 0 {
		builder.WriteString(dimStyle.Render("- no detail"))
		builder.WriteString("\n\n")
	} else {
		r := m.visible[m.selectedIndex]
		builder.WriteString(fmt.Sprintf("OrderID: %d\n", r.OrderID))
		builder.WriteString(fmt.Sprintf("Product: %s\n", r.Product))
		builder.WriteString(fmt.Sprintf("Store: %s\n", r.StoreName))
		builder.WriteString(fmt.Sprintf("Category: %s\n", r.Category))
		builder.WriteString(fmt.Sprintf("Cost: %s\n", returns.FormatMoney(costDecimal(r))))
		builder.WriteString(fmt.Sprintf("Reason: %s\n", r.ReturnReason))
		builder.WriteString(fmt.Sprintf("Approved: %s\n", r.ApprovedFlag))
		builder.WriteString(fmt.Sprintf("Origin: %s\n", r.Origin))
		builder.WriteString(fmt.Sprintf("Created: %s\n", r.CreatedAt.UTC().Format(time.RFC3339)))
		builder.WriteString("\n")
	}

	builder.WriteString(sectionStyle.Render("Status"))
	builder.WriteString("\n")
	builder.WriteString("- " + m.status)
	builder.WriteString("\n\n")

	builder.WriteString(dimStyle.Render("Keys: ↑/k ↓/j move  o origin  g refresh  q quit"))
	return builder.String()
}

func (m *returnsModel) tickCmd() tea.Cmd {
	return tea.Tick(m.refreshInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (m *returnsModel) loadRecordsCmd() tea.Cmd {
	return func() tea.Msg {
		items, err := m.source.Records(m.ctx)
		return recordsLoadedMsg{items: items, err: err}
	}
}

func costDecimal(r returns.ReturnRecord) decimal.Decimal {
	return decimal.NewFromFloat(r.Cost)
}

// window keeps the selected row inside a page of size rows.
func window(selected, total, size int) (int, int) {
	if total <= size {
		return 0, total
	}
	start := selected - size/2
	if start < 0 {
		start = 0
	}
	if start+size > total {
		start = total - size
	}
	return start, start + size
}
