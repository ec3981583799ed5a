package returns

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DetailColumns is the fixed field order of the detail table.
var DetailColumns = []string{
	"order_id",
	"product",
	"store_name",
	"category",
	"cost",
	"return_reason",
	"approved_flag",
	"origin",
	"created_at",
}

type GroupRow struct {
	Key       string
	Records   int
	Approved  int
	TotalCost decimal.Decimal
}

type SummaryTable struct {
	TotalRecords   int
	DistinctStores int
	ApprovedCount  int
	ApprovalRate   float64
	TotalCost      decimal.Decimal
	ByCategory     []GroupRow
	ByStore        []GroupRow
}

type Metric struct {
	Name  string
	Value string
}

// Metrics renders the headline figures in display order.
func (s SummaryTable) Metrics() []Metric {
	return []Metric{
		{Name: "Total returns", Value: strconv.Itoa(s.TotalRecords)},
		{Name: "Distinct stores", Value: strconv.Itoa(s.DistinctStores)},
		{Name: "Approved returns", Value: strconv.Itoa(s.ApprovedCount)},
		{Name: "Approval rate", Value: decimal.NewFromFloat(s.ApprovalRate * 100).StringFixed(2) + "%"},
		{Name: "Total return cost", Value: FormatMoney(s.TotalCost)},
	}
}

type DetailTable struct {
	Columns []string
	Rows    []ReturnRecord
}

// Cells renders every row as text in DetailColumns order.
func (t DetailTable) Cells() [][]string {
	out := make([][]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		out = append(out, []string{
			strconv.FormatUint(r.OrderID, 10),
			r.Product,
			r.StoreName,
			string(r.Category),
			decimal.NewFromFloat(r.Cost).StringFixed(2),
			r.ReturnReason,
			string(r.ApprovedFlag),
			string(r.Origin),
			r.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return out
}

// Compile aggregates records into the summary and detail tables. It does not
// modify records and its output depends only on the set it is given.
func Compile(records []ReturnRecord) (SummaryTable, DetailTable) {
	rows := make([]ReturnRecord, len(records))
	copy(rows, records)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].OrderID < rows[j].OrderID })

	summary := SummaryTable{TotalCost: decimal.Zero}
	byCategory := make(map[string]*GroupRow)
	byStore := make(map[string]*GroupRow)

	for _, r := range rows {
		cost := decimal.NewFromFloat(r.Cost)
		summary.TotalRecords++
		summary.TotalCost = summary.TotalCost.Add(cost)
		if r.Approved() {
			summary.ApprovedCount++
		}
		addToGroup(byCategory, string(r.Category), r, cost)
		addToGroup(byStore, r.StoreName, r, cost)
	}

	if summary.TotalRecords > 0 {
		summary.ApprovalRate = float64(summary.ApprovedCount) / float64(summary.TotalRecords)
	}
	summary.DistinctStores = len(byStore)
	summary.ByCategory = sortedGroups(byCategory)
	summary.ByStore = sortedGroups(byStore)

	columns := make([]string, len(DetailColumns))
	copy(columns, DetailColumns)
	return summary, DetailTable{Columns: columns, Rows: rows}
}

func addToGroup(groups map[string]*GroupRow, key string, r ReturnRecord, cost decimal.Decimal) {
	g, ok := groups[key]
	if !ok {
		g = &GroupRow{Key: key, TotalCost: decimal.Zero}
		groups[key] = g
	}
	g.Records++
	g.TotalCost = g.TotalCost.Add(cost)
	if r.Approved() {
		g.Approved++
	}
}

func sortedGroups(groups map[string]*GroupRow) []GroupRow {
	out := make([]GroupRow, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// FormatMoney renders an amount as "$1,234.50".
func FormatMoney(d decimal.Decimal) string {
	fixed := d.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, ch := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(ch)
	}

	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	return sign + "$" + b.String() + "." + frac
}
