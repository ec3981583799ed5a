package reportfile

import (
	"context"
	"errors"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"returnsdesk/internal/domain/returns"
	"returnsdesk/internal/errs"
	"returnsdesk/internal/ports"
)

const (
	SummarySheet  = "Summary"
	FindingsSheet = "Findings"

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// XLSXWriter renders the report as a workbook with a Summary sheet and a
// Findings sheet holding the detail rows.
type XLSXWriter struct{}

var _ ports.ReportWriter = XLSXWriter{}

func NewXLSXWriter() XLSXWriter { return XLSXWriter{} }

func (XLSXWriter) ContentType() string { return xlsxContentType }

func (XLSXWriter) Write(ctx context.Context, w io.Writer, summary returns.SummaryTable, detail returns.DetailTable, meta ports.ReportMeta) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if w == nil {
		return errors.New("writer is required")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return errs.Wrap(err, "rename summary sheet")
	}
	if _, err := f.NewSheet(FindingsSheet); err != nil {
		return errs.Wrap(err, "create findings sheet")
	}

	if err := writeSummary(f, summary); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}
	if err := writeFindings(f, detail); err != nil {
		return err
	}

	props := &excelize.DocProperties{
		Title:       "Return summary",
		Description: meta.Source,
	}
	if !meta.GeneratedAt.IsZero() {
		props.Created = meta.GeneratedAt.UTC().Format("2006-01-02T15:04:05Z")
	}
	if err := f.SetDocProps(props); err != nil {
		return errs.Wrap(err, "set document properties")
	}

	if err := f.Write(w); err != nil {
		return errs.Wrap(err, "write workbook")
	}
	return nil
}

func writeSummary(f *excelize.File, summary returns.SummaryTable) error {
	rows := [][]any{{"Metric", "Value"}}
	for _, m := range summary.Metrics() {
		rows = append(rows, []any{m.Name, m.Value})
	}
	rows = append(rows, nil)
	rows = appendGroups(rows, "Category", summary.ByCategory)
	rows = append(rows, nil)
	rows = appendGroups(rows, "Store", summary.ByStore)
	return setRows(f, SummarySheet, rows)
}

func appendGroups(rows [][]any, title string, groups []returns.GroupRow) [][]any {
	rows = append(rows, []any{title, "Returns", "Approved", "Total cost"})
	for _, g := range groups {
		rows = append(rows, []any{g.Key, g.Records, g.Approved, returns.FormatMoney(g.TotalCost)})
	}
	return rows
}

func writeFindings(f *excelize.File, detail returns.DetailTable) error {
	rows := make([][]any, 0, len(detail.Rows)+1)
	header := make([]any, len(detail.Columns))
	for i, c := range detail.Columns {
		header[i] = c
	}
	rows = append(rows, header)
	for _, cells := range detail.Cells() {
		row := make([]any, len(cells))
		for i, c := range cells {
			row[i] = c
		}
		rows = append(rows, row)
	}
	return setRows(f, FindingsSheet, rows)
}

func setRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell := "A" + strconv.Itoa(i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return errs.Wrapf(err, "write %s row %d", sheet, i+1)
		}
	}
	return nil
}
