package seed

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"returnsdesk/internal/errs"
	"returnsdesk/internal/ports"
)

// XLSXSource reads one worksheet of a workbook. An empty sheet name means
// the first sheet.
type XLSXSource struct {
	location string
	sheet    string
	client   *http.Client
}

var _ ports.SeedSource = (*XLSXSource)(nil)

func NewXLSXSource(location string, sheet string) *XLSXSource {
	return &XLSXSource{
		location: location,
		sheet:    strings.TrimSpace(sheet),
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *XLSXSource) Describe() string {
	if s.sheet == "" {
		return "xlsx:" + s.location
	}
	return fmt.Sprintf("xlsx:%s#%s", s.location, s.sheet)
}

func (s *XLSXSource) Rows(ctx context.Context) ([]ports.SeedRow, error) {
	body, err := open(ctx, s.client, s.location)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	f, err := excelize.OpenReader(body)
	if err != nil {
		return nil, errs.Wrap(err, "open seed workbook")
	}
	defer f.Close()

	sheet := s.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("seed workbook %s has no sheets", s.location)
		}
		sheet = sheets[0]
	}

	table, err := f.GetRows(sheet)
	if err != nil {
		return nil, errs.Wrapf(err, "read seed sheet %s", sheet)
	}
	return rowsFromTable(table), nil
}
