package seed

import (
	"context"
	"encoding/csv"
	"net/http"
	"time"

	"returnsdesk/internal/errs"
	"returnsdesk/internal/ports"
)

// CSVSource reads a comma separated export with a header row.
type CSVSource struct {
	location string
	client   *http.Client
}

var _ ports.SeedSource = (*CSVSource)(nil)

func NewCSVSource(location string) *CSVSource {
	return &CSVSource{
		location: location,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *CSVSource) Describe() string { return "csv:" + s.location }

func (s *CSVSource) Rows(ctx context.Context) ([]ports.SeedRow, error) {
	body, err := open(ctx, s.client, s.location)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	reader := csv.NewReader(body)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	table, err := reader.ReadAll()
	if err != nil {
		return nil, errs.Wrap(err, "parse seed csv")
	}
	return rowsFromTable(table), nil
}
