package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strings"

	"returnsdesk/internal/bootstrap/config"
	"returnsdesk/internal/errs"
	"returnsdesk/internal/ports"
)

// NewSource picks the reader from the source extension. An empty source
// returns (nil, nil) and seeding is disabled.
func NewSource(cfg config.SeedConfig) (ports.SeedSource, error) {
	location := strings.TrimSpace(cfg.Source)
	if location == "" {
		return nil, nil
	}

	switch ext := strings.ToLower(path.Ext(stripQuery(location))); ext {
	case ".xlsx", ".xlsm":
		return NewXLSXSource(location, cfg.Sheet), nil
	case ".csv", "":
		// Spreadsheet export links usually carry format=csv in the query.
		return NewCSVSource(location), nil
	default:
		return nil, fmt.Errorf("unsupported seed source extension %q", ext)
	}
}

func stripQuery(location string) string {
	if i := strings.IndexAny(location, "?#"); i >= 0 {
		return location[:i]
	}
	return location
}

func isRemote(location string) bool {
	lower := strings.ToLower(location)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// open returns a reader for a local path or an http(s) URL.
func open(ctx context.Context, client *http.Client, location string) (io.ReadCloser, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if !isRemote(location) {
		f, err := os.Open(location)
		if err != nil {
			return nil, errs.Wrapf(err, "open seed file %s", location)
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, errs.Wrap(err, "build seed request")
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, errs.Wrap(err, "fetch seed source")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("fetch seed source: unexpected status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// rowsFromTable maps a header row onto each following row. Headers are
// lowercased and spaces become underscores. Blank rows are dropped.
func rowsFromTable(table [][]string) []ports.SeedRow {
	if len(table) == 0 {
		return nil
	}

	headers := make([]string, len(table[0]))
	for i, h := range table[0] {
		h = strings.TrimPrefix(h, "\ufeff")
		headers[i] = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
	}

	rows := make([]ports.SeedRow, 0, len(table)-1)
	for _, record := range table[1:] {
		row := make(ports.SeedRow, len(headers))
		blank := true
		for i, h := range headers {
			if h == "" || i >= len(record) {
				continue
			}
			value := strings.TrimSpace(record[i])
			if value != "" {
				blank = false
			}
			row[h] = value
		}
		if !blank {
			rows = append(rows, row)
		}
	}
	return rows
}
