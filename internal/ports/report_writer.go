package ports

import (
	"context"
	"io"
	"time"

	"returnsdesk/internal/domain/returns"
)

// ReportMeta travels beside the compiled tables, never inside them.
type ReportMeta struct {
	GeneratedAt time.Time
	Source      string
}

// ReportWriter renders the summary and detail tables as one artifact.
type ReportWriter interface {
	Write(ctx context.Context, w io.Writer, summary returns.SummaryTable, detail returns.DetailTable, meta ReportMeta) error
	ContentType() string
}
