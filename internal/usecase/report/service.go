package report

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"returnsdesk/internal/bootstrap/logging"
	"returnsdesk/internal/domain/returns"
	"returnsdesk/internal/errs"
	"returnsdesk/internal/ports"
)

// ErrEmptyReport is returned when an artifact is requested for an empty store.
var ErrEmptyReport = errors.New("no return records to report")

// Service compiles the stored records into report tables and artifacts. It
// only reads storage.
type Service struct {
	repo   ports.ReturnReadRepository
	writer ports.ReportWriter
	source string
	now    func() time.Time
}

func NewService(repo ports.ReturnReadRepository, writer ports.ReportWriter, source string) *Service {
	return &Service{repo: repo, writer: writer, source: source, now: time.Now}
}

// Records returns every committed record ordered by order_id.
func (s *Service) Records(ctx context.Context) ([]returns.ReturnRecord, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if s.repo == nil {
		return nil, errors.New("report repository is required")
	}
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, errs.Wrap(err, "list return records")
	}
	return records, nil
}

// Compile builds the summary and detail tables from the current store.
func (s *Service) Compile(ctx context.Context) (returns.SummaryTable, returns.DetailTable, error) {
	records, err := s.Records(ctx)
	if err != nil {
		return returns.SummaryTable{}, returns.DetailTable{}, err
	}
	summary, detail := returns.Compile(records)
	return summary, detail, nil
}

// WriteArtifact compiles the store and renders it to w.
func (s *Service) WriteArtifact(ctx context.Context, w io.Writer) error {
	if s.writer == nil {
		return errors.New("report writer is required")
	}
	summary, detail, err := s.Compile(ctx)
	if err != nil {
		return err
	}
	if summary.TotalRecords == 0 {
		return ErrEmptyReport
	}

	ctx = logging.WithAttrs(ctx, slog.String("component", "usecase.report"))
	if err := s.writer.Write(ctx, w, summary, detail, ports.ReportMeta{
		GeneratedAt: s.now().UTC(),
		Source:      s.source,
	}); err != nil {
		return errs.Wrap(err, "render report")
	}
	logging.Info(ctx, "report rendered", slog.Int("records", summary.TotalRecords))
	return nil
}

// ContentType is the MIME type of WriteArtifact output.
func (s *Service) ContentType() string {
	if s.writer == nil {
		return "application/octet-stream"
	}
	return s.writer.ContentType()
}

// Generate writes the artifact to path. The file is written to a temporary
// sibling first and renamed, so a failed run leaves no partial file.
func (s *Service) Generate(ctx context.Context, path string) error {
	if path == "" {
		return errors.New("report path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errs.Wrapf(err, "create report directory %s", dir)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".report-*.tmp")
	if err != nil {
		return errs.Wrap(err, "create temporary report file")
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if err := s.WriteArtifact(ctx, tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return errs.Wrap(err, "close temporary report file")
	}
	if err := os.Rename(tmpName, path); err != nil {
		return errs.Wrapf(err, "move report into %s", path)
	}

	logging.Info(ctx, "report written",
		slog.String("component", "usecase.report"),
		slog.String("path", path),
	)
	return nil
}
