package report

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"returnsdesk/internal/domain/returns"
	"returnsdesk/internal/ports"
)

type memoryRepo struct {
	records []returns.ReturnRecord
	err     error
}

func (r memoryRepo) List(ctx context.Context) ([]returns.ReturnRecord, error) {
	return r.records, r.err
}

func (r memoryRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(r.records)), r.err
}

type recordingWriter struct {
	summary returns.SummaryTable
	meta    ports.ReportMeta
	calls   int
}

func (w *recordingWriter) Write(ctx context.Context, out io.Writer, summary returns.SummaryTable, detail returns.DetailTable, meta ports.ReportMeta) error {
	w.calls++
	w.summary = summary
	w.meta = meta
	_, err := io.WriteString(out, "artifact")
	return err
}

func (w *recordingWriter) ContentType() string { return "text/plain" }

func twoRecords() []returns.ReturnRecord {
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	return []returns.ReturnRecord{
		{OrderID: 1, Product: "Widget", StoreName: "Xinyi", Category: returns.CategoryElectronics, Cost: 10, ReturnReason: "Defective", ApprovedFlag: returns.ApprovedYes, Origin: returns.OriginForm, CreatedAt: at},
		{OrderID: 2, Product: "Blender", StoreName: returns.UnknownText, Category: returns.CategoryAppliances, Cost: 20, ReturnReason: "Broken", ApprovedFlag: returns.ApprovedNo, Origin: returns.OriginNaturalLanguage, CreatedAt: at},
	}
}

func TestGenerateWritesArtifact(t *testing.T) {
	writer := &recordingWriter{}
	svc := NewService(memoryRepo{records: twoRecords()}, writer, "returns.sqlite")
	path := filepath.Join(t.TempDir(), "out", "returns_summary.xlsx")

	if err := svc.Generate(context.Background(), path); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "artifact" {
		t.Fatalf("artifact = %q", data)
	}
	if writer.summary.TotalRecords != 2 || writer.summary.ApprovalRate != 0.5 {
		t.Fatalf("summary = %+v", writer.summary)
	}
	if writer.meta.Source != "returns.sqlite" || writer.meta.GeneratedAt.IsZero() {
		t.Fatalf("meta = %+v", writer.meta)
	}
}

func TestGenerateRefusesEmptyStore(t *testing.T) {
	writer := &recordingWriter{}
	svc := NewService(memoryRepo{}, writer, "")
	path := filepath.Join(t.TempDir(), "returns_summary.xlsx")

	if err := svc.Generate(context.Background(), path); !errors.Is(err, ErrEmptyReport) {
		t.Fatalf("Generate() error = %v, want ErrEmptyReport", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("Stat() error = %v, want not exist", err)
	}
	if writer.calls != 0 {
		t.Fatalf("writer called %d times", writer.calls)
	}
}

func TestCompileOnEmptyStore(t *testing.T) {
	svc := NewService(memoryRepo{}, &recordingWriter{}, "")

	summary, detail, err := svc.Compile(context.Background())
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if summary.TotalRecords != 0 || len(detail.Rows) != 0 {
		t.Fatalf("Compile() = %+v, %+v", summary, detail)
	}
}

func TestCompilePropagatesStorageError(t *testing.T) {
	boom := errors.New("database is locked")
	svc := NewService(memoryRepo{err: boom}, &recordingWriter{}, "")

	if _, _, err := svc.Compile(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("Compile() error = %v, want %v", err, boom)
	}
}
