package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"returnsdesk/internal/domain/returns"
	extractioninfra "returnsdesk/internal/infrastructure/extraction"
	"returnsdesk/internal/usecase/intake"
	"returnsdesk/internal/usecase/report"
)

type stubIntakeService struct {
	called bool
	input  intake.Submission
	record returns.ReturnRecord
	err    error
}

func (s *stubIntakeService) Submit(_ context.Context, sub intake.Submission) (returns.ReturnRecord, error) {
	s.called = true
	s.input = sub
	if s.err != nil {
		return returns.ReturnRecord{}, s.err
	}
	return s.record, nil
}

type stubReportService struct {
	records     []returns.ReturnRecord
	artifactErr error
}

func (s *stubReportService) Records(context.Context) ([]returns.ReturnRecord, error) {
	return s.records, nil
}

func (s *stubReportService) Compile(context.Context) (returns.SummaryTable, returns.DetailTable, error) {
	summary, detail := returns.Compile(s.records)
	return summary, detail, nil
}

func (s *stubReportService) WriteArtifact(_ context.Context, w io.Writer) error {
	if s.artifactErr != nil {
		return s.artifactErr
	}
	_, err := io.WriteString(w, "xlsx-bytes")
	return err
}

func (s *stubReportService) ContentType() string { return "application/test" }

func committedWidget() returns.ReturnRecord {
	return returns.ReturnRecord{
		OrderID:      1,
		Product:      "Widget",
		StoreName:    "Xinyi",
		Category:     returns.CategoryElectronics,
		Cost:         10,
		ReturnReason: "Defective",
		ApprovedFlag: returns.ApprovedYes,
		Origin:       returns.OriginForm,
		CreatedAt:    time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
	}
}

func TestReturnsAPISubmitFormCreated(t *testing.T) {
	t.Parallel()

	svc := &stubIntakeService{record: committedWidget()}
	handler := newReturnsHandler(context.Background(), svc, &stubReportService{}, time.Second)

	body := `{"product":"Widget","store_name":"Xinyi","category":"Electronics","cost":10,"return_reason":"Defective","approved_flag":"Yes"}`
	req := httptest.NewRequest(http.MethodPost, "/returns", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d; body=%s", resp.Code, http.StatusCreated, resp.Body.String())
	}
	if resp.Header().Get("X-Request-ID") == "" {
		t.Fatal("X-Request-ID header missing")
	}
	if svc.input.Form == nil || svc.input.Form.Product != "Widget" || svc.input.Form.Cost != 10 {
		t.Fatalf("input = %+v", svc.input)
	}

	var got recordView
	if err := json.Unmarshal(resp.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.OrderID != 1 || got.Origin != "Form" || got.CreatedAt != "2026-03-01T09:30:00Z" {
		t.Fatalf("response = %+v", got)
	}
}

func TestReturnsAPIDescribePassesText(t *testing.T) {
	t.Parallel()

	svc := &stubIntakeService{record: committedWidget()}
	handler := newReturnsHandler(context.Background(), svc, &stubReportService{}, 0)

	req := httptest.NewRequest(http.MethodPost, "/returns/describe", strings.NewReader(`{"text":"broken blender"}`))
	req.Header.Set("X-Request-ID", "req-42")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("status = %d; body=%s", resp.Code, resp.Body.String())
	}
	if svc.input.Form != nil || svc.input.Text != "broken blender" {
		t.Fatalf("input = %+v", svc.input)
	}
	if resp.Header().Get("X-Request-ID") != "req-42" {
		t.Fatalf("X-Request-ID = %q", resp.Header().Get("X-Request-ID"))
	}
}

func TestReturnsAPIMapsErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &returns.ValidationError{Fields: []returns.FieldError{{Field: "product", Rule: "min", Message: "too short"}}}, http.StatusUnprocessableEntity},
		{"extraction", &returns.ExtractionError{Cause: context.DeadlineExceeded}, http.StatusUnprocessableEntity},
		{"disabled", &returns.ExtractionError{Cause: extractioninfra.ErrDisabled}, http.StatusServiceUnavailable},
		{"allocation", fmt.Errorf("%w: gave up", returns.ErrAllocationConflict), http.StatusServiceUnavailable},
		{"storage", &returns.StorageError{Op: "commit", Cause: errors.New("disk full")}, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		svc := &stubIntakeService{err: tc.err}
		handler := newReturnsHandler(context.Background(), svc, &stubReportService{}, 0)

		req := httptest.NewRequest(http.MethodPost, "/returns/describe", strings.NewReader(`{"text":"x"}`))
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)

		if resp.Code != tc.want {
			t.Fatalf("%s: status = %d, want %d; body=%s", tc.name, resp.Code, tc.want, resp.Body.String())
		}
	}
}

func TestReturnsAPIValidationBodyNamesFields(t *testing.T) {
	t.Parallel()

	svc := &stubIntakeService{err: &returns.ValidationError{Fields: []returns.FieldError{{Field: "product", Rule: "min", Message: "must be at least 2 characters"}}}}
	handler := newReturnsHandler(context.Background(), svc, &stubReportService{}, 0)

	req := httptest.NewRequest(http.MethodPost, "/returns", strings.NewReader(`{"product":"W"}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	var got errorResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(got.Fields) != 1 || got.Fields[0].Field != "product" {
		t.Fatalf("fields = %+v", got.Fields)
	}
}

func TestReturnsAPIRejectsMalformedJSON(t *testing.T) {
	t.Parallel()

	svc := &stubIntakeService{}
	handler := newReturnsHandler(context.Background(), svc, &stubReportService{}, 0)

	req := httptest.NewRequest(http.MethodPost, "/returns", strings.NewReader(`{"product":`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.Code)
	}
	if svc.called {
		t.Fatal("service called on malformed body")
	}
}

func TestReturnsAPIListAndSummary(t *testing.T) {
	t.Parallel()

	reports := &stubReportService{records: []returns.ReturnRecord{committedWidget()}}
	handler := newReturnsHandler(context.Background(), &stubIntakeService{}, reports, 0)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/returns", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("list status = %d", resp.Code)
	}
	var list []recordView
	if err := json.Unmarshal(resp.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 || list[0].Product != "Widget" {
		t.Fatalf("list = %+v", list)
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/report/summary", nil))
	var summary summaryResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if len(summary.Metrics) != 5 || summary.Metrics[4].Value != "$10.00" {
		t.Fatalf("summary = %+v", summary)
	}
}

func TestReturnsAPIReportArtifact(t *testing.T) {
	t.Parallel()

	handler := newReturnsHandler(context.Background(), &stubIntakeService{}, &stubReportService{}, 0)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/report", nil))

	if resp.Code != http.StatusOK || resp.Header().Get("Content-Type") != "application/test" {
		t.Fatalf("status = %d content-type = %q", resp.Code, resp.Header().Get("Content-Type"))
	}
	if !bytes.Equal(resp.Body.Bytes(), []byte("xlsx-bytes")) {
		t.Fatalf("body = %q", resp.Body.String())
	}

	empty := newReturnsHandler(context.Background(), &stubIntakeService{}, &stubReportService{artifactErr: report.ErrEmptyReport}, 0)
	resp = httptest.NewRecorder()
	empty.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/report", nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("empty report status = %d, want 404", resp.Code)
	}
}
