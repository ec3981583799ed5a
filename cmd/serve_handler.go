package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"returnsdesk/internal/bootstrap/logging"
	"returnsdesk/internal/domain/returns"
	"returnsdesk/internal/errs"
	extractioninfra "returnsdesk/internal/infrastructure/extraction"
	"returnsdesk/internal/usecase/intake"
	"returnsdesk/internal/usecase/report"
)

const maxRequestBody = 1 << 20

type returnsIntakeService interface {
	Submit(context.Context, intake.Submission) (returns.ReturnRecord, error)
}

type returnsReportService interface {
	Records(context.Context) ([]returns.ReturnRecord, error)
	Compile(context.Context) (returns.SummaryTable, returns.DetailTable, error)
	WriteArtifact(context.Context, io.Writer) error
	ContentType() string
}

type returnsHTTPHandler struct {
	base   context.Context
	intake returnsIntakeService
	report returnsReportService
}

type describeRequest struct {
	Text string `json:"text"`
}

type summaryResponse struct {
	Metrics    []metricView `json:"metrics"`
	ByCategory []groupView  `json:"by_category"`
	ByStore    []groupView  `json:"by_store"`
}

type metricView struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type groupView struct {
	Key       string `json:"key"`
	Records   int    `json:"records"`
	Approved  int    `json:"approved"`
	TotalCost string `json:"total_cost"`
}

type errorResponse struct {
	Error  string               `json:"error"`
	Fields []returns.FieldError `json:"fields,omitempty"`
}

// newReturnsHandler builds the router. base carries the process logger into
// request contexts.
func newReturnsHandler(base context.Context, intakeSvc returnsIntakeService, reportSvc returnsReportService, timeout time.Duration) http.Handler {
	if base == nil {
		base = context.Background()
	}
	h := &returnsHTTPHandler{base: base, intake: intakeSvc, report: reportSvc}

	r := chi.NewRouter()
	r.Use(h.requestContext)
	r.Use(middleware.Recoverer)
	if timeout > 0 {
		r.Use(middleware.Timeout(timeout))
	}

	r.Route("/returns", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleSubmitForm)
		r.Post("/describe", h.handleDescribe)
	})
	r.Get("/report", h.handleReportArtifact)
	r.Get("/report/summary", h.handleReportSummary)
	return r
}

// requestContext tags each request with an X-Request-ID and the process
// logger.
func (h *returnsHTTPHandler) requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		ctx := logging.WithLogger(r.Context(), logging.Logger(h.base))
		ctx = logging.WithAttrs(ctx, logging.Attrs(h.base)...)
		ctx = logging.WithAttrs(ctx,
			slog.String("request_id", requestID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *returnsHTTPHandler) handleSubmitForm(w http.ResponseWriter, r *http.Request) {
	var in intake.FormInput
	if err := decodeBody(r, &in); err != nil {
		writeAPIError(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	h.submit(w, r, intake.Submission{Form: &in})
}

func (h *returnsHTTPHandler) handleDescribe(w http.ResponseWriter, r *http.Request) {
	var in describeRequest
	if err := decodeBody(r, &in); err != nil {
		writeAPIError(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	h.submit(w, r, intake.Submission{Text: in.Text})
}

func (h *returnsHTTPHandler) submit(w http.ResponseWriter, r *http.Request, sub intake.Submission) {
	if h.intake == nil {
		writeAPIError(w, http.StatusInternalServerError, errorResponse{Error: "intake service is not configured"})
		return
	}

	record, err := h.intake.Submit(r.Context(), sub)
	if err != nil {
		status, body := submitErrorResponse(err)
		if status >= http.StatusInternalServerError {
			logging.Error(r.Context(), "submission failed", slog.Any("err", errs.Loggable(err)))
		}
		writeAPIError(w, status, body)
		return
	}
	writeAPIJSON(w, http.StatusCreated, toRecordView(record))
}

func submitErrorResponse(err error) (int, errorResponse) {
	var validationErr *returns.ValidationError
	var storageErr *returns.StorageError
	switch {
	case errors.As(err, &validationErr):
		return http.StatusUnprocessableEntity, errorResponse{Error: "validation failed", Fields: validationErr.Fields}
	case errors.Is(err, extractioninfra.ErrDisabled):
		return http.StatusServiceUnavailable, errorResponse{Error: extractioninfra.ErrDisabled.Error()}
	case errors.Is(err, returns.ErrExtraction):
		return http.StatusUnprocessableEntity, errorResponse{Error: returns.ErrExtraction.Error()}
	case errors.Is(err, returns.ErrAllocationConflict):
		return http.StatusServiceUnavailable, errorResponse{Error: "order id allocation contended, retry the submission"}
	case errors.As(err, &storageErr):
		return http.StatusInternalServerError, errorResponse{Error: "record could not be stored"}
	default:
		return http.StatusInternalServerError, errorResponse{Error: "internal error"}
	}
}

func (h *returnsHTTPHandler) handleList(w http.ResponseWriter, r *http.Request) {
	records, err := h.report.Records(r.Context())
	if err != nil {
		logging.Error(r.Context(), "list records failed", slog.Any("err", errs.Loggable(err)))
		writeAPIError(w, http.StatusInternalServerError, errorResponse{Error: "records could not be read"})
		return
	}
	writeAPIJSON(w, http.StatusOK, toRecordViews(records))
}

func (h *returnsHTTPHandler) handleReportSummary(w http.ResponseWriter, r *http.Request) {
	summary, _, err := h.report.Compile(r.Context())
	if err != nil {
		logging.Error(r.Context(), "compile report failed", slog.Any("err", errs.Loggable(err)))
		writeAPIError(w, http.StatusInternalServerError, errorResponse{Error: "report could not be compiled"})
		return
	}

	resp := summaryResponse{
		Metrics:    make([]metricView, 0, 5),
		ByCategory: toGroupViews(summary.ByCategory),
		ByStore:    toGroupViews(summary.ByStore),
	}
	for _, m := range summary.Metrics() {
		resp.Metrics = append(resp.Metrics, metricView{Name: m.Name, Value: m.Value})
	}
	writeAPIJSON(w, http.StatusOK, resp)
}

func (h *returnsHTTPHandler) handleReportArtifact(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	err := h.report.WriteArtifact(r.Context(), &buf)
	if errors.Is(err, report.ErrEmptyReport) {
		writeAPIError(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		logging.Error(r.Context(), "render report failed", slog.Any("err", errs.Loggable(err)))
		writeAPIError(w, http.StatusInternalServerError, errorResponse{Error: "report could not be rendered"})
		return
	}

	w.Header().Set("Content-Type", h.report.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="returns_summary.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func toGroupViews(groups []returns.GroupRow) []groupView {
	out := make([]groupView, 0, len(groups))
	for _, g := range groups {
		out = append(out, groupView{
			Key:       g.Key,
			Records:   g.Records,
			Approved:  g.Approved,
			TotalCost: g.TotalCost.StringFixed(2),
		})
	}
	return out
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.New("invalid JSON body: " + err.Error())
	}
	return nil
}

func writeAPIError(w http.ResponseWriter, status int, body errorResponse) {
	writeAPIJSON(w, status, body)
}

func writeAPIJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}
