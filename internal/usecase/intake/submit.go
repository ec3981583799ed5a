package intake

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"returnsdesk/internal/bootstrap/logging"
	"returnsdesk/internal/domain/returns"
	"returnsdesk/internal/errs"
)

// SubmitForm commits a structured submission.
func (s *Service) SubmitForm(ctx context.Context, in FormInput) (returns.ReturnRecord, error) {
	return s.Submit(ctx, Submission{Form: &in})
}

// SubmitText commits a free-text submission after extraction.
func (s *Service) SubmitText(ctx context.Context, text string) (returns.ReturnRecord, error) {
	return s.Submit(ctx, Submission{Text: text})
}

// Submit validates and commits one submission. The returned record is in
// storage when Submit returns. Errors are *returns.ValidationError,
// *returns.ExtractionError, *returns.StorageError or wrap
// returns.ErrAllocationConflict.
func (s *Service) Submit(ctx context.Context, sub Submission) (returns.ReturnRecord, error) {
	if ctx == nil {
		return returns.ReturnRecord{}, errors.New("context is required")
	}
	if s.repo == nil || s.uow == nil {
		return returns.ReturnRecord{}, errors.New("intake repository and unit of work are required")
	}

	hasText := strings.TrimSpace(sub.Text) != ""
	switch {
	case sub.Form != nil && hasText:
		return returns.ReturnRecord{}, submissionError("exclusive", "must be either a form or a free-text description, not both")
	case sub.Form == nil && !hasText:
		return returns.ReturnRecord{}, submissionError("required", "is required")
	}

	origin := returns.OriginForm
	if sub.Form == nil {
		origin = returns.OriginNaturalLanguage
	}
	ctx = logging.WithAttrs(ctx, slog.String("component", "usecase.intake"))
	ctx = logging.WithSubmission(ctx, s.newID(), string(origin))
	logging.Info(ctx, "submission received")

	var candidate returns.Candidate
	if sub.Form != nil {
		candidate = sub.Form.candidate()
	} else {
		if s.extractor == nil {
			return returns.ReturnRecord{}, &returns.ExtractionError{Cause: errors.New("extractor is not configured")}
		}
		extracted, err := s.extractor.Extract(ctx, sub.Text)
		if err != nil {
			logging.Warn(ctx, "extraction failed", slog.Any("err", errs.Loggable(err)))
			if !errors.Is(err, returns.ErrExtraction) {
				err = &returns.ExtractionError{Cause: err}
			}
			return returns.ReturnRecord{}, err
		}
		candidate = extracted
		// Approval policy is enforced here as well as in the adapter.
		candidate.Origin = returns.OriginNaturalLanguage
		candidate.ApprovedFlag = returns.ApprovedNo
	}

	normalized, err := returns.Validate(candidate)
	if err != nil {
		logging.Info(ctx, "submission rejected", slog.String("reason", err.Error()))
		return returns.ReturnRecord{}, err
	}

	if err := ctx.Err(); err != nil {
		return returns.ReturnRecord{}, &returns.StorageError{Op: "commit", Cause: err}
	}

	record, err := s.commit(ctx, normalized)
	if err != nil {
		logging.Error(ctx, "commit failed", slog.Any("err", errs.Loggable(err)))
		return returns.ReturnRecord{}, err
	}

	logging.Info(ctx, "return record committed", slog.Uint64("order_id", record.OrderID))
	return record, nil
}

func submissionError(rule string, message string) error {
	return &returns.ValidationError{Fields: []returns.FieldError{{
		Field:   "submission",
		Rule:    rule,
		Message: message,
	}}}
}
