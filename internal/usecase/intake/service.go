package intake

import (
	"context"
	"time"

	"github.com/google/uuid"

	"returnsdesk/internal/bootstrap/config"
	"returnsdesk/internal/domain/returns"
	"returnsdesk/internal/ports"
)

// Extractor turns free text into a natural-language candidate.
type Extractor interface {
	Extract(ctx context.Context, text string) (returns.Candidate, error)
}

// Service routes submissions through extraction and validation and commits
// them. It is the only writer of return records.
type Service struct {
	repo        ports.ReturnRepository
	uow         ports.UnitOfWork
	extractor   Extractor
	orderIDBase uint64
	maxAttempts int
	now         func() time.Time
	newID       func() string
}

func NewService(repo ports.ReturnRepository, uow ports.UnitOfWork, extractor Extractor, cfg config.IntakeConfig) *Service {
	base := cfg.OrderIDBase
	if base == 0 {
		base = 1
	}
	attempts := cfg.MaxAllocationRetries
	if attempts < 1 {
		attempts = 1
	}
	return &Service{
		repo:        repo,
		uow:         uow,
		extractor:   extractor,
		orderIDBase: base,
		maxAttempts: attempts,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// FormInput is a fully structured submission.
type FormInput struct {
	Product      string  `json:"product"`
	StoreName    string  `json:"store_name"`
	Category     string  `json:"category"`
	Cost         float64 `json:"cost"`
	ReturnReason string  `json:"return_reason"`
	ApprovedFlag string  `json:"approved_flag"`
}

func (in FormInput) candidate() returns.Candidate {
	return returns.Candidate{
		Product:      in.Product,
		StoreName:    in.StoreName,
		Category:     returns.Category(in.Category),
		Cost:         in.Cost,
		ReturnReason: in.ReturnReason,
		ApprovedFlag: returns.ApprovedFlag(in.ApprovedFlag),
		Origin:       returns.OriginForm,
	}
}

// Submission carries exactly one of Form or Text.
type Submission struct {
	Form *FormInput
	Text string
}
