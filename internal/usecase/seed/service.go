package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"returnsdesk/internal/bootstrap/logging"
	"returnsdesk/internal/domain/returns"
	"returnsdesk/internal/errs"
	"returnsdesk/internal/ports"
)

// Result reports what one SeedIfEmpty call did.
type Result struct {
	Loaded        int
	Skipped       int
	AlreadySeeded bool
}

// Service loads the upstream export into an empty store.
type Service struct {
	source ports.SeedSource
	repo   ports.ReturnRepository
	uow    ports.UnitOfWork
	now    func() time.Time
}

func NewService(source ports.SeedSource, repo ports.ReturnRepository, uow ports.UnitOfWork) *Service {
	return &Service{source: source, repo: repo, uow: uow, now: time.Now}
}

// Enabled reports whether a seed source is configured.
func (s *Service) Enabled() bool {
	return s != nil && s.source != nil
}

// SeedIfEmpty reads every row and inserts the valid ones in one transaction,
// but only when the store holds no records. Rows that fail validation or
// repeat an order_id are skipped.
func (s *Service) SeedIfEmpty(ctx context.Context) (Result, error) {
	if ctx == nil {
		return Result{}, errors.New("context is required")
	}
	if !s.Enabled() {
		return Result{}, errors.New("seed source is not configured")
	}
	if s.repo == nil || s.uow == nil {
		return Result{}, errors.New("seed repository and unit of work are required")
	}

	ctx = logging.WithAttrs(ctx,
		slog.String("component", "usecase.seed"),
		slog.String("source", s.source.Describe()),
	)

	count, err := s.repo.Count(ctx)
	if err != nil {
		return Result{}, errs.Wrap(err, "count existing records")
	}
	if count > 0 {
		logging.Info(ctx, "store already populated, seed skipped", slog.Int64("records", count))
		return Result{AlreadySeeded: true}, nil
	}

	rows, err := s.source.Rows(ctx)
	if err != nil {
		return Result{}, errs.Wrap(err, "read seed source")
	}

	var result Result
	err = s.uow.WithTx(ctx, func(txCtx context.Context) error {
		// Re-check under the transaction; another process may have seeded.
		count, err := s.repo.Count(txCtx)
		if err != nil {
			return errs.Wrap(err, "recount records")
		}
		if count > 0 {
			result = Result{AlreadySeeded: true}
			return nil
		}

		seen := make(map[uint64]struct{}, len(rows))
		for i, row := range rows {
			record, err := s.recordFromRow(row)
			if err != nil {
				logging.Warn(txCtx, "seed row skipped", slog.Int("row", i+2), slog.String("reason", err.Error()))
				result.Skipped++
				continue
			}
			if _, dup := seen[record.OrderID]; dup {
				logging.Warn(txCtx, "seed row skipped", slog.Int("row", i+2), slog.String("reason", "duplicate order_id"))
				result.Skipped++
				continue
			}
			if err := s.repo.Insert(txCtx, record); err != nil {
				return errs.Wrapf(err, "insert seed order %d", record.OrderID)
			}
			seen[record.OrderID] = struct{}{}
			result.Loaded++
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	logging.Info(ctx, "seed finished",
		slog.Int("loaded", result.Loaded),
		slog.Int("skipped", result.Skipped),
		slog.Bool("already_seeded", result.AlreadySeeded),
	)
	return result, nil
}

func (s *Service) recordFromRow(row ports.SeedRow) (returns.ReturnRecord, error) {
	orderID, err := strconv.ParseUint(strings.TrimSpace(row["order_id"]), 10, 64)
	// SQLite integers are signed 64-bit.
	if err != nil || orderID == 0 || orderID > math.MaxInt64 {
		return returns.ReturnRecord{}, fmt.Errorf("invalid order_id %q", row["order_id"])
	}

	cost, ok := returns.ParseAmount(row["cost"])
	if !ok {
		return returns.ReturnRecord{}, fmt.Errorf("invalid cost %q", row["cost"])
	}

	candidate, err := returns.Validate(returns.Candidate{
		Product:      row["product"],
		StoreName:    row["store_name"],
		Category:     returns.Category(row["category"]),
		Cost:         cost,
		ReturnReason: row["return_reason"],
		ApprovedFlag: returns.ApprovedFlag(row["approved_flag"]),
		Origin:       returns.OriginForm,
	})
	if err != nil {
		return returns.ReturnRecord{}, err
	}
	return returns.NewRecord(candidate, orderID, s.rowDate(row["date"])), nil
}

var dateLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02", "2006/01/02", "1/2/2006"}

func (s *Service) rowDate(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return s.now().UTC()
}
