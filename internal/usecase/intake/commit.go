package intake

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"returnsdesk/internal/bootstrap/logging"
	"returnsdesk/internal/domain/returns"
	"returnsdesk/internal/errs"
	"returnsdesk/internal/ports"
)

// commit allocates the next order id and inserts the record in one
// transaction. A uniqueness conflict discards the key and retries with a
// freshly read maximum, up to maxAttempts times.
func (s *Service) commit(ctx context.Context, c returns.Candidate) (returns.ReturnRecord, error) {
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		var committed returns.ReturnRecord
		err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
			orderID, err := s.allocateNext(txCtx)
			if err != nil {
				return err
			}

			record := returns.NewRecord(c, orderID, s.now())
			if err := s.repo.Insert(txCtx, record); err != nil {
				return err
			}
			committed = record
			return nil
		})
		if err == nil {
			return committed, nil
		}
		if !errors.Is(err, ports.ErrOrderIDConflict) {
			return returns.ReturnRecord{}, &returns.StorageError{Op: "commit", Cause: errs.WithStack(err)}
		}

		logging.Warn(ctx, "order id conflict, retrying allocation",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", s.maxAttempts),
		)
	}
	return returns.ReturnRecord{}, fmt.Errorf("%w: gave up after %d attempts", returns.ErrAllocationConflict, s.maxAttempts)
}

// allocateNext returns max(order_id)+1, or the configured base on an empty
// store. It must run inside the commit transaction.
func (s *Service) allocateNext(ctx context.Context) (uint64, error) {
	maxID, found, err := s.repo.MaxOrderID(ctx)
	if err != nil {
		return 0, err
	}
	if !found {
		return s.orderIDBase, nil
	}
	// SQLite integers are signed 64-bit.
	if maxID >= math.MaxInt64 {
		return 0, errors.New("order id space exhausted")
	}
	return maxID + 1, nil
}
