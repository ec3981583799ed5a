package ports

import (
	"context"
	"errors"

	"returnsdesk/internal/domain/returns"
)

// ErrOrderIDConflict is returned by Insert when order_id is already taken.
var ErrOrderIDConflict = errors.New("order_id already exists")

// ReturnReadRepository is the read side shared by the report and seed usecases.
type ReturnReadRepository interface {
	List(ctx context.Context) ([]returns.ReturnRecord, error)
	Count(ctx context.Context) (int64, error)
}

// ReturnRepository is append-only: records can be inserted and read, never
// updated or deleted.
type ReturnRepository interface {
	ReturnReadRepository
	// MaxOrderID reports the highest committed key; found is false on an empty store.
	MaxOrderID(ctx context.Context) (maxID uint64, found bool, err error)
	Insert(ctx context.Context, record returns.ReturnRecord) error
}
