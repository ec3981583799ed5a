package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"returnsdesk/internal/domain/returns"
	"returnsdesk/internal/errs"
	"returnsdesk/internal/infrastructure/persistence/sqlite/model"
	"returnsdesk/internal/ports"
)

// ReturnRepository stores return records in the returns table. It never
// issues UPDATE or DELETE statements.
type ReturnRepository struct {
	db *gorm.DB
}

var _ ports.ReturnRepository = (*ReturnRepository)(nil)

func NewReturnRepository(db *gorm.DB) *ReturnRepository {
	return &ReturnRepository{db: db}
}

func (r *ReturnRepository) dbFromContext(ctx context.Context) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return r.db.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}

func (r *ReturnRepository) MaxOrderID(ctx context.Context) (uint64, bool, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, false, err
	}

	var maxID sql.NullInt64
	if err := db.Model(&model.ReturnRecord{}).Select("MAX(order_id)").Row().Scan(&maxID); err != nil {
		return 0, false, errs.Wrap(err, "query max order_id")
	}
	if !maxID.Valid {
		return 0, false, nil
	}
	return uint64(maxID.Int64), true, nil
}

func (r *ReturnRepository) Insert(ctx context.Context, record returns.ReturnRecord) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	row := toRow(record)
	if err := db.Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: order_id=%d", ports.ErrOrderIDConflict, record.OrderID)
		}
		return errs.Wrap(err, "insert return record")
	}
	return nil
}

func (r *ReturnRepository) List(ctx context.Context) ([]returns.ReturnRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.ReturnRecord
	if err := db.Order("order_id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query return records")
	}

	items := make([]returns.ReturnRecord, 0, len(rows))
	for _, row := range rows {
		item, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *ReturnRepository) Count(ctx context.Context) (int64, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := db.Model(&model.ReturnRecord{}).Count(&count).Error; err != nil {
		return 0, errs.Wrap(err, "count return records")
	}
	return count, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func toRow(r returns.ReturnRecord) model.ReturnRecord {
	return model.ReturnRecord{
		OrderID:      r.OrderID,
		Product:      r.Product,
		StoreName:    r.StoreName,
		Category:     string(r.Category),
		Cost:         r.Cost,
		ReturnReason: r.ReturnReason,
		ApprovedFlag: string(r.ApprovedFlag),
		Origin:       string(r.Origin),
		CreatedAt:    r.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func fromRow(row model.ReturnRecord) (returns.ReturnRecord, error) {
	createdAt, err := time.Parse(time.RFC3339Nano, row.CreatedAt)
	if err != nil {
		return returns.ReturnRecord{}, errs.Wrapf(err, "parse created_at of order %d", row.OrderID)
	}
	return returns.ReturnRecord{
		OrderID:      row.OrderID,
		Product:      row.Product,
		StoreName:    row.StoreName,
		Category:     returns.Category(row.Category),
		Cost:         row.Cost,
		ReturnReason: row.ReturnReason,
		ApprovedFlag: returns.ApprovedFlag(row.ApprovedFlag),
		Origin:       returns.Origin(row.Origin),
		CreatedAt:    createdAt,
	}, nil
}
