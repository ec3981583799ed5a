package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/gorm"

	"returnsdesk/internal/bootstrap/config"
	"returnsdesk/internal/bootstrap/database"
	"returnsdesk/internal/domain/returns"
	"returnsdesk/internal/infrastructure/persistence/sqlite/model"
	"returnsdesk/internal/ports"
)

func setupReturnRepository(t *testing.T) (*ReturnRepository, *gorm.DB) {
	t.Helper()

	db, err := database.Open(context.Background(), config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "returns.sqlite"),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(model.All()...); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return NewReturnRepository(db), db
}

func testRecord(orderID uint64) returns.ReturnRecord {
	return returns.ReturnRecord{
		OrderID:      orderID,
		Product:      "Wireless charger",
		StoreName:    "Taipei Xinyi",
		Category:     returns.CategoryElectronics,
		Cost:         19.99,
		ReturnReason: "Stopped charging",
		ApprovedFlag: returns.ApprovedYes,
		Origin:       returns.OriginForm,
		CreatedAt:    time.Date(2026, 5, 4, 10, 0, 0, 123, time.UTC),
	}
}

func TestMaxOrderIDOnEmptyStore(t *testing.T) {
	repo, _ := setupReturnRepository(t)

	maxID, found, err := repo.MaxOrderID(context.Background())
	if err != nil {
		t.Fatalf("MaxOrderID() error = %v", err)
	}
	if found || maxID != 0 {
		t.Fatalf("MaxOrderID() = %d, found=%v", maxID, found)
	}
}

func TestInsertListAndMax(t *testing.T) {
	repo, _ := setupReturnRepository(t)
	ctx := context.Background()

	for _, id := range []uint64{1101, 7, 42} {
		if err := repo.Insert(ctx, testRecord(id)); err != nil {
			t.Fatalf("Insert(%d) error = %v", id, err)
		}
	}

	maxID, found, err := repo.MaxOrderID(ctx)
	if err != nil {
		t.Fatalf("MaxOrderID() error = %v", err)
	}
	if !found || maxID != 1101 {
		t.Fatalf("MaxOrderID() = %d, found=%v", maxID, found)
	}

	items, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(items) != 3 || items[0].OrderID != 7 || items[2].OrderID != 1101 {
		t.Fatalf("List() = %+v", items)
	}
	want := testRecord(7)
	got := items[0]
	if !got.CreatedAt.Equal(want.CreatedAt) {
		t.Fatalf("List()[0].CreatedAt = %v, want %v", got.CreatedAt, want.CreatedAt)
	}
	got.CreatedAt = want.CreatedAt
	if got != want {
		t.Fatalf("List()[0] = %+v, want %+v", got, want)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 3 {
		t.Fatalf("Count() = %d", count)
	}
}

func TestInsertDuplicateOrderIDReturnsConflict(t *testing.T) {
	repo, _ := setupReturnRepository(t)
	ctx := context.Background()

	if err := repo.Insert(ctx, testRecord(1)); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	err := repo.Insert(ctx, testRecord(1))
	if !errors.Is(err, ports.ErrOrderIDConflict) {
		t.Fatalf("Insert(duplicate) error = %v, want ErrOrderIDConflict", err)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 1 {
		t.Fatalf("Count() = %d, want 1", count)
	}
}

func TestInsertInsideRolledBackTransactionLeavesNoRow(t *testing.T) {
	repo, db := setupReturnRepository(t)
	ctx := context.Background()

	rollback := errors.New("rollback")
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := repo.Insert(ports.WithTxContext(ctx, tx), testRecord(5)); err != nil {
			return err
		}
		return rollback
	})
	if !errors.Is(err, rollback) {
		t.Fatalf("Transaction() error = %v", err)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 0 {
		t.Fatalf("Count() = %d, want 0", count)
	}
}
