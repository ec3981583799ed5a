package seed

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"returnsdesk/internal/bootstrap/config"
	"returnsdesk/internal/bootstrap/database"
	"returnsdesk/internal/domain/returns"
	"returnsdesk/internal/infrastructure/persistence/sqlite/model"
	"returnsdesk/internal/infrastructure/persistence/sqlite/repository"
	"returnsdesk/internal/infrastructure/persistence/sqlite/uow"
	"returnsdesk/internal/ports"
)

type staticSource struct {
	rows  []ports.SeedRow
	err   error
	reads int
}

func (s *staticSource) Rows(ctx context.Context) ([]ports.SeedRow, error) {
	s.reads++
	return s.rows, s.err
}

func (s *staticSource) Describe() string { return "static" }

func setupSeed(t *testing.T, source ports.SeedSource) (*Service, *repository.ReturnRepository) {
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

	repo := repository.NewReturnRepository(db)
	return NewService(source, repo, uow.NewUnitOfWork(db)), repo
}

func seedRows() []ports.SeedRow {
	return []ports.SeedRow{
		{"order_id": "1001", "product": "Kettle", "category": "appliances", "return_reason": "Leaking", "cost": "$35.50", "approved_flag": "yes", "store_name": "Banqiao", "date": "2024-01-03"},
		{"order_id": "1002", "product": "Desk Lamp", "category": "Home", "return_reason": "Flickers", "cost": "12", "approved_flag": "No", "store_name": "Xinyi", "date": "not a date"},
		{"order_id": "1002", "product": "Desk Lamp", "category": "Home", "return_reason": "Flickers", "cost": "12", "approved_flag": "No", "store_name": "Xinyi"},
		{"order_id": "abc", "product": "Toaster", "category": "Appliances", "return_reason": "Burnt", "cost": "20", "approved_flag": "No", "store_name": "Xinyi"},
		{"order_id": "1003", "product": "Toaster", "category": "Garden", "return_reason": "Burnt", "cost": "20", "approved_flag": "No", "store_name": "Xinyi"},
		{"order_id": "1004", "product": "Toaster", "category": "Appliances", "return_reason": "Burnt", "cost": "0", "approved_flag": "No", "store_name": "Xinyi"},
	}
}

func TestSeedIfEmptyLoadsValidRows(t *testing.T) {
	source := &staticSource{rows: seedRows()}
	svc, repo := setupSeed(t, source)
	now := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	result, err := svc.SeedIfEmpty(ctx)
	if err != nil {
		t.Fatalf("SeedIfEmpty() error = %v", err)
	}
	if result.Loaded != 2 || result.Skipped != 4 || result.AlreadySeeded {
		t.Fatalf("SeedIfEmpty() = %+v", result)
	}

	items, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("List() = %+v", items)
	}
	kettle := items[0]
	if kettle.OrderID != 1001 || kettle.Category != returns.CategoryAppliances || kettle.ApprovedFlag != returns.ApprovedYes || kettle.Cost != 35.5 {
		t.Fatalf("kettle = %+v", kettle)
	}
	if kettle.Origin != returns.OriginForm || !kettle.CreatedAt.Equal(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("kettle origin/date = %s/%v", kettle.Origin, kettle.CreatedAt)
	}
	if !items[1].CreatedAt.Equal(now) {
		t.Fatalf("lamp CreatedAt = %v, want %v", items[1].CreatedAt, now)
	}
}

func TestSeedIfEmptySkipsPopulatedStore(t *testing.T) {
	source := &staticSource{rows: seedRows()}
	svc, _ := setupSeed(t, source)
	ctx := context.Background()

	if _, err := svc.SeedIfEmpty(ctx); err != nil {
		t.Fatalf("SeedIfEmpty() error = %v", err)
	}
	result, err := svc.SeedIfEmpty(ctx)
	if err != nil {
		t.Fatalf("SeedIfEmpty() second error = %v", err)
	}
	if !result.AlreadySeeded || result.Loaded != 0 {
		t.Fatalf("SeedIfEmpty() second = %+v", result)
	}
	if source.reads != 1 {
		t.Fatalf("source read %d times, want 1", source.reads)
	}
}

func TestSeedIfEmptySkipsOrderIDBeyondStorageRange(t *testing.T) {
	rows := seedRows()[:1]
	huge := ports.SeedRow{}
	for k, v := range rows[0] {
		huge[k] = v
	}
	huge["order_id"] = "18446744073709551615"
	rows = append(rows, huge)

	svc, repo := setupSeed(t, &staticSource{rows: rows})
	ctx := context.Background()

	result, err := svc.SeedIfEmpty(ctx)
	if err != nil {
		t.Fatalf("SeedIfEmpty() error = %v", err)
	}
	if result.Loaded != 1 || result.Skipped != 1 {
		t.Fatalf("SeedIfEmpty() = %+v", result)
	}

	items, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(items) != 1 || items[0].OrderID != 1001 {
		t.Fatalf("List() = %+v", items)
	}
}

func TestSeedIfEmptySourceFailure(t *testing.T) {
	boom := errors.New("sheet unavailable")
	svc, repo := setupSeed(t, &staticSource{err: boom})
	ctx := context.Background()

	if _, err := svc.SeedIfEmpty(ctx); !errors.Is(err, boom) {
		t.Fatalf("SeedIfEmpty() error = %v, want %v", err, boom)
	}
	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 0 {
		t.Fatalf("Count() = %d, want 0", count)
	}
}

func TestSeedDisabledWithoutSource(t *testing.T) {
	svc, _ := setupSeed(t, nil)
	if svc.Enabled() {
		t.Fatalf("Enabled() = true without source")
	}
	if _, err := svc.SeedIfEmpty(context.Background()); err == nil {
		t.Fatalf("SeedIfEmpty() expected error without source")
	}
}
