package storage

import (
	"context"
	"path/filepath"
	"testing"

	"fintrack/internal/store"
	"fintrack/internal/store/storetest"
)

func newTestRepository(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "nested", "fintrack.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	return repo
}

func TestSQLiteRepositoryContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return newTestRepository(t) })
}

func TestRunMigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fintrack.db")
	first, err := RunMigrations(path)
	if err != nil {
		t.Fatalf("first RunMigrations: %v", err)
	}
	second, err := RunMigrations(path)
	if err != nil {
		t.Fatalf("second RunMigrations: %v", err)
	}
	if first != second || first == 0 {
		t.Errorf("schema versions = %d, %d", first, second)
	}
}

func TestSQLiteRepositoryPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fintrack.db")
	repo, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	ctx := context.Background()
	want := storetest.Tx("t-1", "u1", "Coffee", 4.5, "Food & Dining")
	if err := repo.AddTransaction(ctx, want); err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}
	repo.Close()

	repo, err = NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer repo.Close()
	got, err := repo.GetTransaction(ctx, "t-1")
	if err != nil {
		t.Fatalf("GetTransaction: %v", err)
	}
	if got.Amount != want.Amount || got.Date != want.Date || !got.CreatedAt.Equal(want.CreatedAt) {
		t.Errorf("GetTransaction = %+v, want %+v", got, want)
	}
}
