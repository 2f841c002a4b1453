package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/store"
	"fintrack/internal/store/storetest"
)

func TestMemoryStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return New() })
}

func TestLoadSeeds(t *testing.T) {
	dir := t.TempDir()
	// No file -> defaults
	seeds := LoadSeeds(dir)
	if len(seeds) != len(core.DefaultCategories) || seeds[0].Name != "Food & Dining" {
		t.Fatalf("expected defaults when file missing, got %+v", seeds)
	}

	content := "# header\nGroceries #123456\nRent\nGroceries #123456\n\nFun & Games #ABCDEF\n"
	if err := os.WriteFile(filepath.Join(dir, "seed_categories.txt"), []byte(content), 0o644); err != nil {
		t.Fatalf("write seed file: %v", err)
	}
	seeds = LoadSeeds(dir)
	want := []core.DefaultCategory{
		{Name: "Groceries", Color: "#123456"},
		{Name: "Rent", Color: core.Palette[1]},
		{Name: "Fun & Games", Color: "#ABCDEF"},
	}
	if len(seeds) != len(want) {
		t.Fatalf("LoadSeeds() = %+v, want %+v", seeds, want)
	}
	for i := range want {
		if seeds[i] != want[i] {
			t.Errorf("LoadSeeds()[%d] = %+v, want %+v", i, seeds[i], want[i])
		}
	}
}

func TestStoreListReturnsCopies(t *testing.T) {
	s := New()
	ctx := context.Background()
	if err := s.AddTransaction(ctx, storetest.Tx("t-1", "u1", "a", 1, "Food")); err != nil {
		t.Fatal(err)
	}
	list, _ := s.ListTransactions(ctx, "u1")
	list[0].Description = "mutated"
	got, _ := s.GetTransaction(ctx, "t-1")
	if got.Description != "a" {
		t.Errorf("store shares memory with listing: %+v", got)
	}
}
