// Package storetest holds the behavior every store.Store implementation must
// show. Backend tests call Run with a constructor for a fresh, empty store.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

// Run exercises the Record Store contract against stores built by newStore.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Helper()
	t.Run("transactions keep insertion order", func(t *testing.T) { testInsertionOrder(t, newStore(t)) })
	t.Run("duplicate transaction id", func(t *testing.T) { testDuplicateID(t, newStore(t)) })
	t.Run("update preserves identity", func(t *testing.T) { testUpdate(t, newStore(t)) })
	t.Run("remove returns record", func(t *testing.T) { testRemove(t, newStore(t)) })
	t.Run("count by category", func(t *testing.T) { testCount(t, newStore(t)) })
	t.Run("categories", func(t *testing.T) { testCategories(t, newStore(t)) })
	t.Run("users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("concurrent registrations share an email", func(t *testing.T) { testConcurrentUsers(t, newStore(t)) })
}

var created = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

// Tx builds a valid expense record for owner.
func Tx(id, owner, desc string, amount float64, category string) core.Transaction {
	return core.Transaction{
		ID:          id,
		OwnerID:     owner,
		Description: desc,
		Amount:      amount,
		Type:        core.Expense,
		Category:    category,
		Date:        core.NewDate(2024, 3, 1),
		CreatedAt:   created,
	}
}

func mustAdd(t *testing.T, s store.Store, txs ...core.Transaction) {
	t.Helper()
	for _, tx := range txs {
		if err := s.AddTransaction(context.Background(), tx); err != nil {
			t.Fatalf("AddTransaction(%s): %v", tx.ID, err)
		}
	}
}

func listIDs(t *testing.T, s store.Store, owner string) []string {
	t.Helper()
	txs, err := s.ListTransactions(context.Background(), owner)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	ids := make([]string, len(txs))
	for i, tx := range txs {
		ids[i] = tx.ID
	}
	return ids
}

func testInsertionOrder(t *testing.T, s store.Store) {
	defer s.Close()
	mustAdd(t, s,
		Tx("t-3", "u1", "c", 3, "Food"),
		Tx("t-1", "u1", "a", 1, "Food"),
		Tx("t-x", "u2", "other", 9, "Food"),
		Tx("t-2", "u1", "b", 2, "Food"),
	)
	got := listIDs(t, s, "u1")
	want := []string{"t-3", "t-1", "t-2"}
	if len(got) != len(want) {
		t.Fatalf("ListTransactions(u1) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ListTransactions(u1) = %v, want %v", got, want)
		}
	}
	if got := listIDs(t, s, "nobody"); len(got) != 0 {
		t.Errorf("ListTransactions(nobody) = %v, want empty", got)
	}
}

func testDuplicateID(t *testing.T, s store.Store) {
	defer s.Close()
	mustAdd(t, s, Tx("t-1", "u1", "a", 1, "Food"))
	err := s.AddTransaction(context.Background(), Tx("t-1", "u1", "again", 2, "Food"))
	if !errors.Is(err, store.ErrDuplicateID) {
		t.Fatalf("AddTransaction(dup) error = %v, want ErrDuplicateID", err)
	}
	if got := listIDs(t, s, "u1"); len(got) != 1 {
		t.Errorf("store holds %v after duplicate add", got)
	}
}

func testUpdate(t *testing.T, s store.Store) {
	defer s.Close()
	ctx := context.Background()
	orig := Tx("t-1", "u1", "Coffee", 4.5, "Food")
	mustAdd(t, s, orig)

	upd := orig
	upd.OwnerID = "intruder"
	upd.CreatedAt = created.Add(time.Hour)
	upd.Description = "Tea"
	upd.Amount = 3.25
	upd.Type = core.Income
	upd.Category = "Drinks"
	upd.Date = core.NewDate(2024, 3, 2)
	if err := s.UpdateTransaction(ctx, upd); err != nil {
		t.Fatalf("UpdateTransaction: %v", err)
	}

	got, err := s.GetTransaction(ctx, "t-1")
	if err != nil {
		t.Fatalf("GetTransaction: %v", err)
	}
	if got.OwnerID != "u1" || !got.CreatedAt.Equal(created) {
		t.Errorf("identity fields changed: %+v", got)
	}
	if got.Description != "Tea" || got.Amount != 3.25 || got.Type != core.Income || got.Category != "Drinks" || got.Date.String() != "2024-03-02" {
		t.Errorf("mutable fields not replaced: %+v", got)
	}

	missing := Tx("nope", "u1", "x", 1, "Food")
	if err := s.UpdateTransaction(ctx, missing); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("UpdateTransaction(missing) error = %v, want ErrNotFound", err)
	}
}

func testRemove(t *testing.T, s store.Store) {
	defer s.Close()
	ctx := context.Background()
	mustAdd(t, s, Tx("t-1", "u1", "a", 1, "Food"), Tx("t-2", "u1", "b", 2, "Food"))

	removed, err := s.RemoveTransaction(ctx, "t-1")
	if err != nil {
		t.Fatalf("RemoveTransaction: %v", err)
	}
	if removed.ID != "t-1" || removed.Description != "a" {
		t.Errorf("removed = %+v", removed)
	}
	if _, err := s.RemoveTransaction(ctx, "t-1"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("second remove error = %v, want ErrNotFound", err)
	}
	if _, err := s.GetTransaction(ctx, "t-1"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("GetTransaction(removed) error = %v, want ErrNotFound", err)
	}
	if got := listIDs(t, s, "u1"); len(got) != 1 || got[0] != "t-2" {
		t.Errorf("remaining = %v", got)
	}
}

func testCount(t *testing.T, s store.Store) {
	defer s.Close()
	mustAdd(t, s,
		Tx("t-1", "u1", "a", 1, "Food"),
		Tx("t-2", "u1", "b", 1, "Food"),
		Tx("t-3", "u1", "c", 1, "food"),
		Tx("t-4", "u2", "d", 1, "Food"),
	)
	n, err := s.CountTransactionsByCategory(context.Background(), "u1", "Food")
	if err != nil {
		t.Fatalf("CountTransactionsByCategory: %v", err)
	}
	if n != 2 {
		t.Errorf("count = %d, want 2", n)
	}
}

func testCategories(t *testing.T, s store.Store) {
	defer s.Close()
	ctx := context.Background()
	for i, name := range []string{"Zeta", "Alpha", "Mid"} {
		c := core.Category{ID: "c" + name, OwnerID: "u1", Name: name, Color: core.PaletteColor(i), CreatedAt: created.Add(time.Duration(i) * time.Minute)}
		if err := s.AddCategory(ctx, c); err != nil {
			t.Fatalf("AddCategory(%s): %v", name, err)
		}
	}
	if err := s.AddCategory(ctx, core.Category{ID: "cOther", OwnerID: "u2", Name: "Alpha", Color: "#000000", CreatedAt: created}); err != nil {
		t.Fatalf("AddCategory(other owner): %v", err)
	}
	if err := s.AddCategory(ctx, core.Category{ID: "cZeta", OwnerID: "u1", Name: "Dup", CreatedAt: created}); !errors.Is(err, store.ErrDuplicateID) {
		t.Errorf("AddCategory(dup id) error = %v, want ErrDuplicateID", err)
	}

	cats, err := s.ListCategories(ctx, "u1")
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if len(cats) != 3 || cats[0].Name != "Zeta" || cats[1].Name != "Alpha" || cats[2].Name != "Mid" {
		t.Fatalf("ListCategories(u1) = %+v", cats)
	}
	if cats[1].Color != core.Palette[1] {
		t.Errorf("color = %q, want %q", cats[1].Color, core.Palette[1])
	}

	got, err := s.GetCategory(ctx, "cAlpha")
	if err != nil || got.Name != "Alpha" || got.OwnerID != "u1" {
		t.Errorf("GetCategory = %+v, %v", got, err)
	}
	removed, err := s.RemoveCategory(ctx, "cAlpha")
	if err != nil || removed.Name != "Alpha" {
		t.Fatalf("RemoveCategory = %+v, %v", removed, err)
	}
	if _, err := s.RemoveCategory(ctx, "cAlpha"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("second RemoveCategory error = %v, want ErrNotFound", err)
	}
	if _, err := s.GetCategory(ctx, "cAlpha"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("GetCategory(removed) error = %v, want ErrNotFound", err)
	}
}

func testConcurrentUsers(t *testing.T, s store.Store) {
	defer s.Close()
	ctx := context.Background()

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u := core.User{ID: fmt.Sprintf("u-%d", i), Username: "racer", Email: "race@x.com", Password: "secret", Country: core.DefaultCountry, CreatedAt: created}
			errs[i] = s.AddUser(ctx, u)
		}(i)
	}
	wg.Wait()

	winner := -1
	for i, err := range errs {
		switch {
		case err == nil && winner < 0:
			winner = i
		case err == nil:
			t.Errorf("AddUser #%d and #%d both succeeded", winner, i)
		case !errors.Is(err, core.ErrEmailTaken):
			t.Errorf("AddUser #%d error = %v, want ErrEmailTaken", i, err)
		}
	}
	if winner < 0 {
		t.Fatal("no registration succeeded")
	}

	reused := core.User{ID: fmt.Sprintf("u-%d", winner), Username: "other", Email: "other@x.com", Password: "secret", Country: core.DefaultCountry, CreatedAt: created}
	if err := s.AddUser(ctx, reused); !errors.Is(err, store.ErrDuplicateID) {
		t.Errorf("AddUser(reused id) error = %v, want ErrDuplicateID", err)
	}
}

func testUsers(t *testing.T, s store.Store) {
	defer s.Close()
	ctx := context.Background()
	alice := core.User{ID: "u1", Username: "alice", Email: "a@x.com", Password: "secret", Country: core.DefaultCountry, CreatedAt: created}
	if err := s.AddUser(ctx, alice); err != nil {
		t.Fatalf("AddUser: %v", err)
	}
	dup := core.User{ID: "u2", Username: "bob", Email: "A@X.com", Password: "secret", CreatedAt: created}
	if err := s.AddUser(ctx, dup); !errors.Is(err, core.ErrEmailTaken) {
		t.Errorf("AddUser(same email) error = %v, want ErrEmailTaken", err)
	}

	got, err := s.FindUserByEmail(ctx, " A@x.COM ")
	if err != nil || got.ID != "u1" || got.Password != "secret" {
		t.Fatalf("FindUserByEmail = %+v, %v", got, err)
	}
	if _, err := s.FindUserByEmail(ctx, "b@x.com"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("FindUserByEmail(unknown) error = %v, want ErrNotFound", err)
	}

	alice.Username = "Alice L."
	alice.Country = "Germany"
	alice.Email = "changed@x.com"
	if err := s.UpdateUser(ctx, alice); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	got, err = s.GetUser(ctx, "u1")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Username != "Alice L." || got.Country != "Germany" || got.Email != "a@x.com" {
		t.Errorf("after update = %+v", got)
	}
	if err := s.UpdateUser(ctx, core.User{ID: "ghost"}); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("UpdateUser(ghost) error = %v, want ErrNotFound", err)
	}

	users, err := s.ListUsers(ctx)
	if err != nil || len(users) != 1 {
		t.Errorf("ListUsers = %+v, %v", users, err)
	}
}
