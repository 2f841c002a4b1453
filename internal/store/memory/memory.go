package memory

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

// Store is the local in-memory Record Store. Slices keep insertion order.
type Store struct {
	mu    sync.RWMutex
	txs   []core.Transaction
	cats  []core.Category
	users []core.User
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{}
}

func (s *Store) Close() error { return nil }

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) AddTransaction(_ context.Context, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if indexOfTx(s.txs, t.ID) >= 0 {
		return store.ErrDuplicateID
	}
	s.txs = append(s.txs, t)
	return nil
}

func (s *Store) UpdateTransaction(_ context.Context, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOfTx(s.txs, t.ID)
	if i < 0 {
		return core.ErrNotFound
	}
	cur := &s.txs[i]
	cur.Description = t.Description
	cur.Amount = t.Amount
	cur.Type = t.Type
	cur.Category = t.Category
	cur.Date = t.Date
	return nil
}

func (s *Store) RemoveTransaction(_ context.Context, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOfTx(s.txs, id)
	if i < 0 {
		return core.Transaction{}, core.ErrNotFound
	}
	removed := s.txs[i]
	s.txs = append(s.txs[:i], s.txs[i+1:]...)
	return removed, nil
}

func (s *Store) GetTransaction(_ context.Context, id string) (core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := indexOfTx(s.txs, id)
	if i < 0 {
		return core.Transaction{}, core.ErrNotFound
	}
	return s.txs[i], nil
}

func (s *Store) ListTransactions(_ context.Context, ownerID string) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Transaction, 0, len(s.txs))
	for _, t := range s.txs {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Store) CountTransactionsByCategory(_ context.Context, ownerID, name string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, t := range s.txs {
		if t.OwnerID == ownerID && t.Category == name {
			n++
		}
	}
	return n, nil
}

func (s *Store) AddCategory(_ context.Context, c core.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cur := range s.cats {
		if cur.ID == c.ID {
			return store.ErrDuplicateID
		}
	}
	s.cats = append(s.cats, c)
	return nil
}

func (s *Store) RemoveCategory(_ context.Context, id string) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.cats {
		if c.ID == id {
			s.cats = append(s.cats[:i], s.cats[i+1:]...)
			return c, nil
		}
	}
	return core.Category{}, core.ErrNotFound
}

func (s *Store) GetCategory(_ context.Context, id string) (core.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.cats {
		if c.ID == id {
			return c, nil
		}
	}
	return core.Category{}, core.ErrNotFound
}

func (s *Store) ListCategories(_ context.Context, ownerID string) ([]core.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Category, 0, len(s.cats))
	for _, c := range s.cats {
		if c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Store) AddUser(_ context.Context, u core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := core.NormalizeEmail(u.Email)
	for _, cur := range s.users {
		if cur.ID == u.ID {
			return store.ErrDuplicateID
		}
		if cur.Email == email {
			return core.ErrEmailTaken
		}
	}
	u.Email = email
	s.users = append(s.users, u)
	return nil
}

func (s *Store) UpdateUser(_ context.Context, u core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].ID == u.ID {
			s.users[i].Username = u.Username
			s.users[i].Country = u.Country
			return nil
		}
	}
	return core.ErrNotFound
}

func (s *Store) GetUser(_ context.Context, id string) (core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return core.User{}, core.ErrNotFound
}

func (s *Store) FindUserByEmail(_ context.Context, email string) (core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	email = core.NormalizeEmail(email)
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return core.User{}, core.ErrNotFound
}

func (s *Store) ListUsers(_ context.Context) ([]core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.User(nil), s.users...), nil
}

func indexOfTx(txs []core.Transaction, id string) int {
	for i, t := range txs {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// LoadSeeds reads default categories from base/seed_categories.txt, one per
// line as "Name" or "Name #RRGGBB". Blank lines and # comments are skipped;
// names without a color take the palette color for their position. A missing
// or empty file yields core.DefaultCategories.
func LoadSeeds(base string) []core.DefaultCategory {
	lines := readLines(filepath.Join(base, "seed_categories.txt"))
	if len(lines) == 0 {
		return append([]core.DefaultCategory(nil), core.DefaultCategories...)
	}
	out := make([]core.DefaultCategory, 0, len(lines))
	for i, line := range lines {
		name, color := line, core.PaletteColor(i)
		if j := strings.LastIndex(line, " #"); j > 0 {
			name, color = strings.TrimSpace(line[:j]), line[j+1:]
		}
		out = append(out, core.DefaultCategory{Name: name, Color: color})
	}
	return out
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return dedupe(out)
}

func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
