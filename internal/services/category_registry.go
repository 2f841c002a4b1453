package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/store"
)

// RegistryStore is what the category registry needs from the Record Store.
type RegistryStore interface {
	store.CategoryStore
	CountTransactionsByCategory(ctx context.Context, ownerID, name string) (int, error)
}

// CategoryRegistry maintains each owner's set of valid category names.
type CategoryRegistry struct {
	store    RegistryStore
	policy   core.Policy
	defaults []core.DefaultCategory
	logger   *applog.Logger

	// mu serializes the read-check-write sequences of Add, Delete,
	// InitializeDefaults and Referencing.
	mu    sync.Mutex
	newID func() string
	now   func() time.Time
}

func NewCategoryRegistry(st RegistryStore, policy core.Policy, defaults []core.DefaultCategory, logger *applog.Logger) *CategoryRegistry {
	if len(defaults) == 0 {
		defaults = core.DefaultCategories
	}
	return &CategoryRegistry{
		store:    st,
		policy:   policy,
		defaults: defaults,
		logger:   componentLogger(logger, applog.ComponentCategory),
		newID:    uuid.NewString,
		now:      time.Now,
	}
}

// InitializeDefaults seeds an empty registry. It never re-seeds once the
// owner has at least one category.
func (r *CategoryRegistry) InitializeDefaults(ctx context.Context, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, err := r.store.ListCategories(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	now := r.now()
	for _, d := range r.defaults {
		c := core.Category{ID: r.newID(), OwnerID: ownerID, Name: d.Name, Color: d.Color, CreatedAt: now}
		if err := r.store.AddCategory(ctx, c); err != nil {
			return fmt.Errorf("seed category %q: %w", d.Name, err)
		}
	}
	r.logger.InfoContext(ctx, "Seeded default categories",
		applog.FieldOwnerID, ownerID,
		"count", len(r.defaults))
	return nil
}

// Add creates a category with the next palette color.
func (r *CategoryRegistry) Add(ctx context.Context, ownerID, name string) (core.Category, error) {
	name, err := core.ValidateCategoryName(name)
	if err != nil {
		return core.Category{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, err := r.store.ListCategories(ctx, ownerID)
	if err != nil {
		return core.Category{}, fmt.Errorf("list categories: %w", err)
	}
	if _, dup := core.FindCategory(existing, name, r.policy.CategoryMatch); dup {
		return core.Category{}, core.ErrDuplicateName
	}

	c := core.Category{
		ID:        r.newID(),
		OwnerID:   ownerID,
		Name:      name,
		Color:     core.PaletteColor(len(existing)),
		CreatedAt: r.now(),
	}
	if err := r.store.AddCategory(ctx, c); err != nil {
		return core.Category{}, fmt.Errorf("add category: %w", err)
	}
	r.logger.InfoContext(ctx, "Category added",
		applog.FieldOwnerID, ownerID,
		applog.FieldCategory, c.Name,
		applog.FieldOperation, applog.OpCreate)
	return c, nil
}

// Delete removes one of the owner's categories unless a transaction still
// references its name. Foreign ids are reported as not found.
func (r *CategoryRegistry) Delete(ctx context.Context, ownerID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, err := r.store.GetCategory(ctx, id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.ErrNotFound
		}
		return fmt.Errorf("get category: %w", err)
	}
	if c.OwnerID != ownerID {
		return core.ErrNotFound
	}

	n, err := r.store.CountTransactionsByCategory(ctx, ownerID, c.Name)
	if err != nil {
		return fmt.Errorf("count category references: %w", err)
	}
	if n > 0 {
		return core.ErrCategoryInUse
	}

	if _, err := r.store.RemoveCategory(ctx, id); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.ErrNotFound
		}
		return fmt.Errorf("remove category: %w", err)
	}
	r.logger.InfoContext(ctx, "Category deleted",
		applog.FieldOwnerID, ownerID,
		applog.FieldCategory, c.Name,
		applog.FieldOperation, applog.OpDelete)
	return nil
}

// List returns the owner's categories in insertion or alphabetical order.
func (r *CategoryRegistry) List(ctx context.Context, ownerID string) ([]core.Category, error) {
	return r.list(ctx, ownerID)
}

// Referencing runs fn with the owner's categories under the registry lock, so
// none of them can be deleted before fn's write lands.
func (r *CategoryRegistry) Referencing(ctx context.Context, ownerID string, fn func(cats []core.Category) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cats, err := r.list(ctx, ownerID)
	if err != nil {
		return err
	}
	return fn(cats)
}

func (r *CategoryRegistry) list(ctx context.Context, ownerID string) ([]core.Category, error) {
	cats, err := r.store.ListCategories(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if r.policy.CategoryOrder == core.OrderAlphabetical {
		sort.SliceStable(cats, func(i, j int) bool {
			a, b := strings.ToLower(cats[i].Name), strings.ToLower(cats[j].Name)
			if a != b {
				return a < b
			}
			return cats[i].Name < cats[j].Name
		})
	}
	return cats, nil
}
