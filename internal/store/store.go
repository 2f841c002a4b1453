// Package store defines the Record Store ports shared by every backend.
//
// Implementations keep insertion order for listings and report absent ids
// with core.ErrNotFound so callers can match on the error kind.
package store

import (
	"context"
	"errors"

	"fintrack/internal/core"
)

// ErrDuplicateID is returned when a record is added under an id already present.
var ErrDuplicateID = errors.New("store: duplicate id")

// Ports for the persistence backends.
type (
	TransactionStore interface {
		AddTransaction(ctx context.Context, t core.Transaction) error
		// UpdateTransaction replaces the mutable fields of the record with t.ID.
		// ID, OwnerID and CreatedAt of the stored record are preserved.
		UpdateTransaction(ctx context.Context, t core.Transaction) error
		RemoveTransaction(ctx context.Context, id string) (core.Transaction, error)
		GetTransaction(ctx context.Context, id string) (core.Transaction, error)
		ListTransactions(ctx context.Context, ownerID string) ([]core.Transaction, error)
		// CountTransactionsByCategory counts the owner's records whose category
		// equals name exactly.
		CountTransactionsByCategory(ctx context.Context, ownerID, name string) (int, error)
	}

	CategoryStore interface {
		AddCategory(ctx context.Context, c core.Category) error
		RemoveCategory(ctx context.Context, id string) (core.Category, error)
		GetCategory(ctx context.Context, id string) (core.Category, error)
		ListCategories(ctx context.Context, ownerID string) ([]core.Category, error)
	}

	UserStore interface {
		// AddUser fails with core.ErrEmailTaken when the email is already stored.
		AddUser(ctx context.Context, u core.User) error
		UpdateUser(ctx context.Context, u core.User) error
		GetUser(ctx context.Context, id string) (core.User, error)
		FindUserByEmail(ctx context.Context, email string) (core.User, error)
		ListUsers(ctx context.Context) ([]core.User, error)
	}

	// Store is the full Record Store contract.
	Store interface {
		TransactionStore
		CategoryStore
		UserStore
		Close() error
	}

	// Pinger is implemented by backends that can report readiness.
	Pinger interface {
		Ping(ctx context.Context) error
	}
)
