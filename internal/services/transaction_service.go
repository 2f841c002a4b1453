package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/export"
	applog "fintrack/internal/log"
	"fintrack/internal/store"
)

// DefaultRecentLimit is the size of the recent transactions list.
const DefaultRecentLimit = 20

// EventPublisher is satisfied by *amqp.Client.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, ev *amqp.TransactionEvent) error
}

// Summary is the headline figures for one period.
type Summary struct {
	Period core.Period `json:"period"`
	Totals core.Totals `json:"totals"`
	Total  float64     `json:"total"`
	Count  int         `json:"count"`
}

// TransactionService composes validation, the Record Store and event
// publication. Reads load a fresh snapshot on every call.
type TransactionService struct {
	txs       store.TransactionStore
	registry  *CategoryRegistry
	policy    core.Policy
	publisher EventPublisher
	logger    *applog.Logger
	audit     *applog.StructuredLogger

	newID func() string
	now   func() time.Time
}

// NewTransactionService builds the service. publisher may be nil, in which
// case no events are sent.
func NewTransactionService(txs store.TransactionStore, registry *CategoryRegistry, policy core.Policy, publisher EventPublisher, logger *applog.Logger) *TransactionService {
	l := componentLogger(logger, applog.ComponentTransaction)
	return &TransactionService{
		txs:       txs,
		registry:  registry,
		policy:    policy,
		publisher: publisher,
		logger:    l,
		audit:     applog.NewStructuredLogger(l),
		newID:     uuid.NewString,
		now:       time.Now,
	}
}

func (s *TransactionService) Policy() core.Policy { return s.policy }

// Create validates input and stores a new record for owner.
func (s *TransactionService) Create(ctx context.Context, ownerID string, in core.TransactionInput) (core.Transaction, error) {
	var t core.Transaction
	err := s.registry.Referencing(ctx, ownerID, func(cats []core.Category) error {
		now := s.now()
		var err error
		t, err = core.ValidateTransaction(in, cats, s.policy, now)
		if err != nil {
			return err
		}
		t.ID = s.newID()
		t.OwnerID = ownerID
		t.CreatedAt = now
		if err := s.txs.AddTransaction(ctx, t); err != nil {
			return fmt.Errorf("save transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return core.Transaction{}, err
	}
	s.audit.LogTransactionMutation(ctx, applog.OpCreate, t.ID, ownerID, t.Amount, string(t.Type), t.Category)
	s.publish(ctx, amqp.ActionCreated, t)
	return t, nil
}

// Update replaces the mutable fields of one of the owner's records. A blank
// date or type keeps the stored value.
func (s *TransactionService) Update(ctx context.Context, ownerID, id string, in core.TransactionInput) (core.Transaction, error) {
	cur, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return core.Transaction{}, err
	}
	if strings.TrimSpace(in.Date) == "" {
		in.Date = cur.Date.String()
	}
	if strings.TrimSpace(in.Type) == "" {
		in.Type = string(cur.Type)
	}

	var t core.Transaction
	err = s.registry.Referencing(ctx, ownerID, func(cats []core.Category) error {
		var err error
		t, err = core.ValidateTransaction(in, cats, s.policy, s.now())
		if err != nil {
			return err
		}
		t.ID, t.OwnerID, t.CreatedAt = cur.ID, cur.OwnerID, cur.CreatedAt
		if err := s.txs.UpdateTransaction(ctx, t); err != nil {
			if errors.Is(err, core.ErrNotFound) {
				return core.ErrNotFound
			}
			return fmt.Errorf("update transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return core.Transaction{}, err
	}
	s.audit.LogTransactionMutation(ctx, applog.OpUpdate, t.ID, ownerID, t.Amount, string(t.Type), t.Category)
	s.publish(ctx, amqp.ActionUpdated, t)
	return t, nil
}

// Delete removes one of the owner's records and returns it.
func (s *TransactionService) Delete(ctx context.Context, ownerID, id string) (core.Transaction, error) {
	if _, err := s.owned(ctx, ownerID, id); err != nil {
		return core.Transaction{}, err
	}
	removed, err := s.txs.RemoveTransaction(ctx, id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.Transaction{}, core.ErrNotFound
		}
		return core.Transaction{}, fmt.Errorf("remove transaction: %w", err)
	}
	s.audit.LogTransactionMutation(ctx, applog.OpDelete, removed.ID, ownerID, removed.Amount, string(removed.Type), removed.Category)
	s.publish(ctx, amqp.ActionDeleted, removed)
	return removed, nil
}

// List returns the owner's records filtered and sorted by q.
func (s *TransactionService) List(ctx context.Context, ownerID string, q core.Query) ([]core.Transaction, error) {
	all, err := s.snapshot(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return core.FilterAndSort(all, q), nil
}

func (s *TransactionService) Summary(ctx context.Context, ownerID string, period core.Period) (Summary, error) {
	inPeriod, err := s.period(ctx, ownerID, period)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		Period: period,
		Totals: core.Summarize(inPeriod),
		Total:  core.Total(inPeriod, s.policy.Variant),
		Count:  len(inPeriod),
	}, nil
}

func (s *TransactionService) Dashboard(ctx context.Context, ownerID string, period core.Period) (core.Dashboard, error) {
	all, err := s.snapshot(ctx, ownerID)
	if err != nil {
		return core.Dashboard{}, err
	}
	cats, err := s.registry.List(ctx, ownerID)
	if err != nil {
		return core.Dashboard{}, err
	}
	return core.BuildDashboard(all, cats, period, s.now(), s.policy)
}

// Breakdown returns expense chart tuples for the period.
func (s *TransactionService) Breakdown(ctx context.Context, ownerID string, period core.Period) ([]core.CategoryTotal, error) {
	inPeriod, err := s.period(ctx, ownerID, period)
	if err != nil {
		return nil, err
	}
	cats, err := s.registry.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return core.ExpenseBreakdown(inPeriod, cats), nil
}

// Recent lists the newest records by creation time. limit <= 0 means
// DefaultRecentLimit.
func (s *TransactionService) Recent(ctx context.Context, ownerID string, limit int, typeFilter core.TxType) ([]core.Transaction, error) {
	all, err := s.snapshot(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	return core.Recent(all, limit, typeFilter), nil
}

// Export encodes the owner's records matching q in the requested format.
func (s *TransactionService) Export(ctx context.Context, ownerID, format string, q core.Query) ([]byte, export.Encoder, error) {
	enc, err := export.ForFormat(format)
	if err != nil {
		return nil, nil, err
	}
	txs, err := s.List(ctx, ownerID, q)
	if err != nil {
		return nil, nil, err
	}
	data, err := enc.EncodeRows(export.Rows(txs))
	if err != nil {
		return nil, nil, fmt.Errorf("encode %s export: %w", enc.Extension(), err)
	}
	s.logger.InfoContext(ctx, "Transactions exported",
		applog.FieldOwnerID, ownerID,
		applog.FieldFormat, enc.Extension(),
		"count", len(txs))
	return data, enc, nil
}

func (s *TransactionService) owned(ctx context.Context, ownerID, id string) (core.Transaction, error) {
	t, err := s.txs.GetTransaction(ctx, id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.Transaction{}, core.ErrNotFound
		}
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	if t.OwnerID != ownerID {
		return core.Transaction{}, core.ErrNotFound
	}
	return t, nil
}

func (s *TransactionService) snapshot(ctx context.Context, ownerID string) ([]core.Transaction, error) {
	all, err := s.txs.ListTransactions(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return all, nil
}

func (s *TransactionService) period(ctx context.Context, ownerID string, period core.Period) ([]core.Transaction, error) {
	all, err := s.snapshot(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return core.PeriodFilter(all, period, s.now(), s.policy.Window)
}

// publish sends a change event. Failures are logged; the mutation has
// already been committed.
func (s *TransactionService) publish(ctx context.Context, action amqp.EventAction, t core.Transaction) {
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "Event publisher not configured, skipping event", "action", action)
		return
	}
	if err := s.publisher.PublishTransactionEvent(ctx, amqp.NewTransactionEvent(action, t)); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish transaction event",
			"action", action,
			applog.FieldTransactionID, t.ID,
			applog.FieldError, err)
	}
}
