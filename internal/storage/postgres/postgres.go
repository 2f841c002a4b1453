// Package postgres is the remote-backed Record Store, a hosted Postgres
// database (Supabase style) reached through gorm.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

type (
	profileModel struct {
		Seq       int64  `gorm:"autoIncrement;uniqueIndex"`
		ID        string `gorm:"primaryKey;type:text"`
		Username  string `gorm:"not null"`
		Email     string `gorm:"uniqueIndex;not null"`
		Password  string `gorm:"not null"`
		Country   string `gorm:"not null;default:'United States'"`
		CreatedAt time.Time
	}

	categoryModel struct {
		Seq       int64  `gorm:"autoIncrement;uniqueIndex"`
		ID        string `gorm:"primaryKey;type:text"`
		OwnerID   string `gorm:"type:text;not null;index"`
		Name      string `gorm:"not null"`
		Color     string `gorm:"not null"`
		CreatedAt time.Time
	}

	transactionModel struct {
		Seq         int64     `gorm:"autoIncrement;uniqueIndex"`
		ID          string    `gorm:"primaryKey;type:text"`
		OwnerID     string    `gorm:"type:text;not null;index:idx_tx_owner_category,priority:1"`
		Description string    `gorm:"not null"`
		Amount      float64   `gorm:"not null"`
		Type        string    `gorm:"not null"`
		Category    string    `gorm:"not null;index:idx_tx_owner_category,priority:2"`
		Date        time.Time `gorm:"type:date;not null"`
		CreatedAt   time.Time
	}
)

func (profileModel) TableName() string     { return "profiles" }
func (categoryModel) TableName() string    { return "categories" }
func (transactionModel) TableName() string { return "transactions" }

// Store implements store.Store on gorm.
type Store struct {
	db *gorm.DB
}

var _ store.Store = (*Store)(nil)

// WithSSLMode appends sslmode=require unless the DSN already names a mode.
// Hosted Postgres providers refuse plaintext connections.
func WithSSLMode(dsn string) string {
	if strings.Contains(dsn, "sslmode") {
		return dsn
	}
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		if strings.Contains(dsn, "?") {
			return dsn + "&sslmode=require"
		}
		return dsn + "?sslmode=require"
	default:
		return strings.TrimSpace(dsn) + " sslmode=require"
	}
}

// Open connects to dsn and migrates the schema.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("postgres: empty DATABASE_URL")
	}
	db, err := gorm.Open(postgres.Open(WithSSLMode(dsn)), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := db.WithContext(ctx).AutoMigrate(&profileModel{}, &categoryModel{}, &transactionModel{}); err != nil {
		return nil, fmt.Errorf("migrate postgres schema: %w", err)
	}

	slog.InfoContext(ctx, "Postgres store ready")
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) AddTransaction(ctx context.Context, t core.Transaction) error {
	m := toTransactionModel(t)
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return store.ErrDuplicateID
		}
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (s *Store) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	res := s.db.WithContext(ctx).Model(&transactionModel{}).
		Where("id = ?", t.ID).
		Updates(map[string]any{
			"description": t.Description,
			"amount":      t.Amount,
			"type":        string(t.Type),
			"category":    t.Category,
			"date":        t.Date.Time,
		})
	if res.Error != nil {
		return fmt.Errorf("update transaction: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *Store) RemoveTransaction(ctx context.Context, id string) (core.Transaction, error) {
	var m transactionModel
	res := s.db.WithContext(ctx).Clauses(clause.Returning{}).Where("id = ?", id).Delete(&m)
	if res.Error != nil {
		return core.Transaction{}, fmt.Errorf("delete transaction: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return core.Transaction{}, core.ErrNotFound
	}
	return m.toCore(), nil
}

func (s *Store) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	var m transactionModel
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&m).Error; err != nil {
		return core.Transaction{}, notFound(err, "get transaction")
	}
	return m.toCore(), nil
}

func (s *Store) ListTransactions(ctx context.Context, ownerID string) ([]core.Transaction, error) {
	var rows []transactionModel
	if err := s.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("seq").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	out := make([]core.Transaction, len(rows))
	for i, m := range rows {
		out[i] = m.toCore()
	}
	return out, nil
}

func (s *Store) CountTransactionsByCategory(ctx context.Context, ownerID, name string) (int, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&transactionModel{}).
		Where("owner_id = ? AND category = ?", ownerID, name).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count transactions by category: %w", err)
	}
	return int(n), nil
}

func (s *Store) AddCategory(ctx context.Context, c core.Category) error {
	m := categoryModel{ID: c.ID, OwnerID: c.OwnerID, Name: c.Name, Color: c.Color, CreatedAt: c.CreatedAt}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return store.ErrDuplicateID
		}
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (s *Store) RemoveCategory(ctx context.Context, id string) (core.Category, error) {
	var m categoryModel
	res := s.db.WithContext(ctx).Clauses(clause.Returning{}).Where("id = ?", id).Delete(&m)
	if res.Error != nil {
		return core.Category{}, fmt.Errorf("delete category: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return core.Category{}, core.ErrNotFound
	}
	return m.toCore(), nil
}

func (s *Store) GetCategory(ctx context.Context, id string) (core.Category, error) {
	var m categoryModel
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&m).Error; err != nil {
		return core.Category{}, notFound(err, "get category")
	}
	return m.toCore(), nil
}

func (s *Store) ListCategories(ctx context.Context, ownerID string) ([]core.Category, error) {
	var rows []categoryModel
	if err := s.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("seq").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out := make([]core.Category, len(rows))
	for i, m := range rows {
		out[i] = m.toCore()
	}
	return out, nil
}

func (s *Store) AddUser(ctx context.Context, u core.User) error {
	email := core.NormalizeEmail(u.Email)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&profileModel{}).Where("email = ?", email).Count(&n).Error; err != nil {
			return fmt.Errorf("check profile email: %w", err)
		}
		if n > 0 {
			return core.ErrEmailTaken
		}
		m := profileModel{ID: u.ID, Username: u.Username, Email: email, Password: u.Password, Country: u.Country, CreatedAt: u.CreatedAt}
		return tx.Create(&m).Error
	})
	switch {
	case err == nil, errors.Is(err, core.ErrEmailTaken):
		return err
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return s.profileConflict(ctx, u.ID)
	}
	return fmt.Errorf("insert profile: %w", err)
}

// profileConflict names the unique key a rejected profile insert hit. A
// concurrent registration can pass the email check and still lose on the
// email index, so an id that is not stored means the email was taken.
func (s *Store) profileConflict(ctx context.Context, id string) error {
	var n int64
	if err := s.db.WithContext(ctx).Model(&profileModel{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return fmt.Errorf("check profile id: %w", err)
	}
	if n > 0 {
		return store.ErrDuplicateID
	}
	return core.ErrEmailTaken
}

func (s *Store) UpdateUser(ctx context.Context, u core.User) error {
	res := s.db.WithContext(ctx).Model(&profileModel{}).
		Where("id = ?", u.ID).
		Updates(map[string]any{"username": u.Username, "country": u.Country})
	if res.Error != nil {
		return fmt.Errorf("update profile: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (core.User, error) {
	var m profileModel
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&m).Error; err != nil {
		return core.User{}, notFound(err, "get profile")
	}
	return m.toCore(), nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (core.User, error) {
	var m profileModel
	if err := s.db.WithContext(ctx).Where("email = ?", core.NormalizeEmail(email)).Take(&m).Error; err != nil {
		return core.User{}, notFound(err, "find profile by email")
	}
	return m.toCore(), nil
}

func (s *Store) ListUsers(ctx context.Context) ([]core.User, error) {
	var rows []profileModel
	if err := s.db.WithContext(ctx).Order("seq").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	out := make([]core.User, len(rows))
	for i, m := range rows {
		out[i] = m.toCore()
	}
	return out, nil
}

func notFound(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return core.ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func toTransactionModel(t core.Transaction) transactionModel {
	return transactionModel{
		ID:          t.ID,
		OwnerID:     t.OwnerID,
		Description: t.Description,
		Amount:      t.Amount,
		Type:        string(t.Type),
		Category:    t.Category,
		Date:        t.Date.Time,
		CreatedAt:   t.CreatedAt,
	}
}

func (m transactionModel) toCore() core.Transaction {
	return core.Transaction{
		ID:          m.ID,
		OwnerID:     m.OwnerID,
		Description: m.Description,
		Amount:      m.Amount,
		Type:        core.TxType(m.Type),
		Category:    m.Category,
		Date:        core.DateOf(m.Date.UTC()),
		CreatedAt:   m.CreatedAt.UTC(),
	}
}

func (m categoryModel) toCore() core.Category {
	return core.Category{ID: m.ID, OwnerID: m.OwnerID, Name: m.Name, Color: m.Color, CreatedAt: m.CreatedAt.UTC()}
}

func (m profileModel) toCore() core.User {
	return core.User{ID: m.ID, Username: m.Username, Email: m.Email, Password: m.Password, Country: m.Country, CreatedAt: m.CreatedAt.UTC()}
}
