package postgres

import (
	"context"
	"os"
	"testing"

	"fintrack/internal/store"
	"fintrack/internal/store/storetest"
)

func TestWithSSLMode(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"postgres://u:p@db.example.com:5432/app", "postgres://u:p@db.example.com:5432/app?sslmode=require"},
		{"postgresql://u@h/app?connect_timeout=5", "postgresql://u@h/app?connect_timeout=5&sslmode=require"},
		{"postgres://u@h/app?sslmode=disable", "postgres://u@h/app?sslmode=disable"},
		{"host=localhost user=app dbname=app", "host=localhost user=app dbname=app sslmode=require"},
	}
	for _, tt := range tests {
		if got := WithSSLMode(tt.in); got != tt.want {
			t.Errorf("WithSSLMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPostgresStoreContract(t *testing.T) {
	dsn := os.Getenv("FINTRACK_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("FINTRACK_TEST_DATABASE_URL not set")
	}
	storetest.Run(t, func(t *testing.T) store.Store {
		s, err := Open(context.Background(), dsn)
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		if err := s.db.Exec("TRUNCATE profiles, categories, transactions RESTART IDENTITY").Error; err != nil {
			t.Fatalf("truncate: %v", err)
		}
		return s
	})
}
