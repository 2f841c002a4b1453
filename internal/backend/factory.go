package backend

import (
	"context"
	"fmt"

	"fintrack/internal/amqp"
	applog "fintrack/internal/log"
	"fintrack/internal/storage"
	"fintrack/internal/storage/postgres"
	"fintrack/internal/store"
	"fintrack/internal/store/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(applog.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	dataDir := config.DataDirectory
	if dataDir == "" {
		dataDir = "data"
	}
	seeds := memory.LoadSeeds(dataDir)

	var (
		st  store.Store
		err error
	)
	switch config.Type {
	case SQLiteBackend:
		st, err = f.createSQLiteBackend(ctx, config)
	case PostgresBackend:
		st, err = f.createPostgresBackend(ctx, config)
	case MemoryBackend:
		st = memory.New()
		f.logger.InfoContext(ctx, "Initialized memory backend", "data_directory", dataDir)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	return &BackendResult{
		Store:   st,
		Seeds:   seeds,
		Cleanup: st.Close,
	}, nil
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (store.Store, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}
	f.logger.InfoContext(ctx, "Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	return repo, nil
}

func (f *DefaultFactory) createPostgresBackend(ctx context.Context, config Config) (store.Store, error) {
	pg, err := postgres.Open(ctx, config.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Postgres store: %w", err)
	}
	f.logger.InfoContext(ctx, "Initialized Postgres backend")
	return pg, nil
}

// NewPublisher connects the event publisher. An empty URL disables events and
// returns a nil client; a broker that cannot be reached is logged and also
// yields nil, so the API keeps serving without events.
func NewPublisher(ctx context.Context, logger *applog.Logger, url, exchange, queue string) *amqp.Client {
	if url == "" {
		return nil
	}
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	l := logger.WithComponent(applog.ComponentAMQP)
	client, err := amqp.NewClient(url, exchange, queue)
	if err != nil {
		l.WarnContext(ctx, "Failed to initialize AMQP client, continuing without events", applog.FieldError, err)
		return nil
	}
	l.InfoContext(ctx, "Initialized AMQP client", "exchange", exchange, "queue", queue)
	return client
}
