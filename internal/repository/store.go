package repository

import (
	"database/sql"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"crypto-checkout/internal/config"
	"crypto-checkout/internal/domain"
)

// Store is the storage component handed to the services: the transaction
// repository plus connection lifecycle state for the health endpoint.
type Store interface {
	domain.TransactionRepository
	Connected() bool
	Close() error
}

// postgresStore backs Store with a pooled *sql.DB.
type postgresStore struct {
	domain.TransactionRepository
	db *sql.DB
}

func (s *postgresStore) Connected() bool {
	// Handle state only, no probe query.
	return s.db != nil
}

func (s *postgresStore) Close() error {
	return s.db.Close()
}

// NewStore resolves the storage driver once at startup and returns the
// store the rest of the process is wired with.
func NewStore(cfg *config.Config, logger *slog.Logger) (Store, error) {
	if cfg.StorageDriver == config.DriverMemory {
		logger.Info("Using in-memory transaction store")
		return NewMemoryStore(logger), nil
	}

	db, err := sql.Open("postgres", cfg.GetDBConnectionString())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("Successfully connected to database", "host", cfg.DBHost, "database", cfg.DBName)

	return &postgresStore{
		TransactionRepository: NewTransactionRepository(db, logger),
		db:                    db,
	}, nil
}
