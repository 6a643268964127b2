// backend/src/storage/sqlite.go
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	stdlog "log"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/shopspring/decimal"
	"github.com/username/finsight/backend/src/logger"
	"github.com/username/finsight/backend/src/models"
	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

// OpenDB opens the sqlite database with WAL, busy_timeout and foreign keys
// enabled. SQLite is limited to a single open connection to avoid locking
// issues; the caller/store contract serializes concurrent ingestion anyway.
func OpenDB(databasePath string) *sql.DB {
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(on)", databasePath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		stdlog.Fatalf("failed to open database at %s: %v", databasePath, err)
	}

	db.SetMaxOpenConns(1)

	if err = db.Ping(); err != nil {
		stdlog.Fatalf("failed to ping database: %v", err)
	}
	logger.L.Info("Database connection established with WAL mode, busy_timeout, and foreign_keys enabled.")
	return db
}

// RunMigrations applies the SQL migrations under db/migrations.
func RunMigrations(db *sql.DB, databasePath string) {
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		logger.L.Error("Could not create sqlite migration driver", "error", err)
		stdlog.Fatalf("could not create sqlite migration driver: %v", err)
	}

	var migrationsSourceURL string
	if os.Getenv("GO_ENV") == "PRO" {
		migrationsSourceURL = "file:///app/db/migrations"
	} else {
		cwd, err := os.Getwd()
		if err != nil {
			stdlog.Fatalf("failed to get current working directory: %v", err)
		}
		localMigrationsPath := filepath.Join(cwd, "db", "migrations")
		migrationsSourceURL = fmt.Sprintf("file://%s", filepath.ToSlash(localMigrationsPath))
	}

	m, err := migrate.NewWithDatabaseInstance(migrationsSourceURL, databasePath, driver)
	if err != nil {
		logger.L.Error("Migration instance creation failed", "source", migrationsSourceURL, "error", err)
		stdlog.Fatalf("migration instance creation failed: %v", err)
	}

	logger.L.Info("Applying database migrations...", "source", migrationsSourceURL)
	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.L.Info("No new database migrations to apply.")
		} else {
			logger.L.Error("Failed to apply migrations", "error", err)
			stdlog.Fatalf("failed to apply migrations: %v", err)
		}
	} else {
		logger.L.Info("Database migrations applied successfully.")
	}
}

// SQLiteStore is the sqlite-backed Store implementation.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) InsertDataset(ctx context.Context, ds models.Dataset) error {
	createdAt := ds.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO datasets(dataset_id, source_name, created_at, accepted_count, rejected_count)
		 VALUES (?, ?, ?, ?, ?)`,
		ds.ID, ds.SourceName, createdAt.Format(time.RFC3339), ds.Accepted, ds.Rejected,
	)
	if err != nil {
		return fmt.Errorf("inserting dataset %s: %w", ds.ID, err)
	}
	return nil
}

func (s *SQLiteStore) InsertTransactions(ctx context.Context, datasetID string, txs []models.Transaction) (int, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction batch: %w", err)
	}
	defer dbTx.Rollback()

	stmt, err := dbTx.PrepareContext(ctx,
		`INSERT INTO transactions(dataset_id, line, txn_date, merchant, amount, currency, category, description, raw_type)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range txs {
		if _, err := stmt.ExecContext(ctx,
			datasetID, t.Line, t.Date.Format(dateLayout), t.Merchant,
			t.Amount.String(), t.Currency, string(t.Category), t.Description, t.RawType,
		); err != nil {
			return 0, fmt.Errorf("inserting transaction at line %d: %w", t.Line, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction batch: %w", err)
	}
	return len(txs), nil
}

func (s *SQLiteStore) DatasetExists(ctx context.Context, datasetID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM datasets WHERE dataset_id = ? LIMIT 1`, datasetID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking dataset %s: %w", datasetID, err)
	}
	return true, nil
}

// DeleteDataset removes the dataset row; its transactions go with it through
// the foreign-key cascade.
func (s *SQLiteStore) DeleteDataset(ctx context.Context, datasetID string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM datasets WHERE dataset_id = ?`, datasetID); err != nil {
		return fmt.Errorf("deleting dataset %s: %w", datasetID, err)
	}
	return nil
}

func (s *SQLiteStore) GetTransactions(ctx context.Context, datasetID, month string) ([]models.Transaction, error) {
	query := `SELECT id, line, txn_date, merchant, amount, currency, category, description, raw_type
		  FROM transactions WHERE dataset_id = ?`
	args := []any{datasetID}
	if month != "" {
		query += ` AND substr(txn_date, 1, 7) = ?`
		args = append(args, month)
	}
	query += ` ORDER BY txn_date ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying transactions for %s: %w", datasetID, err)
	}
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		var (
			t                  models.Transaction
			dateStr, amountStr string
			category           string
		)
		if err := rows.Scan(&t.ID, &t.Line, &dateStr, &t.Merchant, &amountStr,
			&t.Currency, &category, &t.Description, &t.RawType); err != nil {
			return nil, fmt.Errorf("scanning transaction row: %w", err)
		}
		t.DatasetID = datasetID
		t.Date, err = time.Parse(dateLayout, dateStr)
		if err != nil {
			return nil, fmt.Errorf("invalid stored date %q: %w", dateStr, err)
		}
		t.Amount, err = decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("invalid stored amount %q: %w", amountStr, err)
		}
		t.Category = models.ParseCategory(category)
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

func (s *SQLiteStore) GetMonths(ctx context.Context, datasetID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT substr(txn_date, 1, 7) AS month
		 FROM transactions WHERE dataset_id = ? ORDER BY month ASC`, datasetID)
	if err != nil {
		return nil, fmt.Errorf("querying months for %s: %w", datasetID, err)
	}
	defer rows.Close()

	var months []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, fmt.Errorf("scanning month row: %w", err)
		}
		months = append(months, m)
	}
	return months, rows.Err()
}
