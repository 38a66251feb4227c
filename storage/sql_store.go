package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"airbnb-dashboard/models"
)

const listingColumns = 12

type dialect struct {
	driver       string
	schema       string
	pingAttempts int
	placeholder  func(n int) string
}

var postgresDialect = dialect{
	driver:       "postgres",
	pingAttempts: 10,
	placeholder:  func(n int) string { return fmt.Sprintf("$%d", n) },
	schema: `
		CREATE TABLE IF NOT EXISTS listings (
			row_id            SERIAL PRIMARY KEY,
			id                BIGINT           NOT NULL DEFAULT 0,
			name              TEXT             NOT NULL DEFAULT '',
			borough           TEXT             NOT NULL,
			neighborhood      TEXT             NOT NULL,
			room_type         TEXT             NOT NULL,
			minimum_nights    INTEGER          NOT NULL,
			service_fee       DOUBLE PRECISION NOT NULL DEFAULT 0,
			price             DOUBLE PRECISION NOT NULL,
			review_rating     DOUBLE PRECISION NOT NULL,
			longitude         DOUBLE PRECISION NOT NULL,
			latitude          DOUBLE PRECISION NOT NULL,
			construction_year INTEGER          NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_listings_borough      ON listings(borough);
		CREATE INDEX IF NOT EXISTS idx_listings_neighborhood ON listings(neighborhood);
		CREATE INDEX IF NOT EXISTS idx_listings_room_type    ON listings(room_type);
	`,
}

var sqliteDialect = dialect{
	driver:       "sqlite",
	pingAttempts: 1,
	placeholder:  func(int) string { return "?" },
	schema: `
		CREATE TABLE IF NOT EXISTS listings (
			row_id            INTEGER PRIMARY KEY,
			id                INTEGER NOT NULL DEFAULT 0,
			name              TEXT    NOT NULL DEFAULT '',
			borough           TEXT    NOT NULL,
			neighborhood      TEXT    NOT NULL,
			room_type         TEXT    NOT NULL,
			minimum_nights    INTEGER NOT NULL,
			service_fee       REAL    NOT NULL DEFAULT 0,
			price             REAL    NOT NULL,
			review_rating     REAL    NOT NULL,
			longitude         REAL    NOT NULL,
			latitude          REAL    NOT NULL,
			construction_year INTEGER NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_listings_borough      ON listings(borough);
		CREATE INDEX IF NOT EXISTS idx_listings_neighborhood ON listings(neighborhood);
		CREATE INDEX IF NOT EXISTS idx_listings_room_type    ON listings(room_type);
	`,
}

// SQLStore persists cleaned listings to PostgreSQL or SQLite.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
}

// NewPostgresStore opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use store.
func NewPostgresStore(dsn string) (*SQLStore, error) {
	return openStore(postgresDialect, dsn)
}

// NewSQLiteStore opens or creates the SQLite database file at path.
func NewSQLiteStore(path string) (*SQLStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: create dir: %w", err)
		}
	}
	return openStore(sqliteDialect, path)
}

func openStore(d dialect, dsn string) (*SQLStore, error) {
	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: open: %w", d.driver, err)
	}

	for i := 0; i < d.pingAttempts; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		if i < d.pingAttempts-1 {
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: ping failed after retries: %w", d.driver, err)
	}

	s := &SQLStore{db: db, dialect: d}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: migrate: %w", d.driver, err)
	}

	return s, nil
}

func (s *SQLStore) migrate() error {
	_, err := s.db.Exec(s.dialect.schema)
	return err
}

// Write replaces the stored listings with the given ones, in one transaction.
func (s *SQLStore) Write(listings []*models.Listing) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("%s: begin: %w", s.dialect.driver, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM listings"); err != nil {
		return fmt.Errorf("%s: clear: %w", s.dialect.driver, err)
	}

	const batchSize = 50
	for i := 0; i < len(listings); i += batchSize {
		end := min(i+batchSize, len(listings))
		if err := s.insertBatch(tx, listings[i:end]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", s.dialect.driver, err)
	}
	return nil
}

func (s *SQLStore) insertBatch(tx *sql.Tx, batch []*models.Listing) error {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]any, 0, len(batch)*listingColumns)

	for idx, l := range batch {
		base := idx * listingColumns
		marks := make([]string, listingColumns)
		for c := range marks {
			marks[c] = s.dialect.placeholder(base + c + 1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(marks, ",")+")")
		valueArgs = append(valueArgs,
			l.ID, l.Name, l.Borough, l.Neighborhood, l.RoomType, l.MinimumNights,
			l.ServiceFee, l.Price, l.ReviewRating, l.Longitude, l.Latitude, l.ConstructionYear)
	}

	query := fmt.Sprintf(`
		INSERT INTO listings (id, name, borough, neighborhood, room_type, minimum_nights,
			service_fee, price, review_rating, longitude, latitude, construction_year)
		VALUES %s
	`, strings.Join(valueStrings, ","))

	if _, err := tx.Exec(query, valueArgs...); err != nil {
		return fmt.Errorf("%s: insert batch: %w", s.dialect.driver, err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

// FetchAll retrieves all stored listings in insertion order.
func (s *SQLStore) FetchAll() ([]*models.Listing, error) {
	rows, err := s.db.Query(`
		SELECT id, name, borough, neighborhood, room_type, minimum_nights,
			service_fee, price, review_rating, longitude, latitude, construction_year
		FROM listings
		ORDER BY row_id
	`)
	if err != nil {
		return nil, fmt.Errorf("%s: fetch all: %w", s.dialect.driver, err)
	}
	defer rows.Close()

	var listings []*models.Listing
	for rows.Next() {
		l := &models.Listing{}
		if err := rows.Scan(
			&l.ID, &l.Name, &l.Borough, &l.Neighborhood, &l.RoomType, &l.MinimumNights,
			&l.ServiceFee, &l.Price, &l.ReviewRating, &l.Longitude, &l.Latitude, &l.ConstructionYear,
		); err != nil {
			return nil, fmt.Errorf("%s: scan row: %w", s.dialect.driver, err)
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}
