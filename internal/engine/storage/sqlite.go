package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	_ "modernc.org/sqlite"

	"github.com/rendis/markview/internal/model"
)

// Store caches catalog searches and their markers. Markers keep the order
// they were saved in.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

func NewStore(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA cache_size=-16000",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS searches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		query TEXT NOT NULL,
		normalized TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_searches_normalized ON searches(normalized);

	CREATE TABLE IF NOT EXISTS markers (
		search_id INTEGER NOT NULL REFERENCES searches(id) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		ext_id TEXT,
		name TEXT,
		lat REAL NOT NULL,
		lon REAL NOT NULL,
		PRIMARY KEY (search_id, seq)
	);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// Normalize lowercases s, strips diacritics and collapses whitespace. It is
// the cache key for queries.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		result = strings.ToLower(s)
	}
	return strings.Join(strings.Fields(result), " ")
}

// SaveSearch stores a search and its markers in one transaction and returns
// the new search id.
func (s *Store) SaveSearch(query string, markers []model.Marker) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning tx: %w", err)
	}

	res, err := tx.Exec(`INSERT INTO searches (query, normalized) VALUES (?, ?)`, query, Normalize(query))
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("inserting search: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("reading search id: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO markers (search_id, seq, ext_id, name, lat, lon) VALUES (?,?,?,?,?,?)`)
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("preparing stmt: %w", err)
	}
	defer stmt.Close()

	for i, m := range markers {
		if _, err := stmt.Exec(id, i, m.ID, m.Name, m.Lat, m.Lon); err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("inserting marker %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing tx: %w", err)
	}
	return id, nil
}

// LatestSearch returns the markers of the newest search whose normalised
// query matches. ok is false on a cache miss.
func (s *Store) LatestSearch(query string) (markers []model.Marker, ok bool, err error) {
	var id int64
	err = s.db.QueryRow(
		`SELECT id FROM searches WHERE normalized = ? ORDER BY id DESC LIMIT 1`,
		Normalize(query),
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("looking up search: %w", err)
	}

	markers, err = s.LoadMarkers(id)
	if err != nil {
		return nil, false, err
	}
	return markers, true, nil
}

func (s *Store) LoadMarkers(searchID int64) ([]model.Marker, error) {
	rows, err := s.db.Query(
		`SELECT COALESCE(ext_id, ''), COALESCE(name, ''), lat, lon FROM markers WHERE search_id = ? ORDER BY seq`,
		searchID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying markers: %w", err)
	}
	defer rows.Close()

	markers := []model.Marker{}
	for rows.Next() {
		var m model.Marker
		if err := rows.Scan(&m.ID, &m.Name, &m.Lat, &m.Lon); err != nil {
			return nil, fmt.Errorf("scanning marker: %w", err)
		}
		markers = append(markers, m)
	}
	return markers, rows.Err()
}

// ListSearches returns saved searches, newest first.
func (s *Store) ListSearches() ([]model.Search, error) {
	rows, err := s.db.Query(`
		SELECT s.id, s.query, s.normalized, COUNT(m.seq), s.created_at
		FROM searches s LEFT JOIN markers m ON m.search_id = s.id
		GROUP BY s.id
		ORDER BY s.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying searches: %w", err)
	}
	defer rows.Close()

	var out []model.Search
	for rows.Next() {
		var sr model.Search
		if err := rows.Scan(&sr.ID, &sr.Query, &sr.Normalized, &sr.Markers, &sr.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning search: %w", err)
		}
		out = append(out, sr)
	}
	return out, rows.Err()
}

// Count returns the number of stored markers across all searches.
func (s *Store) Count() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM markers").Scan(&count)
	return count, err
}

func (s *Store) Close() error {
	return s.db.Close()
}
