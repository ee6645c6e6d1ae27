package store

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/finsift-dev/finsift/internal/model"
)

const schemaVersion = 1

const schemaSQL = `
CREATE TABLE IF NOT EXISTS schema_meta (
    version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS categories (
    id   INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS subcategories (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    category_id INTEGER NOT NULL REFERENCES categories(id),
    name        TEXT NOT NULL,
    UNIQUE(category_id, name)
);

CREATE TABLE IF NOT EXISTS transactions (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    date_iso       TEXT NOT NULL,
    account        TEXT NOT NULL,
    account_number TEXT NOT NULL,
    action         TEXT NOT NULL,
    description    TEXT NOT NULL,
    amount         TEXT NOT NULL,
    currency       TEXT NOT NULL,
    symbol         TEXT NOT NULL DEFAULT '',
    payee          TEXT NOT NULL DEFAULT '',
    txn_type       TEXT NOT NULL,
    category_id    INTEGER NOT NULL DEFAULT 0,
    subcategory_id INTEGER NOT NULL DEFAULT 0,
    confidence     REAL NOT NULL DEFAULT 0,
    source_file    TEXT NOT NULL,
    hash           TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS patterns (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    pattern        TEXT NOT NULL,
    scope          TEXT NOT NULL,
    category_id    INTEGER NOT NULL,
    subcategory_id INTEGER NOT NULL DEFAULT 0,
    confidence     REAL NOT NULL,
    usage_count    INTEGER NOT NULL DEFAULT 1,
    last_used      TEXT NOT NULL,
    UNIQUE(pattern, scope)
);

CREATE TABLE IF NOT EXISTS imports (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id        TEXT NOT NULL,
    file          TEXT NOT NULL UNIQUE,
    imported_at   TEXT NOT NULL,
    rows_inserted INTEGER NOT NULL,
    duplicates    INTEGER NOT NULL,
    errors        INTEGER NOT NULL
);
`

// SQLiteStore implements Store over a single sqlite database file.
type SQLiteStore struct {
	mu sync.Mutex
	db *sql.DB
}

// Open opens (creating if needed) the database at path and ensures the
// schema is present.
func Open(path string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1) // sqlite
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	var version int
	err = db.QueryRow(`SELECT version FROM schema_meta LIMIT 1`).Scan(&version)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := db.Exec(`INSERT INTO schema_meta (version) VALUES (?)`, schemaVersion); err != nil {
			db.Close()
			return nil, fmt.Errorf("record schema version: %w", err)
		}
	case err != nil:
		db.Close()
		return nil, fmt.Errorf("read schema version: %w", err)
	case version != schemaVersion:
		db.Close()
		return nil, fmt.Errorf("unsupported schema version %d (want %d)", version, schemaVersion)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

// SeedTaxonomy inserts the category taxonomy, ignoring entries that already
// exist. Categories are processed in sorted name order.
func (s *SQLiteStore) SeedTaxonomy(taxonomy map[string][]string) error {
	names := make([]string, 0, len(taxonomy))
	for name := range taxonomy {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		catID, err := s.GetOrCreateCategory(name)
		if err != nil {
			return err
		}
		for _, sub := range taxonomy[name] {
			if _, err := s.GetOrCreateSubcategory(catID, sub); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *SQLiteStore) GetOrCreateCategory(name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var id int64
	err := s.db.QueryRow(`SELECT id FROM categories WHERE name = ?`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("lookup category %q: %w", name, err)
	}
	res, err := s.db.Exec(`INSERT INTO categories (name) VALUES (?)`, name)
	if err != nil {
		return 0, fmt.Errorf("create category %q: %w", name, err)
	}
	return res.LastInsertId()
}

func (s *SQLiteStore) GetOrCreateSubcategory(categoryID int64, name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var id int64
	err := s.db.QueryRow(`SELECT id FROM subcategories WHERE category_id = ? AND name = ?`, categoryID, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("lookup subcategory %q: %w", name, err)
	}
	res, err := s.db.Exec(`INSERT INTO subcategories (category_id, name) VALUES (?, ?)`, categoryID, name)
	if err != nil {
		return 0, fmt.Errorf("create subcategory %q: %w", name, err)
	}
	return res.LastInsertId()
}

func (s *SQLiteStore) Categories() ([]model.Category, error) {
	rows, err := s.db.Query(`SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var cats []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func (s *SQLiteStore) Subcategories(categoryID int64) ([]model.Subcategory, error) {
	rows, err := s.db.Query(`SELECT id, category_id, name FROM subcategories WHERE category_id = ? ORDER BY name`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list subcategories: %w", err)
	}
	defer rows.Close()

	var subs []model.Subcategory
	for rows.Next() {
		var sc model.Subcategory
		if err := rows.Scan(&sc.ID, &sc.CategoryID, &sc.Name); err != nil {
			return nil, err
		}
		subs = append(subs, sc)
	}
	return subs, rows.Err()
}

func (s *SQLiteStore) InsertTransaction(rec model.TransactionRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO transactions
			(date_iso, account, account_number, action, description, amount,
			 currency, symbol, payee, txn_type, category_id, subcategory_id,
			 confidence, source_file, hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.DateISO(), rec.Account, rec.AccountNumber, rec.Action, rec.Description,
		rec.Amount.String(), rec.Currency, rec.Symbol, rec.Payee, string(rec.Type),
		rec.CategoryID, rec.SubcategoryID, rec.Confidence, rec.SourceFile, rec.Hash)
	if err != nil {
		var serr sqlite3.Error
		// Only the hash uniqueness constraint means duplicate; any other
		// constraint failure is a real error.
		if errors.As(err, &serr) && serr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return false, nil
		}
		return false, fmt.Errorf("insert transaction: %w", err)
	}
	return true, nil
}

func (s *SQLiteStore) HashExists(hash string) (bool, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(1) FROM transactions WHERE hash = ?`, hash).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check hash: %w", err)
	}
	return n > 0, nil
}

func (s *SQLiteStore) FindTransactionByHashPrefix(prefix string) (*model.TransactionRecord, error) {
	rows, err := s.db.Query(`
		SELECT date_iso, account, account_number, action, description, amount,
		       currency, symbol, payee, txn_type, category_id, subcategory_id,
		       confidence, source_file, hash
		FROM transactions WHERE hash LIKE ? LIMIT 2`, prefix+"%")
	if err != nil {
		return nil, fmt.Errorf("find transaction: %w", err)
	}
	defer rows.Close()

	var found []*model.TransactionRecord
	for rows.Next() {
		rec, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		found = append(found, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	switch len(found) {
	case 0:
		return nil, fmt.Errorf("no transaction matches hash prefix %q", prefix)
	case 1:
		return found[0], nil
	default:
		return nil, fmt.Errorf("hash prefix %q is ambiguous", prefix)
	}
}

func scanTransaction(rows *sql.Rows) (*model.TransactionRecord, error) {
	var rec model.TransactionRecord
	var dateISO, amount, txnType string
	if err := rows.Scan(&dateISO, &rec.Account, &rec.AccountNumber, &rec.Action,
		&rec.Description, &amount, &rec.Currency, &rec.Symbol, &rec.Payee,
		&txnType, &rec.CategoryID, &rec.SubcategoryID, &rec.Confidence,
		&rec.SourceFile, &rec.Hash); err != nil {
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	date, err := time.Parse("2006-01-02", dateISO)
	if err != nil {
		return nil, fmt.Errorf("stored date %q: %w", dateISO, err)
	}
	amt, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("stored amount %q: %w", amount, err)
	}
	rec.Date = date
	rec.Amount = amt
	rec.Type = model.TxnType(txnType)
	return &rec, nil
}

func (s *SQLiteStore) UpdateTransactionCategory(hash string, categoryID, subcategoryID int64, confidence float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`
		UPDATE transactions SET category_id = ?, subcategory_id = ?, confidence = ?
		WHERE hash = ?`, categoryID, subcategoryID, confidence, hash)
	if err != nil {
		return fmt.Errorf("update transaction category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("no transaction with hash %q", hash)
	}
	return nil
}

func (s *SQLiteStore) LearnPattern(pattern string, scope model.PatternScope, categoryID, subcategoryID int64, confidence float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pattern = strings.ToLower(strings.TrimSpace(pattern))
	if pattern == "" {
		return fmt.Errorf("empty pattern")
	}
	_, err := s.db.Exec(`
		INSERT INTO patterns (pattern, scope, category_id, subcategory_id, confidence, usage_count, last_used)
		VALUES (?, ?, ?, ?, ?, 1, ?)
		ON CONFLICT(pattern, scope) DO UPDATE SET
			usage_count    = usage_count + 1,
			category_id    = CASE WHEN excluded.confidence >= confidence THEN excluded.category_id ELSE category_id END,
			subcategory_id = CASE WHEN excluded.confidence >= confidence THEN excluded.subcategory_id ELSE subcategory_id END,
			confidence     = MAX(confidence, excluded.confidence),
			last_used      = excluded.last_used`,
		pattern, string(scope), categoryID, subcategoryID, confidence, nowISO())
	if err != nil {
		return fmt.Errorf("learn pattern %q: %w", pattern, err)
	}
	return nil
}

func (s *SQLiteStore) FindPattern(description, action, payee string) (*PatternMatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`
		SELECT id, pattern, scope, category_id, subcategory_id, confidence
		FROM patterns
		ORDER BY confidence DESC, usage_count DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("load patterns: %w", err)
	}
	defer rows.Close()

	lowerDesc := strings.ToLower(description)
	lowerAction := strings.ToLower(action)
	lowerBoth := strings.TrimSpace(lowerDesc + " " + lowerAction + " " + strings.ToLower(payee))

	var hitID int64 = -1
	var match *PatternMatch
	for rows.Next() {
		var id int64
		var m PatternMatch
		var scope string
		if err := rows.Scan(&id, &m.Pattern, &scope, &m.CategoryID, &m.SubcategoryID, &m.Confidence); err != nil {
			return nil, fmt.Errorf("scan pattern: %w", err)
		}
		m.Scope = model.PatternScope(scope)

		var text string
		switch m.Scope {
		case model.ScopeDescription:
			text = lowerDesc
		case model.ScopeAction:
			text = lowerAction
		default:
			text = lowerBoth
		}
		if strings.Contains(text, m.Pattern) {
			hitID = id
			match = &m
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Release the connection before the usage-count write; the pool holds a
	// single sqlite connection.
	rows.Close()
	if match == nil {
		return nil, nil
	}
	if _, err := s.db.Exec(`UPDATE patterns SET usage_count = usage_count + 1, last_used = ? WHERE id = ?`, nowISO(), hitID); err != nil {
		return nil, fmt.Errorf("bump pattern usage: %w", err)
	}
	return match, nil
}

func (s *SQLiteStore) MarkFileProcessed(file string, rowsInserted, duplicates, errCount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO imports (run_id, file, imported_at, rows_inserted, duplicates, errors)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(file) DO UPDATE SET
			run_id        = excluded.run_id,
			imported_at   = excluded.imported_at,
			rows_inserted = excluded.rows_inserted,
			duplicates    = excluded.duplicates,
			errors        = excluded.errors`,
		uuid.NewString(), file, nowISO(), rowsInserted, duplicates, errCount)
	if err != nil {
		return fmt.Errorf("mark file processed: %w", err)
	}
	return nil
}

func (s *SQLiteStore) IsFileProcessed(file string) (bool, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(1) FROM imports WHERE file = ?`, file).Scan(&n); err != nil {
		return false, fmt.Errorf("check processed file: %w", err)
	}
	return n > 0, nil
}

func nowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}
