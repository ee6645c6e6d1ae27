// Package store persists transactions, the category taxonomy, learned
// classification patterns, and the processed-file ledger.
package store

import (
	"github.com/finsift-dev/finsift/internal/model"
)

// PatternMatch is a learned-pattern hit returned by FindPattern.
type PatternMatch struct {
	Pattern       string
	Scope         model.PatternScope
	CategoryID    int64
	SubcategoryID int64
	Confidence    float64
}

// Store is the persistence boundary of the pipeline. Implementations must
// be safe for concurrent use.
type Store interface {
	GetOrCreateCategory(name string) (int64, error)
	GetOrCreateSubcategory(categoryID int64, name string) (int64, error)
	Categories() ([]model.Category, error)
	Subcategories(categoryID int64) ([]model.Subcategory, error)

	// InsertTransaction returns (false, nil) when the record's hash is
	// already stored. A duplicate is an outcome, not an error.
	InsertTransaction(rec model.TransactionRecord) (bool, error)
	HashExists(hash string) (bool, error)
	FindTransactionByHashPrefix(prefix string) (*model.TransactionRecord, error)
	UpdateTransactionCategory(hash string, categoryID, subcategoryID int64, confidence float64) error

	// LearnPattern upserts by (pattern, scope): usage_count increments and
	// confidence never decreases.
	LearnPattern(pattern string, scope model.PatternScope, categoryID, subcategoryID int64, confidence float64) error
	// FindPattern returns the best containment match ordered by confidence
	// then usage, bumping the winner's usage count. nil means no match.
	FindPattern(description, action, payee string) (*PatternMatch, error)

	MarkFileProcessed(file string, rowsInserted, duplicates, errors int) error
	IsFileProcessed(file string) (bool, error)

	Close() error
}
