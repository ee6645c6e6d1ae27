package model

import "time"

// Category is one top-level entry in the spending/income taxonomy.
type Category struct {
	ID   int64
	Name string
}

// Subcategory belongs to exactly one Category.
type Subcategory struct {
	ID         int64
	CategoryID int64
	Name       string
}

// PatternScope selects which text a learned pattern is matched against.
type PatternScope string

const (
	ScopeDescription PatternScope = "description"
	ScopeAction      PatternScope = "action"
	ScopeBoth        PatternScope = "both"
)

// ClassificationPattern is a learned substring that maps matching
// transactions to a category without running the full cascade.
// (Pattern, Scope) is unique; Confidence never decreases once stored.
type ClassificationPattern struct {
	ID            int64
	Pattern       string
	Scope         PatternScope
	CategoryID    int64
	SubcategoryID int64 // 0 = none
	Confidence    float64
	UsageCount    int
	LastUsed      time.Time
}
