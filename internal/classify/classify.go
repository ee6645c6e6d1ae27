// Package classify assigns a category and subcategory to a transaction via
// an ordered cascade of stages. The first stage that produces a result wins;
// the stage order is the priority order. Classification is deterministic:
// identical inputs always yield identical results.
package classify

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/finsift-dev/finsift/internal/model"
)

// Input is everything a stage may consider.
type Input struct {
	Description string
	Action      string
	Amount      decimal.Decimal
	Payee       string
	Type        model.TxnType
}

// Result is a classification suggestion. Confidence is advisory; callers
// apply their own acceptance threshold before treating it as authoritative.
type Result struct {
	Category    string
	Subcategory string
	Confidence  float64
}

// Stage is one attempt in the cascade.
type Stage interface {
	Name() string
	Attempt(Input) (Result, bool)
}

// Engine runs the cascade.
type Engine struct {
	stages []Stage
}

// NewEngine builds the standard five-stage cascade over a ruleset.
func NewEngine(rules *Ruleset) *Engine {
	return &Engine{stages: []Stage{
		&typeStage{rules: rules},
		&payeeStage{rules: rules},
		&actionStage{rules: rules},
		newKeywordStage(rules),
		&fallbackStage{},
	}}
}

// Classify runs each stage in order and returns the first result.
// The final stage always matches, so Classify never returns a zero Result.
func (e *Engine) Classify(in Input) Result {
	for _, s := range e.stages {
		if r, ok := s.Attempt(in); ok {
			return r
		}
	}
	return Result{Category: "Miscellaneous", Subcategory: "Other", Confidence: 0.2}
}

// Stages exposes the ordered cascade, mainly for tests.
func (e *Engine) Stages() []Stage {
	return e.stages
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
