// Package patterns derives learnable substrings from classified
// transactions and feeds them into the pattern store.
package patterns

import (
	"regexp"
	"strings"

	"github.com/finsift-dev/finsift/internal/model"
	"github.com/finsift-dev/finsift/internal/store"
)

// maxCandidatesPerField caps how many substrings one text field may teach.
const maxCandidatesPerField = 5

// merchantTokens are recognizable merchant/keyword fragments worth learning
// on their own when they appear in classified text.
var merchantTokens = []string{
	"mcdonald", "starbucks", "chipotle", "wegmans", "whole foods", "kroger",
	"safeway", "trader joe", "harris teeter", "amazon", "walmart", "target",
	"netflix", "spotify", "hulu", "uber", "lyft", "shell", "exxon", "wawa",
	"comcast", "verizon", "t-mobile", "cvs", "walgreens", "dunkin",
	"state farm", "geico", "progressive", "dominion energy",
}

var investmentTokens = []string{
	"dividend", "reinvestment", "you bought", "you sold", "etf",
}

// dottedDomain picks web-style merchant tokens such as "amzn.com/bill" out
// of card descriptions.
var dottedDomain = regexp.MustCompile(`\b([a-z0-9][a-z0-9\-]*\.(?:com|net|org|co|io)(?:/[a-z0-9]+)?)\b`)

// purchaseMerchant captures the merchant phrase after a purchase marker,
// stopping before trailing store codes.
var purchaseMerchant = regexp.MustCompile(`(?:card purchase|purchase)\s+([a-z][a-z'&. ]{2,30}?[a-z])(?:\s+#?\d|\s*$)`)

// Learner writes candidate patterns for classified transactions.
type Learner struct {
	store store.Store
}

func NewLearner(s store.Store) *Learner {
	return &Learner{store: s}
}

// ExtractAndLearn derives up to five candidate substrings from each text
// field and stores them at the given classification. Called after any
// high-confidence classification is committed.
func (l *Learner) ExtractAndLearn(description, action string, categoryID, subcategoryID int64, confidence float64) error {
	fields := []struct {
		text  string
		scope model.PatternScope
	}{
		{description, model.ScopeDescription},
		{action, model.ScopeAction},
	}
	for _, f := range fields {
		for _, cand := range Candidates(f.text) {
			if err := l.store.LearnPattern(cand, f.scope, categoryID, subcategoryID, confidence); err != nil {
				return err
			}
		}
	}
	return nil
}

// Candidates returns up to five learnable substrings from one text field,
// in a deterministic order: merchant tokens, investment tokens, dotted
// domains, then a purchase-merchant capture.
func Candidates(text string) []string {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return nil
	}

	var out []string
	seen := map[string]bool{}
	add := func(cand string) {
		cand = strings.TrimSpace(cand)
		if cand == "" || len(cand) < 3 || seen[cand] || len(out) >= maxCandidatesPerField {
			return
		}
		seen[cand] = true
		out = append(out, cand)
	}

	for _, tok := range merchantTokens {
		if strings.Contains(lower, tok) {
			add(tok)
		}
	}
	for _, tok := range investmentTokens {
		if strings.Contains(lower, tok) {
			add(tok)
		}
	}
	for _, m := range dottedDomain.FindAllStringSubmatch(lower, -1) {
		add(m[1])
	}
	if m := purchaseMerchant.FindStringSubmatch(lower); m != nil {
		add(m[1])
	}
	return out
}
