package classify

import (
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/finsift-dev/finsift/internal/model"
)

// typeStage maps transaction types directly to categories. Card and check
// transactions vary too widely to have a type-level default and defer to
// later stages, as do direct deposits/debits without a recognizable payee.
type typeStage struct {
	rules *Ruleset
}

func (s *typeStage) Name() string { return "type-rule" }

func (s *typeStage) Attempt(in Input) (Result, bool) {
	switch in.Type {
	case model.TypeDividend:
		return Result{"Investment", "Dividend", 0.95}, true
	case model.TypeTrade:
		return Result{"Investment", "Stock Purchase", 0.95}, true
	case model.TypeReinvestment:
		return Result{"Investment", "ETF", 0.90}, true
	case model.TypeTransfer, model.TypeContribution:
		return Result{"Banking", "Transfer", 0.90}, true
	case model.TypeFee:
		return Result{"Banking", "Fees", 0.90}, true
	case model.TypeInterest:
		return Result{"Banking", "Interest", 0.95}, true
	case model.TypeATM:
		return Result{"Banking", "ATM", 0.90}, true
	case model.TypeDirectDeposit, model.TypeDirectDebit:
		text := strings.ToLower(in.Payee + " " + in.Action)
		switch {
		case containsAny(text, s.rules.PayrollKeywords):
			return Result{"Income", "Salary", 0.95}, true
		case containsAny(text, s.rules.InsurerKeywords):
			return Result{"Insurance", "Auto", 0.95}, true
		case containsAny(text, s.rules.UtilityKeywords):
			return Result{"Utilities", "Electric", 0.90}, true
		}
	}
	return Result{}, false
}

// payeeStage matches the extracted payee against the curated known-payee
// table. A hit is authoritative (confidence 1.0) and short-circuits the
// rest of the cascade.
type payeeStage struct {
	rules *Ruleset
}

func (s *payeeStage) Name() string { return "known-payee" }

func (s *payeeStage) Attempt(in Input) (Result, bool) {
	if in.Payee == "" {
		return Result{}, false
	}
	lower := strings.ToLower(in.Payee)

	cats := make([]string, 0, len(s.rules.KnownPayees))
	for cat := range s.rules.KnownPayees {
		cats = append(cats, cat)
	}
	sort.Strings(cats)

	for _, cat := range cats {
		for _, known := range s.rules.KnownPayees[cat] {
			k := strings.ToLower(known)
			if lower == k || strings.Contains(lower, k) || strings.Contains(k, lower) {
				return Result{cat, s.rules.subcategoryFor(cat, lower), 1.0}, true
			}
		}
	}
	return Result{}, false
}

// actionStage applies substring rules on the action text combined with
// payee keyword groups.
type actionStage struct {
	rules *Ruleset
}

func (s *actionStage) Name() string { return "action-rule" }

func (s *actionStage) Attempt(in Input) (Result, bool) {
	action := strings.ToLower(in.Action)
	text := strings.ToLower(in.Payee + " " + in.Action)

	if strings.Contains(action, "direct debit") && containsAny(text, s.rules.InsurerKeywords) {
		return Result{"Insurance", "Auto", 0.95}, true
	}

	if strings.Contains(action, "card purchase") {
		for _, g := range s.rules.CardGroups {
			if containsAny(text, g.Keywords) {
				return Result{g.Category, g.Subcategory, g.Confidence}, true
			}
		}
		// A card purchase we cannot place more precisely.
		return Result{"Shopping", "General", 0.60}, true
	}
	return Result{}, false
}

// keywordStage scores category keywords over the combined text. The
// weights are ad hoc but load-bearing: learned-pattern confidences were
// produced with them, so they are pinned here and covered by tests.
type keywordStage struct {
	rules       *Ruleset
	matchWeight float64
	subBonus    float64
	divisor     float64

	// coffee override: small card-sized amounts at a coffee keyword get a
	// fixed high score instead of the accumulated one.
	coffeeBoostScore  float64
	coffeeBoostAmount decimal.Decimal
}

func newKeywordStage(rules *Ruleset) *keywordStage {
	return &keywordStage{
		rules:             rules,
		matchWeight:       1.0,
		subBonus:          0.5,
		divisor:           5.0,
		coffeeBoostScore:  4.5,
		coffeeBoostAmount: decimal.NewFromInt(15),
	}
}

func (s *keywordStage) Name() string { return "keyword-score" }

func (s *keywordStage) Attempt(in Input) (Result, bool) {
	text := strings.ToLower(in.Payee + " " + in.Action + " " + in.Description)

	// Investment keyword combinations carry fixed confidences.
	switch {
	case strings.Contains(text, "dividend"):
		return Result{"Investment", "Dividend", 0.90}, true
	case strings.Contains(text, "you bought") || strings.Contains(text, "bought"):
		return Result{"Investment", "Stock Purchase", 0.80}, true
	case strings.Contains(text, "etf"):
		return Result{"Investment", "ETF", 0.70}, true
	}

	cats := make([]string, 0, len(s.rules.CategoryKeywords))
	for cat := range s.rules.CategoryKeywords {
		cats = append(cats, cat)
	}
	sort.Strings(cats)

	bestCat := ""
	bestScore := 0.0
	matchedSub := map[string]string{}

	for _, cat := range cats {
		score := 0.0
		for _, kw := range s.rules.CategoryKeywords[cat] {
			if strings.Contains(text, kw) {
				score += s.matchWeight
			}
		}
		if score == 0 {
			continue
		}
		// One bonus when a subcategory name or keyword co-occurs.
		for _, sub := range s.rules.Taxonomy[cat] {
			if strings.Contains(text, strings.ToLower(sub)) || containsAny(text, s.rules.SubcategoryKeywords[sub]) {
				score += s.subBonus
				matchedSub[cat] = sub
				break
			}
		}
		if score > bestScore {
			bestScore = score
			bestCat = cat
		}
	}

	// Small amounts at a coffee keyword are coffee, whatever else scored.
	if in.Amount.Abs().LessThanOrEqual(s.coffeeBoostAmount) && containsAny(text, s.rules.SubcategoryKeywords["Coffee"]) {
		bestCat = "Food & Dining"
		bestScore = s.coffeeBoostScore
		matchedSub[bestCat] = "Coffee"
	}

	if bestCat == "" || bestScore == 0 {
		return Result{}, false
	}

	sub := matchedSub[bestCat]
	if sub == "" {
		sub = s.rules.firstSubcategory(bestCat)
	}
	return Result{bestCat, sub, math.Min(bestScore/s.divisor, 1.0)}, true
}

// fallbackStage always matches: large unexplained movements look like
// transfers, everything else is miscellaneous.
type fallbackStage struct{}

func (s *fallbackStage) Name() string { return "fallback" }

var fallbackThreshold = decimal.NewFromInt(1000)

func (s *fallbackStage) Attempt(in Input) (Result, bool) {
	if in.Amount.Abs().GreaterThan(fallbackThreshold) {
		return Result{"Banking", "Transfer", 0.30}, true
	}
	return Result{"Miscellaneous", "Other", 0.20}, true
}
