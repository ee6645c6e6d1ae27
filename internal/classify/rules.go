package classify

import (
	"sort"
	"strings"
)

// CardGroup is one merchant keyword group for card-purchase actions.
type CardGroup struct {
	Keywords    []string
	Category    string
	Subcategory string
	Confidence  float64
}

// Ruleset holds the immutable lookup tables the cascade runs over.
// It is supplied at construction so tests can substitute fixtures.
type Ruleset struct {
	// Taxonomy maps category name to its ordered subcategories; the first
	// entry is the default when nothing more specific applies.
	Taxonomy map[string][]string

	// KnownPayees maps category name to payees classified at confidence 1.0.
	KnownPayees map[string][]string

	// PayeeSubcategory overrides the default subcategory per payee
	// (lowercase payee fragment -> subcategory name).
	PayeeSubcategory map[string]string

	PayrollKeywords []string
	InsurerKeywords []string
	UtilityKeywords []string

	// CardGroups are evaluated in order for card-purchase actions.
	CardGroups []CardGroup

	// CategoryKeywords drive the scoring stage.
	CategoryKeywords map[string][]string

	// SubcategoryKeywords earn the co-occurrence bonus.
	SubcategoryKeywords map[string][]string
}

// firstSubcategory returns the default subcategory for a category.
func (r *Ruleset) firstSubcategory(category string) string {
	subs := r.Taxonomy[category]
	if len(subs) == 0 {
		return ""
	}
	return subs[0]
}

// subcategoryFor resolves the subcategory for a known payee: the per-payee
// override first, the category default otherwise.
func (r *Ruleset) subcategoryFor(category, lowerPayee string) string {
	frags := make([]string, 0, len(r.PayeeSubcategory))
	for frag := range r.PayeeSubcategory {
		frags = append(frags, frag)
	}
	sort.Strings(frags)
	for _, frag := range frags {
		if strings.Contains(lowerPayee, frag) {
			return r.PayeeSubcategory[frag]
		}
	}
	return r.firstSubcategory(category)
}

// DefaultRuleset returns the built-in lookup tables.
func DefaultRuleset() *Ruleset {
	return &Ruleset{
		Taxonomy: map[string][]string{
			"Investment":     {"Dividend", "Stock Purchase", "ETF"},
			"Banking":        {"Transfer", "Fees", "Interest", "ATM"},
			"Income":         {"Salary"},
			"Insurance":      {"Auto"},
			"Utilities":      {"Electric", "Telecom"},
			"Food & Dining":  {"Fast Food", "Coffee", "Groceries", "Restaurants"},
			"Shopping":       {"General"},
			"Transportation": {"Gas", "Rideshare"},
			"Healthcare":     {"Pharmacy"},
			"Entertainment":  {"Streaming"},
			"Miscellaneous":  {"Other"},
		},
		KnownPayees: map[string][]string{
			"Food & Dining":  {"McDonald's", "Starbucks", "Chipotle", "Wegmans", "Whole Foods"},
			"Shopping":       {"Amazon", "Walmart", "Target"},
			"Transportation": {"Uber", "Lyft", "Shell", "Exxon"},
			"Entertainment":  {"Netflix", "Spotify", "Hulu"},
			"Utilities":      {"Comcast", "Verizon", "Dominion Energy"},
			"Healthcare":     {"CVS Pharmacy", "Walgreens"},
		},
		PayeeSubcategory: map[string]string{
			"mcdonald's":      "Fast Food",
			"starbucks":       "Coffee",
			"chipotle":        "Fast Food",
			"wegmans":         "Groceries",
			"whole foods":     "Groceries",
			"netflix":         "Streaming",
			"spotify":         "Streaming",
			"hulu":            "Streaming",
			"uber":            "Rideshare",
			"lyft":            "Rideshare",
			"shell":           "Gas",
			"exxon":           "Gas",
			"comcast":         "Telecom",
			"verizon":         "Telecom",
			"dominion energy": "Electric",
		},
		PayrollKeywords: []string{"payroll", "salary", "wages", "dir dep"},
		InsurerKeywords: []string{"state farm", "geico", "progressive", "allstate", "usaa", "insurance"},
		UtilityKeywords: []string{"electric", "power", "energy", "utility", "dominion", "pepco"},
		CardGroups: []CardGroup{
			{[]string{"mcdonald", "burger king", "wendy", "taco bell", "chick-fil-a", "chipotle", "subway", "kfc", "popeyes"}, "Food & Dining", "Fast Food", 0.90},
			{[]string{"starbucks", "dunkin", "coffee", "peet", "caribou"}, "Food & Dining", "Coffee", 0.90},
			{[]string{"wegmans", "kroger", "safeway", "whole foods", "trader joe", "aldi", "harris teeter", "grocery"}, "Food & Dining", "Groceries", 0.90},
			{[]string{"netflix", "spotify", "hulu", "disney plus", "hbo"}, "Entertainment", "Streaming", 0.95},
			{[]string{"shell", "exxon", "chevron", "sunoco", "wawa", "fuel"}, "Transportation", "Gas", 0.90},
			{[]string{"uber", "lyft"}, "Transportation", "Rideshare", 0.90},
			{[]string{"comcast", "xfinity", "verizon", "t-mobile", "at&t"}, "Utilities", "Telecom", 0.90},
			{[]string{"cvs", "walgreens", "rite aid", "pharmacy", "clinic"}, "Healthcare", "Pharmacy", 0.85},
			{[]string{"amazon", "walmart", "target", "best buy", "home depot"}, "Shopping", "General", 0.85},
		},
		CategoryKeywords: map[string][]string{
			"Food & Dining":  {"restaurant", "pizza", "grill", "cafe", "coffee", "deli", "bakery", "food"},
			"Transportation": {"gas", "fuel", "parking", "toll", "metro", "transit"},
			"Utilities":      {"electric", "water", "internet", "utility", "energy"},
			"Shopping":       {"store", "shop", "market", "retail"},
			"Healthcare":     {"pharmacy", "medical", "dental", "doctor", "clinic"},
			"Entertainment":  {"cinema", "theater", "movie", "music", "stream"},
			"Income":         {"payroll", "salary", "wages", "refund"},
			"Insurance":      {"insurance", "premium", "policy"},
			"Banking":        {"fee", "interest", "atm", "withdrawal"},
		},
		SubcategoryKeywords: map[string][]string{
			"Coffee":     {"coffee", "espresso", "latte"},
			"Fast Food":  {"burger", "pizza", "taco", "drive thru"},
			"Groceries":  {"grocery", "supermarket"},
			"Gas":        {"gas", "fuel"},
			"Rideshare":  {"uber", "lyft", "ride"},
			"Streaming":  {"stream", "subscription"},
			"Electric":   {"electric", "power"},
			"Telecom":    {"wireless", "internet", "broadband"},
			"Pharmacy":   {"pharmacy", "rx"},
			"Salary":     {"payroll", "salary"},
			"Auto":       {"auto", "vehicle"},
		},
	}
}
