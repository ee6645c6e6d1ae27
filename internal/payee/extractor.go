// Package payee derives a canonical merchant name from transaction text.
//
// Extraction is an ordered cascade of structural matchers: earlier, more
// specific patterns always take precedence over later generic ones. The raw
// capture is then canonicalized through a curated alias table.
package payee

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// matcher is one step of the structural cascade.
type matcher struct {
	name string
	re   *regexp.Regexp
}

// actionMatchers run against the action text, in priority order.
var actionMatchers = []matcher{
	// "DIRECT DEBIT STATE FARM RO SFPP (Cash)" -> "STATE FARM".
	// The capture stops at a processor code token or a parenthetical.
	{"direct-debit", regexp.MustCompile(`(?i)^\s*DIRECT DEBIT\s+(.+?)(?:\s+(?:RO|PPD|WEB|TEL|ARC|CCD)\b.*|\s*\(.*)?$`)},
	// Third-party processors carry the sub-merchant after the marker:
	// "PAYPAL *GRUBHUB", "SQ *BLUE BOTTLE".
	{"processor", regexp.MustCompile(`(?i)\b(?:PAYPAL|PYPL|SQ|TST|SP|IC)\s*\*\s*([A-Za-z0-9'&.\- ]+)`)},
	// POS with an inline terminal/vendor code is tried before the generic
	// POS-number form.
	{"pos-terminal", regexp.MustCompile(`(?i)\bPOS\s+(?:PURCHASE\s+)?TERMINAL\s+[A-Z0-9]+\s+(.+)$`)},
	{"pos-number", regexp.MustCompile(`(?i)\bPOS\s+(?:PURCHASE\s+)?\d{4,}\s+(.+)$`)},
	// "WEGMANS STORE 43 703-555-0182" style: merchant before a phone number.
	{"phone-suffix", regexp.MustCompile(`(?i)^(.+?)\s+\(?\d{3}\)?[-. ]\d{3}[-. ]?\d{4}\s*$`)},
	{"card-purchase", regexp.MustCompile(`(?i)\bCARD PURCHASE\s+(?:WITH CASHBACK\s+)?(.+)$`)},
	{"ach", regexp.MustCompile(`(?i)^\s*ACH\s+(?:DEBIT|CREDIT)\s+(.+)$`)},
	{"check", regexp.MustCompile(`(?i)^\s*CHECK\s+(?:#?\d+\s+)?(?:PAID\s+TO\s+)?([A-Za-z].*)$`)},
	{"wire", regexp.MustCompile(`(?i)\bWIRE\s+(?:TRANSFER\s+)?(?:TO|FROM)\s+(.+)$`)},
	{"transfer", regexp.MustCompile(`(?i)\bTRANSFER\s+(?:TO|FROM)\s+(.+)$`)},
	// Entity / institution / storefront suffixes anywhere in the action.
	{"merchant-suffix", regexp.MustCompile(`(?i)\b([A-Z][A-Za-z'&.\-]*(?:\s+[A-Za-z'&.\-]+)*?\s+(?:INC|LLC|LTD|CORP|CO|COMPANY|BANK|CREDIT UNION|FCU|INSURANCE|MARKET|MARKETPLACE|STORE|SHOP|CAFE|RESTAURANT|PHARMACY))\b`)},
}

// descriptionFallback scans the description for a run of capitalized tokens
// of plausible merchant length. Case-sensitive on purpose.
var descriptionFallback = regexp.MustCompile(`\b([A-Z][A-Za-z'&.]{2,}(?:\s+[A-Z][A-Za-z'&.]{2,}){0,3})\b`)

var titleCaser = cases.Title(language.English)

// Extractor turns action/description text into a canonical payee.
// It is deterministic and side-effect free.
type Extractor struct {
	aliases   map[string]string
	aliasKeys []string // sorted for deterministic iteration
}

// NewExtractor builds an Extractor over an alias table mapping lowercase
// merchant fragments to canonical display names.
func NewExtractor(aliases map[string]string) *Extractor {
	keys := make([]string, 0, len(aliases))
	for k := range aliases {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return &Extractor{aliases: aliases, aliasKeys: keys}
}

// Extract returns the canonical payee for the given texts, or "" when no
// structural matcher fires.
func (e *Extractor) Extract(action, description string) string {
	for _, m := range actionMatchers {
		if sub := m.re.FindStringSubmatch(action); sub != nil {
			if got := e.canonicalize(sub[1]); got != "" {
				return got
			}
		}
	}
	for _, sub := range descriptionFallback.FindAllStringSubmatch(description, -1) {
		run := strings.TrimSpace(sub[1])
		if len(run) < 4 || len(run) > 40 || allStopwords(run) {
			continue
		}
		return e.canonicalize(run)
	}
	return ""
}

// fallbackStopwords are capitalized tokens that show up in descriptions but
// never name a merchant on their own.
var fallbackStopwords = map[string]bool{
	"payment": true, "purchase": true, "transfer": true, "deposit": true,
	"withdrawal": true, "from": true, "the": true, "online": true,
	"debit": true, "credit": true, "card": true, "check": true,
	"direct": true, "pending": true, "recurring": true, "atm": true,
}

func allStopwords(run string) bool {
	for _, tok := range strings.Fields(run) {
		if !fallbackStopwords[strings.ToLower(tok)] {
			return false
		}
	}
	return true
}

// canonicalize strips trailing numeric/location suffixes, collapses
// whitespace, and maps through the alias table: exact match first, then
// substring containment, then a conservative edit-distance match, finally
// falling back to title-casing the raw capture.
func (e *Extractor) canonicalize(raw string) string {
	s := collapseWhitespace(raw)
	s = stripLeadingStopwords(s)
	s = stripTrailingJunk(s)
	if s == "" {
		s = collapseWhitespace(raw)
	}
	if s == "" {
		return ""
	}
	lower := strings.ToLower(s)

	if v, ok := e.aliases[lower]; ok {
		return v
	}
	for _, k := range e.aliasKeys {
		if strings.Contains(lower, k) || (len(lower) >= 3 && strings.Contains(k, lower)) {
			return e.aliases[k]
		}
	}
	for _, k := range e.aliasKeys {
		if withinAliasDistance(lower, k) {
			return e.aliases[k]
		}
	}
	return titleCaser.String(strings.ToLower(s))
}

// withinAliasDistance allows one edit for short alias keys and two for
// longer ones. Only consulted after exact and substring lookups fail.
func withinAliasDistance(s, key string) bool {
	limit := 1
	if len(key) > 8 {
		limit = 2
	}
	if abs(len(s)-len(key)) > limit {
		return false
	}
	return levenshtein.ComputeDistance(s, key) <= limit
}

// stripLeadingStopwords drops leading generic tokens ("RECURRING", "ONLINE")
// that structural matchers sometimes sweep up before the merchant name.
func stripLeadingStopwords(s string) string {
	tokens := strings.Fields(s)
	for len(tokens) > 1 && fallbackStopwords[strings.ToLower(tokens[0])] {
		tokens = tokens[1:]
	}
	return strings.Join(tokens, " ")
}

// stripTrailingJunk removes trailing store numbers, vendor codes, and
// two-letter state codes. At least one token is always kept.
func stripTrailingJunk(s string) string {
	tokens := strings.Fields(s)
	for len(tokens) > 1 {
		last := tokens[len(tokens)-1]
		if !isJunkToken(last) {
			break
		}
		tokens = tokens[:len(tokens)-1]
	}
	return strings.Join(tokens, " ")
}

func isJunkToken(tok string) bool {
	if tok == "#" {
		return true
	}
	if len(tok) == 2 && tok == strings.ToUpper(tok) && isAlpha(tok) {
		return true // state code
	}
	hasDigit := false
	for _, r := range tok {
		if unicode.IsDigit(r) {
			hasDigit = true
			break
		}
	}
	return hasDigit
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
