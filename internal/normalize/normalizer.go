// Package normalize turns raw parsed rows into canonical transaction
// records. Row-level failures produce a skip reason instead of an error so
// one bad row never aborts a file.
package normalize

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finsift-dev/finsift/internal/accounts"
	"github.com/finsift-dev/finsift/internal/model"
	"github.com/finsift-dev/finsift/internal/txntype"
)

// Skip reasons reported back to the ingest summary.
const (
	SkipPending     = "pending transaction"
	SkipBadDate     = "unparsable date"
	SkipNoAmount    = "missing amount"
	SkipBadAmount   = "unparsable amount"
	SkipEmptyAction = "empty action"
)

var dateLayouts = []string{"1/2/2006", "1/2/06", "2006-01-02"}

var pendingMarkers = []string{"pending", "unsettled"}

// parenAccount splits "Everyday Checking (***0441)" into name and number.
var parenAccount = regexp.MustCompile(`^(.*?)\s*\(([A-Za-z0-9*\-]+)\)\s*$`)

// trailingAccountToken matches a masked or numeric account token at the end
// of the account field, e.g. "Everyday Checking XXXX0441".
var trailingAccountToken = regexp.MustCompile(`^[Xx*]*\d{2,}$`)

// Normalizer resolves raw rows against the account-code table.
type Normalizer struct {
	accounts *accounts.Service
}

func New(accts *accounts.Service) *Normalizer {
	return &Normalizer{accounts: accts}
}

// Row normalizes a single raw row. A non-empty skip reason means the row is
// dropped; the returned record is only valid when the reason is empty.
func (n *Normalizer) Row(raw model.RawRow) (model.TransactionRecord, string) {
	var rec model.TransactionRecord

	action := strings.TrimSpace(raw.Action)
	if action == "" {
		action = strings.TrimSpace(raw.Description)
	}
	if action == "" {
		return rec, SkipEmptyAction
	}
	lowerAction := strings.ToLower(action)
	for _, m := range pendingMarkers {
		if strings.Contains(lowerAction, m) {
			return rec, SkipPending
		}
	}

	date, ok := parseDate(raw.Date)
	if !ok {
		return rec, SkipBadDate
	}

	amtText := strings.TrimSpace(raw.Amount)
	if amtText == "" {
		return rec, SkipNoAmount
	}
	amount, ok := parseAmount(amtText)
	if !ok {
		return rec, SkipBadAmount
	}

	name, number := splitAccount(raw.Account)
	if number == "" {
		number = strings.TrimSpace(raw.AccountNumber)
	}
	if name == "" {
		if inferred, code, found := n.accounts.FromFilename(raw.SourceFile); found {
			name = inferred
			if number == "" {
				number = code
			}
		}
	}

	currency := strings.ToUpper(strings.TrimSpace(raw.Currency))
	if currency == "" {
		currency = "USD"
	}

	rec = model.TransactionRecord{
		Date:          date,
		Account:       name,
		AccountNumber: number,
		Action:        action,
		Description:   strings.TrimSpace(raw.Description),
		Amount:        amount,
		Currency:      currency,
		Symbol:        strings.ToUpper(strings.TrimSpace(raw.Symbol)),
		Type:          txntype.Resolve(action),
		SourceFile:    raw.SourceFile,
	}
	return rec, ""
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseAmount strips currency decoration. Parenthesized amounts are
// negative, bank-statement style.
func parseAmount(s string) (decimal.Decimal, bool) {
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(strings.TrimSpace(s), "$")
	if strings.HasPrefix(s, "-$") {
		s = "-" + s[2:]
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, false
	}
	if neg {
		d = d.Neg()
	}
	return d, true
}

// splitAccount separates an embedded account number from the account name.
func splitAccount(account string) (name, number string) {
	account = strings.TrimSpace(account)
	if account == "" {
		return "", ""
	}
	if sub := parenAccount.FindStringSubmatch(account); sub != nil {
		return strings.TrimSpace(sub[1]), sub[2]
	}
	fields := strings.Fields(account)
	if len(fields) > 1 {
		last := fields[len(fields)-1]
		if trailingAccountToken.MatchString(last) {
			return strings.Join(fields[:len(fields)-1], " "), last
		}
	}
	return account, ""
}
