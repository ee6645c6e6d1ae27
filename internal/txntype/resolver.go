// Package txntype resolves free-text bank action strings into transaction
// types. The cascade is fixed-priority and first-match-wins: many action
// strings contain more than one candidate keyword, so order matters.
package txntype

import (
	"strings"

	"github.com/finsift-dev/finsift/internal/model"
)

// tradeVerbs match brokerage buy/sell actions.
var tradeVerbs = []string{"you bought", "you sold", "bought", "sold", "sale of"}

// transferVerbs match inbound and outbound transfers.
var transferVerbs = []string{
	"transferred from", "transferred to",
	"transfer from", "transfer to",
	"online transfer", "transfer",
}

// Resolve maps action text to a TxnType. It is pure and never fails;
// unrecognized actions resolve to TypeOther.
func Resolve(action string) model.TxnType {
	s := strings.ToLower(strings.TrimSpace(action))

	switch {
	case containsAny(s, tradeVerbs...):
		return model.TypeTrade
	case strings.Contains(s, "dividend received"):
		return model.TypeDividend
	case strings.Contains(s, "reinvestment"):
		return model.TypeReinvestment
	case containsAny(s, transferVerbs...):
		return model.TypeTransfer
	case strings.Contains(s, "cash contribution"):
		return model.TypeContribution
	case strings.Contains(s, "direct deposit"):
		return model.TypeDirectDeposit
	case strings.Contains(s, "direct debit"):
		return model.TypeDirectDebit
	case strings.Contains(s, "card"):
		return model.TypeCard
	case strings.HasPrefix(s, "ach"):
		if strings.Contains(s, "credit") {
			return model.TypeACHCredit
		}
		return model.TypeACHDebit
	case strings.Contains(s, "wire"):
		return model.TypeWire
	case strings.HasPrefix(s, "check"):
		return model.TypeCheck
	case strings.Contains(s, "atm"):
		return model.TypeATM
	case strings.Contains(s, "fee") || strings.Contains(s, "charge"):
		return model.TypeFee
	case strings.Contains(s, "interest"):
		return model.TypeInterest
	}
	return model.TypeOther
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
