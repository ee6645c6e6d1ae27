package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TxnType classifies how a transaction moved money.
type TxnType string

const (
	TypeTrade         TxnType = "investment_trade"
	TypeDividend      TxnType = "dividend"
	TypeReinvestment  TxnType = "reinvestment"
	TypeTransfer      TxnType = "transfer"
	TypeContribution  TxnType = "contribution"
	TypeDirectDeposit TxnType = "direct_deposit"
	TypeDirectDebit   TxnType = "direct_debit"
	TypeCard          TxnType = "card"
	TypeACHDebit      TxnType = "ach_debit"
	TypeACHCredit     TxnType = "ach_credit"
	TypeWire          TxnType = "wire"
	TypeCheck         TxnType = "check"
	TypeATM           TxnType = "atm"
	TypeFee           TxnType = "fee"
	TypeInterest      TxnType = "interest"
	TypeOther         TxnType = "other"
)

// IsInvestment reports whether the type is an investment-like movement.
// Investment transactions never carry a cash-style payee.
func (t TxnType) IsInvestment() bool {
	switch t {
	case TypeTrade, TypeDividend, TypeReinvestment:
		return true
	}
	return false
}

// RawRow is one row as produced by a file parser, before normalization.
// All fields are raw strings exactly as they appeared in the export.
type RawRow struct {
	Date          string
	Action        string
	Description   string
	Amount        string
	Account       string
	AccountNumber string
	Symbol        string
	Currency      string
	SourceFile    string
}

// TransactionRecord is the canonical normalized transaction.
type TransactionRecord struct {
	Date          time.Time
	Account       string
	AccountNumber string
	Action        string
	Description   string
	Amount        decimal.Decimal
	Currency      string
	Symbol        string // ticker, empty for cash transactions
	Payee         string
	Type          TxnType
	CategoryID    int64 // 0 = unclassified
	SubcategoryID int64
	Confidence    float64 // advisory, never authoritative on its own
	SourceFile    string
	Hash          string // dedup content digest
}

// SetPayee assigns a payee while enforcing investment exclusivity: records
// with a ticker symbol or an investment-like type never carry a payee.
func (r *TransactionRecord) SetPayee(payee string) {
	if r.Symbol != "" || r.Type.IsInvestment() {
		r.Payee = ""
		return
	}
	r.Payee = payee
}

// DateISO returns the ISO calendar date used for hashing and storage.
func (r *TransactionRecord) DateISO() string {
	return r.Date.Format("2006-01-02")
}
