package txntype

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/finsift-dev/finsift/internal/model"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		action string
		want   model.TxnType
	}{
		{"YOU BOUGHT VANGUARD TOTAL STOCK MARKET ETF", model.TypeTrade},
		{"YOU SOLD APPLE INC", model.TypeTrade},
		{"DIVIDEND RECEIVED VANGUARD 500 INDEX", model.TypeDividend},
		{"REINVESTMENT VANGUARD TOTAL BOND", model.TypeReinvestment},
		{"TRANSFERRED FROM SAVINGS XXXX1234", model.TypeTransfer},
		{"ONLINE TRANSFER TO CHK ...5678", model.TypeTransfer},
		{"CASH CONTRIBUTION IRA", model.TypeContribution},
		{"DIRECT DEPOSIT ACME PAYROLL", model.TypeDirectDeposit},
		{"DIRECT DEBIT STATE FARM RO SFPP", model.TypeDirectDebit},
		{"DEBIT CARD PURCHASE MCDONALD'S F18095 MANASSAS VA", model.TypeCard},
		{"ACH DEBIT DOMINION ENERGY", model.TypeACHDebit},
		{"ACH CREDIT TAX REFUND", model.TypeACHCredit},
		{"INCOMING WIRE FIRST NATIONAL BANK", model.TypeWire},
		{"CHECK 1042", model.TypeCheck},
		{"ATM WITHDRAWAL MAIN ST", model.TypeATM},
		{"MONTHLY SERVICE FEE", model.TypeFee},
		{"OVERDRAFT CHARGE", model.TypeFee},
		{"INTEREST EARNED", model.TypeInterest},
		{"MISC ADJUSTMENT", model.TypeOther},
		{"", model.TypeOther},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Resolve(tt.action), "action %q", tt.action)
	}
}

// Some actions contain keywords from several branches; the cascade order
// decides the winner.
func TestResolvePriority(t *testing.T) {
	// "dividend received" beats the interest keyword in the fund name.
	assert.Equal(t, model.TypeDividend, Resolve("DIVIDEND RECEIVED HIGH INTEREST BOND FUND"))
	// Trade verbs beat everything, including "card" in a fund name.
	assert.Equal(t, model.TypeTrade, Resolve("YOU BOUGHT SCORECARD HOLDINGS"))
	// Transfers beat the fee keyword in "fee rebate transfer from".
	assert.Equal(t, model.TypeTransfer, Resolve("TRANSFER FROM FEE REBATE ACCOUNT"))
	// Transfer verbs outrank the wire keyword: "WIRE TRANSFER TO" is an
	// outbound transfer first.
	assert.Equal(t, model.TypeTransfer, Resolve("WIRE TRANSFER TO CHECKFREE SERVICES"))
	// "CHECKCARD" starts with check but contains card; card wins (it is
	// checked earlier because card purchases are far more common).
	assert.Equal(t, model.TypeCard, Resolve("CHECKCARD 0712 TARGET 00023"))
}

func TestResolveIsPure(t *testing.T) {
	const action = "ACH DEBIT ELECTRIC COOPERATIVE"
	first := Resolve(action)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Resolve(action))
	}
}
