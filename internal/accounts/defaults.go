package accounts

// DefaultCodes returns the built-in account-code table. Real deployments
// override it from configuration.
func DefaultCodes() map[string]string {
	return map[string]string{
		"chk0441": "Everyday Checking",
		"sav0017": "Rainy Day Savings",
		"cc8802":  "Rewards Card",
		"brk1":    "Taxable Brokerage",
		"ira77":   "Rollover IRA",
	}
}
