package payee

// DefaultAliases returns the curated alias table mapping lowercase merchant
// fragments to canonical display names. Supplied at construction so tests
// and callers can substitute their own table.
func DefaultAliases() map[string]string {
	return map[string]string{
		// Groceries
		"whole foods":   "Whole Foods",
		"trader joe":    "Trader Joe's",
		"wegmans":       "Wegmans",
		"safeway":       "Safeway",
		"kroger":        "Kroger",
		"harris teeter": "Harris Teeter",
		"giant food":    "Giant Food",
		"aldi":          "Aldi",
		"costco":        "Costco",

		// Fast food and coffee
		"mcdonald's":  "McDonald's",
		"mcdonalds":   "McDonald's",
		"chick-fil-a": "Chick-fil-A",
		"chipotle":    "Chipotle",
		"subway":      "Subway",
		"wendy's":     "Wendy's",
		"taco bell":   "Taco Bell",
		"starbucks":   "Starbucks",
		"dunkin":      "Dunkin'",
		"panera":      "Panera Bread",

		// Shopping
		"amazon":     "Amazon",
		"amzn":       "Amazon",
		"walmart":    "Walmart",
		"wal-mart":   "Walmart",
		"target":     "Target",
		"best buy":   "Best Buy",
		"home depot": "Home Depot",

		// Gas
		"shell":   "Shell",
		"exxon":   "Exxon",
		"chevron": "Chevron",
		"sunoco":  "Sunoco",
		"wawa":    "Wawa",

		// Healthcare
		"cvs":       "CVS Pharmacy",
		"walgreens": "Walgreens",
		"rite aid":  "Rite Aid",

		// Rideshare and streaming
		"uber eats": "Uber Eats",
		"uber":      "Uber",
		"lyft":      "Lyft",
		"doordash":  "DoorDash",
		"grubhub":   "Grubhub",
		"netflix":   "Netflix",
		"spotify":   "Spotify",
		"hulu":      "Hulu",

		// Telecom and utilities
		"comcast":         "Comcast",
		"xfinity":         "Comcast",
		"verizon":         "Verizon",
		"at&t":            "AT&T",
		"t-mobile":        "T-Mobile",
		"dominion energy": "Dominion Energy",
		"pepco":           "Pepco",

		// Insurance
		"state farm":  "State Farm",
		"geico":       "GEICO",
		"progressive": "Progressive",
		"allstate":    "Allstate",
		"usaa":        "USAA",
	}
}
