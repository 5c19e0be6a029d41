package merge

import "regexp"

var (
	// currencyRe matches an amount tied to a currency: "$6.6 billion",
	// "€40M", "USD 12 million".
	currencyRe = regexp.MustCompile(`(?i)(?:[$€£]\s?\d|\b(?:usd|eur|gbp)\s?\d|\b\d[\d.,]*\s?(?:million|billion|trillion)\s(?:dollars|euros|pounds)\b)`)

	// dollarRe matches a dollar amount such as "$25M" or "$ 1.2".
	dollarRe = regexp.MustCompile(`\$\s?\d`)
)

// HasCurrencyAmount reports whether s names a concrete currency figure.
func HasCurrencyAmount(s string) bool {
	return currencyRe.MatchString(s)
}

// HasDollarAmount reports whether s contains a "$<amount>" figure.
func HasDollarAmount(s string) bool {
	return dollarRe.MatchString(s)
}

// MoreSpecific reports whether incoming should replace current: incoming
// carries a currency figure and current does not.
func MoreSpecific(current, incoming string) bool {
	return HasCurrencyAmount(incoming) && !HasCurrencyAmount(current)
}
