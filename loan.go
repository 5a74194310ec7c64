package edgarscan

import (
	"regexp"
	"strings"
)

// LoanPhrases is the ten-phrase loan contract vocabulary from Nini, Smith
// and Sufi, "Creditor control rights and firm investment policy" (JFE 2009).
var LoanPhrases = []string{
	"credit facility",
	"revolving credit",
	"credit agreement",
	"loan agreement",
	"loan and security agreement",
	"loan & security agreement",
	"credit and guarantee agreement",
	"credit & guarantee agreement",
	"financing and security agreement",
	"financing & security agreement",
}

// LoanPattern matches any loan phrase in uppercased text.
var LoanPattern = compileLoanPattern(LoanPhrases)

func compileLoanPattern(phrases []string) *regexp.Regexp {
	alts := make([]string, 0, len(phrases))
	for _, p := range phrases {
		alts = append(alts, regexp.QuoteMeta(strings.ToUpper(p)))
	}
	return regexp.MustCompile(strings.Join(alts, "|"))
}

// HasLoanPhrase reports whether text mentions a loan phrase.
// Text is uppercased before matching, so the test is case-insensitive.
func HasLoanPhrase(text string) bool {
	return LoanPattern.MatchString(strings.ToUpper(text))
}
