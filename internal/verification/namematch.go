package verification

import (
	"strings"
	"unicode"
)

// MatchNames compares a submitted name against an extracted name with
// order-independent token matching: after normalization, either the strings
// are equal or every token of each name appears as a token of the other.
//
// This accepts reordering and middle names ("John Michael Smith" matches
// "Smith John Michael") but deliberately rejects near-spellings ("Jon Smith"
// does not match "John Smith") and substrings. The asymmetry between
// permissive ordering and strict spelling is intended: a reordered legal
// name is common on extracted documents, a differently spelled one is not.
func MatchNames(submitted, extracted string) bool {
	if submitted == "" || extracted == "" {
		return false
	}

	a := normalizeName(submitted)
	b := normalizeName(extracted)
	if a == b {
		return true
	}

	return tokensContain(strings.Fields(a), strings.Fields(b)) &&
		tokensContain(strings.Fields(b), strings.Fields(a))
}

// normalizeName lowercases and strips everything except letters and
// whitespace.
func normalizeName(name string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsSpace(r) {
			sb.WriteRune(r)
		}
	}
	return strings.TrimSpace(sb.String())
}

// tokensContain reports whether every token in a appears in b.
func tokensContain(a, b []string) bool {
	for _, tok := range a {
		found := false
		for _, other := range b {
			if tok == other {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
