package catalog

import (
	"regexp"

	"github.com/hbollon/go-edlib"

	"github.com/Nomadcxx/mediamatch/internal/naming"
)

var bracketGroupRegex = regexp.MustCompile(`\([^()]*\)|\[[^\[\]]*\]|\{[^{}]*\}`)

// Similarity scores how closely query resembles a candidate name. It sums
// Jaro-Winkler similarity, exact equality once bracketed qualifiers are
// removed, numeric similarity (an exact year match counts double) and
// Levenshtein and LCS similarity. The result lies in [0, 6].
func Similarity(query, name string, year int) float64 {
	q := naming.Fold(naming.NormalizeTitle(query))
	n := naming.Fold(naming.NormalizeTitle(name))

	score := float64(edlib.JaroWinklerSimilarity(q, n))
	if stripBrackets(query) == stripBrackets(name) {
		score++
	}
	score += numberSimilarity(q, n, year)
	if lev, err := edlib.StringsSimilarity(q, n, edlib.Levenshtein); err == nil {
		score += float64(lev)
	}
	if lcs, err := edlib.StringsSimilarity(q, n, edlib.Lcs); err == nil {
		score += float64(lcs)
	}
	return score
}

// NameSimilarity is the plain Jaro-Winkler similarity of two folded names.
func NameSimilarity(a, b string) float64 {
	return float64(edlib.JaroWinklerSimilarity(
		naming.Fold(naming.NormalizeTitle(a)),
		naming.Fold(naming.NormalizeTitle(b)),
	))
}

func stripBrackets(s string) string {
	return naming.Fold(naming.NormalizeTitle(bracketGroupRegex.ReplaceAllString(s, " ")))
}

// numberSimilarity compares the integer tokens of query and name. A query
// carrying the candidate's year scores 2; otherwise the score is the share
// of numbers the two have in common, and 1 when neither has any.
func numberSimilarity(query, name string, year int) float64 {
	qNums := naming.Numbers(query)
	if year > 0 {
		for _, n := range qNums {
			if n == year {
				return 2
			}
		}
	}

	nNums := naming.Numbers(name)
	if year > 0 {
		nNums = append(nNums, year)
	}
	if len(qNums) == 0 && len(nNums) == 0 {
		return 1
	}

	set := make(map[int]bool, len(nNums))
	for _, n := range nNums {
		set[n] = true
	}
	common := 0
	for _, n := range qNums {
		if set[n] {
			common++
			delete(set, n)
		}
	}
	return float64(common) / float64(max(len(qNums), len(nNums)))
}
