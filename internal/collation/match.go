package collation

import "slices"

// Unbounded disables the start offset limit in MatchCommonSequence.
const Unbounded = -1

// directScanLimit is the largest start grid scanned pair by pair. Bounded
// lookups with the default limit of 2 never exceed it; larger grids index
// the starts of b by key instead.
const directScanLimit = 64

// MatchCommonSequence returns the longest run of keys that appears
// contiguously and in the same order in both a and b. The run must start
// at or before maxStart in each sequence; Unbounded lifts the limit. Ties
// go to the run that starts earliest in a, then in b. It returns nil when
// the sequences share no allowed run.
//
// Runs are only extended from maximal starts (positions whose predecessor
// pair differs), so every matching diagonal is walked once. Unbounded
// scans visit only equal key pairs, which keeps them linear in the input
// when tokens rarely repeat.
func MatchCommonSequence(a, b []Key, maxStart int) []Key {
	lastA, lastB := len(a)-1, len(b)-1
	if maxStart >= 0 {
		lastA = min(lastA, maxStart)
		lastB = min(lastB, maxStart)
	}
	if lastA < 0 || lastB < 0 {
		return nil
	}

	bestStart, bestLen := -1, 0
	try := func(i, j int) {
		if i > 0 && j > 0 && a[i-1] == b[j-1] {
			return
		}
		n := 1
		for i+n < len(a) && j+n < len(b) && a[i+n] == b[j+n] {
			n++
		}
		if n > bestLen {
			bestStart, bestLen = i, n
		}
	}

	if (lastA+1)*(lastB+1) <= directScanLimit {
		for i := 0; i <= lastA; i++ {
			for j := 0; j <= lastB; j++ {
				if a[i] == b[j] {
					try(i, j)
				}
			}
		}
	} else {
		starts := make(map[Key][]int, lastB+1)
		for j := 0; j <= lastB; j++ {
			starts[b[j]] = append(starts[b[j]], j)
		}
		for i := 0; i <= lastA; i++ {
			for _, j := range starts[a[i]] {
				try(i, j)
			}
		}
	}

	if bestStart < 0 {
		return nil
	}
	return slices.Clone(a[bestStart : bestStart+bestLen])
}

// FullMatch reports whether all of candidate was found in query within the
// start offset limit.
func FullMatch(query, candidate []Key, maxStart int) bool {
	if len(candidate) == 0 {
		return false
	}
	return len(MatchCommonSequence(query, candidate, maxStart)) >= len(candidate)
}

// MatchLength returns the length of the common run, or 0 when there is none.
func MatchLength(query, candidate []Key, maxStart int) int {
	return len(MatchCommonSequence(query, candidate, maxStart))
}
