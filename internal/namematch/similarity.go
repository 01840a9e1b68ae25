package namematch

// Levenshtein returns the edit distance between a and b, counting runes.
// Insertion, deletion and substitution each cost 1.
func Levenshtein(a, b string) int {
	s, t := []rune(a), []rune(b)

	d := make([][]int, len(s)+1)
	for i := range d {
		d[i] = make([]int, len(t)+1)
		d[i][0] = i
	}
	for j := 0; j <= len(t); j++ {
		d[0][j] = j
	}

	for i := 1; i <= len(s); i++ {
		for j := 1; j <= len(t); j++ {
			cost := 1
			if s[i-1] == t[j-1] {
				cost = 0
			}
			d[i][j] = min(
				d[i-1][j]+1,
				d[i][j-1]+1,
				d[i-1][j-1]+cost,
			)
		}
	}
	return d[len(s)][len(t)]
}

// Similarity returns (maxLen - distance) / maxLen in [0, 1].
// Two empty strings are identical.
func Similarity(a, b string) float64 {
	longest := max(len([]rune(a)), len([]rune(b)))
	if longest == 0 {
		return 1.0
	}
	return float64(longest-Levenshtein(a, b)) / float64(longest)
}
