package match

// Ratio returns the Ratcliff/Obershelp similarity of two strings in [0, 1]:
// 2*M/(len(a)+len(b)) where M is the total length of matching blocks found by
// recursively locating the longest common substring. This is the classic
// sequence-matcher ratio; the confidence thresholds in this package are
// calibrated against it, so the formula must not change.
func Ratio(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}
	matched := matchLen(ra, rb)
	return 2 * float64(matched) / float64(total)
}

func matchLen(a, b []rune) int {
	i, j, size := longestMatch(a, b)
	if size == 0 {
		return 0
	}
	return size + matchLen(a[:i], b[:j]) + matchLen(a[i+size:], b[j+size:])
}

// longestMatch finds the longest block of runes common to a and b, preferring
// the earliest occurrence on ties.
func longestMatch(a, b []rune) (bestA, bestB, bestSize int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}
	// lengths[j] holds the length of the common suffix ending at a[i], b[j].
	lengths := make(map[int]int, len(b))
	for i := range a {
		next := make(map[int]int, len(b))
		for j := range b {
			if a[i] != b[j] {
				continue
			}
			k := lengths[j-1] + 1
			next[j] = k
			if k > bestSize {
				bestA = i - k + 1
				bestB = j - k + 1
				bestSize = k
			}
		}
		lengths = next
	}
	return bestA, bestB, bestSize
}
