// Package natsort orders file names so that embedded numbers compare by value:
// "page2.pdf" sorts before "page10.pdf".
package natsort

import (
	"path/filepath"
	"sort"
	"strings"
)

// Compare returns -1, 0 or +1 depending on whether a sorts before, equal to,
// or after b in natural order.
//
// Names are split into runs that alternate between non-digits and digits,
// always starting with a (possibly empty) non-digit run, so that runs at the
// same position are of the same kind. Digit runs compare as integers of any
// length, other runs compare case-insensitively. When every shared run is
// equal the name with fewer runs sorts first, and remaining ties fall back to
// a byte-wise comparison. Compare returns 0 only for identical strings.
func Compare(a, b string) int {
	ra, rb := split(a), split(b)
	for i := 0; i < len(ra) && i < len(rb); i++ {
		var c int
		if i%2 == 1 {
			c = compareDigits(ra[i], rb[i])
		} else {
			c = strings.Compare(strings.ToLower(ra[i]), strings.ToLower(rb[i]))
		}
		if c != 0 {
			return c
		}
	}
	switch {
	case len(ra) < len(rb):
		return -1
	case len(ra) > len(rb):
		return 1
	}
	return strings.Compare(a, b)
}

// ComparePaths orders paths by their base name and uses the full path to
// break ties between equal names found in different directories.
func ComparePaths(a, b string) int {
	if c := Compare(filepath.Base(a), filepath.Base(b)); c != 0 {
		return c
	}
	return Compare(a, b)
}

// SortPaths sorts paths in place with ComparePaths.
func SortPaths(paths []string) {
	sort.SliceStable(paths, func(i, j int) bool {
		return ComparePaths(paths[i], paths[j]) < 0
	})
}

// split breaks s into alternating non-digit and digit runs.
// The result always has odd length: text, digits, text, ..., text.
func split(s string) []string {
	runs := make([]string, 0, 4)
	start := 0
	inDigits := false
	for i := 0; i < len(s); i++ {
		d := isDigit(s[i])
		if d != inDigits {
			runs = append(runs, s[start:i])
			start = i
			inDigits = d
		}
	}
	runs = append(runs, s[start:])
	if inDigits {
		runs = append(runs, "")
	}
	return runs
}

// compareDigits compares two ASCII digit strings by numeric value without
// converting them, so arbitrarily long runs cannot overflow.
func compareDigits(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return strings.Compare(a, b)
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
