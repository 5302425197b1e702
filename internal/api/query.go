package api

import (
	"math"
	"strconv"
	"strings"
)

// queryInt reads the leading integer of s ("12abc" is 12). Missing and
// non-numeric values yield def; zero and negative values are returned as is
// so the caller can reject them. Values beyond int32 are clamped.
func queryInt(s string, def int) int {
	s = strings.TrimLeft(s, " \t\n\r")
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return def
	}

	n, err := strconv.ParseInt(s[:end], 10, 32)
	if err != nil {
		// Only a range error is possible here.
		if s[0] == '-' {
			n = math.MinInt32
		} else {
			n = math.MaxInt32
		}
	}
	return int(n)
}
