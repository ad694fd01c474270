package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// weightPattern matches a duration expression: an integer count followed by
// a "d" (business days) or "w" (calendar weeks) suffix.
var weightPattern = regexp.MustCompile(`^([+-]?\d+)([dw])$`)

// ParseWeight splits a weight expression into its count and unit.
// Surrounding whitespace is ignored and matching is case-insensitive.
func ParseWeight(expr string) (count int, unit byte, ok bool) {
	m := weightPattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(expr)))
	if m == nil {
		return 0, 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, 0, false
	}
	return n, m[2][0], true
}

// BusinessDaysInclusive counts the weekdays (Mon-Fri) in the closed interval
// [start, end]. Returns 0 when end is before start.
func BusinessDaysInclusive(start, end Date) int {
	if end.Before(start) {
		return 0
	}
	count := 0
	for cur := start; !cur.After(end); cur = cur.AddDays(1) {
		if cur.IsWeekday() {
			count++
		}
	}
	return count
}

// WeightToEnd derives an end date from a start date and a weight expression.
//
// An empty expression yields the unscheduled sentinel. A "d" expression with
// count n advances to the n-th weekday counting start itself as the first,
// even when start falls on a weekend; a non-positive count collapses to
// start. A "w" expression adds 7n calendar days with no weekday adjustment
// (intentionally asymmetric with the day form). A malformed expression
// returns ok=false and the caller must leave the existing end date alone.
func WeightToEnd(start Date, expr string) (end Date, ok bool) {
	if strings.TrimSpace(expr) == "" {
		return Date{}, true
	}
	n, unit, ok := ParseWeight(expr)
	if !ok {
		return Date{}, false
	}
	if unit == 'w' {
		return start.AddDays(7 * n), true
	}
	if n <= 0 {
		return start, true
	}
	cur := start
	for added := 1; added < n; {
		cur = cur.AddDays(1)
		if cur.IsWeekday() {
			added++
		}
	}
	return cur, true
}

// EndToWeight derives the normalized weight expression from a date pair.
// The sentinel end yields ""; anything else yields the inclusive business
// day count in day form, even if the weight was originally entered in weeks.
func EndToWeight(start, end Date) string {
	if end.IsZero() {
		return ""
	}
	return fmt.Sprintf("%dd", BusinessDaysInclusive(start, end))
}
