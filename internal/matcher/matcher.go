// Package matcher resolves user-supplied column references against table
// headers.
package matcher

import (
	"sort"
	"strconv"
	"strings"
)

// MatchResult represents the result of matching a column reference.
type MatchResult struct {
	Matched   bool
	Column    int    // 0-based column index
	Header    string // header text of the matched column
	Ambiguous []string
}

// Match resolves ref against headers. A reference matches when it is a 1-based
// column number, a header name (case-insensitive) or a prefix of exactly one
// header. Exact names win over prefixes. When a prefix hits several headers
// nothing matches and Ambiguous lists the candidates, longest first.
func Match(ref string, headers []string) *MatchResult {
	ref = strings.TrimSpace(ref)
	if ref == "" || len(headers) == 0 {
		return &MatchResult{Matched: false}
	}

	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(headers) {
			return &MatchResult{Matched: false}
		}
		return &MatchResult{Matched: true, Column: n - 1, Header: headers[n-1]}
	}

	refLower := strings.ToLower(ref)
	for i, h := range headers {
		if strings.ToLower(h) == refLower {
			return &MatchResult{Matched: true, Column: i, Header: h}
		}
	}

	order := make([]int, len(headers))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return len(headers[order[a]]) > len(headers[order[b]])
	})

	var hits []int
	for _, i := range order {
		if strings.HasPrefix(strings.ToLower(headers[i]), refLower) {
			hits = append(hits, i)
		}
	}

	switch len(hits) {
	case 0:
		return &MatchResult{Matched: false}
	case 1:
		return &MatchResult{Matched: true, Column: hits[0], Header: headers[hits[0]]}
	default:
		amb := make([]string, len(hits))
		for k, i := range hits {
			amb[k] = headers[i]
		}
		return &MatchResult{Matched: false, Ambiguous: amb}
	}
}
