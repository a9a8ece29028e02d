package stats

import (
	"sort"
	"strings"

	"github.com/verte-zerg/cwtrain/internal/model"
)

// TopCharsByFrequency returns the top N characters by total frequency.
func TopCharsByFrequency(aggs []model.CharAggregate, n int) []string {
	if n <= 0 || len(aggs) == 0 {
		return nil
	}
	items := make([]model.CharAggregate, len(aggs))
	copy(items, aggs)
	total := func(a model.CharAggregate) int { return a.Correct + a.Incorrect }
	sort.Slice(items, func(i, j int) bool {
		if total(items[i]) == total(items[j]) {
			return items[i].Char < items[j].Char
		}
		return total(items[i]) > total(items[j])
	})
	n = min(n, len(items))
	out := make([]string, 0, n)
	for _, it := range items[:n] {
		out = append(out, it.Char)
	}
	return out
}

// ParseChars splits a comma separated character list. COMMA names the
// comma itself; entries are upper-cased and deduplicated.
func ParseChars(s string) []string {
	seen := map[string]bool{}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.ToUpper(strings.TrimSpace(part))
		if part == "COMMA" {
			part = ","
		}
		if part == "" || seen[part] {
			continue
		}
		seen[part] = true
		out = append(out, part)
	}
	return out
}
