package stats

import (
	"sort"
	"unicode/utf8"

	"github.com/verte-zerg/cwtrain/internal/model"
)

// SelectWeakChars picks up to top characters with the lowest journal
// accuracy. Characters never missed are not weak; top <= 0 keeps every
// missed character.
func SelectWeakChars(aggs []model.CharAggregate, top int) map[rune]struct{} {
	weakSet := map[rune]struct{}{}
	candidates := make([]model.CharAggregate, 0, len(aggs))
	for _, agg := range aggs {
		if agg.Incorrect == 0 || utf8.RuneCountInString(agg.Char) != 1 {
			continue
		}
		candidates = append(candidates, agg)
	}
	sort.Slice(candidates, func(i, j int) bool {
		ai, aj := accuracy(candidates[i]), accuracy(candidates[j])
		if ai == aj {
			return candidates[i].Char < candidates[j].Char
		}
		return ai < aj
	})
	if top > 0 && top < len(candidates) {
		candidates = candidates[:top]
	}
	for _, c := range candidates {
		r, _ := utf8.DecodeRuneInString(c.Char)
		weakSet[r] = struct{}{}
	}
	return weakSet
}

func accuracy(agg model.CharAggregate) float64 {
	total := agg.Correct + agg.Incorrect
	if total == 0 {
		return 1.0
	}
	return float64(agg.Correct) / float64(total)
}
