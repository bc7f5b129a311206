package reporting

import "sort"

// Rank orders groups by value descending and keeps the first topN. Equal
// values keep first-seen order.
func Rank(groups *Groups, topN int) []AggregatedGroup {
	if topN <= 0 || groups.Len() == 0 {
		return []AggregatedGroup{}
	}
	ranked := groups.Slice()
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Value > ranked[j].Value
	})
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}

// Best returns the highest ranked group, or nil when groups is empty.
func Best(groups *Groups) *AggregatedGroup {
	top := Rank(groups, 1)
	if len(top) == 0 {
		return nil
	}
	return &top[0]
}
