package engine

import "sort"

// rankScores orders entities best-first by exact composite score. Equal
// scores order by entity ID ascending, which makes a run reproducible
// regardless of input order.
func rankScores(s []scored) {
	sort.SliceStable(s, func(i, j int) bool {
		if s[i].exact != s[j].exact {
			return s[i].exact > s[j].exact
		}
		return s[i].out.EntityID < s[j].out.EntityID
	})
}
