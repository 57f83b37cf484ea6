package activeweight

import "sort"

// Ranking holds the most overweight and most underweight positions.
type Ranking struct {
	// Overweight is ordered from the largest active weight down.
	Overweight []ReconciledHolding
	// Underweight is ordered from the smallest active weight up.
	Underweight []ReconciledHolding
}

// SortByActiveWeight returns a copy of rs sorted by ascending active weight.
// The sort is stable: holdings with equal active weights keep their relative
// order.
func SortByActiveWeight(rs []ReconciledHolding) []ReconciledHolding {
	out := append([]ReconciledHolding(nil), rs...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ActiveWeight.LessThan(out[j].ActiveWeight)
	})
	return out
}

// Rank selects the topN most underweight holdings, the head of the ascending
// sort, and the topN most overweight holdings, its tail. A topN larger than
// the number of holdings selects all of them; zero or less selects none.
func Rank(rs []ReconciledHolding, topN int) Ranking {
	if topN <= 0 {
		return Ranking{Overweight: []ReconciledHolding{}, Underweight: []ReconciledHolding{}}
	}
	sorted := SortByActiveWeight(rs)
	n := topN
	if n > len(sorted) {
		n = len(sorted)
	}

	under := append([]ReconciledHolding(nil), sorted[:n]...)
	over := append([]ReconciledHolding(nil), sorted[len(sorted)-n:]...)
	sort.SliceStable(over, func(i, j int) bool {
		return over[i].ActiveWeight.GreaterThan(over[j].ActiveWeight)
	})
	return Ranking{Overweight: over, Underweight: under}
}

// RankIndustries orders industry summaries the same way as Rank.
func RankIndustries(ss []IndustrySummary, topN int) (over, under []IndustrySummary) {
	if topN <= 0 {
		return []IndustrySummary{}, []IndustrySummary{}
	}
	sorted := append([]IndustrySummary(nil), ss...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ActiveWeight.LessThan(sorted[j].ActiveWeight)
	})
	n := topN
	if n > len(sorted) {
		n = len(sorted)
	}
	under = append([]IndustrySummary(nil), sorted[:n]...)
	over = append([]IndustrySummary(nil), sorted[len(sorted)-n:]...)
	sort.SliceStable(over, func(i, j int) bool {
		return over[i].ActiveWeight.GreaterThan(over[j].ActiveWeight)
	})
	return over, under
}
