package sensor

import "sort"

// TopN is the length of the ranked views; fewer entries appear when fewer
// groups exist.
const TopN = 10

// GroupSummary is the finalized statistics for one group.
type GroupSummary struct {
	Key    GroupKey
	Count  int64
	Mean   float64
	Min    float64
	Max    float64
	StdDev float64
}

// Report is the finalized output of a run. Groups holds every group in the
// aggregator's insertion order (input first-seen order for a sequential run,
// lexicographic key order after a parallel merge). The two Top slices rank
// by descending mean and descending stddev, ties broken by key order,
// truncated to at most TopN entries.
type Report struct {
	Groups      []GroupSummary
	TopByMean   []GroupSummary
	TopByStdDev []GroupSummary
}

// Finalize derives the final statistics and rankings from the aggregator.
// An empty aggregator yields an empty report; that is a valid result, not
// an error.
func (a *Aggregator) Finalize() *Report {
	rep := &Report{
		Groups: make([]GroupSummary, 0, a.Len()),
	}

	for _, key := range a.Keys() {
		s, ok := a.Stats(key)
		if !ok || s.Count == 0 {
			continue
		}
		rep.Groups = append(rep.Groups, GroupSummary{
			Key:    key,
			Count:  s.Count,
			Mean:   s.FinalMean(),
			Min:    s.Min,
			Max:    s.Max,
			StdDev: s.StdDev(),
		})
	}

	rep.TopByMean = rankTop(rep.Groups, func(g GroupSummary) float64 { return g.Mean })
	rep.TopByStdDev = rankTop(rep.Groups, func(g GroupSummary) float64 { return g.StdDev })
	return rep
}

// rankTop returns up to TopN groups sorted descending by the ranking value,
// with lexicographic key order as the tie-break so output is reproducible.
func rankTop(groups []GroupSummary, value func(GroupSummary) float64) []GroupSummary {
	ranked := make([]GroupSummary, len(groups))
	copy(ranked, groups)

	sort.Slice(ranked, func(i, j int) bool {
		vi, vj := value(ranked[i]), value(ranked[j])
		if vi != vj {
			return vi > vj
		}
		return ranked[i].Key.Less(ranked[j].Key)
	})

	if len(ranked) > TopN {
		ranked = ranked[:TopN]
	}
	return ranked
}
