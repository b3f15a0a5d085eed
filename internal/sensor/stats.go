package sensor

import "math"

// GroupStats holds the running statistics for one group. Mean and M2 follow
// Welford's online recurrence, so variance never needs the raw samples.
type GroupStats struct {
	Count int64
	Sum   float64
	Min   float64
	Max   float64
	Mean  float64
	M2    float64
}

// Observe folds one value into the running statistics.
func (g *GroupStats) Observe(v float64) {
	if g.Count == 0 {
		g.Count = 1
		g.Sum = v
		g.Min = v
		g.Max = v
		g.Mean = v
		g.M2 = 0
		return
	}

	g.Count++
	g.Sum += v
	if v < g.Min {
		g.Min = v
	}
	if v > g.Max {
		g.Max = v
	}

	delta := v - g.Mean
	g.Mean += delta / float64(g.Count)
	g.M2 += delta * (v - g.Mean)
}

// Combine folds o into g using the parallel variance combination
// (Chan et al.), so merging shard statistics reproduces the sequential
// result up to float rounding. Averaging shard means naively would not.
func (g *GroupStats) Combine(o GroupStats) {
	if o.Count == 0 {
		return
	}
	if g.Count == 0 {
		*g = o
		return
	}

	n := float64(g.Count)
	m := float64(o.Count)
	delta := o.Mean - g.Mean

	g.M2 += o.M2 + delta*delta*n*m/(n+m)
	g.Mean += delta * m / (n + m)
	g.Count += o.Count
	g.Sum += o.Sum
	if o.Min < g.Min {
		g.Min = o.Min
	}
	if o.Max > g.Max {
		g.Max = o.Max
	}
}

// FinalMean is sum/count, the reported average.
func (g *GroupStats) FinalMean() float64 {
	return g.Sum / float64(g.Count)
}

// StdDev is the population standard deviation (divisor = count).
// A single observation yields exactly 0.
func (g *GroupStats) StdDev() float64 {
	return math.Sqrt(g.M2 / float64(g.Count))
}
