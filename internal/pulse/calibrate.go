package pulse

import (
	"errors"
	"sort"

	"untape/internal/profile"
)

// ErrNoClusterable reports a stream with no pulses inside the clustering
// window, so thresholds cannot be derived from it.
var ErrNoClusterable = errors.New("pulse: no clusterable pulses")

// Calibrate derives classification thresholds from the stream itself by
// clustering pulse durations into three groups (short, long, sync). It
// returns a copy of prof with TShortMax/TLongMin/TSyncMin replaced and the
// sorted cluster centers for diagnostics.
//
// The short/long cut keeps a dead zone one quarter of the inter-center gap
// wide; the sync cut sits at the long/sync midpoint since sync pulses are
// well separated on every profile observed.
func Calibrate(events []Event, prof profile.Profile) (profile.Profile, []float64, error) {
	var vals []int
	distinct := make(map[int]struct{})
	for _, ev := range events {
		if ev.Duration >= prof.MinPulse && ev.Duration <= prof.MaxPulse {
			vals = append(vals, ev.Duration)
			distinct[ev.Duration] = struct{}{}
		}
	}
	// Three bands need at least three distinct durations.
	if len(distinct) < 3 {
		return prof, nil, ErrNoClusterable
	}

	centers := kmeans1D(vals, 3, 40)
	c0, c1, c2 := centers[0], centers[1], centers[2]

	gap := c1 - c0
	mid01 := (c0 + c1) / 2
	out := prof
	out.TShortMax = int(mid01 - gap/8)
	out.TLongMin = int(mid01 + gap/8)
	out.TSyncMin = int((c1 + c2) / 2)
	return out, centers, nil
}

// kmeans1D clusters values into k groups, seeding centers at evenly spaced
// quantiles of the distinct sorted values. Seeding on distinct values keeps
// the centers apart even when one duration dominates the stream, which it
// always does (the zero-bit pulse). Returns sorted centers.
func kmeans1D(values []int, k, iters int) []float64 {
	vs := make([]int, len(values))
	copy(vs, values)
	sort.Ints(vs)

	uniq := make([]int, 0, len(vs))
	for i, v := range vs {
		if i == 0 || v != vs[i-1] {
			uniq = append(uniq, v)
		}
	}

	centers := make([]float64, k)
	for i := range centers {
		centers[i] = float64(uniq[(i+1)*len(uniq)/(k+1)])
	}

	for range iters {
		sums := make([]float64, k)
		counts := make([]int, k)
		for _, v := range values {
			j := nearest(float64(v), centers)
			sums[j] += float64(v)
			counts[j]++
		}
		moved := false
		for i := range centers {
			if counts[i] == 0 {
				continue
			}
			next := sums[i] / float64(counts[i])
			if diff := next - centers[i]; diff > 1e-6 || diff < -1e-6 {
				moved = true
			}
			centers[i] = next
		}
		if !moved {
			break
		}
	}
	sort.Float64s(centers)
	return centers
}

func nearest(v float64, centers []float64) int {
	best, bestDist := 0, -1.0
	for i, c := range centers {
		d := v - c
		if d < 0 {
			d = -d
		}
		if bestDist < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
