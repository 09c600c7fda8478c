package classify

import "math"

// naturalBreaks computes Fisher-Jenks optimal breaks: the partition of the
// sorted values into buckets that minimizes the summed within-class squared
// deviation. Each inner break is the largest value of its class. With fewer
// distinct values than buckets it falls back to equal intervals.
func naturalBreaks(sorted []float64, buckets int) []float64 {
	if distinct(sorted) < buckets || buckets == 1 {
		return equalBreaks(sorted, buckets)
	}
	n := len(sorted)
	k := buckets

	// lower[l][j]: 1-based index of the first value of class j in the best
	// partition of the first l values into j classes.
	lower := make([][]int, n+1)
	cost := make([][]float64, n+1)
	for i := range lower {
		lower[i] = make([]int, k+1)
		cost[i] = make([]float64, k+1)
	}
	for j := 1; j <= k; j++ {
		lower[1][j] = 1
		for l := 2; l <= n; l++ {
			cost[l][j] = math.Inf(1)
		}
	}

	for l := 2; l <= n; l++ {
		var sum, sumSq, w, ssd float64
		for m := 1; m <= l; m++ {
			first := l - m + 1
			v := sorted[first-1]
			sum += v
			sumSq += v * v
			w++
			ssd = sumSq - sum*sum/w
			prev := first - 1
			if prev == 0 {
				continue
			}
			for j := 2; j <= k; j++ {
				if c := ssd + cost[prev][j-1]; cost[l][j] >= c {
					lower[l][j] = first
					cost[l][j] = c
				}
			}
		}
		lower[l][1] = 1
		cost[l][1] = ssd
	}

	breaks := make([]float64, k+1)
	breaks[0] = sorted[0]
	breaks[k] = sorted[n-1]
	end := n
	for j := k; j >= 2; j-- {
		first := lower[end][j]
		breaks[j-1] = sorted[first-2]
		end = first - 1
	}
	return breaks
}

func distinct(sorted []float64) int {
	if len(sorted) == 0 {
		return 0
	}
	d := 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i] != sorted[i-1] {
			d++
		}
	}
	return d
}
