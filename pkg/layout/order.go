package layout

import "sort"

// ordering holds the in-rank position of every node.
type ordering struct {
	layers [][]int // rank -> node indexes, left to right
	pos    []int   // node -> index within its layer
}

func (o ordering) clone() ordering {
	c := ordering{
		layers: make([][]int, len(o.layers)),
		pos:    append([]int(nil), o.pos...),
	}
	for i, l := range o.layers {
		c.layers[i] = append([]int(nil), l...)
	}
	return c
}

func (o ordering) reindex() {
	for _, layer := range o.layers {
		for i, v := range layer {
			o.pos[v] = i
		}
	}
}

// orderRanks places nodes within their ranks. The initial order is the
// declaration order; each iteration runs one barycenter sweep, downwards on
// even iterations and upwards on odd ones. The ordering with the fewest
// crossings seen is kept, the earliest one on ties.
func orderRanks(t topology, r ranking, iterations int) (ordering, int) {
	n := len(t.ids)
	o := ordering{
		layers: make([][]int, r.max+1),
		pos:    make([]int, n),
	}
	for v := 0; v < n; v++ {
		o.layers[r.rank[v]] = append(o.layers[r.rank[v]], v)
	}
	o.reindex()

	// Neighbours one or more ranks above and below, from every edge whose
	// endpoints sit on different ranks. Back edges count in reverse.
	upper := make([][]int, n)
	lower := make([][]int, n)
	for ei := range t.src {
		a, b := t.src[ei], t.dst[ei]
		switch {
		case r.rank[a] < r.rank[b]:
			upper[b] = append(upper[b], a)
			lower[a] = append(lower[a], b)
		case r.rank[a] > r.rank[b]:
			upper[a] = append(upper[a], b)
			lower[b] = append(lower[b], a)
		}
	}

	best := o.clone()
	bestCross := crossings(t, r, o)

	for it := 0; it < iterations && bestCross > 0; it++ {
		if it%2 == 0 {
			for rk := 1; rk <= r.max; rk++ {
				sweep(o, rk, upper)
			}
		} else {
			for rk := r.max - 1; rk >= 0; rk-- {
				sweep(o, rk, lower)
			}
		}
		if c := crossings(t, r, o); c < bestCross {
			best, bestCross = o.clone(), c
		}
	}
	return best, bestCross
}

// sweep reorders one layer by the mean position of each node's neighbours
// in the fixed direction. Nodes without such neighbours keep their current
// position as barycenter. Ties fall back to declaration index.
func sweep(o ordering, rk int, nbrs [][]int) {
	layer := o.layers[rk]
	bary := make(map[int]float64, len(layer))
	for _, v := range layer {
		if len(nbrs[v]) == 0 {
			bary[v] = float64(o.pos[v])
			continue
		}
		sum := 0
		for _, u := range nbrs[v] {
			sum += o.pos[u]
		}
		bary[v] = float64(sum) / float64(len(nbrs[v]))
	}
	sort.SliceStable(layer, func(i, j int) bool {
		a, b := layer[i], layer[j]
		if bary[a] != bary[b] {
			return bary[a] < bary[b]
		}
		return a < b
	})
	for i, v := range layer {
		o.pos[v] = i
	}
}

// crossings counts pairs of edges that span the same two ranks and swap
// their relative order between them.
func crossings(t topology, r ranking, o ordering) int {
	type span struct{ top, bottom int }
	spans := make([]span, 0, len(t.src))
	for ei := range t.src {
		a, b := t.src[ei], t.dst[ei]
		if r.rank[a] == r.rank[b] {
			continue
		}
		if r.rank[a] > r.rank[b] {
			a, b = b, a
		}
		spans = append(spans, span{a, b})
	}

	count := 0
	for i := 0; i < len(spans); i++ {
		for j := i + 1; j < len(spans); j++ {
			s1, s2 := spans[i], spans[j]
			if r.rank[s1.top] != r.rank[s2.top] || r.rank[s1.bottom] != r.rank[s2.bottom] {
				continue
			}
			if (o.pos[s1.top]-o.pos[s2.top])*(o.pos[s1.bottom]-o.pos[s2.bottom]) < 0 {
				count++
			}
		}
	}
	return count
}
