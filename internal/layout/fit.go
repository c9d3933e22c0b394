package layout

import "github.com/evanschultz/dockyard/internal/domain"

// fitColumn shrinks flexible panels proportionally when the column overflows capacity,
// never below their minimums. Fixed panels keep their size, bounded to [min, capacity].
// An underfull column is left as is.
func fitColumn(col *domain.Column, capacity float64) {
	if capacity <= 0 {
		return
	}
	fixedTotal := 0.0
	flex := make([]int, 0, len(col.Panels))
	for idx := range col.Panels {
		p := &col.Panels[idx]
		if p.Fixed {
			p.Size = p.ClampSize(p.Size, capacity)
			fixedTotal += p.Size
			continue
		}
		flex = append(flex, idx)
	}
	if len(flex) == 0 || col.TotalSize() <= capacity {
		return
	}
	weights := make([]float64, len(flex))
	mins := make([]float64, len(flex))
	for k, idx := range flex {
		weights[k] = col.Panels[idx].Size
		mins[k] = col.Panels[idx].MinSize
	}
	sizes := distribute(capacity-fixedTotal, weights, mins)
	for k, idx := range flex {
		col.Panels[idx].Size = sizes[k]
	}
}

// distribute splits total proportionally to weights with per-item lower bounds.
// Items whose share would fall below their bound are pinned to it and the rest is re-split.
// When the bounds alone exceed total every item ends at its bound.
func distribute(total float64, weights, mins []float64) []float64 {
	n := len(weights)
	out := make([]float64, n)
	pinned := make([]bool, n)
	for {
		remaining := total
		weightSum := 0.0
		free := 0
		for i := 0; i < n; i++ {
			if pinned[i] {
				remaining -= mins[i]
				continue
			}
			weightSum += weights[i]
			free++
		}
		if free == 0 {
			break
		}
		changed := false
		for i := 0; i < n; i++ {
			if pinned[i] {
				continue
			}
			share := remaining / float64(free)
			if weightSum > 0 {
				share = remaining * weights[i] / weightSum
			}
			if share < mins[i] {
				pinned[i] = true
				changed = true
			}
			out[i] = share
		}
		if !changed {
			break
		}
	}
	for i := 0; i < n; i++ {
		if pinned[i] {
			out[i] = mins[i]
		}
	}
	return out
}
