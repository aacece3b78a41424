package sim

// intervalUnion maintains a sorted, non-overlapping set of [start, end)
// intervals, merging as each new interval is inserted. Used to compute a
// subscription's total active time (union of its VMs' lifetimes) and its
// total malicious-exposure time (union of clipped host malicious
// periods) without double-counting overlaps.
type intervalUnion struct {
	ivals []interval
}

// Insert merges [start, end) into the union by linear scan: find the
// insertion point, then absorb any existing intervals it now overlaps or
// touches.
func (u *intervalUnion) Insert(start, end int64) {
	if end <= start {
		return
	}
	i := 0
	for i < len(u.ivals) && u.ivals[i].End < start {
		i++
	}
	j := i
	for j < len(u.ivals) && u.ivals[j].Start <= end {
		if u.ivals[j].Start < start {
			start = u.ivals[j].Start
		}
		if u.ivals[j].End > end {
			end = u.ivals[j].End
		}
		j++
	}
	merged := append([]interval{}, u.ivals[:i]...)
	merged = append(merged, interval{Start: start, End: end})
	merged = append(merged, u.ivals[j:]...)
	u.ivals = merged
}

// Total returns the sum of interval lengths in the union.
func (u *intervalUnion) Total() int64 {
	var total int64
	for _, iv := range u.ivals {
		total += iv.End - iv.Start
	}
	return total
}

// IntersectionLength returns Σ over the union's intervals of the length
// of their intersection with [start, end).
func (u *intervalUnion) IntersectionLength(start, end int64) int64 {
	var total int64
	for _, iv := range u.ivals {
		s := iv.Start
		if start > s {
			s = start
		}
		e := iv.End
		if end < e {
			e = end
		}
		if e > s {
			total += e - s
		}
	}
	return total
}
