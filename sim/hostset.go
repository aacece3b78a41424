package sim

import "sort"

// orderedHostSet is a set of host numbers that iterates in deterministic
// ascending order. Policies that maintain auxiliary host sets (Azar's
// open/full sets) use this instead of a Go map so that iteration order
// never depends on map hashing — required by spec §8's determinism
// property (identical seed + input must produce byte-identical output).
type orderedHostSet struct {
	nums []int
}

func (s *orderedHostSet) indexOf(n int) (int, bool) {
	i := sort.SearchInts(s.nums, n)
	return i, i < len(s.nums) && s.nums[i] == n
}

func (s *orderedHostSet) Add(n int) {
	i, ok := s.indexOf(n)
	if ok {
		return
	}
	s.nums = append(s.nums, 0)
	copy(s.nums[i+1:], s.nums[i:])
	s.nums[i] = n
}

func (s *orderedHostSet) Remove(n int) {
	i, ok := s.indexOf(n)
	if !ok {
		return
	}
	s.nums = append(s.nums[:i], s.nums[i+1:]...)
}

func (s *orderedHostSet) Contains(n int) bool {
	_, ok := s.indexOf(n)
	return ok
}

func (s *orderedHostSet) Len() int { return len(s.nums) }

// Each calls fn for every member in ascending order.
func (s *orderedHostSet) Each(fn func(int)) {
	for _, n := range s.nums {
		fn(n)
	}
}
