package diff

// findMaxPath selects the fixed path through groups (§4.6): the
// maximum-total-chars chain of groups whose oldNumber strictly
// increases along the chain. Groups on this chain keep their original
// position (fixed); groups off it are treated as moved by the mark
// placer.
//
// This is a straightforward longest-weighted-increasing-subsequence DP
// (O(n²)) rather than a literal port of the reference's memoized
// top-down recursion — the two compute the same maximum, and the
// group counts this operates on (per diff call) stay small enough that
// the quadratic pass is not a concern; noted in DESIGN.md.
func findMaxPath(groups []group) []int {
	n := len(groups)
	if n == 0 {
		return nil
	}

	best := make([]int, n)
	from := make([]int, n)
	bestIdx := 0
	for i := 0; i < n; i++ {
		from[i] = -1
		best[i] = groups[i].chars
		for j := 0; j < i; j++ {
			if groups[j].oldNumber < groups[i].oldNumber && best[j]+groups[i].chars > best[i] {
				best[i] = best[j] + groups[i].chars
				from[i] = j
			}
		}
		if best[i] > best[bestIdx] {
			bestIdx = i
		}
	}

	var path []int
	for i := bestIdx; i != -1; i = from[i] {
		path = append(path, i)
	}
	for l, r := 0, len(path)-1; l < r; l, r = l+1, r-1 {
		path[l], path[r] = path[r], path[l]
	}
	return path
}

// markFixedGroups applies the result of findMaxPath: groups on path are
// fixed; every other group is released as a move candidate, regardless
// of what getGroups initially guessed from section membership.
func markFixedGroups(groups []group, path []int) {
	for i := range groups {
		groups[i].fixed = false
	}
	for _, i := range path {
		groups[i].fixed = true
	}
}
