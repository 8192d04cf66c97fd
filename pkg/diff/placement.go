package diff

import "sort"

// getDelBlocks turns every maximal unmatched run in the old arena into
// a `-` block (§4.8). These blocks have no newNumber yet; that is
// assigned by positionDelBlocks.
func getDelBlocks(oldV *versionText) []block {
	var blocks []block
	var start, count, words, chars int
	var text string
	active := false

	flush := func() {
		if !active {
			return
		}
		blocks = append(blocks, block{
			oldNumber: oldV.tokens[start].number,
			newNumber: none,
			oldStart:  start,
			count:     count,
			words:     words,
			chars:     chars,
			typ:       blockDelete,
			text:      text,
			section:   none,
			group:     none,
			moved:     none,
		})
		active = false
		start, count, words, chars, text = none, 0, 0, 0, ""
	}

	for i := oldV.first; i != none; i = oldV.tokens[i].next {
		t := oldV.tokens[i]
		if t.link != none {
			flush()
			continue
		}
		if !active {
			active = true
			start = i
		}
		count++
		words += wordTokenCount(t.text)
		chars += len([]rune(t.text))
		text += t.text
	}
	flush()

	return blocks
}

// getInsBlocks turns every maximal unmatched run in the new arena into
// a `+` block (§4.9).
func getInsBlocks(newV *versionText) []block {
	var blocks []block
	var start, count, words, chars int
	var text string
	active := false

	flush := func() {
		if !active {
			return
		}
		blocks = append(blocks, block{
			oldNumber: none,
			newNumber: newV.tokens[start].number,
			oldStart:  none,
			count:     count,
			words:     words,
			chars:     chars,
			typ:       blockInsert,
			text:      text,
			section:   none,
			group:     none,
			moved:     none,
		})
		active = false
		start, count, words, chars, text = none, 0, 0, 0, ""
	}

	for i := newV.first; i != none; i = newV.tokens[i].next {
		t := newV.tokens[i]
		if t.link != none {
			flush()
			continue
		}
		if !active {
			active = true
			start = i
		}
		count++
		words += wordTokenCount(t.text)
		chars += len([]rune(t.text))
		text += t.text
	}
	flush()

	return blocks
}

// sortByOld returns an index permutation of blocks ordered by oldNumber
// ascending, treating the absent oldNumber (none) as the smallest value
// possible (so insertions-only blocks sort first, matching the
// reference "absent as 0" rule adjusted for our none sentinel).
func sortByOld(blocks []block) []int {
	order := make([]int, len(blocks))
	for i := range order {
		order[i] = i
	}
	key := func(i int) int {
		if blocks[i].oldNumber == none {
			return -1
		}
		return blocks[i].oldNumber
	}
	sort.SliceStable(order, func(a, b int) bool { return key(order[a]) < key(order[b]) })
	return order
}

// positionDelBlocks assigns each `-` block a newNumber, section, group
// and fixed flag borrowed from a nearby `=` block, per the six-step
// reference-block heuristic of §4.8.
func positionDelBlocks(blocks []block) {
	order := sortByOld(blocks)
	pos := make(map[int]int, len(order))
	for p, bi := range order {
		pos[bi] = p
	}

	isFixedEqual := func(bi int) bool {
		return blocks[bi].typ == blockEqual && blocks[bi].fixed
	}
	isEqual := func(bi int) bool {
		return blocks[bi].typ == blockEqual
	}
	isGroupEnd := func(bi int) bool {
		return blocks[bi].group == none || bi+1 >= len(blocks) || blocks[bi+1].group != blocks[bi].group
	}
	isGroupStart := func(bi int) bool {
		return blocks[bi].group == none || bi == 0 || blocks[bi-1].group != blocks[bi].group
	}

	for _, bi := range order {
		if blocks[bi].typ != blockDelete {
			continue
		}
		p := pos[bi]

		var ref int = none
		if p > 0 && isFixedEqual(order[p-1]) {
			ref = order[p-1]
		} else if p+1 < len(order) && isFixedEqual(order[p+1]) {
			ref = order[p+1]
		} else if p > 0 && isEqual(order[p-1]) && !isGroupEnd(order[p-1]) {
			ref = order[p-1]
		} else if p+1 < len(order) && isEqual(order[p+1]) && !isGroupStart(order[p+1]) {
			ref = order[p+1]
		} else {
			for q := p - 1; q >= 0; q-- {
				if isFixedEqual(order[q]) {
					ref = order[q]
					break
				}
			}
		}

		if ref == none {
			blocks[bi].newNumber = -1
			blocks[bi].section = none
			blocks[bi].group = none
			blocks[bi].fixed = false
			continue
		}
		blocks[bi].newNumber = blocks[ref].newNumber
		blocks[bi].section = blocks[ref].section
		blocks[bi].group = blocks[ref].group
		blocks[bi].fixed = blocks[ref].fixed
	}
}

// sortBlocks stably sorts blocks by (newNumber, oldNumber), treating an
// absent value (none) as 0, and re-derives each group's blockStart,
// blockEnd and oldNumber from the resulting order (§4.8 end / §4.9 end).
func sortBlocks(blocks []block, groups []group) {
	key := func(b block) (int, int) {
		nn, on := b.newNumber, b.oldNumber
		if nn == none {
			nn = 0
		}
		if on == none {
			on = 0
		}
		return nn, on
	}
	sort.SliceStable(blocks, func(i, j int) bool {
		ni, oi := key(blocks[i])
		nj, oj := key(blocks[j])
		if ni != nj {
			return ni < nj
		}
		return oi < oj
	})
	for i := range blocks {
		blocks[i].newBlock = i
	}

	if groups == nil {
		return
	}
	byGroup := make(map[int][]int)
	for i, b := range blocks {
		if b.group == none {
			continue
		}
		byGroup[b.group] = append(byGroup[b.group], i)
	}
	for gi := range groups {
		idxs, ok := byGroup[gi]
		if !ok || len(idxs) == 0 {
			continue
		}
		min, max := idxs[0], idxs[0]
		for _, v := range idxs {
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
		groups[gi].blockStart = min
		groups[gi].blockEnd = max
		groups[gi].oldNumber = blocks[min].oldNumber
	}
}

// setInsGroups assigns `+` blocks to a group (§4.9): a `+` block whose
// newNumber falls inside the new-number range spanned by an existing
// group inherits that group's index and fixed flag; an isolated `+`
// block gets a brand new single-block group appended to groups.
func setInsGroups(blocks []block, groups []group) []group {
	type span struct{ loNew, hiNew int }
	spans := make([]span, len(groups))
	for gi, g := range groups {
		lo, hi := -1, -1
		for bi := g.blockStart; bi <= g.blockEnd && bi < len(blocks); bi++ {
			if blocks[bi].newNumber == none {
				continue
			}
			if lo == -1 || blocks[bi].newNumber < lo {
				lo = blocks[bi].newNumber
			}
			if blocks[bi].newNumber > hi {
				hi = blocks[bi].newNumber
			}
		}
		spans[gi] = span{lo, hi}
	}

	for bi := range blocks {
		if blocks[bi].typ != blockInsert {
			continue
		}
		nn := blocks[bi].newNumber
		assigned := false
		for gi, sp := range spans {
			if sp.loNew == -1 {
				continue
			}
			if nn >= sp.loNew && nn <= sp.hiNew {
				blocks[bi].group = gi
				blocks[bi].fixed = groups[gi].fixed
				assigned = true
				break
			}
		}
		if assigned {
			continue
		}
		groups = append(groups, group{
			oldNumber:  none,
			blockStart: bi,
			blockEnd:   bi,
			words:      blocks[bi].words,
			chars:      blocks[bi].chars,
			maxWords:   blocks[bi].words,
			fixed:      true,
			movedFrom:  none,
		})
		blocks[bi].group = len(groups) - 1
		blocks[bi].fixed = true
	}

	return groups
}
