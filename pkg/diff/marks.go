package diff

import "sort"

// insertMarks implements §4.10: every group that survived the fixed
// path search as "not fixed" (ie. it was moved) gets a `|` placeholder
// block inserted at its original position, referencing a nearby fixed
// `=` block so the renderer can show where the moved text used to be.
// The moved group itself is assigned a moved-block color.
func insertMarks(blocks []block, groups []group) ([]block, []group) {
	order := make([]int, len(blocks))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ai, bi := blocks[order[a]], blocks[order[b]]
		ao, bo := ai.oldNumber, bi.oldNumber
		if ao == none {
			ao = 0
		}
		if bo == none {
			bo = 0
		}
		if ao != bo {
			return ao < bo
		}
		an, bn := ai.newNumber, bi.newNumber
		if an == none {
			an = 0
		}
		if bn == none {
			bn = 0
		}
		return an < bn
	})
	sortedPos := make(map[int]int, len(order))
	for p, bi := range order {
		sortedPos[bi] = p
	}
	isFixedEqual := func(bi int) bool {
		return blocks[bi].typ == blockEqual && blocks[bi].fixed
	}

	color := 0
	for gi := range groups {
		g := groups[gi]
		if g.fixed || g.oldNumber == none {
			continue
		}
		if g.blockStart >= len(blocks) {
			continue
		}

		bi := g.blockStart
		p, ok := sortedPos[bi]
		var ref int = none
		if ok {
			if p > 0 && isFixedEqual(order[p-1]) {
				ref = order[p-1]
			} else if p+1 < len(order) && isFixedEqual(order[p+1]) {
				ref = order[p+1]
			} else {
				for q := p - 1; q >= 0; q-- {
					if isFixedEqual(order[q]) {
						ref = order[q]
						break
					}
				}
			}
		}

		mark := block{
			oldNumber: g.oldNumber,
			newNumber: -1,
			oldStart:  none,
			typ:       blockMark,
			fixed:     true,
			moved:     gi,
			section:   none,
			group:     none,
		}
		if ref != none {
			mark.newNumber = blocks[ref].newNumber
			mark.section = blocks[ref].section
			mark.group = blocks[ref].group
		} else {
			groups = append(groups, group{
				oldNumber:  g.oldNumber,
				blockStart: len(blocks),
				blockEnd:   len(blocks),
				fixed:      true,
				movedFrom:  none,
			})
			mark.group = len(groups) - 1
		}

		color++
		groups[gi].color = color
		groups[gi].movedFrom = mark.group

		blocks = append(blocks, mark)
	}

	sortBlocks(blocks, groups)
	return blocks, groups
}
