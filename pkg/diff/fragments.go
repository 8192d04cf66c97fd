package diff

import "sort"

// getDiffFragments implements §4.12: walk groups in blockStart order,
// emitting a fragment per block (synthesizing moved-block marks and
// start/end wrappers for non-fixed groups), then merges adjacent
// same-(type,color) fragments and wraps the whole stream in the
// outermost container.
func getDiffFragments(blocks []block, groups []group, opts Options) []Fragment {
	order := make([]int, len(groups))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return groups[order[a]].blockStart < groups[order[b]].blockStart })
	orderPos := make(map[int]int, len(order))
	for p, gi := range order {
		orderPos[gi] = p
	}

	markerGroupOf := make(map[int]int, len(groups))
	for _, b := range blocks {
		if b.typ == blockMark && b.moved != none {
			markerGroupOf[b.moved] = b.group
		}
	}

	var frags []Fragment
	for _, gi := range order {
		g := groups[gi]
		moving := g.color != 0
		if moving {
			dir := FragmentMoveStartRight
			if markerGi, ok := markerGroupOf[gi]; ok && orderPos[markerGi] < orderPos[gi] {
				dir = FragmentMoveStartLeft
			}
			frags = append(frags, Fragment{Type: dir, Color: g.color})
		}

		for bi := g.blockStart; bi <= g.blockEnd && bi < len(blocks); bi++ {
			b := blocks[bi]
			switch b.typ {
			case blockEqual:
				frags = append(frags, Fragment{Type: FragmentEqual, Text: b.text, Color: g.color})
			case blockDelete:
				frags = append(frags, Fragment{Type: FragmentDelete, Text: b.text, Color: g.color})
			case blockInsert:
				frags = append(frags, Fragment{Type: FragmentInsert, Text: b.text, Color: g.color})
			case blockMark:
				text, color := markText(blocks, groups, b.moved)
				dir := FragmentMarkRight
				if pos, ok := orderPos[b.moved]; ok && pos < orderPos[gi] {
					dir = FragmentMarkLeft
				}
				frags = append(frags, Fragment{Type: dir, Text: text, Color: color})
			}
		}

		if moving {
			frags = append(frags, Fragment{Type: FragmentMoveEnd, Color: g.color})
		}
	}

	frags = clipDiffFragments(frags, opts)
	frags = mergeAdjacentFragments(frags)

	out := make([]Fragment, 0, len(frags)+4)
	out = append(out, Fragment{Type: FragmentContainerOpen})
	out = append(out, Fragment{Type: FragmentGroupOpen})
	out = append(out, frags...)
	out = append(out, Fragment{Type: FragmentGroupClose})
	out = append(out, Fragment{Type: FragmentContainerClose})
	return out
}

// markText concatenates the `=`/`-` block text of the referenced moved
// group, for synthesizing a `|` block's rendered text at emission time.
func markText(blocks []block, groups []group, movedGroup int) (string, int) {
	if movedGroup == none || movedGroup >= len(groups) {
		return "", 0
	}
	g := groups[movedGroup]
	var text string
	for bi := g.blockStart; bi <= g.blockEnd && bi < len(blocks); bi++ {
		switch blocks[bi].typ {
		case blockEqual, blockDelete:
			text += blocks[bi].text
		}
	}
	return text, g.color
}

// mergeAdjacentFragments merges consecutive fragments that share a
// (type, color) and both carry text, per §4.12.
func mergeAdjacentFragments(frags []Fragment) []Fragment {
	if len(frags) == 0 {
		return frags
	}
	out := make([]Fragment, 0, len(frags))
	out = append(out, frags[0])
	for _, f := range frags[1:] {
		last := &out[len(out)-1]
		if last.Type == f.Type && last.Color == f.Color && last.Text != "" && f.Text != "" {
			last.Text += f.Text
			continue
		}
		out = append(out, f)
	}
	return out
}
