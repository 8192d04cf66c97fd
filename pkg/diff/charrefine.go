package diff

import "strings"

// gapPair is a maximal unmatched run, paired across both versions, as
// produced by collectGapPairs.
type gapPair struct {
	newToks []int
	oldToks []int
}

// collectGapPairs walks the new arena and pairs each maximal unmatched
// run of new tokens with the corresponding run of old tokens bounded by
// the same anchors, mirroring the cursor-tracking approach used by
// recurseGaps (§4.4 operates on the same notion of "gap" as §4.2).
func collectGapPairs(newV, oldV *versionText) []gapPair {
	var gaps []gapPair
	var curNew []int
	oldCursor := oldV.first

	flush := func(oldEnd int) {
		if len(curNew) == 0 {
			return
		}
		var curOld []int
		for j := oldCursor; j != none && j != oldEnd; j = oldV.tokens[j].next {
			curOld = append(curOld, j)
		}
		gaps = append(gaps, gapPair{curNew, curOld})
		curNew = nil
	}

	i := newV.first
	for i != none {
		t := newV.tokens[i]
		if t.link == none {
			curNew = append(curNew, i)
		} else {
			flush(t.link)
			oldCursor = oldV.tokens[t.link].next
		}
		i = t.next
	}
	flush(none)

	return gaps
}

// charRefine implements §4.4: for each unmatched gap, decide whether to
// refine it down to character level, apply that refinement, then re-run
// the linker and gap slider at character granularity.
func charRefine(newV, oldV *versionText, opts Options) {
	if !opts.CharDiff {
		return
	}

	for _, g := range collectGapPairs(newV, oldV) {
		if len(g.newToks) == 0 || len(g.oldToks) == 0 {
			continue
		}
		if !shouldCharSplit(newV, oldV, g) {
			continue
		}
		applyCharSplit(newV, oldV, g)
	}

	calculateDiff(newV, oldV, newV.first, newV.last, oldV.first, oldV.last, opts, 0, false)
	slideGaps(newV, oldV)
	slideGaps(oldV, newV)
}

func shouldCharSplit(newV, oldV *versionText, g gapPair) bool {
	if len(g.newToks) != len(g.oldToks) {
		var one, three []int
		var oneIsNew bool
		switch {
		case len(g.newToks) == 1 && len(g.oldToks) == 3:
			one, three, oneIsNew = g.newToks, g.oldToks, true
		case len(g.oldToks) == 1 && len(g.newToks) == 3:
			one, three, oneIsNew = g.oldToks, g.newToks, false
		default:
			return false
		}
		singleText := sideText(newV, oldV, one[0], oneIsNew)
		firstText := sideText(newV, oldV, three[0], !oneIsNew)
		lastText := sideText(newV, oldV, three[2], !oneIsNew)
		return strings.HasPrefix(singleText, firstText) && strings.HasSuffix(singleText, lastText)
	}

	for i := range g.newToks {
		nt := newV.tokens[g.newToks[i]].text
		ot := oldV.tokens[g.oldToks[i]].text
		if nt == ot {
			continue
		}
		nr, or := []rune(nt), []rune(ot)
		shorter := len(nr)
		if len(or) < shorter {
			shorter = len(or)
		}
		if shorter == 0 {
			continue
		}
		l := commonPrefixRunes(nr, or)
		r := commonSuffixRunes(nr, or)

		if len(nr) != len(or) {
			longerContainsShorter := strings.Contains(nt, ot) || strings.Contains(ot, nt)
			if l+r != shorter && !longerContainsShorter && l < shorter/2 && r < shorter/2 {
				return false
			}
			continue
		}

		identical := 0
		for k := range nr {
			if nr[k] == or[k] {
				identical++
			}
		}
		if float64(identical)/float64(len(nr)) < 0.49 {
			return false
		}
	}
	return true
}

func sideText(newV, oldV *versionText, idx int, isNew bool) string {
	if isNew {
		return newV.tokens[idx].text
	}
	return oldV.tokens[idx].text
}

func commonPrefixRunes(a, b []rune) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}

func commonSuffixRunes(a, b []rune) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[len(a)-1-i] == b[len(b)-1-i] {
		i++
	}
	return i
}

// applyCharSplit executes the decision made by shouldCharSplit: walk
// both sides, link identical tokens in place (to confine character
// splitting to the words that actually changed) and splitText('character')
// everything else.
func applyCharSplit(newV, oldV *versionText, g gapPair) {
	if len(g.newToks) != len(g.oldToks) {
		for _, idx := range g.newToks {
			newV.splitText(levelCharacter, idx)
		}
		for _, idx := range g.oldToks {
			oldV.splitText(levelCharacter, idx)
		}
		return
	}

	for i := range g.newToks {
		ni, oi := g.newToks[i], g.oldToks[i]
		if newV.tokens[ni].text == oldV.tokens[oi].text {
			newV.tokens[ni].link = oi
			oldV.tokens[oi].link = ni
			continue
		}
		newV.splitText(levelCharacter, ni)
		oldV.splitText(levelCharacter, oi)
	}
}
