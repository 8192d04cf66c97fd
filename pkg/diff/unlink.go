package diff

// unlinkBlocks implements a single cycle of §4.7: weak anchor blocks
// (groups that never accumulated enough real words to be trustworthy)
// are unlinked so the linker gets another chance at a better match. It
// reports whether anything was unlinked this cycle.
//
// The caller (Diff) is responsible for the "up to unlinkMax cycles"
// part: after a cycle that reports true, it must re-slide gaps and
// recompute blocks/sections/groups from scratch before calling this
// again, since unlinking invalidates both (§4.5-§4.7). Calling this
// repeatedly against the same stale blocks/groups would be a no-op,
// since unlinked blocks are mutated to blockDelete in place and every
// later pass over them would just skip straight past.
func unlinkBlocks(newV, oldV *versionText, blocks []block, groups []group, opts Options) bool {
	if !opts.UnlinkBlocks {
		return false
	}

	globalMaxWords := 0
	for _, g := range groups {
		if g.maxWords > globalMaxWords {
			globalMaxWords = g.maxWords
		}
	}
	if globalMaxWords < opts.BlockMinLength {
		return false
	}

	changed := false
	for gi := range groups {
		g := groups[gi]
		if g.unique {
			continue
		}

		if g.maxWords < opts.BlockMinLength {
			for bi := g.blockStart; bi <= g.blockEnd; bi++ {
				if blocks[bi].typ != blockEqual {
					continue
				}
				unlinkBlockTokens(newV, oldV, &blocks[bi])
				changed = true
			}
			continue
		}

		for bi := g.blockStart; bi <= g.blockEnd; bi++ {
			if blocks[bi].typ != blockEqual || blocks[bi].unique {
				break
			}
			if blocks[bi].words > 1 {
				break
			}
			unlinkBlockTokens(newV, oldV, &blocks[bi])
			changed = true
		}
		for bi := g.blockEnd; bi >= g.blockStart; bi-- {
			if blocks[bi].typ != blockEqual || blocks[bi].unique {
				break
			}
			if blocks[bi].words > 1 {
				break
			}
			unlinkBlockTokens(newV, oldV, &blocks[bi])
			changed = true
		}
	}

	return changed
}

// unlinkBlockTokens clears the link field for every token belonging to
// block b, on both sides, and marks b as no longer present.
func unlinkBlockTokens(newV, oldV *versionText, b *block) {
	i := b.oldStart
	for n := 0; n < b.count && i != none; n++ {
		t := &oldV.tokens[i]
		if t.link != none {
			newV.tokens[t.link].link = none
			t.link = none
		}
		i = t.next
	}
	b.typ = blockDelete
	b.count = 0
}
