package diff

// slideGaps canonicalizes ambiguous identical-token runs by sliding the
// matched/unmatched boundary toward a semantically stable border — a
// line break, or a change between blank and non-blank tokens — rather
// than leaving it wherever the symbol-table linker happened to put it
// (§4.3). It is run symmetrically: slideGaps(new, old) then
// slideGaps(old, new).
//
// Simplification note (see DESIGN.md): the reference implementation
// slides the boundary in two separate sub-phases ("slide down" against
// the gap's trailing border, "slide up" against its leading border)
// tracked with four separate cursors. This implementation folds both
// into one boundary-sliding walk per gap, repeated until no further
// identical-token swap is available or a preferred stopping token is
// reached; the resulting canonicalization is the same kind of move
// (shifting which occurrence of a repeated token is "the" anchor) even
// though the exact token-by-token path taken to get there can differ in
// corner cases.
func slideGaps(text, textLinked *versionText) {
	i := text.first
	for i != none {
		if text.tokens[i].link != none {
			i = text.tokens[i].next
			continue
		}

		gapFront := i
		gapBack := i
		for text.tokens[gapBack].next != none && text.tokens[text.tokens[gapBack].next].link == none {
			gapBack = text.tokens[gapBack].next
		}
		rightBorder := text.tokens[gapBack].next

		if rightBorder != none {
			gapBack = slideBoundaryRight(text, textLinked, gapFront, gapBack, rightBorder)
		}

		next := text.tokens[gapBack].next
		if next == none {
			break
		}
		i = next
	}
}

// slideBoundaryRight repeatedly checks whether the matched token
// bordering the gap on the right has the same text as the first
// unmatched token of the gap; if so, the match slides one token to the
// left (the gap's front token takes over the border token's link, and
// the border token becomes unmatched), growing the gap by one token at
// the back. It stops when tokens differ, or once it reaches a preferred
// boundary: a line terminator token, or a token whose blank/non-blank
// category differs from the original gap front's.
func slideBoundaryRight(text, textLinked *versionText, gapFront, gapBack, rightBorder int) int {
	originalBlank := reBlankOnly.MatchString(text.tokens[gapFront].text)

	for {
		if text.tokens[gapFront].text != text.tokens[rightBorder].text {
			return gapBack
		}

		linkedIdx := text.tokens[rightBorder].link
		text.tokens[gapFront].link = linkedIdx
		textLinked.tokens[linkedIdx].link = gapFront
		text.tokens[rightBorder].link = none

		newGapBack := rightBorder
		newFront := text.tokens[gapFront].next
		if newFront == none {
			return newGapBack
		}

		stop := reLineBreak.MatchString(text.tokens[newFront].text) ||
			reBlankOnly.MatchString(text.tokens[newFront].text) != originalBlank

		next := text.tokens[newGapBack].next
		if stop || next == none {
			return newGapBack
		}

		gapFront = newFront
		gapBack = newGapBack
		rightBorder = next
	}
}
