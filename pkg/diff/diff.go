// Package diff implements a visual, inline-style difference engine
// with block-move detection, modeled on the token-linking approach used
// by MediaWiki's inline diff view: a progressive, multi-granularity
// tokenizer, a symbol-table-based unique-anchor linker, a character
// refiner for partially changed words, and a block/group assembler
// that recognizes when a chunk of text was moved rather than
// deleted-and-reinserted elsewhere.
//
// Diff is the package's single entry point. Everything else here is
// plumbing: strings in, a flat stream of Fragment values out.
package diff

import "strings"

// Result is returned by Diff.
type Result struct {
	// Fragments is the rendered fragment stream (§6): the sole data
	// interface consumers should use to build a visual diff.
	Fragments []Fragment
	// Error is set when UnitTesting is enabled and the fragment stream,
	// built without clipping, failed to reassemble into the original
	// inputs (§4.13, §7 DiffConsistencyError) — the stream is still usable.
	Error bool
}

// Diff computes the visual diff between oldText and newText per opts.
// It never mutates its inputs; the only error it can return is a
// configuration error raised at construction.
func Diff(oldText, newText string, opts Options) (Result, error) {
	if err := opts.validate(); err != nil {
		return Result{}, err
	}

	if opts.StripTrailingNewline {
		oldText, newText = stripMatchingTrailingNewline(oldText, newText)
	}

	if oldText == newText {
		return Result{Fragments: trivialEqualFragments(newText)}, nil
	}

	newV := newVersionText(newText)
	oldV := newVersionText(oldText)
	newV.wordParse()
	oldV.wordParse()

	newV.splitText(levelParagraph, none)
	oldV.splitText(levelParagraph, none)

	for _, level := range []splitLevel{levelLine, levelSentence, levelChunk, levelWord} {
		calculateDiff(newV, oldV, newV.first, newV.last, oldV.first, oldV.last, opts, 0, true)
		slideGaps(newV, oldV)
		slideGaps(oldV, newV)
		newV.splitRefine(level)
		oldV.splitRefine(level)
	}

	calculateDiff(newV, oldV, newV.first, newV.last, oldV.first, oldV.last, opts, 0, true)
	slideGaps(newV, oldV)
	slideGaps(oldV, newV)

	charRefine(newV, oldV, opts)

	newV.renumber()
	oldV.renumber()

	blocks := getSameBlocks(newV, oldV)
	sections := getSections(blocks)
	groups := getGroups(blocks, sections)

	for cycle := 0; cycle < opts.UnlinkMax; cycle++ {
		if !unlinkBlocks(newV, oldV, blocks, groups, opts) {
			break
		}
		slideGaps(newV, oldV)
		slideGaps(oldV, newV)
		newV.renumber()
		oldV.renumber()
		blocks = getSameBlocks(newV, oldV)
		sections = getSections(blocks)
		groups = getGroups(blocks, sections)
	}

	path := findMaxPath(groups)
	markFixedGroups(groups, path)
	applyGroupFixed(blocks, groups)

	delBlocks := getDelBlocks(oldV)
	blocks = append(blocks, delBlocks...)
	positionDelBlocks(blocks)
	// A `-` block that positionDelBlocks could not attach to any `=`
	// block gets a group of its own, so that getDiffFragments emits it.
	for bi := range blocks {
		if blocks[bi].typ == blockDelete && blocks[bi].group == none {
			groups = append(groups, group{oldNumber: blocks[bi].oldNumber, blockStart: bi, blockEnd: bi, fixed: true, movedFrom: none})
			blocks[bi].group = len(groups) - 1
			blocks[bi].fixed = true
		}
	}
	sortBlocks(blocks, groups)

	insBlocks := getInsBlocks(newV)
	blocks = append(blocks, insBlocks...)
	sortBlocks(blocks, groups)
	groups = setInsGroups(blocks, groups)
	sortBlocks(blocks, groups)

	blocks, groups = insertMarks(blocks, groups)

	frags := getDiffFragments(blocks, groups, opts)

	result := Result{Fragments: frags}
	if opts.UnitTesting {
		// The self-check runs on the unclipped stream, since clipping
		// elides unchanged text on purpose.
		checkOpts := opts
		checkOpts.FullDiff = true
		result.Error = !reassembles(getDiffFragments(blocks, groups, checkOpts), oldText, newText)
	}
	return result, nil
}

// stripMatchingTrailingNewline strips one trailing newline from each of
// old and new, but only if both have one (§4.13).
func stripMatchingTrailingNewline(oldText, newText string) (string, string) {
	oldHas := strings.HasSuffix(oldText, "\n")
	newHas := strings.HasSuffix(newText, "\n")
	if oldHas && newHas {
		return oldText[:len(oldText)-1], newText[:len(newText)-1]
	}
	return oldText, newText
}

// trivialEqualFragments builds the container+group wrapper around a
// single equal fragment, for the old==new fast path (§4.13).
func trivialEqualFragments(text string) []Fragment {
	return []Fragment{
		{Type: FragmentContainerOpen},
		{Type: FragmentGroupOpen},
		{Type: FragmentEqual, Text: text},
		{Type: FragmentGroupClose},
		{Type: FragmentContainerClose},
	}
}

// reassembles implements the §8 unit-testing property: every `=`/`+`
// fragment's text, in order, reproduces newText (mark fragments are left
// out); every `=`/`-` fragment's text outside moved blocks (between
// `(<`/`(>` and `)`), plus the text of each mark (`<`/`>`) fragment at
// its original position, reproduces oldText.
func reassembles(frags []Fragment, oldText, newText string) bool {
	var oldBuf, newBuf strings.Builder
	inMoved := false
	for _, f := range frags {
		switch f.Type {
		case FragmentMoveStartLeft, FragmentMoveStartRight:
			inMoved = true
		case FragmentMoveEnd:
			inMoved = false
		case FragmentEqual:
			if !inMoved {
				oldBuf.WriteString(f.Text)
			}
			newBuf.WriteString(f.Text)
		case FragmentDelete:
			if !inMoved {
				oldBuf.WriteString(f.Text)
			}
		case FragmentInsert:
			newBuf.WriteString(f.Text)
		case FragmentMarkLeft, FragmentMarkRight:
			oldBuf.WriteString(f.Text)
		}
	}
	return oldBuf.String() == oldText && newBuf.String() == newText
}
