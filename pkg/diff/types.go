package diff

// none is the sentinel used in place of an absent arena index or link.
const none = -1

// splitLevel enumerates the six nested tokenization granularities of
// §4.1, ordered coarsest first.
type splitLevel int

const (
	levelParagraph splitLevel = iota
	levelLine
	levelSentence
	levelChunk
	levelWord
	levelCharacter
)

// token is a single arena entry. prev/next form a doubly linked list over
// the live tokens of one version; link points into the *other* version's
// arena, or is none.
type token struct {
	text   string
	prev   int
	next   int
	link   int
	number int
	unique bool
}

// versionText owns one side (old or new) of a diff: its original text,
// the token arena built and refined from it, and the word/chunk
// occurrence histogram used by the uniqueness test (§4.2.1).
type versionText struct {
	text   string
	tokens []token
	first  int
	last   int
	// words counts occurrences of "word" and "chunk" pattern matches.
	// Per §4.1 and §9 this is intentionally not split by pattern: a word
	// token and a chunk token with identical text contribute to the same
	// counter.
	words map[string]int
}

func newVersionText(text string) *versionText {
	return &versionText{
		text:  text,
		first: none,
		last:  none,
		words: make(map[string]int),
	}
}

// wordCount returns the occurrence count for w, or 0 if w was never
// observed. This is an explicit honoring of the reference
// implementation's fallthrough-lookup behavior (§9): unseen ⇒ 0, never
// an error.
func (v *versionText) wordCount(w string) int {
	return v.words[w]
}

// addToken appends a new token to the arena and returns its index. It
// does not stitch the token into the linked list; callers do that.
func (v *versionText) addToken(text string) int {
	v.tokens = append(v.tokens, token{text: text, prev: none, next: none, link: none})
	return len(v.tokens) - 1
}

// insertAfter stitches a freshly-added token (at index idx) into the
// linked list immediately after at (or at the very front if at==none).
func (v *versionText) insertAfter(at, idx int) {
	t := &v.tokens[idx]
	if at == none {
		t.next = v.first
		t.prev = none
		if v.first != none {
			v.tokens[v.first].prev = idx
		}
		v.first = idx
		if v.last == none {
			v.last = idx
		}
		return
	}
	nxt := v.tokens[at].next
	t.prev = at
	t.next = nxt
	v.tokens[at].next = idx
	if nxt != none {
		v.tokens[nxt].prev = idx
	} else {
		v.last = idx
	}
}

// renumber assigns strictly increasing `number` values along `next` from
// first to last, per the §3 invariant. Called once after final
// refinement.
func (v *versionText) renumber() {
	n := 0
	for i := v.first; i != none; i = v.tokens[i].next {
		v.tokens[i].number = n
		n++
	}
}

// blockType is the sum type for the final output unit (§3 Block).
type blockType uint8

const (
	blockEqual blockType = iota
	blockDelete
	blockInsert
	blockMark
)

func (t blockType) String() string {
	switch t {
	case blockEqual:
		return "="
	case blockDelete:
		return "-"
	case blockInsert:
		return "+"
	case blockMark:
		return "|"
	default:
		return "?"
	}
}

// block is the final output unit in new-text order (§3).
type block struct {
	oldBlock  int
	newBlock  int
	oldNumber int // none if absent
	newNumber int // none if absent
	oldStart  int
	count     int
	unique    bool
	words     int
	chars     int
	typ       blockType
	section   int
	group     int
	fixed     bool
	moved     int // index of the group this mark-block marks, or none
	text      string
}

// section is a maximal range of `=` blocks whose move-crossings stay
// inside the range (§3, §4.5).
type section struct {
	blockStart int
	blockEnd   int
}

// group is a run of `=` blocks consecutive in old-text order (§3, §4.5).
type group struct {
	oldNumber  int
	blockStart int
	blockEnd   int
	unique     bool
	maxWords   int
	words      int
	chars      int
	fixed      bool
	movedFrom  int // index of the mark-group representing this group's
	// origin, or none if this group is fixed/unmoved.
	color int
}

// FragmentType is the sum type for the typed fragment stream (§6). It is
// a defined type over the literal token strings of the external
// interface, rather than ad hoc strings scattered through the emitter.
type FragmentType string

const (
	FragmentContainerOpen  FragmentType = "{"
	FragmentContainerClose FragmentType = "}"
	FragmentGroupOpen      FragmentType = "["
	FragmentGroupClose     FragmentType = "]"
	FragmentGroupSeparator FragmentType = ","
	FragmentEqual          FragmentType = "="
	FragmentDelete         FragmentType = "-"
	FragmentInsert         FragmentType = "+"
	FragmentMoveStartLeft  FragmentType = "(<"
	FragmentMoveStartRight FragmentType = "(>"
	FragmentMoveEnd        FragmentType = ")"
	FragmentMarkLeft       FragmentType = "<"
	FragmentMarkRight      FragmentType = ">"
	FragmentOmitChar       FragmentType = "~"
	FragmentOmitBlankLeft  FragmentType = " ~"
	FragmentOmitBlankRight FragmentType = "~ "
)

// Fragment is one element of the engine's sole output interface (§6).
type Fragment struct {
	Text  string
	Color int
	Type  FragmentType
}

// symbolEntry is one hash-table slot of the symbol-table linker (§4.2):
// the last-seen token index in each version plus how many times that
// token text was seen unmatched on each side.
type symbolEntry struct {
	newCount int
	oldCount int
	newToken int
	oldToken int
}

// gap is a contiguous unresolved region bordered by linked tokens (or
// arena ends) on both sides (§3).
type gap struct {
	newFirst, newLast int
	oldFirst, oldLast int
	charSplit         bool
}
