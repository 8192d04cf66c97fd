package diff

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// reconstruct rebuilds the old and new text from a fragment stream, the
// same way reassembles does, for use in test assertions.
func reconstruct(frags []Fragment) (old, new string) {
	var ob, nb strings.Builder
	inMoved := false
	for _, f := range frags {
		switch f.Type {
		case FragmentMoveStartLeft, FragmentMoveStartRight:
			inMoved = true
		case FragmentMoveEnd:
			inMoved = false
		case FragmentEqual:
			if !inMoved {
				ob.WriteString(f.Text)
			}
			nb.WriteString(f.Text)
		case FragmentDelete:
			if !inMoved {
				ob.WriteString(f.Text)
			}
		case FragmentInsert:
			nb.WriteString(f.Text)
		case FragmentMarkLeft, FragmentMarkRight:
			ob.WriteString(f.Text)
		}
	}
	return ob.String(), nb.String()
}

func TestDiffIdenticalText(t *testing.T) {
	opts := DefaultOptions()
	opts.UnitTesting = true

	res, err := Diff("the quick brown fox", "the quick brown fox", opts)
	require.NoError(t, err)
	assert.False(t, res.Error)

	require.Len(t, res.Fragments, 5)
	assert.Equal(t, FragmentContainerOpen, res.Fragments[0].Type)
	assert.Equal(t, FragmentGroupOpen, res.Fragments[1].Type)
	assert.Equal(t, FragmentEqual, res.Fragments[2].Type)
	assert.Equal(t, "the quick brown fox", res.Fragments[2].Text)
	assert.Equal(t, FragmentGroupClose, res.Fragments[3].Type)
	assert.Equal(t, FragmentContainerClose, res.Fragments[4].Type)
}

func TestDiffWordInsertion(t *testing.T) {
	opts := DefaultOptions()
	opts.UnitTesting = true

	res, err := Diff("hello world", "hello brave world", opts)
	require.NoError(t, err)
	assert.False(t, res.Error)

	old, new := reconstruct(res.Fragments)
	assert.Equal(t, "hello world", old)
	assert.Equal(t, "hello brave world", new)

	var sawInsert bool
	for _, f := range res.Fragments {
		if f.Type == FragmentInsert && strings.Contains(f.Text, "brave") {
			sawInsert = true
		}
	}
	assert.True(t, sawInsert, "expected an insert fragment containing \"brave\"")
}

func TestDiffBlockSwap(t *testing.T) {
	opts := DefaultOptions()
	opts.UnitTesting = true

	res, err := Diff("A B C", "C B A", opts)
	require.NoError(t, err)
	assert.False(t, res.Error)

	old, new := reconstruct(res.Fragments)
	assert.Equal(t, "A B C", old)
	assert.Equal(t, "C B A", new)

	var moveStarts, moveEnds int
	colors := map[int]bool{}
	for _, f := range res.Fragments {
		switch f.Type {
		case FragmentMoveStartLeft, FragmentMoveStartRight:
			moveStarts++
			colors[f.Color] = true
		case FragmentMoveEnd:
			moveEnds++
		}
	}
	assert.Equal(t, moveStarts, moveEnds)
	assert.NotEmpty(t, colors, "expected at least one moved-block color to be assigned")
}

func TestDiffCharSplit(t *testing.T) {
	opts := DefaultOptions()
	opts.UnitTesting = true

	res, err := Diff("cat", "c-a-t", opts)
	require.NoError(t, err)
	assert.False(t, res.Error)

	old, new := reconstruct(res.Fragments)
	assert.Equal(t, "cat", old)
	assert.Equal(t, "c-a-t", new)

	var sawEqualSingleChar bool
	for _, f := range res.Fragments {
		if f.Type == FragmentEqual && (f.Text == "c" || f.Text == "a" || f.Text == "t") {
			sawEqualSingleChar = true
		}
	}
	assert.True(t, sawEqualSingleChar, "expected the unchanged letters to survive as equal fragments")
}

func TestDiffParagraphLevel(t *testing.T) {
	opts := DefaultOptions()
	opts.UnitTesting = true

	res, err := Diff("para1\n\npara2", "para1\n\nPARA2", opts)
	require.NoError(t, err)
	assert.False(t, res.Error)

	old, new := reconstruct(res.Fragments)
	assert.Equal(t, "para1\n\npara2", old)
	assert.Equal(t, "para1\n\nPARA2", new)

	var sawEqualPara1 bool
	for _, f := range res.Fragments {
		if f.Type == FragmentEqual && strings.Contains(f.Text, "para1") {
			sawEqualPara1 = true
		}
	}
	assert.True(t, sawEqualPara1)
}

func TestDiffLongUnchangedClipping(t *testing.T) {
	opts := DefaultOptions()
	opts.UnitTesting = true

	longRun := strings.Repeat("the quick brown fox jumps over the lazy dog.\n", 200)
	oldText := "start of old text\n" + longRun + "end of old text"
	newText := "start of new text\n" + longRun + "end of new text"

	res, err := Diff(oldText, newText, opts)
	require.NoError(t, err)
	assert.False(t, res.Error)

	var sawOmission bool
	for _, f := range res.Fragments {
		switch f.Type {
		case FragmentOmitChar, FragmentOmitBlankLeft, FragmentOmitBlankRight:
			sawOmission = true
		}
	}
	assert.True(t, sawOmission, "expected a long identical run to be clipped with an omission marker")
}

func TestDiffFullDiffDisablesClipping(t *testing.T) {
	opts := DefaultOptions()
	opts.FullDiff = true

	longRun := strings.Repeat("the quick brown fox jumps over the lazy dog.\n", 200)
	oldText := "start of old text\n" + longRun + "end of old text"
	newText := "start of new text\n" + longRun + "end of new text"

	res, err := Diff(oldText, newText, opts)
	require.NoError(t, err)

	for _, f := range res.Fragments {
		assert.NotEqual(t, FragmentOmitChar, f.Type)
	}
}

func TestDiffRejectsInvalidOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.RecursionMax = -1

	_, err := Diff("a", "b", opts)
	require.Error(t, err)

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "RecursionMax", cfgErr.Field)
}

func TestDiffStripsMatchingTrailingNewline(t *testing.T) {
	opts := DefaultOptions()
	opts.UnitTesting = true

	res, err := Diff("hello\n", "hello\n", opts)
	require.NoError(t, err)
	assert.False(t, res.Error)

	require.Len(t, res.Fragments, 5)
	assert.Equal(t, "hello", res.Fragments[2].Text)
}

func TestSplitSentences(t *testing.T) {
	got := splitSentences("One. Two! Three?")
	assert.Equal(t, []string{"One.", " Two!", " Three?"}, got)
}

func TestSplitWords(t *testing.T) {
	got := splitWords("don't stop")
	assert.Contains(t, got, "don't")
}
