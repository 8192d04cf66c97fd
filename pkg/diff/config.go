package diff

import "fmt"

// Options configures a single Diff call. The zero value is not valid;
// use DefaultOptions to get the documented defaults and override only
// what's needed.
type Options struct {
	// FullDiff disables clipping (§4.11) when true: the whole unchanged
	// context is emitted instead of being elided.
	FullDiff bool
	// CharDiff enables character-level refinement (§4.4).
	CharDiff bool
	// RepeatedDiff re-runs the symbol linker with an empty table after
	// the first pass, to catch cross-over duplicates a single global
	// table would mask.
	RepeatedDiff bool
	// RecursiveDiff recurses the symbol linker into unresolved gaps.
	RecursiveDiff bool
	// RecursionMax bounds recursion depth for RecursiveDiff.
	RecursionMax int
	// UnlinkBlocks enables the block unlinker (§4.7).
	UnlinkBlocks bool
	// UnlinkMax bounds the number of unlink cycles.
	UnlinkMax int
	// BlockMinLength is the minimum number of real words an anchor block
	// needs to count toward "unique enough" block detection.
	BlockMinLength int
	// StripTrailingNewline strips one matching trailing newline from
	// both inputs before diffing, if both have one.
	StripTrailingNewline bool

	// Clip* mirror the reference implementation's clipping thresholds,
	// all measured in characters unless noted.
	ClipHeadingLeft      int
	ClipHeadingRight     int
	ClipParagraphLeftMax int
	ClipParagraphLeftMin int
	ClipParagraphRightMax int
	ClipParagraphRightMin int
	ClipLineLeftMax      int
	ClipLineLeftMin      int
	ClipLineRightMax     int
	ClipLineRightMin     int
	ClipBlankLeftMax     int
	ClipBlankLeftMin     int
	ClipBlankRightMax    int
	ClipBlankRightMin    int
	ClipCharsLeft        int
	ClipCharsRight       int
	ClipLinesRightMax    int
	ClipLinesLeftMax     int
	ClipSkipLines        int
	ClipSkipChars        int

	// UnitTesting runs the reassembly self-check described in §4.13/§8
	// and populates Result.Error on mismatch instead of aborting. Debug
	// and Timer are accepted but have no effect: Diff never reads them.
	Debug       bool
	Timer       bool
	UnitTesting bool
}

// DefaultOptions returns the documented default configuration (§6).
func DefaultOptions() Options {
	return Options{
		FullDiff:             false,
		CharDiff:             true,
		RepeatedDiff:         true,
		RecursiveDiff:        true,
		RecursionMax:         10,
		UnlinkBlocks:         true,
		UnlinkMax:            5,
		BlockMinLength:       3,
		StripTrailingNewline: true,

		ClipHeadingLeft:       1500,
		ClipHeadingRight:      1500,
		ClipParagraphLeftMax:  1500,
		ClipParagraphLeftMin:  500,
		ClipParagraphRightMax: 1500,
		ClipParagraphRightMin: 500,
		ClipLineLeftMax:       1000,
		ClipLineLeftMin:       500,
		ClipLineRightMax:      1000,
		ClipLineRightMin:      500,
		ClipBlankLeftMax:      1000,
		ClipBlankLeftMin:      500,
		ClipBlankRightMax:     1000,
		ClipBlankRightMin:     500,
		ClipCharsLeft:         500,
		ClipCharsRight:        500,
		ClipLinesRightMax:     10,
		ClipLinesLeftMax:      10,
		ClipSkipLines:         5,
		ClipSkipChars:         1000,
	}
}

// ConfigurationError is returned by Diff when an Options value is
// out of range (§7).
type ConfigurationError struct {
	Field string
	Value int
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("diff: configuration error: %s=%d is out of range", e.Field, e.Value)
}

func (o Options) validate() error {
	switch {
	case o.RecursionMax < 0:
		return &ConfigurationError{"RecursionMax", o.RecursionMax}
	case o.UnlinkMax < 0:
		return &ConfigurationError{"UnlinkMax", o.UnlinkMax}
	case o.BlockMinLength < 0:
		return &ConfigurationError{"BlockMinLength", o.BlockMinLength}
	case o.ClipSkipChars < 0:
		return &ConfigurationError{"ClipSkipChars", o.ClipSkipChars}
	case o.ClipSkipLines < 0:
		return &ConfigurationError{"ClipSkipLines", o.ClipSkipLines}
	}
	return nil
}
