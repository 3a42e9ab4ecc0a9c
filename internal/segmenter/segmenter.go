package segmenter

import "unicode/utf8"

// DefaultSplitChars are the sample characters used when a caller supplies
// none: one uppercase letter and one digit.
var DefaultSplitChars = []rune{'A', '1'}

// Segment splits input into runs of characters. A segment boundary is placed
// before a character only when the previous character's class is one of the
// classes of splitChars and the two classes differ. A run that starts after a
// character outside the split classes keeps absorbing characters until a
// split-class character is followed by a class change.
//
// With no splitChars the DefaultSplitChars are used. Concatenating the
// result always reproduces input exactly; empty input yields nil.
//
//	"ABC123def" => ["ABC", "123", "def"]
//	"A1b2C3"    => ["A", "1", "b2", "C", "3"]
//	"a1B"       => ["a1", "B"]
func Segment(input string, splitChars ...rune) []string {
	if len(splitChars) == 0 {
		return SegmentBy(input, DefaultClassSet())
	}
	return SegmentBy(input, NewClassSet(splitChars...))
}

// SegmentBy is Segment with an explicit class set. An empty set never splits,
// so non-empty input comes back as a single segment.
func SegmentBy(input string, set ClassSet) []string {
	if input == "" {
		return nil
	}

	var segments []string
	start := 0
	prev, width := classWidthAt(input, 0)

	for i := width; i < len(input); i += width {
		var class Class
		class, width = classWidthAt(input, i)
		if set.Contains(prev) && class != prev {
			segments = append(segments, input[start:i])
			start = i
		}
		prev = class
	}

	return append(segments, input[start:])
}

// classWidthAt classifies the rune starting at byte offset i. Invalid UTF-8
// bytes are consumed one at a time and classified as Unassigned.
func classWidthAt(s string, i int) (Class, int) {
	r, width := utf8.DecodeRuneInString(s[i:])
	if r == utf8.RuneError && width <= 1 {
		return Unassigned, 1
	}
	return Classify(r), width
}

// ParseSplitChars turns a configuration string such as "A1" into the sample
// rune list accepted by Segment.
func ParseSplitChars(s string) []rune {
	if s == "" {
		return nil
	}
	return []rune(s)
}
