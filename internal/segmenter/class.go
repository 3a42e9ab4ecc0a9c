// Package segmenter splits filenames into runs of characters that share a
// character class.
package segmenter

import "unicode"

// Class is the Unicode general category of a single character.
type Class uint8

const (
	Unassigned Class = iota // Cn, also used for bytes that are not valid UTF-8
	UppercaseLetter
	LowercaseLetter
	TitlecaseLetter
	ModifierLetter
	OtherLetter
	NonspacingMark
	SpacingMark
	EnclosingMark
	DecimalDigit
	LetterNumber
	OtherNumber
	ConnectorPunctuation
	DashPunctuation
	OpenPunctuation
	ClosePunctuation
	InitialPunctuation
	FinalPunctuation
	OtherPunctuation
	MathSymbol
	CurrencySymbol
	ModifierSymbol
	OtherSymbol
	SpaceSeparator
	LineSeparator
	ParagraphSeparator
	Control
	Format
	PrivateUse
	Surrogate

	numClasses
)

var classCodes = [numClasses]string{
	Unassigned:           "Cn",
	UppercaseLetter:      "Lu",
	LowercaseLetter:      "Ll",
	TitlecaseLetter:      "Lt",
	ModifierLetter:       "Lm",
	OtherLetter:          "Lo",
	NonspacingMark:       "Mn",
	SpacingMark:          "Mc",
	EnclosingMark:        "Me",
	DecimalDigit:         "Nd",
	LetterNumber:         "Nl",
	OtherNumber:          "No",
	ConnectorPunctuation: "Pc",
	DashPunctuation:      "Pd",
	OpenPunctuation:      "Ps",
	ClosePunctuation:     "Pe",
	InitialPunctuation:   "Pi",
	FinalPunctuation:     "Pf",
	OtherPunctuation:     "Po",
	MathSymbol:           "Sm",
	CurrencySymbol:       "Sc",
	ModifierSymbol:       "Sk",
	OtherSymbol:          "So",
	SpaceSeparator:       "Zs",
	LineSeparator:        "Zl",
	ParagraphSeparator:   "Zp",
	Control:              "Cc",
	Format:               "Cf",
	PrivateUse:           "Co",
	Surrogate:            "Cs",
}

// String returns the two-letter general category code, e.g. "Lu".
func (c Class) String() string {
	if c >= numClasses {
		return "Cn"
	}
	return classCodes[c]
}

// ParseClass converts a two-letter category code back into a Class.
func ParseClass(code string) (Class, bool) {
	for i, s := range classCodes {
		if s == code {
			return Class(i), true
		}
	}
	return Unassigned, false
}

// asciiClasses is the fixed classification of the 7-bit range.
var asciiClasses = func() [128]Class {
	var t [128]Class
	for r := 0; r < 128; r++ {
		switch {
		case r < 0x20 || r == 0x7f:
			t[r] = Control
		case r == ' ':
			t[r] = SpaceSeparator
		case r >= '0' && r <= '9':
			t[r] = DecimalDigit
		case r >= 'A' && r <= 'Z':
			t[r] = UppercaseLetter
		case r >= 'a' && r <= 'z':
			t[r] = LowercaseLetter
		}
	}
	for _, r := range `!"#%&'*,./:;?@\` {
		t[r] = OtherPunctuation
	}
	for _, r := range "([{" {
		t[r] = OpenPunctuation
	}
	for _, r := range ")]}" {
		t[r] = ClosePunctuation
	}
	for _, r := range "+<=>|~" {
		t[r] = MathSymbol
	}
	t['$'] = CurrencySymbol
	t['-'] = DashPunctuation
	t['_'] = ConnectorPunctuation
	t['^'] = ModifierSymbol
	t['`'] = ModifierSymbol
	return t
}()

// categoryTables is consulted in order for runes outside ASCII.
var categoryTables = []struct {
	class Class
	table *unicode.RangeTable
}{
	{UppercaseLetter, unicode.Lu},
	{LowercaseLetter, unicode.Ll},
	{TitlecaseLetter, unicode.Lt},
	{ModifierLetter, unicode.Lm},
	{OtherLetter, unicode.Lo},
	{NonspacingMark, unicode.Mn},
	{SpacingMark, unicode.Mc},
	{EnclosingMark, unicode.Me},
	{DecimalDigit, unicode.Nd},
	{LetterNumber, unicode.Nl},
	{OtherNumber, unicode.No},
	{ConnectorPunctuation, unicode.Pc},
	{DashPunctuation, unicode.Pd},
	{OpenPunctuation, unicode.Ps},
	{ClosePunctuation, unicode.Pe},
	{InitialPunctuation, unicode.Pi},
	{FinalPunctuation, unicode.Pf},
	{OtherPunctuation, unicode.Po},
	{MathSymbol, unicode.Sm},
	{CurrencySymbol, unicode.Sc},
	{ModifierSymbol, unicode.Sk},
	{OtherSymbol, unicode.So},
	{SpaceSeparator, unicode.Zs},
	{LineSeparator, unicode.Zl},
	{ParagraphSeparator, unicode.Zp},
	{Control, unicode.Cc},
	{Format, unicode.Cf},
	{PrivateUse, unicode.Co},
	{Surrogate, unicode.Cs},
}

// Classify returns the general category of r. Every rune maps to exactly one
// class; runes outside every table are Unassigned.
func Classify(r rune) Class {
	if r >= 0 && r < 128 {
		return asciiClasses[r]
	}
	for _, ct := range categoryTables {
		if unicode.Is(ct.table, r) {
			return ct.class
		}
	}
	return Unassigned
}

// ClassSet is a set of classes. The zero value is the empty set.
type ClassSet uint32

// NewClassSet returns the set of classes of the given sample characters.
func NewClassSet(samples ...rune) ClassSet {
	var s ClassSet
	for _, r := range samples {
		s = s.With(Classify(r))
	}
	return s
}

// DefaultClassSet is {UppercaseLetter, DecimalDigit}.
func DefaultClassSet() ClassSet {
	return NewClassSet(DefaultSplitChars...)
}

// With returns a copy of s that also contains c.
func (s ClassSet) With(c Class) ClassSet {
	return s | 1<<c
}

// Contains reports whether c is in the set.
func (s ClassSet) Contains(c Class) bool {
	return s&(1<<c) != 0
}

// Len returns the number of classes in the set.
func (s ClassSet) Len() int {
	n := 0
	for c := Class(0); c < numClasses; c++ {
		if s.Contains(c) {
			n++
		}
	}
	return n
}

// Classes lists the members in category order.
func (s ClassSet) Classes() []Class {
	var out []Class
	for c := Class(0); c < numClasses; c++ {
		if s.Contains(c) {
			out = append(out, c)
		}
	}
	return out
}
