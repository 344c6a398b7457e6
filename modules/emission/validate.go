package emission

import "regexp"

// Alphabet selects the character set accepted by LettersOnly.
type Alphabet int

const (
	// CyrillicAndLatin accepts both alphabets plus whitespace.
	CyrillicAndLatin Alphabet = iota
	// LatinOnly accepts latin letters plus whitespace.
	LatinOnly
)

var (
	reCyrillicLatin = regexp.MustCompile(`^[A-Za-zА-Яа-яЁё\s]+$`)
	reLatin         = regexp.MustCompile(`^[A-Za-z\s]+$`)
	reInteger       = regexp.MustCompile(`^\d+$`)
	reDecimal       = regexp.MustCompile(`^\d+(\.\d+)?$`)
)

// LettersOnly reports whether the entire text consists of letters of the
// chosen alphabet and whitespace.
func LettersOnly(text string, alphabet Alphabet) bool {
	if text == "" {
		return false
	}
	if alphabet == LatinOnly {
		return reLatin.MatchString(text)
	}
	return reCyrillicLatin.MatchString(text)
}

// IsInteger reports whether text is ASCII digits only: no sign, no separators.
func IsInteger(text string) bool {
	return reInteger.MatchString(text)
}

// IsDecimal reports whether text matches digits with an optional fraction.
func IsDecimal(text string) bool {
	return reDecimal.MatchString(text)
}
