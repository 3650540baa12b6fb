package ft8

import "strings"

// Text utilities for FT8/FT4 message packing and unpacking: character tables and
// the small string-manipulation helpers pack/unpack build on.

// CharTable identifies one of the fixed character alphabets used by Pack77/Unpack77.
type CharTable int

const (
	CharTableFull               CharTable = iota // space 0-9 A-Z + - . / ?  (A0, 42 chars)
	CharTableAlphanumSpace                       // space 0-9 A-Z           (A1, 37 chars)
	CharTableAlphanum                            // 0-9 A-Z                 (A2, 36 chars)
	CharTableLettersSpace                        // space A-Z               (A4, 27 chars)
	CharTableNumeric                             // 0-9                     (A3, 10 chars)
	CharTableAlphanumSpaceSlash                  // space 0-9 A-Z /         (38 chars, hashing)
)

func TrimFront(s string) string { return strings.TrimLeft(s, " ") }
func TrimBack(s string) string  { return strings.TrimRight(s, " ") }
func Trim(s string) string      { return strings.Trim(s, " ") }

func ToUpper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}

func IsDigit(c byte) bool  { return c >= '0' && c <= '9' }
func IsLetter(c byte) bool { return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') }
func IsSpace(c byte) bool  { return c == ' ' }

// FmtMsg uppercases a message and collapses runs of spaces into one, the
// canonicalization Pack77 expects its input already in.
func FmtMsg(msg string) string {
	var b strings.Builder
	lastSpace := false
	for i := 0; i < len(msg); i++ {
		c := msg[i]
		if c == ' ' {
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
			continue
		}
		b.WriteByte(ToUpper(c))
		lastSpace = false
	}
	return b.String()
}

// DDToInt parses a decimal integer (with optional leading +/-) from the first
// length bytes of s.
func DDToInt(s string, length int) int {
	if s == "" || length == 0 {
		return 0
	}
	negative := false
	i := 0
	if s[0] == '-' {
		negative = true
		i = 1
	} else if s[0] == '+' {
		i = 1
	}
	result := 0
	for i < length && i < len(s) {
		if !IsDigit(s[i]) {
			break
		}
		result = result*10 + int(s[i]-'0')
		i++
	}
	if negative {
		return -result
	}
	return result
}

// IntToDD formats value as a fixed-width decimal string, with a mandatory sign when
// fullSign is set.
func IntToDD(value, width int, fullSign bool) string {
	var b strings.Builder
	if value < 0 {
		b.WriteByte('-')
		value = -value
	} else if fullSign {
		b.WriteByte('+')
	}
	divisor := 1
	for i := 0; i < width-1; i++ {
		divisor *= 10
	}
	for divisor >= 1 {
		digit := value / divisor
		b.WriteByte('0' + byte(digit))
		value -= digit * divisor
		divisor /= 10
	}
	return b.String()
}

// Charn maps a numeric index to a character of the given alphabet. Inverse of Nchar.
func Charn(c int, table CharTable) byte {
	if table != CharTableAlphanum && table != CharTableNumeric {
		if c == 0 {
			return ' '
		}
		c--
	}
	if table != CharTableLettersSpace {
		if c < 10 {
			return '0' + byte(c)
		}
		c -= 10
	}
	if table != CharTableNumeric {
		if c < 26 {
			return 'A' + byte(c)
		}
		c -= 26
	}
	if table == CharTableFull {
		if c < 5 {
			return "+-./?"[c]
		}
	} else if table == CharTableAlphanumSpaceSlash {
		if c == 0 {
			return '/'
		}
	}
	return '_'
}

// Nchar maps a character to its index in the given alphabet, or -1 if absent.
// Inverse of Charn.
func Nchar(c byte, table CharTable) int {
	n := 0
	if table != CharTableAlphanum && table != CharTableNumeric {
		if c == ' ' {
			return 0
		}
		n++
	}
	if table != CharTableLettersSpace {
		if c >= '0' && c <= '9' {
			return n + int(c-'0')
		}
		n += 10
	}
	if table != CharTableNumeric {
		if c >= 'A' && c <= 'Z' {
			return n + int(c-'A')
		}
		n += 26
	}
	if table == CharTableFull {
		switch c {
		case '+':
			return n + 0
		case '-':
			return n + 1
		case '.':
			return n + 2
		case '/':
			return n + 3
		case '?':
			return n + 4
		}
	} else if table == CharTableAlphanumSpaceSlash {
		if c == '/' {
			return n + 0
		}
	}
	return -1
}

// CopyToken extracts the next whitespace-delimited token, returning it and the
// remainder of the string.
func CopyToken(s string, maxLength int) (token, remaining string) {
	s = TrimFront(s)
	if s == "" {
		return "", ""
	}
	idx := strings.IndexByte(s, ' ')
	if idx == -1 {
		if len(s) <= maxLength {
			return s, ""
		}
		return s[:maxLength], s[maxLength:]
	}
	if idx <= maxLength {
		return s[:idx], TrimFront(s[idx:])
	}
	return s[:maxLength], TrimFront(s[maxLength:])
}
