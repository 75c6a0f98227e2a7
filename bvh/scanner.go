package bvh

import (
	"math"
	"strings"
)

// scanner is a cursor over an immutable text buffer. The cursor only
// moves forward; primitives that fail rewind to where they started so
// the reported offset matches the document position.
type scanner struct {
	buf string
	pos int
}

// foldChar uppercases letters and folds tab/newline to a space for
// case-insensitive keyword comparison.
func foldChar(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	if c == '\t' || c == '\n' || c == '\r' {
		return ' '
	}
	return c
}

func isInlineSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r'
}

func isSpace(c byte) bool {
	return isInlineSpace(c) || c == '\n'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func (s *scanner) peek() (byte, bool) {
	if s.pos >= len(s.buf) {
		return 0, false
	}
	return s.buf[s.pos], true
}

// expectLiteral consumes text at the cursor, comparing case-insensitively.
// On a mismatch the cursor is fully rewound.
func (s *scanner) expectLiteral(text string) bool {
	start := s.pos
	for i := 0; i < len(text); i++ {
		c, ok := s.peek()
		if !ok || foldChar(c) != foldChar(text[i]) {
			s.pos = start
			return false
		}
		s.pos++
	}
	return true
}

func (s *scanner) skipWhitespace() {
	for {
		c, ok := s.peek()
		if !ok || !isSpace(c) {
			return
		}
		s.pos++
	}
}

func (s *scanner) skipInlineWhitespace() {
	for {
		c, ok := s.peek()
		if !ok || !isInlineSpace(c) {
			return
		}
		s.pos++
	}
}

// expectNewline skips inline whitespace, then requires at least one
// newline character.
func (s *scanner) expectNewline() bool {
	s.skipInlineWhitespace()
	if c, ok := s.peek(); !ok || c != '\n' {
		return false
	}
	for {
		c, ok := s.peek()
		if !ok || !isSpace(c) {
			return true
		}
		s.pos++
	}
}

// readLineString accumulates characters up to the end of the line and
// trims surrounding whitespace. An empty result is a failure.
func (s *scanner) readLineString() (string, bool) {
	start := s.pos
	for {
		c, ok := s.peek()
		if !ok || c == '\n' {
			break
		}
		s.pos++
	}
	str := strings.TrimSpace(s.buf[start:s.pos])
	if str == "" {
		s.pos = start
		return "", false
	}
	return str, true
}

// readInt parses an optionally signed decimal integer. On failure the
// returned value is the sentinel -1; callers must branch on ok, never
// on the value, since -1 is also a valid parse result.
func (s *scanner) readInt() (int, bool) {
	start := s.pos
	sign := 1
	if c, ok := s.peek(); ok && (c == '+' || c == '-') {
		if c == '-' {
			sign = -1
		}
		s.pos++
	}
	v := 0
	digits := 0
	for {
		c, ok := s.peek()
		if !ok || !isDigit(c) {
			break
		}
		v = v*10 + int(c-'0')
		digits++
		s.pos++
	}
	if digits == 0 {
		s.pos = start
		return -1, false
	}
	return v * sign, true
}

// readFloat parses an optionally signed decimal number. Both '.' and
// ',' are accepted as decimal separator. Fractional digits accumulate
// through a decaying 0.1 factor, so the usual binary rounding of
// decimal fractions applies. On failure it returns NaN.
func (s *scanner) readFloat() (float64, bool) {
	start := s.pos
	sign := 1.0
	if c, ok := s.peek(); ok && (c == '+' || c == '-') {
		if c == '-' {
			sign = -1
		}
		s.pos++
	}
	v := 0.0
	digits := 0
	for {
		c, ok := s.peek()
		if !ok || !isDigit(c) {
			break
		}
		v = v*10 + float64(c-'0')
		digits++
		s.pos++
	}
	if c, ok := s.peek(); ok && (c == '.' || c == ',') {
		s.pos++
		factor := 0.1
		for i := 0; ; i++ {
			c, ok := s.peek()
			if !ok || !isDigit(c) {
				break
			}
			if i < 128 {
				v += float64(c-'0') * factor
				factor *= 0.1
				digits++
			}
			s.pos++
		}
	}
	if digits == 0 {
		s.pos = start
		return math.NaN(), false
	}
	return v * sign, true
}

// readChannelToken recognizes an axis letter followed by "position" or
// "rotation", all case-insensitive.
func (s *scanner) readChannelToken() (ChannelKind, bool) {
	start := s.pos
	c, ok := s.peek()
	if !ok {
		return 0, false
	}
	var kind ChannelKind
	switch foldChar(c) {
	case 'X':
		kind = Xposition
	case 'Y':
		kind = Yposition
	case 'Z':
		kind = Zposition
	default:
		return 0, false
	}
	s.pos++
	c, ok = s.peek()
	if !ok {
		s.pos = start
		return 0, false
	}
	switch foldChar(c) {
	case 'P':
		if !s.expectLiteral("position") {
			s.pos = start
			return 0, false
		}
	case 'R':
		if !s.expectLiteral("rotation") {
			s.pos = start
			return 0, false
		}
		kind += 3
	default:
		s.pos = start
		return 0, false
	}
	return kind, true
}

func (s *scanner) parseError(expected string) *ParseError {
	return &ParseError{
		Offset:   s.pos,
		Expected: expected,
		Context:  contextAround(s.buf, s.pos),
	}
}

func (s *scanner) numericError(expected string) *NumericParseError {
	return &NumericParseError{ParseError{
		Offset:   s.pos,
		Expected: expected,
		Context:  contextAround(s.buf, s.pos),
	}}
}
