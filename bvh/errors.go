package bvh

import "fmt"

// ParseError is a grammar violation at a known byte offset. The whole
// parse aborts on the first one; there is no partial-document recovery.
type ParseError struct {
	Offset   int
	Expected string
	Context  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("bvh: expected %s at offset %d near %q", e.Expected, e.Offset, e.Context)
}

// NumericParseError is a malformed integer or float at a known position.
type NumericParseError struct {
	ParseError
}

const contextWindow = 30

// contextAround extracts a bounded window of buf centered on pos.
func contextAround(buf string, pos int) string {
	lo := pos - contextWindow/2
	if lo < 0 {
		lo = 0
	}
	hi := lo + contextWindow
	if hi > len(buf) {
		hi = len(buf)
	}
	return buf[lo:hi]
}
