package cidrlab

// ParseError is attributable to a single input line. Batch parsers collect
// one per rejected line and keep going.
type ParseError struct {
	Line   int
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return "line " + itoa(e.Line) + ": " + e.Input + ": " + e.Reason
	}
	return e.Input + ": " + e.Reason
}

// InvalidInput reports structurally valid values that violate an engine
// rule, e.g. mixed address widths in one call or a reversed range.
type InvalidInput struct {
	Reason string
}

func (e *InvalidInput) Error() string {
	return e.Reason
}

func invalidInput(reason string) error {
	return &InvalidInput{Reason: reason}
}

func itoa(i int) string { return itoa64(int64(i)) }

func itoa64(i int64) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [32]byte
	n := len(buf)
	for i > 0 {
		n--
		buf[n] = byte('0' + (i % 10))
		i /= 10
	}
	if neg {
		n--
		buf[n] = '-'
	}
	return string(buf[n:])
}
