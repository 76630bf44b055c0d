package rcswitch

// TriState maps a pair of bits to a tri-state symbol.
func TriState(a, b BitValue) byte {
	switch {
	case a == Zero && b == Zero:
		return '0'
	case a == One && b == One:
		return '1'
	case a == Zero && b == One:
		return 'F'
	default:
		return 'X'
	}
}

// Symbol is a tri-state symbol between sample Start and End.
type Symbol struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
	Value byte  `json:"value"`
}

// AssembleTris pairs the bits of a completed word (the last bit is the sync) to tri-state symbols.
// Words with an odd count of bits are malformed and return false.
func AssembleTris(word []Bit) (code string, symbols []Symbol, ok bool) {
	if len(word) == 0 {
		return "", nil, false
	}

	n := len(word) - 1
	if n%2 != 0 {
		return "", nil, false
	}

	data := make([]byte, 0, n/2)
	symbols = make([]Symbol, 0, n/2)
	for pos := 0; pos < n; pos += 2 {
		b1, b2 := word[pos], word[pos+1]
		s := TriState(b1.Value, b2.Value)
		data = append(data, s)
		symbols = append(symbols, Symbol{Start: b1.Start, End: b2.End, Value: s})
	}

	return string(data), symbols, true
}
