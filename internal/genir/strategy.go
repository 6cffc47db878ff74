package genir

// Strategy selects the wire-format encoding rules: native protobuf wire
// compatibility, or the more compact evolved encoding.
type Strategy int

const (
	// Native guarantees protobuf wire compatibility: Nullable<T> becomes a
	// one-field wrapper sub-message, nested Array<Array<T>> gets an
	// intermediate wrapper message.
	Native Strategy = iota
	// Evolved allows compact encodings for top-level scalars, nested
	// arrays, and nullable types, at the cost of protobuf compatibility.
	Evolved
)

func (s Strategy) String() string {
	if s == Evolved {
		return "evolved"
	}
	return "native"
}
