package qail

// Operator is the closed set of comparison/set/pattern operators a
// Condition may use (§3). The mapping to SQL tokens lives in render.go —
// Operator itself is pure data, per §9 ("a pure function ... belongs to
// the encoder").
type Operator int

const (
	Eq Operator = iota
	Ne
	Gt
	Gte
	Lt
	Lte
	Like
	NotLike
	ILike
	IsNull
	IsNotNull
	In
	NotIn
	Between
	Contains    // @>
	ContainedBy // <@
	Overlaps    // &&
	JSONExists  // @?
	SimilarTo
	Regex  // ~
	RegexI // ~*
)

// ignoresValue reports whether op never consults Condition.Value.
func (op Operator) ignoresValue() bool {
	return op == IsNull || op == IsNotNull
}
