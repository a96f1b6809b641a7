package primitives

import "fmt"

// Predicate is a comparison operator between two field values.
type Predicate int

const (
	Equals Predicate = iota
	LessThan
	GreaterThan
	LessThanOrEqual
	GreaterThanOrEqual
	NotEqual
	Like
)

func (p Predicate) String() string {
	switch p {
	case Equals:
		return "="

	case LessThan:
		return "<"

	case GreaterThan:
		return ">"

	case LessThanOrEqual:
		return "<="

	case GreaterThanOrEqual:
		return ">="

	case NotEqual:
		return "!="

	case Like:
		return "LIKE"

	default:
		return "UNKNOWN"
	}
}

// ParsePredicate maps an operator symbol back to its Predicate.
// Both "!=" and "<>" are accepted for inequality.
func ParsePredicate(s string) (Predicate, error) {
	switch s {
	case "=", "==":
		return Equals, nil
	case "<":
		return LessThan, nil
	case ">":
		return GreaterThan, nil
	case "<=":
		return LessThanOrEqual, nil
	case ">=":
		return GreaterThanOrEqual, nil
	case "!=", "<>":
		return NotEqual, nil
	case "LIKE", "like":
		return Like, nil
	default:
		return 0, fmt.Errorf("unknown predicate %q", s)
	}
}
