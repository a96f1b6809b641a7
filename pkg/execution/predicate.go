package execution

import (
	"fmt"

	"heapdb/pkg/primitives"
	"heapdb/pkg/tuple"
	"heapdb/pkg/types"
)

// Predicate compares one field of a tuple against a constant.
type Predicate struct {
	fieldIndex int
	op         primitives.Predicate
	operand    types.Field
}

func NewPredicate(fieldIndex int, op primitives.Predicate, operand types.Field) *Predicate {
	return &Predicate{
		fieldIndex: fieldIndex,
		op:         op,
		operand:    operand,
	}
}

// Filter reports whether t satisfies the predicate. An unset field never does.
func (p *Predicate) Filter(t *tuple.Tuple) (bool, error) {
	field, err := t.GetField(p.fieldIndex)
	if err != nil {
		return false, err
	}
	if field == nil {
		return false, nil
	}
	return field.Compare(p.op, p.operand)
}

func (p *Predicate) FieldIndex() int          { return p.fieldIndex }
func (p *Predicate) Op() primitives.Predicate { return p.op }
func (p *Predicate) Operand() types.Field     { return p.operand }

func (p *Predicate) String() string {
	return fmt.Sprintf("field[%d] %s %s", p.fieldIndex, p.op, p.operand)
}
