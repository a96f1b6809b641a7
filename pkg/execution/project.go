package execution

import (
	"heapdb/pkg/dberror"
	"heapdb/pkg/iterator"
	"heapdb/pkg/tuple"
	"heapdb/pkg/types"
)

// Project emits a subset of the child's fields, in the order given.
// Projected tuples keep the child's RecordID.
type Project struct {
	base      *BaseIterator
	child     iterator.DbIterator
	fields    []int
	tupleDesc *tuple.TupleDescription
}

// NewProject selects fields of child by index. Indexes may repeat.
//
// Returns:
//   - *Project: A closed operator
//   - error: INVALID_ARGUMENT for an empty field list or an index outside
//     the child's schema
func NewProject(fields []int, child iterator.DbIterator) (*Project, error) {
	if child == nil || len(fields) == 0 {
		return nil, dberror.New(dberror.ErrCategoryProtocol, dberror.CodeInvalidArg, "project needs a child and at least one field").
			At("NewProject", "Project")
	}

	childDesc := child.GetTupleDesc()
	fieldTypes := make([]types.Type, len(fields))
	names := make([]string, len(fields))
	for i, idx := range fields {
		if idx < 0 || idx >= childDesc.NumFields() {
			return nil, dberror.Newf(dberror.ErrCategoryProtocol, dberror.CodeInvalidArg,
				"field %d out of range for %d-field child", idx, childDesc.NumFields()).
				At("NewProject", "Project")
		}
		fieldTypes[i] = childDesc.Types[idx]
		names[i], _ = childDesc.GetFieldName(idx)
	}

	td, err := tuple.NewTupleDesc(fieldTypes, names)
	if err != nil {
		return nil, err
	}

	p := &Project{
		child:     child,
		fields:    append([]int(nil), fields...),
		tupleDesc: td,
	}
	p.base = NewBaseIterator("Project", p.readNext)
	return p, nil
}

func (p *Project) Open() error {
	if err := OpenChildren(p.child); err != nil {
		return err
	}
	p.base.MarkOpened()
	return nil
}

func (p *Project) Close() error {
	err := CloseChildren(p.child)
	_ = p.base.Close()
	return err
}

func (p *Project) Rewind() error {
	if err := p.base.CheckOpen(); err != nil {
		return err
	}
	if err := p.child.Rewind(); err != nil {
		return err
	}
	p.base.ClearCache()
	return nil
}

func (p *Project) readNext() (*tuple.Tuple, error) {
	hasNext, err := p.child.HasNext()
	if err != nil || !hasNext {
		return nil, err
	}
	t, err := p.child.Next()
	if err != nil {
		return nil, err
	}

	out := tuple.NewTuple(p.tupleDesc)
	for i, idx := range p.fields {
		f, err := t.GetField(idx)
		if err != nil {
			return nil, err
		}
		if f == nil {
			continue
		}
		if err := out.SetField(i, f); err != nil {
			return nil, err
		}
	}
	out.RecordID = t.RecordID
	return out, nil
}

func (p *Project) GetTupleDesc() *tuple.TupleDescription { return p.tupleDesc }

func (p *Project) HasNext() (bool, error)      { return p.base.HasNext() }
func (p *Project) Next() (*tuple.Tuple, error) { return p.base.Next() }

func (p *Project) Kind() OperatorKind              { return KindProject }
func (p *Project) Children() []iterator.DbIterator { return []iterator.DbIterator{p.child} }
func (p *Project) Fields() []int                   { return p.fields }
