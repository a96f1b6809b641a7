package catalog

import (
	"fmt"

	"heapdb/pkg/primitives"
	"heapdb/pkg/storage/page"
	"heapdb/pkg/tuple"
)

// TableInfo is the catalog entry of one table.
type TableInfo struct {
	File       page.DbFile
	Name       string
	PrimaryKey string // empty when the table has none
}

func newTableInfo(file page.DbFile, name, pkey string) *TableInfo {
	return &TableInfo{
		File:       file,
		Name:       name,
		PrimaryKey: pkey,
	}
}

func (ti *TableInfo) GetID() primitives.TableID {
	return ti.File.GetID()
}

func (ti *TableInfo) TupleDesc() *tuple.TupleDescription {
	return ti.File.GetTupleDesc()
}

func (ti *TableInfo) String() string {
	return fmt.Sprintf("Table(name=%s, id=%d, pk=%q, schema=%s)", ti.Name, uint64(ti.GetID()), ti.PrimaryKey, ti.TupleDesc())
}
