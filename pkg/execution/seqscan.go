package execution

import (
	"context"

	"heapdb/pkg/iterator"
	"heapdb/pkg/memory"
	"heapdb/pkg/primitives"
	"heapdb/pkg/storage/page"
	"heapdb/pkg/tuple"
)

// SequentialScan reads every tuple of a table through the buffer pool. Field
// names of the output schema are qualified with the scan alias.
type SequentialScan struct {
	base      *BaseIterator
	ctx       context.Context
	tid       *primitives.TransactionID
	tableID   primitives.TableID
	alias     string
	catalog   memory.Catalog
	pool      page.PageProvider
	tupleDesc *tuple.TupleDescription
	fileIter  iterator.DbFileIterator
}

// NewSeqScan creates a scan of tableID on behalf of tid.
//
// Parameters:
//   - ctx: Bounds every page fetch, including lock waits
//   - tid: Transaction the scan reads for
//   - tableID: Table to scan
//   - alias: Qualifier for field names; empty keeps the table's names
//   - catalog: Resolves the table's file and schema
//   - pool: Page source, normally the buffer pool
//
// Returns:
//   - *SequentialScan: A closed scan
//   - error: NO_SUCH_TABLE if tableID is unknown
func NewSeqScan(ctx context.Context, tid *primitives.TransactionID, tableID primitives.TableID, alias string, catalog memory.Catalog, pool page.PageProvider) (*SequentialScan, error) {
	td, err := catalog.GetTupleDesc(tableID)
	if err != nil {
		return nil, err
	}
	if alias != "" {
		td = td.WithPrefix(alias)
	}

	ss := &SequentialScan{
		ctx:       ctx,
		tid:       tid,
		tableID:   tableID,
		alias:     alias,
		catalog:   catalog,
		pool:      pool,
		tupleDesc: td,
	}
	ss.base = NewBaseIterator("SequentialScan", ss.readNext)
	return ss, nil
}

// Open resolves the table's file and opens a file iterator over it.
func (ss *SequentialScan) Open() error {
	dbFile, err := ss.catalog.GetDbFile(ss.tableID)
	if err != nil {
		return err
	}

	ss.fileIter = dbFile.Iterator(ss.ctx, ss.tid, ss.pool)
	if err := ss.fileIter.Open(); err != nil {
		ss.fileIter = nil
		return err
	}

	ss.base.MarkOpened()
	return nil
}

func (ss *SequentialScan) readNext() (*tuple.Tuple, error) {
	hasNext, err := ss.fileIter.HasNext()
	if err != nil || !hasNext {
		return nil, err
	}

	t, err := ss.fileIter.Next()
	if err != nil {
		return nil, err
	}

	out := t.Clone()
	out.TupleDesc = ss.tupleDesc
	out.RecordID = t.RecordID
	return out, nil
}

func (ss *SequentialScan) Rewind() error {
	if err := ss.base.CheckOpen(); err != nil {
		return err
	}
	if err := ss.fileIter.Rewind(); err != nil {
		return err
	}
	ss.base.ClearCache()
	return nil
}

func (ss *SequentialScan) Close() error {
	var err error
	if ss.fileIter != nil {
		err = ss.fileIter.Close()
		ss.fileIter = nil
	}
	_ = ss.base.Close()
	return err
}

func (ss *SequentialScan) GetTupleDesc() *tuple.TupleDescription { return ss.tupleDesc }
func (ss *SequentialScan) TableID() primitives.TableID           { return ss.tableID }
func (ss *SequentialScan) Alias() string                         { return ss.alias }

func (ss *SequentialScan) HasNext() (bool, error)      { return ss.base.HasNext() }
func (ss *SequentialScan) Next() (*tuple.Tuple, error) { return ss.base.Next() }

func (ss *SequentialScan) Kind() OperatorKind              { return KindScan }
func (ss *SequentialScan) Children() []iterator.DbIterator { return nil }
