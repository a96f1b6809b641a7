package statistics

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"heapdb/pkg/dberror"
	"heapdb/pkg/iterator"
	"heapdb/pkg/logging"
	"heapdb/pkg/primitives"
	"heapdb/pkg/storage/page"
	"heapdb/pkg/tuple"
	"heapdb/pkg/types"
)

const (
	// DefaultBuckets is the histogram resolution used when none is configured.
	DefaultBuckets = 100

	// DefaultIOCostPerPage is the cost charged for reading one page.
	DefaultIOCostPerPage = 1000
)

// Selectivity estimates the fraction of a column's values satisfying
// "value op constant".
type Selectivity interface {
	EstimateSelectivity(op primitives.Predicate, constant types.Field) float64
	AvgSelectivity() float64
}

type intColumn struct{ hist *IntHistogram }

func (c intColumn) EstimateSelectivity(op primitives.Predicate, constant types.Field) float64 {
	f, ok := constant.(*types.IntField)
	if !ok {
		return 1
	}
	return c.hist.EstimateSelectivity(op, f.Value)
}

func (c intColumn) AvgSelectivity() float64 { return c.hist.AvgSelectivity() }

type stringColumn struct{ hist *StringHistogram }

func (c stringColumn) EstimateSelectivity(op primitives.Predicate, constant types.Field) float64 {
	f, ok := constant.(*types.StringField)
	if !ok {
		return 1
	}
	return c.hist.EstimateSelectivity(op, f.Value)
}

func (c stringColumn) AvgSelectivity() float64 { return c.hist.AvgSelectivity() }

// Catalog resolves table files.
type Catalog interface {
	GetDbFile(tableID primitives.TableID) (page.DbFile, error)
}

// Scanner is the buffer pool surface a statistics build needs: page access
// plus a transaction to read under.
type Scanner interface {
	page.PageProvider
	Begin() *primitives.TransactionID
	TransactionComplete(ctx context.Context, tid *primitives.TransactionID, commit bool) error
}

// TableStats holds one histogram per column of a table along with the
// table's size.
type TableStats struct {
	tableID       primitives.TableID
	ioCostPerPage int
	numPages      int
	totalTuples   int64
	columns       []Selectivity
}

// NewTableStats scans tableID twice in a read-only transaction: once for
// each int column's bounds and once to fill the histograms. Column
// histograms are filled concurrently.
//
// Parameters:
//   - ctx: Cancels the histogram build
//   - tableID: Table to summarise
//   - ioCostPerPage: Cost of reading one page
//   - buckets: Histogram buckets per column
//   - catalog: Resolves the table's file
//   - pool: Buffer pool to read through
func NewTableStats(ctx context.Context, tableID primitives.TableID, ioCostPerPage, buckets int, catalog Catalog, pool Scanner) (*TableStats, error) {
	if buckets <= 0 {
		buckets = DefaultBuckets
	}

	dbFile, err := catalog.GetDbFile(tableID)
	if err != nil {
		return nil, err
	}
	numPages, err := dbFile.NumPages()
	if err != nil {
		return nil, err
	}

	tid := pool.Begin()
	columns, total, err := buildColumns(ctx, dbFile, tid, pool, buckets)
	if cerr := pool.TransactionComplete(ctx, tid, true); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, fmt.Errorf("building stats for %s: %w", tableID, err)
	}

	logging.WithComponent("statistics").Debug("table stats built",
		"table_id", uint64(tableID), "tuples", total, "pages", uint64(numPages))
	return &TableStats{
		tableID:       tableID,
		ioCostPerPage: ioCostPerPage,
		numPages:      int(numPages),
		totalTuples:   total,
		columns:       columns,
	}, nil
}

type bounds struct{ min, max int32 }

func buildColumns(ctx context.Context, dbFile page.DbFile, tid *primitives.TransactionID, pool page.PageProvider, buckets int) ([]Selectivity, int64, error) {
	td := dbFile.GetTupleDesc()
	n := td.NumFields()

	ranges := make([]bounds, n)
	for i := range ranges {
		ranges[i] = bounds{min: math.MaxInt32, max: math.MinInt32}
	}

	var total int64
	err := scan(ctx, dbFile, tid, pool, func(t *tuple.Tuple) error {
		total++
		for i := range n {
			if f, ok := field(t, i).(*types.IntField); ok {
				ranges[i].min = min(ranges[i].min, f.Value)
				ranges[i].max = max(ranges[i].max, f.Value)
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	values := make([][]types.Field, n)
	for i := range values {
		values[i] = make([]types.Field, 0, total)
	}
	err = scan(ctx, dbFile, tid, pool, func(t *tuple.Tuple) error {
		for i := range n {
			if f := field(t, i); f != nil {
				values[i] = append(values[i], f)
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	columns := make([]Selectivity, n)
	g, gctx := errgroup.WithContext(ctx)
	for i := range n {
		g.Go(func() error {
			col, err := buildColumn(gctx, td.Types[i], ranges[i], values[i], buckets)
			if err != nil {
				return fmt.Errorf("column %d: %w", i, err)
			}
			columns[i] = col
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return columns, total, nil
}

func buildColumn(ctx context.Context, fieldType types.Type, r bounds, values []types.Field, buckets int) (Selectivity, error) {
	switch fieldType {
	case types.IntType:
		if r.min > r.max {
			r = bounds{}
		}
		h, err := NewIntHistogram(buckets, r.min, r.max)
		if err != nil {
			return nil, err
		}
		for _, v := range values {
			h.AddValue(v.(*types.IntField).Value)
		}
		return intColumn{hist: h}, ctx.Err()

	case types.StringType:
		h, err := NewStringHistogram(buckets)
		if err != nil {
			return nil, err
		}
		for _, v := range values {
			h.AddValue(v.(*types.StringField).Value)
		}
		return stringColumn{hist: h}, ctx.Err()

	default:
		return nil, fmt.Errorf("no histogram for type %s", fieldType)
	}
}

func scan(ctx context.Context, dbFile page.DbFile, tid *primitives.TransactionID, pool page.PageProvider, fn func(*tuple.Tuple) error) error {
	it := dbFile.Iterator(ctx, tid, pool)
	if err := it.Open(); err != nil {
		return err
	}
	defer it.Close()
	return iterator.ForEach(it, fn)
}

func field(t *tuple.Tuple, i int) types.Field {
	f, err := t.GetField(i)
	if err != nil {
		return nil
	}
	return f
}

// EstimateScanCost is the cost of reading every page of the table.
func (ts *TableStats) EstimateScanCost() float64 {
	return float64(ts.numPages * ts.ioCostPerPage)
}

// EstimateTableCardinality is the expected tuple count after applying a
// predicate of the given selectivity.
func (ts *TableStats) EstimateTableCardinality(selectivity float64) int {
	return int(float64(ts.totalTuples) * clamp(selectivity))
}

// EstimateSelectivity estimates "field op constant" on the table.
//
// Returns:
//   - float64: Fraction in [0, 1]
//   - error: INVALID_ARGUMENT for a field index outside the schema
func (ts *TableStats) EstimateSelectivity(fieldIndex int, op primitives.Predicate, constant types.Field) (float64, error) {
	if fieldIndex < 0 || fieldIndex >= len(ts.columns) {
		return 0, dberror.Newf(dberror.ErrCategoryProtocol, dberror.CodeInvalidArg, "field %d out of range", fieldIndex).
			At("EstimateSelectivity", "TableStats")
	}
	return ts.columns[fieldIndex].EstimateSelectivity(op, constant), nil
}

// AvgSelectivity returns the column's expected equality selectivity.
func (ts *TableStats) AvgSelectivity(fieldIndex int) float64 {
	if fieldIndex < 0 || fieldIndex >= len(ts.columns) {
		return 1
	}
	return ts.columns[fieldIndex].AvgSelectivity()
}

func (ts *TableStats) TotalTuples() int64          { return ts.totalTuples }
func (ts *TableStats) NumPages() int               { return ts.numPages }
func (ts *TableStats) TableID() primitives.TableID { return ts.tableID }
