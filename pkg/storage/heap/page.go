package heap

import (
	"bytes"
	"sync"

	"heapdb/pkg/dberror"
	"heapdb/pkg/primitives"
	"heapdb/pkg/storage/page"
	"heapdb/pkg/tuple"
	"heapdb/pkg/types"
)

// HeapPage represents a single page in a heap file and implements the page.Page interface.
//
// Page Layout, for page size P and tuple size S:
//   - Header: ceil(N/8) bytes of occupancy bitmap, N = floor(8P / (8S+1)).
//     Bit i (byte i/8, bit i%8, least significant first) is set when slot i holds a tuple.
//   - Slots: N fixed-width tuple records in schema field order.
//   - Tail: whatever bytes remain up to P.
//
// The page keeps its raw bytes and mutates them in place, so bytes of empty
// slots and the tail survive a read-then-write unchanged.
type HeapPage struct {
	pageID    primitives.PageID
	tupleDesc *tuple.TupleDescription
	data      []byte
	tuples    []*tuple.Tuple // decoded occupied slots, nil for empty ones
	numSlots  int
	header    int
	dirtier   *primitives.TransactionID
	oldData   []byte // before-image
	mutex     sync.RWMutex
}

// NewEmptyHeapPage creates a page with no occupied slots.
func NewEmptyHeapPage(pid primitives.PageID, pageSize int, td *tuple.TupleDescription) (*HeapPage, error) {
	return NewHeapPage(pid, CreateEmptyPageData(pageSize), td)
}

// NewHeapPage decodes a page from its on-disk bytes. The page size is len(data).
//
// Parameters:
//   - pid: The page identifier
//   - data: Exactly one page of bytes, copied by the constructor
//   - td: The schema of the tuples stored on the page
//
// Returns:
//   - *HeapPage: The decoded page; its before-image equals data
//   - error: INVALID_PAGE_DATA if no tuple fits on the page or an occupied slot does not decode
func NewHeapPage(pid primitives.PageID, data []byte, td *tuple.TupleDescription) (*HeapPage, error) {
	slots := numSlots(len(data), td.GetSize())
	if slots == 0 {
		return nil, dberror.New(dberror.ErrCategoryStorage, dberror.CodeInvalidPageData, "tuple does not fit on page").
			WithDetail("tuple size %d, page size %d", td.GetSize(), len(data)).
			At("NewHeapPage", "HeapPage")
	}

	hp := &HeapPage{
		pageID:    pid,
		tupleDesc: td,
		data:      append([]byte(nil), data...),
		tuples:    make([]*tuple.Tuple, slots),
		numSlots:  slots,
		header:    headerSize(slots),
		oldData:   append([]byte(nil), data...),
	}

	for i := range slots {
		if !isSlotUsed(hp.data, i) {
			continue
		}
		t, err := hp.decodeSlot(i)
		if err != nil {
			return nil, dberror.Wrap(err, dberror.ErrCategoryStorage, dberror.CodeInvalidPageData, "NewHeapPage", "HeapPage").
				WithDetail("slot %d of %s", i, pid)
		}
		hp.tuples[i] = t
	}
	return hp, nil
}

func (hp *HeapPage) slotBytes(slot int) []byte {
	size := int(hp.tupleDesc.GetSize())
	start := hp.header + slot*size
	return hp.data[start : start+size]
}

func (hp *HeapPage) decodeSlot(slot int) (*tuple.Tuple, error) {
	r := bytes.NewReader(hp.slotBytes(slot))
	t := tuple.NewTuple(hp.tupleDesc)
	for j, ft := range hp.tupleDesc.Types {
		f, err := types.ParseField(r, ft)
		if err != nil {
			return nil, err
		}
		if err := t.SetField(j, f); err != nil {
			return nil, err
		}
	}
	t.RecordID = tuple.NewRecordID(hp.pageID, primitives.SlotID(slot)) // #nosec G115
	return t, nil
}

func (hp *HeapPage) encodeTuple(t *tuple.Tuple) ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, hp.tupleDesc.GetSize()))
	for j := range hp.tupleDesc.NumFields() {
		f, err := t.GetField(j)
		if err != nil {
			return nil, err
		}
		if f == nil {
			return nil, dberror.New(dberror.ErrCategoryProtocol, dberror.CodeSchemaMismatch, "tuple has unset field").
				WithDetail("field %d", j)
		}
		if err := f.Serialize(buf); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// GetID returns the unique page identifier for this heap page.
func (hp *HeapPage) GetID() primitives.PageID {
	return hp.pageID
}

// NumSlots returns the fixed number of tuple slots on this page.
func (hp *HeapPage) NumSlots() int {
	return hp.numSlots
}

// GetNumEmptySlots returns the count of unoccupied tuple slots on this page.
func (hp *HeapPage) GetNumEmptySlots() int {
	hp.mutex.RLock()
	defer hp.mutex.RUnlock()

	n := 0
	for i := range hp.numSlots {
		if !isSlotUsed(hp.data, i) {
			n++
		}
	}
	return n
}

// IsSlotUsed reports whether the occupancy bit of slot is set.
func (hp *HeapPage) IsSlotUsed(slot int) bool {
	hp.mutex.RLock()
	defer hp.mutex.RUnlock()
	return slot >= 0 && slot < hp.numSlots && isSlotUsed(hp.data, slot)
}

// IsDirty returns the transaction that last modified this page.
// A nil return indicates the page is clean.
func (hp *HeapPage) IsDirty() *primitives.TransactionID {
	hp.mutex.RLock()
	defer hp.mutex.RUnlock()
	return hp.dirtier
}

// MarkDirty marks this page as dirty or clean for a specific transaction.
func (hp *HeapPage) MarkDirty(dirty bool, tid *primitives.TransactionID) {
	hp.mutex.Lock()
	defer hp.mutex.Unlock()

	if dirty {
		hp.dirtier = tid
	} else {
		hp.dirtier = nil
	}
}

// GetPageData returns a copy of the page's on-disk bytes.
func (hp *HeapPage) GetPageData() []byte {
	hp.mutex.RLock()
	defer hp.mutex.RUnlock()
	return append([]byte(nil), hp.data...)
}

// GetBeforeImage returns the page as of its last SetBeforeImage, or as read from disk.
func (hp *HeapPage) GetBeforeImage() page.Page {
	hp.mutex.RLock()
	old := hp.oldData
	hp.mutex.RUnlock()

	before, err := NewHeapPage(hp.pageID, old, hp.tupleDesc)
	if err != nil {
		return nil
	}
	return before
}

// SetBeforeImage captures the current bytes as the before-image.
func (hp *HeapPage) SetBeforeImage() {
	hp.mutex.Lock()
	defer hp.mutex.Unlock()
	hp.oldData = append(hp.oldData[:0], hp.data...)
}

// GetTupleAt returns the tuple in slot, or nil when the slot is empty.
func (hp *HeapPage) GetTupleAt(slot int) (*tuple.Tuple, error) {
	hp.mutex.RLock()
	defer hp.mutex.RUnlock()

	if err := hp.checkSlot(slot, "GetTupleAt"); err != nil {
		return nil, err
	}
	return hp.tuples[slot], nil
}

// WriteTupleAt stores t in slot, sets its occupancy bit and its RecordID.
//
// Returns:
//   - error: SLOT_OCCUPIED if the slot already holds a tuple,
//     SCHEMA_MISMATCH if t does not match the page schema
func (hp *HeapPage) WriteTupleAt(slot int, t *tuple.Tuple) error {
	hp.mutex.Lock()
	defer hp.mutex.Unlock()

	if err := hp.checkSlot(slot, "WriteTupleAt"); err != nil {
		return err
	}
	if isSlotUsed(hp.data, slot) {
		return dberror.New(dberror.ErrCategoryConstraint, dberror.CodeSlotOccupied, "slot already occupied").
			WithDetail("slot %d of %s", slot, hp.pageID).
			At("WriteTupleAt", "HeapPage")
	}
	return hp.place(slot, t, "WriteTupleAt")
}

// AddTuple inserts t into the first free slot in slot order.
//
// Returns:
//   - error: PAGE_FULL when every slot is occupied, SCHEMA_MISMATCH when the schemas differ
func (hp *HeapPage) AddTuple(t *tuple.Tuple) error {
	hp.mutex.Lock()
	defer hp.mutex.Unlock()

	for i := range hp.numSlots {
		if !isSlotUsed(hp.data, i) {
			return hp.place(i, t, "AddTuple")
		}
	}
	return dberror.New(dberror.ErrCategoryConstraint, dberror.CodePageFull, "no empty slot").
		WithDetail("%s", hp.pageID).
		At("AddTuple", "HeapPage")
}

func (hp *HeapPage) place(slot int, t *tuple.Tuple, op string) error {
	if !hp.tupleDesc.Equals(t.TupleDesc) {
		return dberror.New(dberror.ErrCategoryProtocol, dberror.CodeSchemaMismatch, "tuple schema does not match page").
			WithDetail("page %s, tuple %s", hp.tupleDesc, t.TupleDesc).
			At(op, "HeapPage")
	}

	encoded, err := hp.encodeTuple(t)
	if err != nil {
		return dberror.Wrap(err, dberror.ErrCategoryProtocol, dberror.CodeSchemaMismatch, op, "HeapPage")
	}
	copy(hp.slotBytes(slot), encoded)
	setSlot(hp.data, slot, true)

	rid := tuple.NewRecordID(hp.pageID, primitives.SlotID(slot)) // #nosec G115
	t.RecordID = rid
	stored := t.Clone()
	stored.RecordID = rid
	hp.tuples[slot] = stored
	return nil
}

// DeleteTuple clears the slot named by t.RecordID. The slot bytes are left in place.
//
// Returns:
//   - error: TUPLE_NOT_FOUND when t has no RecordID, names another page, or names an empty slot
func (hp *HeapPage) DeleteTuple(t *tuple.Tuple) error {
	hp.mutex.Lock()
	defer hp.mutex.Unlock()

	notFound := func(detail string) error {
		return dberror.New(dberror.ErrCategoryConstraint, dberror.CodeTupleNotFound, "tuple not on page").
			WithDetail("%s", detail).
			At("DeleteTuple", "HeapPage")
	}

	rid := t.RecordID
	if rid == nil {
		return notFound("tuple has no record id")
	}
	if rid.PageID != hp.pageID {
		return notFound(rid.PageID.String() + " is not " + hp.pageID.String())
	}
	slot := int(rid.TupleNum)
	if slot >= hp.numSlots || !isSlotUsed(hp.data, slot) {
		return notFound(rid.String() + " is empty")
	}

	setSlot(hp.data, slot, false)
	hp.tuples[slot] = nil
	return nil
}

// GetTuples returns the occupied tuples in slot order.
func (hp *HeapPage) GetTuples() []*tuple.Tuple {
	hp.mutex.RLock()
	defer hp.mutex.RUnlock()

	out := make([]*tuple.Tuple, 0, hp.numSlots)
	for _, t := range hp.tuples {
		if t != nil {
			out = append(out, t)
		}
	}
	return out
}

// Iterator returns a restartable iterator over the occupied tuples in slot order.
func (hp *HeapPage) Iterator() *HeapPageIterator {
	return NewHeapPageIterator(hp)
}

func (hp *HeapPage) checkSlot(slot int, op string) error {
	if slot < 0 || slot >= hp.numSlots {
		return dberror.New(dberror.ErrCategoryProtocol, dberror.CodeInvalidArg, "slot out of range").
			WithDetail("slot %d, page has %d", slot, hp.numSlots).
			At(op, "HeapPage")
	}
	return nil
}
