package tuple

import (
	"fmt"

	"heapdb/pkg/primitives"
)

// RecordID is the last-known on-disk location of a tuple: a page plus a slot on it.
type RecordID struct {
	PageID   primitives.PageID
	TupleNum primitives.SlotID
}

func NewRecordID(pageID primitives.PageID, tupleNum primitives.SlotID) *RecordID {
	return &RecordID{
		PageID:   pageID,
		TupleNum: tupleNum,
	}
}

func (rid *RecordID) Equals(other *RecordID) bool {
	if rid == nil || other == nil {
		return rid == other
	}
	return rid.PageID == other.PageID && rid.TupleNum == other.TupleNum
}

func (rid *RecordID) String() string {
	return fmt.Sprintf("RecordID(page=%s, tuple=%d)", rid.PageID.String(), rid.TupleNum)
}
