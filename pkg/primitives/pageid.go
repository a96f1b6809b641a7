package primitives

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
)

// PageID identifies a page globally: the table it belongs to and its page number
// within that table's file. It is a comparable value and is used directly as the
// key of the page cache and of the lock table.
type PageID struct {
	TableID TableID
	PageNo  PageNumber
}

// NewPageID creates a page identifier for page pageNo of table tableID.
func NewPageID(tableID TableID, pageNo PageNumber) PageID {
	return PageID{TableID: tableID, PageNo: pageNo}
}

// GetTableID returns the table ID
func (p PageID) GetTableID() TableID {
	return p.TableID
}

// Serialize returns this page ID as 16 little-endian bytes (table id, then page number).
func (p PageID) Serialize() []byte {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint64(buf[0:8], uint64(p.TableID))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(p.PageNo))
	return buf
}

// Equals checks if two page IDs are equal
func (p PageID) Equals(other PageID) bool {
	return p == other
}

func (p PageID) String() string {
	return fmt.Sprintf("PageID(table=%d, page=%d)", p.TableID, p.PageNo)
}

// HashCode returns a hash code for this page ID
func (p PageID) HashCode() HashCode {
	h := fnv.New64a()
	h.Write(p.Serialize())
	return HashCode(h.Sum64())
}
