package primitives

import "fmt"

type HashCode uint64

// FileID is derived from a file path by Filepath.Hash.
type FileID uint64

// TableID identifies a table. For heap tables it is the FileID of the backing file.
type TableID uint64

// SlotID is a tuple slot within a page.
type SlotID uint16

type PageNumber uint64

const (
	InvalidFileID  FileID  = 0
	InvalidTableID TableID = 0
)

func (f FileID) AsTableID() TableID { return TableID(f) }
func (f FileID) String() string     { return fmt.Sprintf("FileID(%d)", uint64(f)) }

func (t TableID) String() string { return fmt.Sprintf("TableID(%d)", uint64(t)) }
