package page

import (
	"fmt"
	"io"
	"os"
	"sync"

	"heapdb/pkg/dberror"
	"heapdb/pkg/primitives"
)

// BaseFile provides common file operations for all database file types.
// It handles positioned page I/O, page counting, and thread-safety concerns.
//
// Key responsibilities:
//   - Managing the underlying OS file handle
//   - Providing thread-safe read/write operations
//   - Calculating and tracking page counts
//   - Deriving the table identifier from the absolute file path
//
// Thread-safety: All public methods use read/write locks to ensure safe concurrent access.
type BaseFile struct {
	file     *os.File            // The underlying OS file handle for I/O operations
	tableID  primitives.TableID  // Identifier derived from the absolute path hash
	mutex    sync.RWMutex        // Guards file and serializes appends
	filePath primitives.Filepath // Absolute path to the database file
	pageSize int
}

// NewBaseFile opens (creating if needed) the file at filePath for page I/O with
// the given page size.
//
// Parameters:
//   - filePath: The path to the database file to open
//   - pageSize: The fixed page size in bytes, must be positive
//
// Returns:
//   - *BaseFile: A pointer to the initialized BaseFile structure
//   - error: An error if the path is empty, the size is invalid, or opening fails
func NewBaseFile(filePath primitives.Filepath, pageSize int) (*BaseFile, error) {
	if filePath.IsEmpty() {
		return nil, fmt.Errorf("filePath cannot be empty")
	}
	if pageSize <= 0 {
		return nil, fmt.Errorf("invalid page size %d", pageSize)
	}

	abs := filePath.Abs()
	file, err := os.OpenFile(abs.String(), os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, dberror.Wrap(err, dberror.ErrCategoryStorage, dberror.CodeIO, "NewBaseFile", "BaseFile")
	}

	return &BaseFile{
		file:     file,
		tableID:  abs.HashAsTableID(),
		filePath: abs,
		pageSize: pageSize,
	}, nil
}

// GetID returns the table identifier of this file. It is stable for a given
// absolute path across restarts.
func (bf *BaseFile) GetID() primitives.TableID {
	return bf.tableID
}

// PageSize returns the page size in bytes this file was opened with.
func (bf *BaseFile) PageSize() int {
	return bf.pageSize
}

// FilePath returns the absolute path to the database file.
func (bf *BaseFile) FilePath() primitives.Filepath {
	return bf.filePath
}

// NumPages returns the total number of pages in this file.
// A trailing partial page counts as a page.
func (bf *BaseFile) NumPages() (primitives.PageNumber, error) {
	bf.mutex.RLock()
	defer bf.mutex.RUnlock()
	return bf.numPagesLocked()
}

func (bf *BaseFile) numPagesLocked() (primitives.PageNumber, error) {
	if bf.file == nil {
		return 0, fileClosed("NumPages")
	}

	fileInfo, err := bf.file.Stat()
	if err != nil {
		return 0, dberror.Wrap(err, dberror.ErrCategoryStorage, dberror.CodeIO, "NumPages", "BaseFile")
	}

	size := fileInfo.Size()
	numPages := primitives.PageNumber(size / int64(bf.pageSize))
	if size%int64(bf.pageSize) != 0 {
		numPages++
	}
	return numPages, nil
}

// ReadPageData reads exactly PageSize bytes at the offset of pageNo.
// A trailing partial page is zero-filled to full size.
//
// Returns:
//   - []byte: A slice containing the raw page data
//   - error: PAGE_NOT_FOUND when pageNo >= NumPages, IO_ERROR when the read fails
func (bf *BaseFile) ReadPageData(pageNo primitives.PageNumber) ([]byte, error) {
	bf.mutex.RLock()
	defer bf.mutex.RUnlock()

	n, err := bf.numPagesLocked()
	if err != nil {
		return nil, err
	}
	if pageNo >= n {
		return nil, dberror.New(dberror.ErrCategoryStorage, dberror.CodePageNotFound, "page out of range").
			WithDetail("page %d of %d in %s", pageNo, n, bf.filePath.Base()).
			At("ReadPageData", "BaseFile")
	}

	data := make([]byte, bf.pageSize)
	offset := int64(pageNo) * int64(bf.pageSize) // #nosec G115
	if _, err := bf.file.ReadAt(data, offset); err != nil && err != io.EOF {
		return nil, dberror.Wrap(err, dberror.ErrCategoryStorage, dberror.CodeIO, "ReadPageData", "BaseFile")
	}
	return data, nil
}

// WritePageData writes and syncs exactly PageSize bytes at the offset of pageNo.
// Writing page NumPages() extends the file by one page; anything further out
// is PAGE_NOT_FOUND.
func (bf *BaseFile) WritePageData(pageNo primitives.PageNumber, pageData []byte) error {
	bf.mutex.Lock()
	defer bf.mutex.Unlock()
	return bf.writeLocked(pageNo, pageData, "WritePageData")
}

func (bf *BaseFile) writeLocked(pageNo primitives.PageNumber, pageData []byte, op string) error {
	if bf.file == nil {
		return fileClosed(op)
	}

	if len(pageData) != bf.pageSize {
		return dberror.New(dberror.ErrCategoryStorage, dberror.CodeInvalidPageData, "invalid page data size").
			WithDetail("expected %d, got %d", bf.pageSize, len(pageData)).
			At(op, "BaseFile")
	}

	n, err := bf.numPagesLocked()
	if err != nil {
		return err
	}
	if pageNo > n {
		return dberror.New(dberror.ErrCategoryStorage, dberror.CodePageNotFound, "write past end of file").
			WithDetail("page %d of %d in %s", pageNo, n, bf.filePath.Base()).
			At(op, "BaseFile")
	}

	offset := int64(pageNo) * int64(bf.pageSize) // #nosec G115
	if _, err := bf.file.WriteAt(pageData, offset); err != nil {
		return dberror.Wrap(err, dberror.ErrCategoryStorage, dberror.CodeIO, op, "BaseFile")
	}

	if err := bf.file.Sync(); err != nil {
		return dberror.Wrap(err, dberror.ErrCategoryStorage, dberror.CodeIO, op, "BaseFile")
	}
	return nil
}

// AppendPage writes pageData as a new page at the end of the file and returns
// its page number. The page count is read and extended under the write lock,
// so concurrent appends always receive distinct page numbers.
func (bf *BaseFile) AppendPage(pageData []byte) (primitives.PageNumber, error) {
	bf.mutex.Lock()
	defer bf.mutex.Unlock()

	pageNo, err := bf.numPagesLocked()
	if err != nil {
		return 0, err
	}
	if err := bf.writeLocked(pageNo, pageData, "AppendPage"); err != nil {
		return 0, err
	}
	return pageNo, nil
}

// Close closes the underlying file handle. Calling Close twice is safe.
func (bf *BaseFile) Close() error {
	bf.mutex.Lock()
	defer bf.mutex.Unlock()

	if bf.file == nil {
		return nil
	}
	err := bf.file.Close()
	bf.file = nil
	return err
}

func fileClosed(op string) error {
	return dberror.New(dberror.ErrCategoryStorage, dberror.CodeIO, "file is closed").At(op, "BaseFile")
}
