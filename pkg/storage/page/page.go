// Package page defines the page and file contracts shared by the storage
// layer and the buffer pool.
package page

import (
	"context"

	"heapdb/pkg/primitives"
)

// DefaultPageSize is the page size used when none is configured (4KB).
const DefaultPageSize = 4096

// Permissions is the access level a transaction requests for a page.
type Permissions int

const (
	// ReadOnly maps to a shared lock.
	ReadOnly Permissions = iota
	// ReadWrite maps to an exclusive lock.
	ReadWrite
)

func (p Permissions) String() string {
	if p == ReadWrite {
		return "READ_WRITE"
	}
	return "READ_ONLY"
}

// Page interface represents a page that is resident in the buffer pool
// Pages may be "dirty", indicating they have been modified since last written to disk
type Page interface {
	// GetID returns the ID of this page
	GetID() primitives.PageID

	// IsDirty returns the transaction ID that last dirtied this page, or nil if clean
	IsDirty() *primitives.TransactionID

	// MarkDirty sets the dirty state of this page
	MarkDirty(dirty bool, tid *primitives.TransactionID)

	// GetPageData returns the exact on-disk byte form of this page
	GetPageData() []byte

	// GetBeforeImage returns the page as of the last SetBeforeImage call
	GetBeforeImage() Page

	// SetBeforeImage snapshots the current content as the before image.
	// Called when a transaction that wrote this page commits
	SetBeforeImage()
}

// PageProvider is the narrow buffer pool surface a file needs to reach its
// pages under the caller's transaction.
type PageProvider interface {
	GetPage(ctx context.Context, tid *primitives.TransactionID, pid primitives.PageID, perm Permissions) (Page, error)
}
