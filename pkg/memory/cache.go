// Package memory implements the buffer pool: a bounded, transaction-aware
// cache of pages sitting between the access methods and the disk.
package memory

import (
	"container/list"
	"sync"

	"heapdb/pkg/dberror"
	"heapdb/pkg/primitives"
	"heapdb/pkg/storage/page"
)

type entry struct {
	pid  primitives.PageID
	page page.Page
}

// LRUPageCache stores pages only. It knows nothing about transactions or
// locks, and never evicts on its own: Put on a full cache fails and the
// caller decides what to drop.
type LRUPageCache struct {
	mutex    sync.RWMutex
	capacity int
	index    map[primitives.PageID]*list.Element
	order    *list.List // front is most recently used
}

func NewLRUPageCache(capacity int) *LRUPageCache {
	return &LRUPageCache{
		capacity: capacity,
		index:    make(map[primitives.PageID]*list.Element),
		order:    list.New(),
	}
}

// Get returns the cached page and marks it most recently used.
func (c *LRUPageCache) Get(pid primitives.PageID) (page.Page, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	el, ok := c.index[pid]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*entry).page, true
}

// Peek returns the cached page without touching its recency.
func (c *LRUPageCache) Peek(pid primitives.PageID) (page.Page, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if el, ok := c.index[pid]; ok {
		return el.Value.(*entry).page, true
	}
	return nil, false
}

// Put stores p under pid and marks it most recently used. Replacing an
// existing entry always succeeds; adding a new one to a full cache returns
// BUFFER_POOL_FULL.
func (c *LRUPageCache) Put(pid primitives.PageID, p page.Page) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if el, ok := c.index[pid]; ok {
		el.Value.(*entry).page = p
		c.order.MoveToFront(el)
		return nil
	}
	if len(c.index) >= c.capacity {
		return dberror.New(dberror.ErrCategoryStorage, dberror.CodeBufferPoolFull, "page cache full").
			WithDetail("capacity %d", c.capacity).
			At("Put", "LRUPageCache")
	}
	c.index[pid] = c.order.PushFront(&entry{pid: pid, page: p})
	return nil
}

func (c *LRUPageCache) Remove(pid primitives.PageID) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if el, ok := c.index[pid]; ok {
		c.order.Remove(el)
		delete(c.index, pid)
	}
}

func (c *LRUPageCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.index)
}

func (c *LRUPageCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	clear(c.index)
	c.order.Init()
}

// GetAll returns every cached page id, least recently used first.
func (c *LRUPageCache) GetAll() []primitives.PageID {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	pids := make([]primitives.PageID, 0, len(c.index))
	for el := c.order.Back(); el != nil; el = el.Prev() {
		pids = append(pids, el.Value.(*entry).pid)
	}
	return pids
}
