// Package catalog maps table names and ids to heap files and schemas.
package catalog

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"heapdb/pkg/dberror"
	"heapdb/pkg/logging"
	"heapdb/pkg/primitives"
	"heapdb/pkg/storage/page"
	"heapdb/pkg/tuple"
)

// TableManager is the in-memory catalog. It keeps name and id maps in step
// and is safe for concurrent use.
type TableManager struct {
	nameToTable map[string]*TableInfo
	idToTable   map[primitives.TableID]*TableInfo
	mutex       sync.RWMutex
}

func NewTableManager() *TableManager {
	return &TableManager{
		nameToTable: make(map[string]*TableInfo),
		idToTable:   make(map[primitives.TableID]*TableInfo),
	}
}

// AddTable registers f under name with primary key pKey. An empty name is
// replaced by a random UUID. A table already registered under the same name
// or id is replaced; the last add wins.
//
// Returns:
//   - string: The name the table was registered under
//   - error: INVALID_ARGUMENT if f is nil
func (tm *TableManager) AddTable(f page.DbFile, name, pKey string) (string, error) {
	if f == nil {
		return "", dberror.New(dberror.ErrCategoryProtocol, dberror.CodeInvalidArg, "file cannot be nil").
			At("AddTable", "TableManager")
	}
	if name == "" {
		name = uuid.NewString()
	}

	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	info := newTableInfo(f, name, pKey)
	id := f.GetID()

	tm.removeExistingTable(name, id)
	tm.nameToTable[name] = info
	tm.idToTable[id] = info

	logging.WithTable(name, id).Info("table registered", "schema", f.GetTupleDesc().String(), "pk", pKey)
	return name, nil
}

// removeExistingTable drops any entry sharing name or id. Caller holds the write lock.
func (tm *TableManager) removeExistingTable(name string, id primitives.TableID) {
	if existing, ok := tm.nameToTable[name]; ok {
		delete(tm.idToTable, existing.GetID())
	}
	if existing, ok := tm.idToTable[id]; ok {
		delete(tm.nameToTable, existing.Name)
	}
}

func (tm *TableManager) GetTableID(name string) (primitives.TableID, error) {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	info, ok := tm.nameToTable[name]
	if !ok {
		return 0, dberror.NoSuchTable(name)
	}
	return info.GetID(), nil
}

func (tm *TableManager) GetTableName(id primitives.TableID) (string, error) {
	info, err := tm.getTableInfo(id)
	if err != nil {
		return "", err
	}
	return info.Name, nil
}

func (tm *TableManager) GetPrimaryKey(id primitives.TableID) (string, error) {
	info, err := tm.getTableInfo(id)
	if err != nil {
		return "", err
	}
	return info.PrimaryKey, nil
}

func (tm *TableManager) GetDbFile(id primitives.TableID) (page.DbFile, error) {
	info, err := tm.getTableInfo(id)
	if err != nil {
		return nil, err
	}
	return info.File, nil
}

func (tm *TableManager) GetTupleDesc(id primitives.TableID) (*tuple.TupleDescription, error) {
	info, err := tm.getTableInfo(id)
	if err != nil {
		return nil, err
	}
	return info.TupleDesc(), nil
}

func (tm *TableManager) getTableInfo(id primitives.TableID) (*TableInfo, error) {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	info, ok := tm.idToTable[id]
	if !ok {
		return nil, dberror.NoSuchTable(id.String())
	}
	return info, nil
}

// TableIDs returns the registered ids in ascending order.
func (tm *TableManager) TableIDs() []primitives.TableID {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	ids := make([]primitives.TableID, 0, len(tm.idToTable))
	for id := range tm.idToTable {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// TableNames returns the registered names sorted alphabetically.
func (tm *TableManager) TableNames() []string {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	names := make([]string, 0, len(tm.nameToTable))
	for name := range tm.nameToTable {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// RemoveTable unregisters name and closes its file.
func (tm *TableManager) RemoveTable(name string) error {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	info, ok := tm.nameToTable[name]
	if !ok {
		return dberror.NoSuchTable(name)
	}

	delete(tm.nameToTable, name)
	delete(tm.idToTable, info.GetID())
	return info.File.Close()
}

// Clear unregisters every table without closing files.
func (tm *TableManager) Clear() {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	tm.nameToTable = make(map[string]*TableInfo)
	tm.idToTable = make(map[primitives.TableID]*TableInfo)
}

// Close closes every registered file and clears the catalog. Close errors
// are logged and the first is returned.
func (tm *TableManager) Close() error {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	var first error
	for _, info := range tm.idToTable {
		if err := info.File.Close(); err != nil {
			logging.WithTable(info.Name, info.GetID()).Warn("failed to close table file", "error", err)
			if first == nil {
				first = err
			}
		}
	}

	tm.nameToTable = make(map[string]*TableInfo)
	tm.idToTable = make(map[primitives.TableID]*TableInfo)
	return first
}

func (tm *TableManager) String() string {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	var builder strings.Builder
	fmt.Fprintf(&builder, "TableManager(tables=%d):\n", len(tm.nameToTable))

	names := make([]string, 0, len(tm.nameToTable))
	for name := range tm.nameToTable {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		fmt.Fprintf(&builder, "  %s\n", tm.nameToTable[name])
	}
	return builder.String()
}
