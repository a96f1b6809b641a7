package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heapdb/pkg/dberror"
	"heapdb/pkg/primitives"
	"heapdb/pkg/storage/heap"
	"heapdb/pkg/tuple"
	"heapdb/pkg/types"
)

func newHeapFile(t *testing.T, dir, name string) *heap.HeapFile {
	t.Helper()
	td, err := tuple.NewTupleDesc([]types.Type{types.IntType}, []string{"id"})
	require.NoError(t, err)
	hf, err := heap.NewHeapFile(primitives.Filepath(filepath.Join(dir, name+".dat")), td, 4096)
	require.NoError(t, err)
	return hf
}

func TestTableManager(t *testing.T) {
	dir := t.TempDir()
	tm := NewTableManager()
	defer tm.Close()

	users := newHeapFile(t, dir, "users")
	name, err := tm.AddTable(users, "users", "id")
	require.NoError(t, err)
	assert.Equal(t, "users", name)

	id, err := tm.GetTableID("users")
	require.NoError(t, err)
	assert.Equal(t, users.GetID(), id)

	got, err := tm.GetTableName(id)
	require.NoError(t, err)
	assert.Equal(t, "users", got)

	pk, err := tm.GetPrimaryKey(id)
	require.NoError(t, err)
	assert.Equal(t, "id", pk)

	f, err := tm.GetDbFile(id)
	require.NoError(t, err)
	assert.Same(t, users, f)

	td, err := tm.GetTupleDesc(id)
	require.NoError(t, err)
	assert.True(t, td.Equals(users.GetTupleDesc()))

	assert.Contains(t, tm.String(), "users")
}

func TestTableManager_Missing(t *testing.T) {
	tm := NewTableManager()

	_, err := tm.GetTableID("nope")
	assert.True(t, dberror.IsCode(err, dberror.CodeNoSuchTable))
	_, err = tm.GetDbFile(primitives.TableID(1))
	assert.True(t, dberror.IsCode(err, dberror.CodeNoSuchTable))
	_, err = tm.GetTupleDesc(primitives.TableID(1))
	assert.True(t, dberror.IsCode(err, dberror.CodeNoSuchTable))
	_, err = tm.GetTableName(primitives.TableID(1))
	assert.True(t, dberror.IsCode(err, dberror.CodeNoSuchTable))
	_, err = tm.GetPrimaryKey(primitives.TableID(1))
	assert.True(t, dberror.IsCode(err, dberror.CodeNoSuchTable))
	assert.True(t, dberror.IsCode(tm.RemoveTable("nope"), dberror.CodeNoSuchTable))

	_, err = tm.AddTable(nil, "x", "")
	assert.True(t, dberror.IsCode(err, dberror.CodeInvalidArg))
}

func TestTableManager_LastAddWins(t *testing.T) {
	dir := t.TempDir()
	tm := NewTableManager()
	defer tm.Close()

	first := newHeapFile(t, dir, "a")
	second := newHeapFile(t, dir, "b")
	_, err := tm.AddTable(first, "t", "")
	require.NoError(t, err)
	_, err = tm.AddTable(second, "t", "")
	require.NoError(t, err)

	id, err := tm.GetTableID("t")
	require.NoError(t, err)
	assert.Equal(t, second.GetID(), id)
	assert.Equal(t, []primitives.TableID{second.GetID()}, tm.TableIDs())

	_, err = tm.GetDbFile(first.GetID())
	assert.True(t, dberror.IsCode(err, dberror.CodeNoSuchTable))
	require.NoError(t, first.Close())
}

func TestTableManager_GeneratedName(t *testing.T) {
	tm := NewTableManager()
	defer tm.Close()

	name, err := tm.AddTable(newHeapFile(t, t.TempDir(), "anon"), "", "")
	require.NoError(t, err)
	_, err = uuid.Parse(name)
	assert.NoError(t, err)
	assert.Equal(t, []string{name}, tm.TableNames())
}

func TestTableManager_RemoveAndClear(t *testing.T) {
	dir := t.TempDir()
	tm := NewTableManager()

	a := newHeapFile(t, dir, "a")
	b := newHeapFile(t, dir, "b")
	_, err := tm.AddTable(a, "a", "")
	require.NoError(t, err)
	_, err = tm.AddTable(b, "b", "")
	require.NoError(t, err)
	assert.Len(t, tm.TableIDs(), 2)

	require.NoError(t, tm.RemoveTable("a"))
	assert.Equal(t, []string{"b"}, tm.TableNames())

	tm.Clear()
	assert.Empty(t, tm.TableIDs())
	require.NoError(t, b.Close())
}

func TestParseSchema(t *testing.T) {
	schemas, err := ParseSchema("test", `
# two tables
users (id int pk, name string)
Orders (id INT, user_id int, note STRING)
`)
	require.NoError(t, err)
	require.Len(t, schemas, 2)

	assert.Equal(t, "users", schemas[0].Name)
	assert.Equal(t, "id", schemas[0].PrimaryKey)
	assert.Equal(t, []types.Type{types.IntType, types.StringType}, schemas[0].TupleDesc.Types)
	assert.Equal(t, []string{"id", "name"}, schemas[0].TupleDesc.FieldNames)

	assert.Equal(t, "Orders", schemas[1].Name)
	assert.Empty(t, schemas[1].PrimaryKey)
	assert.Equal(t, 3, schemas[1].TupleDesc.NumFields())
}

func TestParseSchema_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"unknown type", "t (a float)", "unknown type float"},
		{"unknown annotation", "t (a int unique)", "unknown annotation unique"},
		{"missing paren", "t (a int", "invalid catalog entry"},
		{"no columns", "t ()", "invalid catalog entry"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSchema("test", tt.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadSchema(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.txt")
	require.NoError(t, os.WriteFile(path, []byte("users (id int pk, name string)\nitems (sku int)\n"), 0o644))

	tm := NewTableManager()
	defer tm.Close()

	names, err := tm.LoadSchema(primitives.Filepath(path), 4096)
	require.NoError(t, err)
	assert.Equal(t, []string{"users", "items"}, names)
	assert.FileExists(t, filepath.Join(dir, "users.dat"))
	assert.FileExists(t, filepath.Join(dir, "items.dat"))

	id, err := tm.GetTableID("users")
	require.NoError(t, err)
	pk, err := tm.GetPrimaryKey(id)
	require.NoError(t, err)
	assert.Equal(t, "id", pk)

	_, err = tm.LoadSchema(primitives.Filepath(filepath.Join(dir, "missing.txt")), 4096)
	assert.Error(t, err)
}
