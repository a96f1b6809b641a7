package dberror

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDBError_Format(t *testing.T) {
	err := New(ErrCategoryConstraint, CodePageFull, "no empty slot").
		WithDetail("page %d", 3).
		At("AddTuple", "HeapPage")

	assert.Equal(t, "[PAGE_FULL] no empty slot: page 3 (operation: AddTuple, component: HeapPage)", err.Error())
	assert.Contains(t, err.FormatStack(), "Stack trace:")
}

func TestWrap_ForeignCause(t *testing.T) {
	err := Wrap(io.ErrUnexpectedEOF, ErrCategoryStorage, CodeIO, "ReadPage", "HeapFile")

	require.NotNil(t, err)
	assert.Equal(t, ErrCategoryStorage, err.Category)
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
	assert.NotEmpty(t, err.FormatStack())
}

func TestWrap_KeepsExistingDBError(t *testing.T) {
	inner := New(ErrCategoryConstraint, CodeSlotOccupied, "slot in use")
	wrapped := Wrap(inner, ErrCategoryStorage, CodeIO, "WriteTupleAt", "HeapPage")

	assert.Same(t, inner, wrapped)
	assert.Equal(t, "WriteTupleAt", inner.Operation)
	assert.Equal(t, ErrCategoryConstraint, wrapped.Category)
	assert.Nil(t, Wrap(nil, ErrCategoryStorage, CodeIO, "", ""))
}

func TestIsTransactionAborted_ThroughFmtWrap(t *testing.T) {
	err := fmt.Errorf("get page: %w", TransactionAborted("deadlock on page 1"))

	assert.True(t, IsTransactionAborted(err))
	assert.True(t, errors.Is(err, ErrTransactionAborted))
	assert.False(t, errors.Is(err, ErrIllegalState))

	cat, ok := CategoryOf(err)
	require.True(t, ok)
	assert.Equal(t, ErrCategoryConcurrency, cat)
}

func TestIsCode_NestedCause(t *testing.T) {
	inner := NoSuchTable("orders")
	outer := &DBError{Code: CodeIO, Category: ErrCategoryStorage, Message: "lookup", Cause: inner}

	assert.True(t, IsCode(outer, CodeNoSuchTable))
	assert.True(t, IsCode(outer, CodeIO))
	assert.False(t, IsCode(outer, CodePageFull))
	assert.False(t, IsCode(errors.New("plain"), CodeIO))
}
