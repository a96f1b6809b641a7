package dberror

import "errors"

// Storage codes.
const (
	CodePageNotFound    = "PAGE_NOT_FOUND"
	CodeInvalidPageData = "INVALID_PAGE_DATA"
	CodeIO              = "IO_ERROR"
	CodeTableMismatch   = "TABLE_MISMATCH"
	CodeBufferPoolFull  = "BUFFER_POOL_FULL"
)

// Concurrency codes.
const (
	CodeTransactionAborted = "TRANSACTION_ABORTED"
)

// Constraint codes.
const (
	CodePageFull      = "PAGE_FULL"
	CodeSlotOccupied  = "SLOT_OCCUPIED"
	CodeTupleNotFound = "TUPLE_NOT_FOUND"
)

// Protocol codes.
const (
	CodeIllegalState   = "ILLEGAL_STATE"
	CodeSchemaMismatch = "SCHEMA_MISMATCH"
	CodeNoMoreTuples   = "NO_MORE_TUPLES"
	CodeInvalidArg     = "INVALID_ARGUMENT"
)

// User codes.
const (
	CodeNoSuchTable = "NO_SUCH_TABLE"
)

// Sentinels usable with errors.Is; matching is by code.
var (
	ErrTransactionAborted = &DBError{Code: CodeTransactionAborted, Category: ErrCategoryConcurrency}
	ErrIllegalState       = &DBError{Code: CodeIllegalState, Category: ErrCategoryProtocol}
	ErrNoSuchTable        = &DBError{Code: CodeNoSuchTable, Category: ErrCategoryUser}
	ErrPageFull           = &DBError{Code: CodePageFull, Category: ErrCategoryConstraint}
)

// TransactionAborted builds the error returned to a deadlock victim.
func TransactionAborted(detail string) *DBError {
	return New(ErrCategoryConcurrency, CodeTransactionAborted, "transaction aborted").WithDetail("%s", detail)
}

// IllegalState builds the error returned when an iterator is used while closed.
func IllegalState(component string) *DBError {
	return New(ErrCategoryProtocol, CodeIllegalState, "iterator not opened").At("Next", component)
}

// NoSuchTable builds the error returned by catalog lookups that miss.
func NoSuchTable(what string) *DBError {
	return New(ErrCategoryUser, CodeNoSuchTable, "no such table").WithDetail("%s", what)
}

// IsCode reports whether any DBError in err's chain has the given code.
func IsCode(err error, code string) bool {
	var dbErr *DBError
	for err != nil {
		if !errors.As(err, &dbErr) {
			return false
		}
		if dbErr.Code == code {
			return true
		}
		err = dbErr.Cause
	}
	return false
}

// IsTransactionAborted reports whether err forces the enclosing transaction to abort.
func IsTransactionAborted(err error) bool {
	return IsCode(err, CodeTransactionAborted)
}

// CategoryOf returns the category of the outermost DBError in err's chain.
func CategoryOf(err error) (ErrorCategory, bool) {
	var dbErr *DBError
	if errors.As(err, &dbErr) {
		return dbErr.Category, true
	}
	return 0, false
}
