package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// IStore is the interface of a catalog backend. Items are stored in their flat message
// form, so every backend round trips through the marshal engine.
type IStore interface {
	// Put inserts or replaces an item. The item must have a non nil ID.
	Put(ctx context.Context, item Item) (err error)
	// Get returns the item with the given ID. The boolean return value indicates whether the item was found.
	Get(ctx context.Context, id uuid.UUID) (item Item, loaded bool, err error)
	// Delete removes an item. Deleting a missing item is not an error.
	Delete(ctx context.Context, id uuid.UUID) (err error)
	// List returns all items ordered by name, then ID.
	List(ctx context.Context) (items []Item, err error)
	// Has returns whether an item with the given ID exists.
	Has(ctx context.Context, id uuid.UUID) (loaded bool, err error)
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error wraps a return code and an error message.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message.
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("CatalogError (code %s): %s", e.Code, e.Msg)
}

// ErrorCode returns the numeric return code, used to carry the code over RPC
func (e *Error) ErrorCode() uint64 {
	return uint64(e.Code)
}

// NewError creates a new catalog Error with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess          RetCode = iota // 0: Command executed successfully.
	RetCInternalError                   // 1: Command failed due to an internal error.
	RetCInvalidOperation                // 2: Invalid operation, e.g. an item without ID.
	RetCCorruptItem                     // 3: A stored item could not be decoded.
)

func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "Success"
	case RetCInternalError:
		return "InternalError"
	case RetCInvalidOperation:
		return "InvalidOperation"
	case RetCCorruptItem:
		return "CorruptItem"
	default:
		return "Unknown"
	}
}
