package common

import (
	"github.com/ValentinKolb/flatmsg/lib/catalog"
	"github.com/ValentinKolb/flatmsg/lib/marshal"
	"github.com/google/uuid"
)

// --------------------------------------------------------------------------
// Catalog Methods
// --------------------------------------------------------------------------

// Method names of the catalog service
const (
	MethodCatalogPut    = "catalog.put"
	MethodCatalogGet    = "catalog.get"
	MethodCatalogDelete = "catalog.delete"
	MethodCatalogList   = "catalog.list"
	MethodCatalogHas    = "catalog.has"
)

// ItemID is the argument of the catalog methods addressing a single item
type ItemID struct {
	ID uuid.UUID `flatmsg:"id"`
}

// GetResult is the result of catalog.get, Item is nil if the item was not found
type GetResult struct {
	Found bool          `flatmsg:"found"`
	Item  *catalog.Item `flatmsg:"item"`
}

// Empty is the argument or result of methods without one
type Empty struct{}

// RegisterCatalogTypes declares the catalog types and the argument and result types of
// the catalog methods in e. Client and server must use engines set up the same way.
func RegisterCatalogTypes(e *marshal.Engine) error {
	if err := catalog.Register(e); err != nil {
		return err
	}
	if err := marshal.RegisterDerived[ItemID](e); err != nil {
		return err
	}
	if err := marshal.RegisterDerived[GetResult](e); err != nil {
		return err
	}
	return marshal.RegisterDerived[Empty](e)
}
