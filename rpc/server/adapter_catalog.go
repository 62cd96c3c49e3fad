package server

import (
	"context"

	"github.com/ValentinKolb/flatmsg/lib/catalog"
	"github.com/ValentinKolb/flatmsg/lib/marshal"
	"github.com/ValentinKolb/flatmsg/rpc/common"
)

// NewCatalogServerAdapter creates a dispatcher serving the catalog methods on top of
// store. The catalog types are registered into e.
func NewCatalogServerAdapter(e *marshal.Engine, store catalog.IStore) (*Dispatcher, error) {
	if err := common.RegisterCatalogTypes(e); err != nil {
		return nil, err
	}
	d := NewDispatcher(e)
	if err := RegisterCatalog(d, store); err != nil {
		return nil, err
	}
	return d, nil
}

// RegisterCatalog registers the catalog methods in d. The catalog types must be
// registered in the engine of d.
func RegisterCatalog(d *Dispatcher, store catalog.IStore) error {
	if err := Register(d, common.MethodCatalogPut, func(ctx context.Context, item catalog.Item) (common.Empty, error) {
		return common.Empty{}, store.Put(ctx, item)
	}); err != nil {
		return err
	}

	if err := Register(d, common.MethodCatalogGet, func(ctx context.Context, req common.ItemID) (common.GetResult, error) {
		item, ok, err := store.Get(ctx, req.ID)
		if err != nil || !ok {
			return common.GetResult{}, err
		}
		return common.GetResult{Found: true, Item: &item}, nil
	}); err != nil {
		return err
	}

	if err := Register(d, common.MethodCatalogDelete, func(ctx context.Context, req common.ItemID) (common.Empty, error) {
		return common.Empty{}, store.Delete(ctx, req.ID)
	}); err != nil {
		return err
	}

	if err := Register(d, common.MethodCatalogList, func(ctx context.Context, _ common.Empty) ([]catalog.Item, error) {
		return store.List(ctx)
	}); err != nil {
		return err
	}

	return Register(d, common.MethodCatalogHas, func(ctx context.Context, req common.ItemID) (bool, error) {
		return store.Has(ctx, req.ID)
	})
}
