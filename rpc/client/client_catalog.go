package client

import (
	"context"
	"errors"

	"github.com/ValentinKolb/flatmsg/lib/catalog"
	"github.com/ValentinKolb/flatmsg/rpc/common"
	"github.com/google/uuid"
)

// NewRPCCatalog creates a catalog store backed by the catalog methods of a remote
// server. The catalog types are registered in the engine of c.
func NewRPCCatalog(c *RPCClient) (catalog.IStore, error) {
	if err := common.RegisterCatalogTypes(c.engine); err != nil {
		return nil, err
	}
	return &rpcCatalog{c}, nil
}

type rpcCatalog struct {
	*RPCClient
}

// --------------------------------------------------------------------------
// Interface Methods (docu see the catalog package in interface.go)
// --------------------------------------------------------------------------

func (r *rpcCatalog) Put(ctx context.Context, item catalog.Item) error {
	_, err := Call[catalog.Item, common.Empty](ctx, r.RPCClient, common.MethodCatalogPut, item)
	return catalogError(err)
}

func (r *rpcCatalog) Get(ctx context.Context, id uuid.UUID) (catalog.Item, bool, error) {
	res, err := Call[common.ItemID, common.GetResult](ctx, r.RPCClient, common.MethodCatalogGet, common.ItemID{ID: id})
	if err != nil {
		return catalog.Item{}, false, catalogError(err)
	}
	if !res.Found || res.Item == nil {
		return catalog.Item{}, false, nil
	}
	return *res.Item, true, nil
}

func (r *rpcCatalog) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := Call[common.ItemID, common.Empty](ctx, r.RPCClient, common.MethodCatalogDelete, common.ItemID{ID: id})
	return catalogError(err)
}

func (r *rpcCatalog) List(ctx context.Context) ([]catalog.Item, error) {
	items, err := Call[common.Empty, []catalog.Item](ctx, r.RPCClient, common.MethodCatalogList, common.Empty{})
	return items, catalogError(err)
}

func (r *rpcCatalog) Has(ctx context.Context, id uuid.UUID) (bool, error) {
	ok, err := Call[common.ItemID, bool](ctx, r.RPCClient, common.MethodCatalogHas, common.ItemID{ID: id})
	return ok, catalogError(err)
}

// catalogError restores catalog errors from remote errors carrying a return code
func catalogError(err error) error {
	var remote *common.RemoteError
	if errors.As(err, &remote) && remote.Code != 0 {
		return catalog.NewError(catalog.RetCode(remote.Code), remote.Msg)
	}
	return err
}
