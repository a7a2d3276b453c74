package remote

import (
	"context"

	"google.golang.org/grpc"

	"github.com/paranovaq/game-shop/internal/core/domain"
)

const (
	serviceName = "gameshop.v1.Catalog"

	fetchCatalogMethod      = "/" + serviceName + "/FetchCatalog"
	commitStockChangeMethod = "/" + serviceName + "/CommitStockChange"
	upsertItemMethod        = "/" + serviceName + "/UpsertItem"
	deleteItemMethod        = "/" + serviceName + "/DeleteItem"
)

type FetchCatalogRequest struct{}

type FetchCatalogResponse struct {
	Items []domain.Item `json:"items"`
}

type CommitStockChangeRequest struct {
	ItemID   int64 `json:"itemId"`
	NewStock int   `json:"newStock"`
}

type CommitStockChangeResponse struct {
	Stock int `json:"stock"`
}

type UpsertItemRequest struct {
	Item domain.Item `json:"item"`
}

type UpsertItemResponse struct {
	Item domain.Item `json:"item"`
}

type DeleteItemRequest struct {
	ItemID int64 `json:"itemId"`
}

type DeleteItemResponse struct {
	Deleted bool `json:"deleted"`
}

// CatalogServer is implemented by the authoritative catalog.
type CatalogServer interface {
	FetchCatalog(context.Context, *FetchCatalogRequest) (*FetchCatalogResponse, error)
	CommitStockChange(context.Context, *CommitStockChangeRequest) (*CommitStockChangeResponse, error)
	UpsertItem(context.Context, *UpsertItemRequest) (*UpsertItemResponse, error)
	DeleteItem(context.Context, *DeleteItemRequest) (*DeleteItemResponse, error)
}

func RegisterCatalogServer(s grpc.ServiceRegistrar, srv CatalogServer) {
	s.RegisterService(&catalogServiceDesc, srv)
}

var catalogServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*CatalogServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "FetchCatalog", Handler: fetchCatalogHandler},
		{MethodName: "CommitStockChange", Handler: commitStockChangeHandler},
		{MethodName: "UpsertItem", Handler: upsertItemHandler},
		{MethodName: "DeleteItem", Handler: deleteItemHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gameshop/v1/catalog",
}

func fetchCatalogHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(FetchCatalogRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CatalogServer).FetchCatalog(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fetchCatalogMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CatalogServer).FetchCatalog(ctx, req.(*FetchCatalogRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func commitStockChangeHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(CommitStockChangeRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CatalogServer).CommitStockChange(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: commitStockChangeMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CatalogServer).CommitStockChange(ctx, req.(*CommitStockChangeRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func upsertItemHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(UpsertItemRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CatalogServer).UpsertItem(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: upsertItemMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CatalogServer).UpsertItem(ctx, req.(*UpsertItemRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func deleteItemHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(DeleteItemRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CatalogServer).DeleteItem(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: deleteItemMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CatalogServer).DeleteItem(ctx, req.(*DeleteItemRequest))
	}
	return interceptor(ctx, in, info, handler)
}
