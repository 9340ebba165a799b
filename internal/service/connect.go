package service

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// SettlementServiceName is the fully-qualified name of the settlement service.
const SettlementServiceName = "dongyar.v1.SettlementService"

// Procedure paths.
const (
	SettleProcedure           = "/" + SettlementServiceName + "/Settle"
	GetSettlementProcedure    = "/" + SettlementServiceName + "/GetSettlement"
	DeleteSettlementProcedure = "/" + SettlementServiceName + "/DeleteSettlement"
)

// SettlementServiceHandler is implemented by SettlementService.
type SettlementServiceHandler interface {
	Settle(context.Context, *connect.Request[SettleRequest]) (*connect.Response[SettleResponse], error)
	GetSettlement(context.Context, *connect.Request[GetSettlementRequest]) (*connect.Response[GetSettlementResponse], error)
	DeleteSettlement(context.Context, *connect.Request[DeleteSettlementRequest]) (*connect.Response[DeleteSettlementResponse], error)
}

// NewSettlementServiceHandler builds an HTTP handler for the service and
// returns the path prefix to mount it on.
func NewSettlementServiceHandler(svc SettlementServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)

	settle := connect.NewUnaryHandler(SettleProcedure, svc.Settle, opts...)
	getSettlement := connect.NewUnaryHandler(GetSettlementProcedure, svc.GetSettlement, opts...)
	deleteSettlement := connect.NewUnaryHandler(DeleteSettlementProcedure, svc.DeleteSettlement, opts...)

	return "/" + SettlementServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case SettleProcedure:
			settle.ServeHTTP(w, r)
		case GetSettlementProcedure:
			getSettlement.ServeHTTP(w, r)
		case DeleteSettlementProcedure:
			deleteSettlement.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// SettlementClient is a client for the settlement service.
type SettlementClient struct {
	settle           *connect.Client[SettleRequest, SettleResponse]
	getSettlement    *connect.Client[GetSettlementRequest, GetSettlementResponse]
	deleteSettlement *connect.Client[DeleteSettlementRequest, DeleteSettlementResponse]
}

// NewSettlementClient creates a client for the service at baseURL
// (e.g. "http://localhost:8080").
func NewSettlementClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *SettlementClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(jsonCodec{})}, opts...)

	return &SettlementClient{
		settle:           connect.NewClient[SettleRequest, SettleResponse](httpClient, baseURL+SettleProcedure, opts...),
		getSettlement:    connect.NewClient[GetSettlementRequest, GetSettlementResponse](httpClient, baseURL+GetSettlementProcedure, opts...),
		deleteSettlement: connect.NewClient[DeleteSettlementRequest, DeleteSettlementResponse](httpClient, baseURL+DeleteSettlementProcedure, opts...),
	}
}

// Settle calls dongyar.v1.SettlementService.Settle.
func (c *SettlementClient) Settle(ctx context.Context, req *connect.Request[SettleRequest]) (*connect.Response[SettleResponse], error) {
	return c.settle.CallUnary(ctx, req)
}

// GetSettlement calls dongyar.v1.SettlementService.GetSettlement.
func (c *SettlementClient) GetSettlement(ctx context.Context, req *connect.Request[GetSettlementRequest]) (*connect.Response[GetSettlementResponse], error) {
	return c.getSettlement.CallUnary(ctx, req)
}

// DeleteSettlement calls dongyar.v1.SettlementService.DeleteSettlement.
func (c *SettlementClient) DeleteSettlement(ctx context.Context, req *connect.Request[DeleteSettlementRequest]) (*connect.Response[DeleteSettlementResponse], error) {
	return c.deleteSettlement.CallUnary(ctx, req)
}
