package handler

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/core/service"
)

// The storefront gRPC service carries JSON payloads instead of protobuf.
// Clients select it with grpc.CallContentSubtype(JSONCodecName).
const (
	JSONCodecName         = "json"
	storefrontServiceName = "storefront.v1.Storefront"

	methodAddItem  = "/" + storefrontServiceName + "/AddItem"
	methodGetCart  = "/" + storefrontServiceName + "/GetCart"
	methodCheckout = "/" + storefrontServiceName + "/Checkout"
)

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string { return JSONCodecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type AddItemRequest struct {
	CourseID  string `json:"courseId,omitempty"`
	ProductID string `json:"productId,omitempty"`
	Quantity  int32  `json:"quantity,omitempty"`
}

type GetCartRequest struct{}

type CheckoutRequest struct {
	IdempotencyKey string `json:"idempotencyKey,omitempty"`
}

type CartReply struct {
	Cart *domain.Cart `json:"cart"`
}

type CartViewReply struct {
	Cart *domain.CartView `json:"cart"`
}

type CheckoutReply = service.CheckoutResult

type StorefrontServer interface {
	AddItem(context.Context, *AddItemRequest) (*CartReply, error)
	GetCart(context.Context, *GetCartRequest) (*CartViewReply, error)
	Checkout(context.Context, *CheckoutRequest) (*CheckoutReply, error)
}

func RegisterStorefrontServer(s grpc.ServiceRegistrar, srv StorefrontServer) {
	s.RegisterService(&storefrontServiceDesc, srv)
}

var storefrontServiceDesc = grpc.ServiceDesc{
	ServiceName: storefrontServiceName,
	HandlerType: (*StorefrontServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "AddItem", Handler: addItemHandler},
		{MethodName: "GetCart", Handler: getCartHandler},
		{MethodName: "Checkout", Handler: checkoutHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "storefront/v1/storefront.proto",
}

func addItemHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(AddItemRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(StorefrontServer).AddItem(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodAddItem}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(StorefrontServer).AddItem(ctx, req.(*AddItemRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func getCartHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetCartRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(StorefrontServer).GetCart(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGetCart}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(StorefrontServer).GetCart(ctx, req.(*GetCartRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func checkoutHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(CheckoutRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(StorefrontServer).Checkout(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodCheckout}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(StorefrontServer).Checkout(ctx, req.(*CheckoutRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// StorefrontClient calls the storefront service over an existing connection.
type StorefrontClient struct {
	cc grpc.ClientConnInterface
}

func NewStorefrontClient(cc grpc.ClientConnInterface) *StorefrontClient {
	return &StorefrontClient{cc: cc}
}

func (c *StorefrontClient) AddItem(ctx context.Context, in *AddItemRequest, opts ...grpc.CallOption) (*CartReply, error) {
	out := new(CartReply)
	if err := c.cc.Invoke(ctx, methodAddItem, in, out, withJSON(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *StorefrontClient) GetCart(ctx context.Context, in *GetCartRequest, opts ...grpc.CallOption) (*CartViewReply, error) {
	out := new(CartViewReply)
	if err := c.cc.Invoke(ctx, methodGetCart, in, out, withJSON(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *StorefrontClient) Checkout(ctx context.Context, in *CheckoutRequest, opts ...grpc.CallOption) (*CheckoutReply, error) {
	out := new(CheckoutReply)
	if err := c.cc.Invoke(ctx, methodCheckout, in, out, withJSON(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func withJSON(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(JSONCodecName)}, opts...)
}
