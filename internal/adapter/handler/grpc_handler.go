package handler

import (
	"context"
	"log/slog"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/core/service"
	"github.com/rl1809/storefront/internal/port"
)

var _ StorefrontServer = (*GRPCHandler)(nil)

type GRPCHandler struct {
	carts    *service.CartService
	checkout *service.CheckoutService
}

func NewGRPCHandler(carts *service.CartService, checkout *service.CheckoutService) *GRPCHandler {
	return &GRPCHandler{carts: carts, checkout: checkout}
}

func (h *GRPCHandler) AddItem(ctx context.Context, req *AddItemRequest) (*CartReply, error) {
	id, ok := identityFrom(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing identity")
	}

	cart, err := h.carts.AddItem(ctx, id.UserID, service.AddItemRequest{
		CourseID:  req.CourseID,
		ProductID: req.ProductID,
		Quantity:  int(req.Quantity),
	})
	if err != nil {
		return nil, grpcError(ctx, err)
	}
	return &CartReply{Cart: cart}, nil
}

func (h *GRPCHandler) GetCart(ctx context.Context, req *GetCartRequest) (*CartViewReply, error) {
	id, ok := identityFrom(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing identity")
	}

	cart, err := h.carts.GetCart(ctx, id.UserID)
	if err != nil {
		return nil, grpcError(ctx, err)
	}
	return &CartViewReply{Cart: cart}, nil
}

func (h *GRPCHandler) Checkout(ctx context.Context, req *CheckoutRequest) (*CheckoutReply, error) {
	id, ok := identityFrom(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing identity")
	}

	result, err := h.checkout.Checkout(ctx, id.UserID, req.IdempotencyKey)
	if err != nil {
		return nil, grpcError(ctx, err)
	}
	return result, nil
}

// AuthInterceptor resolves the bearer token in the "authorization" metadata
// entry to a caller identity.
func AuthInterceptor(tokens port.TokenVerifier) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		md, _ := metadata.FromIncomingContext(ctx)
		var token string
		if vals := md.Get("authorization"); len(vals) > 0 {
			token = strings.TrimSpace(strings.TrimPrefix(vals[0], "Bearer "))
		}
		if token == "" {
			return nil, status.Error(codes.Unauthenticated, "no token, authorization denied")
		}

		id, err := tokens.Verify(ctx, token)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, "token is not valid")
		}
		return handler(withIdentity(ctx, id), req)
	}
}

func grpcError(ctx context.Context, err error) error {
	kind := domain.KindOf(err)
	code := grpcCode(kind)
	if code == codes.Internal {
		slog.ErrorContext(ctx, "rpc failed", "error", err)
		return status.Error(codes.Internal, "internal error")
	}
	return status.Error(code, string(kind)+": "+err.Error())
}

func grpcCode(kind domain.Kind) codes.Code {
	switch kind {
	case domain.KindNotFound:
		return codes.NotFound
	case domain.KindDuplicateItem, domain.KindDuplicateRequest:
		return codes.AlreadyExists
	case domain.KindInsufficientStock, domain.KindOutOfStock, domain.KindEmptyCart,
		domain.KindItemNotFound, domain.KindInvalidPrice:
		return codes.FailedPrecondition
	case domain.KindUnauthorized:
		return codes.Unauthenticated
	case domain.KindForbidden:
		return codes.PermissionDenied
	case domain.KindCheckoutInProgress:
		return codes.Aborted
	case domain.KindStorageFailure:
		return codes.Internal
	default:
		return codes.InvalidArgument
	}
}
