package handler

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/SiraphopSangkrit/yesweb-test-siraphop/internal/adapter/metrics"
	"github.com/SiraphopSangkrit/yesweb-test-siraphop/internal/core/domain"
	"github.com/SiraphopSangkrit/yesweb-test-siraphop/internal/core/service"
)

const (
	CartServiceName = "foodorder.v1.CartService"

	SessionMetadataKey   = "session-id"
	UserIDMetadataKey    = "user-id"
	UserRolesMetadataKey = "user-roles"
)

type GetCartRequest struct{}

type AddItemRequest struct {
	ItemID   int64 `json:"item_id"`
	Quantity int   `json:"quantity"`
}

type UpdateQuantityRequest struct {
	ItemID   int64 `json:"item_id"`
	Quantity int   `json:"quantity"`
}

type RemoveItemRequest struct {
	ItemID int64 `json:"item_id"`
}

type ClearCartRequest struct{}

type CheckoutRequest struct {
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

type CartResponse struct {
	Cart domain.CartProjection `json:"cart"`
}

type ClearCartResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type CheckoutResponse struct {
	OrderID     int64              `json:"order_id"`
	Status      domain.OrderStatus `json:"status"`
	TotalAmount decimal.Decimal    `json:"total_amount"`
}

type CartServiceServer interface {
	GetCart(context.Context, *GetCartRequest) (*CartResponse, error)
	AddItem(context.Context, *AddItemRequest) (*CartResponse, error)
	UpdateQuantity(context.Context, *UpdateQuantityRequest) (*CartResponse, error)
	RemoveItem(context.Context, *RemoveItemRequest) (*CartResponse, error)
	ClearCart(context.Context, *ClearCartRequest) (*ClearCartResponse, error)
	Checkout(context.Context, *CheckoutRequest) (*CheckoutResponse, error)
}

type GRPCHandler struct {
	cartService     *service.CartService
	checkoutService *service.CheckoutService
	metrics         *metrics.Metrics
}

func NewGRPCHandler(cartService *service.CartService, checkoutService *service.CheckoutService, m *metrics.Metrics) *GRPCHandler {
	return &GRPCHandler{
		cartService:     cartService,
		checkoutService: checkoutService,
		metrics:         m,
	}
}

func RegisterCartServiceServer(s grpc.ServiceRegistrar, srv CartServiceServer) {
	s.RegisterService(&cartServiceDesc, srv)
}

func (h *GRPCHandler) GetCart(ctx context.Context, req *GetCartRequest) (*CartResponse, error) {
	session, err := sessionFromMetadata(ctx)
	if err != nil {
		return nil, err
	}

	p, err := h.cartService.Get(ctx, session)
	if err != nil {
		return nil, toStatus(err)
	}
	return &CartResponse{Cart: p}, nil
}

func (h *GRPCHandler) AddItem(ctx context.Context, req *AddItemRequest) (*CartResponse, error) {
	session, err := sessionFromMetadata(ctx)
	if err != nil {
		return nil, err
	}

	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}

	err = h.cartService.Add(ctx, session, req.ItemID, quantity)
	h.metrics.CartOp("add", outcome(err))
	if err != nil {
		return nil, toStatus(err)
	}

	p, err := h.cartService.Get(ctx, session)
	if err != nil {
		return nil, toStatus(err)
	}
	return &CartResponse{Cart: p}, nil
}

func (h *GRPCHandler) UpdateQuantity(ctx context.Context, req *UpdateQuantityRequest) (*CartResponse, error) {
	session, err := sessionFromMetadata(ctx)
	if err != nil {
		return nil, err
	}

	p, err := h.cartService.UpdateQuantity(ctx, session, req.ItemID, req.Quantity)
	h.metrics.CartOp("update", outcome(err))
	if err != nil {
		return nil, toStatus(err)
	}
	return &CartResponse{Cart: p}, nil
}

func (h *GRPCHandler) RemoveItem(ctx context.Context, req *RemoveItemRequest) (*CartResponse, error) {
	session, err := sessionFromMetadata(ctx)
	if err != nil {
		return nil, err
	}

	p, err := h.cartService.Remove(ctx, session, req.ItemID)
	h.metrics.CartOp("remove", outcome(err))
	if err != nil {
		return nil, toStatus(err)
	}
	return &CartResponse{Cart: p}, nil
}

func (h *GRPCHandler) ClearCart(ctx context.Context, req *ClearCartRequest) (*ClearCartResponse, error) {
	session, err := sessionFromMetadata(ctx)
	if err != nil {
		return nil, err
	}

	err = h.cartService.Clear(ctx, session)
	h.metrics.CartOp("clear", outcome(err))
	if err != nil {
		return nil, toStatus(err)
	}
	return &ClearCartResponse{Success: true, Message: "cart cleared"}, nil
}

func (h *GRPCHandler) Checkout(ctx context.Context, req *CheckoutRequest) (*CheckoutResponse, error) {
	session, err := sessionFromMetadata(ctx)
	if err != nil {
		return nil, err
	}

	order, err := h.checkoutService.Checkout(ctx, session, actorFromMetadata(ctx), req.IdempotencyKey)
	h.metrics.Checkout(outcome(err))
	if err != nil {
		return nil, toStatus(err)
	}
	return &CheckoutResponse{
		OrderID:     order.ID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
	}, nil
}

func sessionFromMetadata(ctx context.Context) (string, error) {
	md, _ := metadata.FromIncomingContext(ctx)
	if v := md.Get(SessionMetadataKey); len(v) > 0 && strings.TrimSpace(v[0]) != "" {
		return strings.TrimSpace(v[0]), nil
	}
	return "", status.Error(codes.InvalidArgument, "missing session-id metadata")
}

func actorFromMetadata(ctx context.Context) *domain.Actor {
	md, _ := metadata.FromIncomingContext(ctx)
	return parseActor(first(md.Get(UserIDMetadataKey)), strings.Join(md.Get(UserRolesMetadataKey), ","))
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, service.ErrUnauthenticated):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, service.ErrForbidden):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, service.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, service.ErrUnavailable),
		errors.Is(err, service.ErrItemNoLongerAvailable),
		errors.Is(err, service.ErrEmptyCart):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, service.ErrDuplicateRequest):
		return status.Error(codes.AlreadyExists, err.Error())
	}
	log.Printf("grpc request failed: %v", err)
	return status.Error(codes.Internal, "internal error")
}

func unaryHandler[Req any, Resp any](method string, call func(CartServiceServer, context.Context, *Req) (Resp, error)) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(CartServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/" + CartServiceName + "/" + method,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(CartServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var cartServiceDesc = grpc.ServiceDesc{
	ServiceName: CartServiceName,
	HandlerType: (*CartServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetCart", Handler: unaryHandler("GetCart", CartServiceServer.GetCart)},
		{MethodName: "AddItem", Handler: unaryHandler("AddItem", CartServiceServer.AddItem)},
		{MethodName: "UpdateQuantity", Handler: unaryHandler("UpdateQuantity", CartServiceServer.UpdateQuantity)},
		{MethodName: "RemoveItem", Handler: unaryHandler("RemoveItem", CartServiceServer.RemoveItem)},
		{MethodName: "ClearCart", Handler: unaryHandler("ClearCart", CartServiceServer.ClearCart)},
		{MethodName: "Checkout", Handler: unaryHandler("Checkout", CartServiceServer.Checkout)},
	},
	Streams: []grpc.StreamDesc{},
}

// CartServiceClient calls the cart service with the JSON codec.
type CartServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewCartServiceClient(cc grpc.ClientConnInterface) *CartServiceClient {
	return &CartServiceClient{cc: cc}
}

func (c *CartServiceClient) invoke(ctx context.Context, method string, in, out any, opts ...grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(JSONCodecName)}, opts...)
	return c.cc.Invoke(ctx, "/"+CartServiceName+"/"+method, in, out, opts...)
}

func (c *CartServiceClient) GetCart(ctx context.Context, in *GetCartRequest, opts ...grpc.CallOption) (*CartResponse, error) {
	out := new(CartResponse)
	if err := c.invoke(ctx, "GetCart", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CartServiceClient) AddItem(ctx context.Context, in *AddItemRequest, opts ...grpc.CallOption) (*CartResponse, error) {
	out := new(CartResponse)
	if err := c.invoke(ctx, "AddItem", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CartServiceClient) UpdateQuantity(ctx context.Context, in *UpdateQuantityRequest, opts ...grpc.CallOption) (*CartResponse, error) {
	out := new(CartResponse)
	if err := c.invoke(ctx, "UpdateQuantity", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CartServiceClient) RemoveItem(ctx context.Context, in *RemoveItemRequest, opts ...grpc.CallOption) (*CartResponse, error) {
	out := new(CartResponse)
	if err := c.invoke(ctx, "RemoveItem", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CartServiceClient) ClearCart(ctx context.Context, in *ClearCartRequest, opts ...grpc.CallOption) (*ClearCartResponse, error) {
	out := new(ClearCartResponse)
	if err := c.invoke(ctx, "ClearCart", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CartServiceClient) Checkout(ctx context.Context, in *CheckoutRequest, opts ...grpc.CallOption) (*CheckoutResponse, error) {
	out := new(CheckoutResponse)
	if err := c.invoke(ctx, "Checkout", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
