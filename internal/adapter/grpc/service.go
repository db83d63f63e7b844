package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully-qualified gRPC service name
const ServiceName = "investfolio.v1.InvestmentService"

// InvestmentServiceServer is the server API of ServiceName.
// Every method takes and returns a google.protobuf.Struct.
type InvestmentServiceServer interface {
	CreateOperation(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListOperations(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateOperation(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteOperation(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetSummary(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetPosition(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetInvestedAmountByDate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetInvestmentCurrentValuation(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetPortfolioCurrentValuation(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetHistory(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(InvestmentServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// ServiceDesc describes ServiceName for grpc.Server.RegisterService
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*InvestmentServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		method("CreateOperation", InvestmentServiceServer.CreateOperation),
		method("ListOperations", InvestmentServiceServer.ListOperations),
		method("UpdateOperation", InvestmentServiceServer.UpdateOperation),
		method("DeleteOperation", InvestmentServiceServer.DeleteOperation),
		method("GetSummary", InvestmentServiceServer.GetSummary),
		method("GetPosition", InvestmentServiceServer.GetPosition),
		method("GetInvestedAmountByDate", InvestmentServiceServer.GetInvestedAmountByDate),
		method("GetInvestmentCurrentValuation", InvestmentServiceServer.GetInvestmentCurrentValuation),
		method("GetPortfolioCurrentValuation", InvestmentServiceServer.GetPortfolioCurrentValuation),
		method("GetHistory", InvestmentServiceServer.GetHistory),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "investfolio/v1/investment.proto",
}

// RegisterInvestmentServiceServer registers srv on s
func RegisterInvestmentServiceServer(s grpc.ServiceRegistrar, srv InvestmentServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func method(name string, call unaryMethod) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(InvestmentServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: fullMethod,
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(InvestmentServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// Client calls ServiceName over a client connection
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient creates a new Client
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Call invokes method with req, for example Call(ctx, "GetPosition", req)
func (c *Client) Call(ctx context.Context, method string, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if req == nil {
		req = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
