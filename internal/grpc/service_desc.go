package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "perfeval.v1.EvaluationService"

// EvaluationServer is the server API of perfeval.v1.EvaluationService. All
// payloads are JSON-shaped google.protobuf.Struct messages.
type EvaluationServer interface {
	GetRubric(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListSupervisors(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateSupervisor(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AddEmployee(context.Context, *structpb.Struct) (*structpb.Struct, error)
	OpenEvaluation(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SaveEvaluation(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GenerateReport(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RenderNarrative(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type structCall func(EvaluationServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, call structCall) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(EvaluationServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/" + ServiceName + "/" + method,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(EvaluationServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*EvaluationServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetRubric", Handler: unaryHandler("GetRubric", EvaluationServer.GetRubric)},
		{MethodName: "ListSupervisors", Handler: unaryHandler("ListSupervisors", EvaluationServer.ListSupervisors)},
		{MethodName: "CreateSupervisor", Handler: unaryHandler("CreateSupervisor", EvaluationServer.CreateSupervisor)},
		{MethodName: "AddEmployee", Handler: unaryHandler("AddEmployee", EvaluationServer.AddEmployee)},
		{MethodName: "OpenEvaluation", Handler: unaryHandler("OpenEvaluation", EvaluationServer.OpenEvaluation)},
		{MethodName: "SaveEvaluation", Handler: unaryHandler("SaveEvaluation", EvaluationServer.SaveEvaluation)},
		{MethodName: "GenerateReport", Handler: unaryHandler("GenerateReport", EvaluationServer.GenerateReport)},
		{MethodName: "RenderNarrative", Handler: unaryHandler("RenderNarrative", EvaluationServer.RenderNarrative)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "perfeval/v1/evaluation.proto",
}

// RegisterEvaluationServer registers srv on s.
func RegisterEvaluationServer(s grpc.ServiceRegistrar, srv EvaluationServer) {
	s.RegisterService(&serviceDesc, srv)
}

// EvaluationClient is a thin client for perfeval.v1.EvaluationService.
type EvaluationClient struct {
	cc grpc.ClientConnInterface
}

func NewEvaluationClient(cc grpc.ClientConnInterface) *EvaluationClient {
	return &EvaluationClient{cc: cc}
}

// Call invokes method with in and returns the response payload.
func (c *EvaluationClient) Call(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if in == nil {
		in = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
