package grpc

import (
	"context"

	"google.golang.org/genproto/googleapis/api/httpbody"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "haccp.v1.MonitoringTaskService"

const (
	MethodListTasks     = "/" + ServiceName + "/ListTasks"
	MethodGetTask       = "/" + ServiceName + "/GetTask"
	MethodDuplicateTask = "/" + ServiceName + "/DuplicateTask"
	MethodDeleteTask    = "/" + ServiceName + "/DeleteTask"
	MethodGetAvatar     = "/" + ServiceName + "/GetAvatar"
)

// MonitoringTaskServer - задачи мониторинга поверх gRPC.
// Сообщения - structpb.Struct с теми же полями, что и в REST API.
type MonitoringTaskServer interface {
	ListTasks(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetTask(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	DuplicateTask(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	DeleteTask(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error)
	GetAvatar(ctx context.Context, req *emptypb.Empty) (*httpbody.HttpBody, error)
}

func RegisterMonitoringTaskServer(s grpc.ServiceRegistrar, srv MonitoringTaskServer) {
	s.RegisterService(&monitoringTaskServiceDesc, srv)
}

var monitoringTaskServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MonitoringTaskServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListTasks", Handler: listTasksHandler},
		{MethodName: "GetTask", Handler: getTaskHandler},
		{MethodName: "DuplicateTask", Handler: duplicateTaskHandler},
		{MethodName: "DeleteTask", Handler: deleteTaskHandler},
		{MethodName: "GetAvatar", Handler: getAvatarHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "haccp/v1/monitoring_task.proto",
}

func unary[Req any, Resp any](
	fullMethod string,
	newReq func() Req,
	call func(srv MonitoringTaskServer, ctx context.Context, req Req) (Resp, error),
) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := newReq()
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(MonitoringTaskServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(MonitoringTaskServer), ctx, req.(Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var (
	listTasksHandler = unary(MethodListTasks, newStruct,
		func(srv MonitoringTaskServer, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
			return srv.ListTasks(ctx, req)
		})
	getTaskHandler = unary(MethodGetTask, newStruct,
		func(srv MonitoringTaskServer, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
			return srv.GetTask(ctx, req)
		})
	duplicateTaskHandler = unary(MethodDuplicateTask, newStruct,
		func(srv MonitoringTaskServer, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
			return srv.DuplicateTask(ctx, req)
		})
	deleteTaskHandler = unary(MethodDeleteTask, newStruct,
		func(srv MonitoringTaskServer, ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
			return srv.DeleteTask(ctx, req)
		})
	getAvatarHandler = unary(MethodGetAvatar, func() *emptypb.Empty { return &emptypb.Empty{} },
		func(srv MonitoringTaskServer, ctx context.Context, req *emptypb.Empty) (*httpbody.HttpBody, error) {
			return srv.GetAvatar(ctx, req)
		})
)

func newStruct() *structpb.Struct {
	return &structpb.Struct{}
}
