package grpc

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"google.golang.org/genproto/googleapis/api/httpbody"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// Dial открывает клиентское соединение к gRPC серверу для gateway
func Dial(grpcAddr string) (*grpc.ClientConn, error) {
	conn, err := grpc.NewClient(grpcAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to dial grpc: %w", err)
	}
	return conn, nil
}

// NewGatewayHandler создает HTTP Gateway для gRPC
func NewGatewayHandler(conn grpc.ClientConnInterface) (http.Handler, error) {
	mux := runtime.NewServeMux(
		runtime.WithMarshalerOption(runtime.MIMEWildcard, &runtime.HTTPBodyMarshaler{
			Marshaler: &runtime.JSONPb{
				MarshalOptions:   protojson.MarshalOptions{EmitUnpopulated: true},
				UnmarshalOptions: protojson.UnmarshalOptions{DiscardUnknown: true},
			},
		}),
	)

	routes := []struct {
		method  string
		pattern string
		handler runtime.HandlerFunc
	}{
		{http.MethodGet, "/v1/tasks", forward(mux, conn, MethodListTasks, listTasksRequest, newStruct)},
		{http.MethodGet, "/v1/tasks/{id}", forward(mux, conn, MethodGetTask, idRequest, newStruct)},
		{http.MethodPost, "/v1/tasks/{id}/duplicate", forward(mux, conn, MethodDuplicateTask, idRequest, newStruct)},
		{http.MethodDelete, "/v1/tasks/{id}", forward(mux, conn, MethodDeleteTask, idRequest, newEmpty)},
		{http.MethodGet, "/v1/avatar", forward(mux, conn, MethodGetAvatar, emptyRequest, newHTTPBody)},
	}
	for _, rt := range routes {
		if err := mux.HandlePath(rt.method, rt.pattern, rt.handler); err != nil {
			return nil, fmt.Errorf("failed to register gateway route %s %s: %w", rt.method, rt.pattern, err)
		}
	}

	return mux, nil
}

// forward собирает запрос из HTTP, вызывает метод и пишет ответ через marshaler gateway
func forward[Resp proto.Message](
	mux *runtime.ServeMux,
	conn grpc.ClientConnInterface,
	fullMethod string,
	build func(r *http.Request, params map[string]string) (proto.Message, error),
	newResp func() Resp,
) runtime.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, params map[string]string) {
		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		_, outbound := runtime.MarshalerForRequest(mux, r)

		annotated, err := runtime.AnnotateContext(ctx, mux, r, fullMethod)
		if err != nil {
			runtime.HTTPError(ctx, mux, outbound, w, r, err)
			return
		}

		in, err := build(r, params)
		if err != nil {
			runtime.HTTPError(annotated, mux, outbound, w, r, err)
			return
		}

		var header, trailer metadata.MD
		resp := newResp()
		err = conn.Invoke(annotated, fullMethod, in, resp, grpc.Header(&header), grpc.Trailer(&trailer))
		annotated = runtime.NewServerMetadataContext(annotated, runtime.ServerMetadata{
			HeaderMD:  header,
			TrailerMD: trailer,
		})
		if err != nil {
			runtime.HTTPError(annotated, mux, outbound, w, r, err)
			return
		}

		runtime.ForwardResponseMessage(annotated, mux, outbound, w, r, resp)
	}
}

func listTasksRequest(r *http.Request, _ map[string]string) (proto.Message, error) {
	query := r.URL.Query()
	fields := map[string]any{}
	if q := query.Get("q"); q != "" {
		fields["q"] = q
	}
	if t := query.Get("type"); t != "" {
		fields["type"] = t
	}
	if v := query.Get("inUse"); v != "" {
		inUse, err := strconv.ParseBool(v)
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "inUse: %v", err)
		}
		fields["inUse"] = inUse
	}
	return structpb.NewStruct(fields)
}

func idRequest(_ *http.Request, params map[string]string) (proto.Message, error) {
	id, ok := params["id"]
	if !ok || id == "" {
		return nil, status.Error(codes.InvalidArgument, "missing parameter id")
	}
	return structpb.NewStruct(map[string]any{"id": id})
}

func emptyRequest(*http.Request, map[string]string) (proto.Message, error) {
	return &emptypb.Empty{}, nil
}

func newEmpty() *emptypb.Empty {
	return &emptypb.Empty{}
}

func newHTTPBody() *httpbody.HttpBody {
	return &httpbody.HttpBody{}
}
