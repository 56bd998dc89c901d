package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/St1cky1/haccp-service/internal/api"
	"github.com/St1cky1/haccp-service/internal/entity"
	"github.com/St1cky1/haccp-service/internal/usecase"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"google.golang.org/genproto/googleapis/api/httpbody"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

type ctxKey struct{}

// GRPCServer - MonitoringTaskService поверх сервисов приложения
type GRPCServer struct {
	taskService    *usecase.TaskService
	profileService *usecase.ProfileService
	auth           api.Authenticator
	log            *zap.SugaredLogger
	server         *grpc.Server
}

func NewGRPCServer(taskService *usecase.TaskService, profileService *usecase.ProfileService, auth api.Authenticator, log *zap.SugaredLogger) *GRPCServer {
	s := &GRPCServer{
		taskService:    taskService,
		profileService: profileService,
		auth:           auth,
		log:            log,
	}
	s.server = grpc.NewServer(
		grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.authInterceptor),
	)
	RegisterMonitoringTaskServer(s.server, s)
	return s
}

func (s *GRPCServer) Start(port string) error {
	lis, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	s.log.Infow("gRPC server listening", "port", port)
	return s.Serve(lis)
}

// Serve - для тестов с bufconn
func (s *GRPCServer) Serve(lis net.Listener) error {
	return s.server.Serve(lis)
}

func (s *GRPCServer) Stop() {
	s.server.GracefulStop()
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.log.Infow("grpc request",
		"method", info.FullMethod,
		"code", status.Code(err).String(),
		"duration", time.Since(start),
	)
	return resp, err
}

// authInterceptor - все методы требуют access token в metadata authorization
func (s *GRPCServer) authInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	md, _ := metadata.FromIncomingContext(ctx)
	var token string
	for _, v := range md.Get("authorization") {
		if t, ok := api.BearerToken(v); ok {
			token = t
			break
		}
	}
	if token == "" {
		return nil, status.Error(codes.Unauthenticated, "missing bearer token")
	}

	principal, err := s.auth.Authenticate(token)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, err.Error())
	}
	return handler(context.WithValue(ctx, ctxKey{}, principal), req)
}

func principalFrom(ctx context.Context) (entity.Principal, error) {
	p, ok := ctx.Value(ctxKey{}).(entity.Principal)
	if !ok || p.UID == "" {
		return entity.Principal{}, status.Error(codes.Unauthenticated, "unauthenticated")
	}
	return p, nil
}

// ListTasks - фильтры q, type, inUse как в REST
func (s *GRPCServer) ListTasks(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	p, err := principalFrom(ctx)
	if err != nil {
		return nil, err
	}

	fields := req.GetFields()
	filter := entity.TaskFilter{
		Query: fields["q"].GetStringValue(),
		Type:  entity.TaskType(fields["type"].GetStringValue()),
	}
	if v, ok := fields["inUse"]; ok {
		if _, isBool := v.GetKind().(*structpb.Value_BoolValue); !isBool {
			return nil, status.Error(codes.InvalidArgument, "inUse must be a boolean")
		}
		inUse := v.GetBoolValue()
		filter.InUse = &inUse
	}

	tasks, err := s.taskService.ListTasks(ctx, p, filter)
	if err != nil {
		return nil, s.toStatus(err)
	}
	if tasks == nil {
		tasks = []entity.MonitoringTask{}
	}
	return toStruct(map[string]any{"tasks": tasks, "total": len(tasks)})
}

func (s *GRPCServer) GetTask(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	p, err := principalFrom(ctx)
	if err != nil {
		return nil, err
	}
	id, err := taskID(req)
	if err != nil {
		return nil, err
	}

	task, err := s.taskService.GetTask(ctx, p, id)
	if err != nil {
		return nil, s.toStatus(err)
	}
	return toStruct(task)
}

func (s *GRPCServer) DuplicateTask(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	p, err := principalFrom(ctx)
	if err != nil {
		return nil, err
	}
	id, err := taskID(req)
	if err != nil {
		return nil, err
	}

	task, err := s.taskService.DuplicateTask(ctx, p, id)
	if err != nil {
		return nil, s.toStatus(err)
	}
	return toStruct(task)
}

func (s *GRPCServer) DeleteTask(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	p, err := principalFrom(ctx)
	if err != nil {
		return nil, err
	}
	id, err := taskID(req)
	if err != nil {
		return nil, err
	}

	if err := s.taskService.DeleteTask(ctx, p, id); err != nil {
		return nil, s.toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

// GetAvatar отдает файл как есть; через gateway приходит с исходным Content-Type
func (s *GRPCServer) GetAvatar(ctx context.Context, _ *emptypb.Empty) (*httpbody.HttpBody, error) {
	p, err := principalFrom(ctx)
	if err != nil {
		return nil, err
	}

	file, err := s.profileService.DownloadAvatar(ctx, p)
	if err != nil {
		return nil, s.toStatus(err)
	}
	return &httpbody.HttpBody{
		ContentType: file.ContentType,
		Data:        file.Data,
	}, nil
}

func taskID(req *structpb.Struct) (string, error) {
	id := req.GetFields()["id"].GetStringValue()
	if id == "" {
		return "", status.Error(codes.InvalidArgument, "id is required")
	}
	return id, nil
}

// toStruct переводит значение в structpb через JSON представление
func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func (s *GRPCServer) toStatus(err error) error {
	code := CodeFor(err)
	if code == codes.Internal {
		s.log.Errorw("grpc request failed", "error", err)
		return status.Error(code, "internal error")
	}
	return status.Error(code, err.Error())
}

// CodeFor переводит доменную ошибку в код gRPC
func CodeFor(err error) codes.Code {
	switch {
	case entity.IsValidation(err),
		errors.Is(err, entity.ErrNoFieldsToUpdate),
		errors.Is(err, entity.ErrInvalidTaskData):
		return codes.InvalidArgument
	case errors.Is(err, entity.ErrInvalidCredentials),
		errors.Is(err, entity.ErrInvalidToken):
		return codes.Unauthenticated
	case errors.Is(err, entity.ErrForbidden),
		errors.Is(err, entity.ErrTenantNotProvisioned):
		return codes.PermissionDenied
	case errors.Is(err, entity.ErrTaskNotFound),
		errors.Is(err, entity.ErrUserNotFound),
		errors.Is(err, entity.ErrCompanyNotFound),
		errors.Is(err, entity.ErrReferenceNotFound),
		errors.Is(err, entity.ErrLocationNotFound),
		errors.Is(err, entity.ErrBlobNotFound):
		return codes.NotFound
	case errors.Is(err, entity.ErrCompanyExists),
		errors.Is(err, entity.ErrMemberExists),
		errors.Is(err, entity.ErrEmailTaken):
		return codes.AlreadyExists
	case errors.Is(err, entity.ErrWrongStep),
		errors.Is(err, entity.ErrNoDraft):
		return codes.FailedPrecondition
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	}
	return codes.Internal
}
