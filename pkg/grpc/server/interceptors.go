package server

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// RequestIDHeader is the metadata key carrying the per-call request id.
const RequestIDHeader = "x-request-id"

type requestIDKey struct{}

// RequestIDFromContext returns the id set by RequestIDInterceptor.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// RequestIDInterceptor reuses an incoming x-request-id or mints a new one,
// stores it in the context and echoes it in the response header.
func RequestIDInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		var id string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if vals := md.Get(RequestIDHeader); len(vals) > 0 && vals[0] != "" {
				id = vals[0]
			}
		}
		if id == "" {
			id = uuid.NewString()
		}

		_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDHeader, id))
		return handler(context.WithValue(ctx, requestIDKey{}, id), req)
	}
}

// LoggingInterceptor creates a gRPC unary interceptor for request/response logging.
func LoggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		fields := []zap.Field{zap.String("method", info.FullMethod)}
		if id := RequestIDFromContext(ctx); id != "" {
			fields = append(fields, zap.String("request_id", id))
		}

		logger.Debug("gRPC request started", fields...)

		resp, err := handler(ctx, req)
		fields = append(fields, zap.Duration("duration", time.Since(start)))

		if err != nil {
			st, _ := status.FromError(err)
			logger.Warn("gRPC request failed", append(fields,
				zap.String("status_code", st.Code().String()),
				zap.String("status_message", st.Message()))...)
		} else {
			logger.Info("gRPC request completed", append(fields,
				zap.String("status_code", codes.OK.String()))...)
		}

		return resp, err
	}
}

// RecoveryInterceptor turns a panicking handler into codes.Internal.
func RecoveryInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("gRPC handler panicked",
					zap.String("method", info.FullMethod),
					zap.Any("panic", r),
					zap.ByteString("stack", debug.Stack()))
				resp, err = nil, status.Error(codes.Internal, "internal error")
			}
		}()
		return handler(ctx, req)
	}
}
