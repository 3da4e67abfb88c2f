package middleware

import (
	"context"
	"time"

	"github.com/Dhee091/Housing-Management-sub000/internal/platform/logger"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

func LoggingInterceptor(log *logger.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		duration := time.Since(start)
		if err != nil {
			log.Warn("gRPC request failed",
				zap.String("method", info.FullMethod),
				zap.Duration("duration", duration),
				zap.String("code", status.Code(err).String()),
				zap.Error(err))
		} else {
			log.Debug("gRPC request completed", zap.String("method", info.FullMethod), zap.Duration("duration", duration))
		}
		return resp, err
	}
}
