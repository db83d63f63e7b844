package grpc

import (
	"context"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/simaogato/investfolio-backend/internal/auth"
	"github.com/simaogato/investfolio-backend/internal/logger"
)

const bearerPrefix = "bearer "

// UnaryInterceptors chains authentication before call logging, so every logged
// call carries the owner id of its token
func UnaryInterceptors(tokens *auth.TokenService) grpc.ServerOption {
	return grpc.ChainUnaryInterceptor(
		AuthInterceptor(tokens),
		LoggingInterceptor(),
	)
}

// AuthInterceptor returns a gRPC unary server interceptor that validates
// the bearer token from the authorization metadata.
// If the token is missing or invalid, it returns status.Unauthenticated.
// If valid, the handler context carries the owner id and an owner-scoped logger.
func AuthInterceptor(tokens *auth.TokenService) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		reject := func(msg string) error {
			logger.FromContext(ctx).Warn("rpc rejected", "method", info.FullMethod, "code", codes.Unauthenticated.String(), "error", msg)
			return status.Error(codes.Unauthenticated, msg)
		}

		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, reject("missing metadata")
		}

		authHeaders := md.Get("authorization")
		if len(authHeaders) == 0 {
			return nil, reject("missing authorization header")
		}

		header := strings.TrimSpace(authHeaders[0])
		if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
			return nil, reject("authorization header must be a bearer token")
		}

		ownerID, err := tokens.Validate(strings.TrimSpace(header[len(bearerPrefix):]))
		if err != nil {
			return nil, reject("invalid token")
		}

		ctx = auth.WithOwner(ctx, ownerID)
		ctx = logger.WithContext(ctx, logger.FromContext(ctx).With("owner_id", ownerID.String()))
		return handler(ctx, req)
	}
}

// LoggingInterceptor logs every unary call with its method, status code and duration
func LoggingInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		code := status.Code(err)
		log := logger.FromContext(ctx).With(
			"method", info.FullMethod,
			"code", code.String(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		switch code {
		case codes.OK:
			log.Info("rpc completed")
		case codes.Internal, codes.Unavailable, codes.Unknown:
			log.Error("rpc failed", "error", err)
		default:
			log.Warn("rpc rejected", "error", err)
		}
		return resp, err
	}
}
