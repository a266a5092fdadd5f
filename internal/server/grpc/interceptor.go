package grpc

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const identityKey ctxKey = "identity"

const healthPrefix = "/grpc.health.v1.Health/"

// publicMethods skip token resolution; everything else requires a bearer token.
var publicMethods = map[string]bool{
	methodRegister: true,
	methodLogin:    true,
}

// IdentityFromContext returns the identity attached by accessTokenInterceptor.
func IdentityFromContext(ctx context.Context) (*models.Identity, bool) {
	id, ok := ctx.Value(identityKey).(*models.Identity)
	return id, ok && id != nil
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if publicMethods[info.FullMethod] || strings.HasPrefix(info.FullMethod, healthPrefix) {
		return handler(ctx, req)
	}

	token := bearerToken(ctx)
	if token == "" {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	identity, err := s.users.Resolve(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return nil, status.Error(codes.Unauthenticated, common.ErrorUnauthorized.Error())
		}
		return nil, status.Error(codes.Internal, "internal error")
	}

	return handler(context.WithValue(ctx, identityKey, identity), req)
}

// bearerToken reads "authorization: Bearer <token>", falling back to the
// bare access_token key.
func bearerToken(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}

	if values := md.Get(common.AuthorizationHeaderName); len(values) > 0 {
		scheme, token, found := strings.Cut(values[0], " ")
		if found && strings.EqualFold(scheme, "bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}

	if values := md.Get(common.AccessTokenHeaderName); len(values) > 0 {
		return values[0]
	}
	return ""
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	requestID := uuid.NewString()
	_ = grpc.SetHeader(ctx, metadata.Pairs("x-request-id", requestID))

	start := time.Now()
	resp, err := handler(ctx, req)

	s.logger.Info(ctx, "grpc call",
		"request_id", requestID,
		"method", info.FullMethod,
		"code", status.Code(err).String(),
		"duration", time.Since(start),
	)
	return resp, err
}
