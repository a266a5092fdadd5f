package grpc

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func incoming(kv ...string) context.Context {
	return metadata.NewIncomingContext(context.Background(), metadata.Pairs(kv...))
}

func TestInterceptor_PublicMethodsSkipToken(t *testing.T) {
	s := newTestServer(&fakeUsers{})

	for _, m := range []string{methodRegister, methodLogin, "/grpc.health.v1.Health/Check"} {
		called := false
		h := func(ctx context.Context, req any) (any, error) {
			called = true
			return "ok", nil
		}

		resp, err := s.accessTokenInterceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: m}, h)
		require.NoError(t, err, m)
		assert.True(t, called, m)
		assert.Equal(t, "ok", resp)
	}
}

func TestInterceptor_MissingToken(t *testing.T) {
	s := newTestServer(&fakeUsers{})

	h := func(ctx context.Context, req any) (any, error) {
		t.Fatal("handler must not run without a token")
		return nil, nil
	}

	for _, ctx := range []context.Context{
		context.Background(),
		incoming("authorization", "Basic YWxpY2U6c2VjcmV0"),
		incoming("authorization", "Bearer"),
	} {
		_, err := s.accessTokenInterceptor(ctx, nil, &grpc.UnaryServerInfo{FullMethod: methodMe}, h)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
		assert.Equal(t, "missing token", status.Convert(err).Message())
	}
}

func TestInterceptor_InvalidToken(t *testing.T) {
	s := newTestServer(&fakeUsers{tokens: map[string]*models.Identity{"good": alice}})

	h := func(ctx context.Context, req any) (any, error) {
		t.Fatal("handler must not run for a rejected token")
		return nil, nil
	}

	_, err := s.accessTokenInterceptor(incoming("authorization", "Bearer forged"), nil, &grpc.UnaryServerInfo{FullMethod: methodMe}, h)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Equal(t, "could not validate user", status.Convert(err).Message())
}

func TestInterceptor_ResolverFailureIsInternal(t *testing.T) {
	s := newTestServer(&fakeUsers{resolveErr: common.ErrorInternal})

	h := func(ctx context.Context, req any) (any, error) { return nil, nil }

	_, err := s.accessTokenInterceptor(incoming("authorization", "Bearer t"), nil, &grpc.UnaryServerInfo{FullMethod: methodMe}, h)
	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestInterceptor_ValidToken_SetsIdentity(t *testing.T) {
	s := newTestServer(&fakeUsers{tokens: map[string]*models.Identity{"good": alice}})

	for _, ctx := range []context.Context{
		incoming("authorization", "Bearer good"),
		incoming("authorization", "bearer good"),
		incoming("access_token", "good"),
	} {
		var got *models.Identity
		h := func(ctx context.Context, req any) (any, error) {
			id, ok := IdentityFromContext(ctx)
			require.True(t, ok)
			got = id
			return "ok", nil
		}

		_, err := s.accessTokenInterceptor(ctx, nil, &grpc.UnaryServerInfo{FullMethod: methodMe}, h)
		require.NoError(t, err)
		assert.Equal(t, alice, got)
	}
}

func TestIdentityFromContext_Empty(t *testing.T) {
	_, ok := IdentityFromContext(context.Background())
	assert.False(t, ok)
}

func TestLoggingInterceptor_PassesThrough(t *testing.T) {
	s := newTestServer(&fakeUsers{})

	resp, err := s.loggingInterceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: methodLogin},
		func(ctx context.Context, req any) (any, error) {
			return nil, status.Error(codes.Unauthenticated, "no")
		})
	assert.Nil(t, resp)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}
