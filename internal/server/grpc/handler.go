package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

func (s *GRPCServer) Register(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	in := models.NewUser{
		UserName:    field(req, "username"),
		Password:    field(req, "password"),
		FirstName:   field(req, "first_name"),
		LastName:    field(req, "last_name"),
		Role:        models.Role(field(req, "role")),
		PhoneNumber: field(req, "phone_num"),
	}
	if in.UserName == "" || in.Password == "" {
		return nil, status.Error(codes.InvalidArgument, "username and password are required")
	}
	// admins are created out of band with cmd/adduser
	if in.Role == models.RoleAdmin {
		return nil, status.Error(codes.PermissionDenied, "admin accounts cannot be self-registered")
	}

	user, err := s.users.Register(ctx, in)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrUsernameTaken):
			return nil, status.Error(codes.AlreadyExists, err.Error())
		case errors.Is(err, common.ErrInvalidRole):
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		return nil, status.Error(codes.Internal, "internal error")
	}

	return toStruct(map[string]any{
		"id":         user.ID,
		"username":   user.UserName,
		"first_name": user.FirstName,
		"last_name":  user.LastName,
		"role":       string(user.Role),
		"phone_num":  user.PhoneNumber,
	})
}

func (s *GRPCServer) Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	token, err := s.users.Login(ctx, field(req, "username"), field(req, "password"))
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			return nil, status.Error(codes.Unauthenticated, common.ErrorUnauthorized.Error())
		}
		return nil, status.Error(codes.Internal, "internal error")
	}

	return toStruct(map[string]any{
		"access_token": token,
		"token_type":   common.TokenTypeBearer,
	})
}

// Me echoes the identity resolved by accessTokenInterceptor.
func (s *GRPCServer) Me(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	id, ok := IdentityFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, common.ErrorUnauthorized.Error())
	}

	return toStruct(map[string]any{
		"id":         id.ID,
		"username":   id.UserName,
		"first_name": id.FirstName,
		"last_name":  id.LastName,
		"role":       string(id.Role),
	})
}

// Delete removes the user with the given id. Only admins may call it.
func (s *GRPCServer) Delete(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	caller, ok := IdentityFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, common.ErrorUnauthorized.Error())
	}
	if caller.Role != models.RoleAdmin {
		return nil, status.Error(codes.PermissionDenied, "admin role required")
	}

	id := int64(req.GetFields()["id"].GetNumberValue())
	if id <= 0 {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}

	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, status.Error(codes.NotFound, err.Error())
		}
		return nil, status.Error(codes.Internal, "internal error")
	}

	return toStruct(map[string]any{"id": id})
}

func field(req *structpb.Struct, key string) string {
	return req.GetFields()[key].GetStringValue()
}

func toStruct(m map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	return out, nil
}
