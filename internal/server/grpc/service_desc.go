package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const authServiceName = "gophauth.v1.AuthService"

const (
	methodRegister = "/" + authServiceName + "/Register"
	methodLogin    = "/" + authServiceName + "/Login"
	methodMe       = "/" + authServiceName + "/Me"
	methodDelete   = "/" + authServiceName + "/Delete"
)

// authServiceServer is the handler set behind authServiceDesc. Payloads are
// google.protobuf.Struct so clients need no generated stubs.
type authServiceServer interface {
	Register(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Login(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Me(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Delete(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(authServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryCall) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(authServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(authServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var authServiceDesc = grpc.ServiceDesc{
	ServiceName: authServiceName,
	HandlerType: (*authServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Register", Handler: unaryHandler(methodRegister, authServiceServer.Register)},
		{MethodName: "Login", Handler: unaryHandler(methodLogin, authServiceServer.Login)},
		{MethodName: "Me", Handler: unaryHandler(methodMe, authServiceServer.Me)},
		{MethodName: "Delete", Handler: unaryHandler(methodDelete, authServiceServer.Delete)},
	},
	Streams: []grpc.StreamDesc{},
}
