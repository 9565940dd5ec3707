// Package authz maps token service errors onto gRPC status codes for
// whatever transport layer fronts the service.
package authz

import (
	"context"

	"authz/internal/services/tokens"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// All validation failures collapse into this one message so a caller can
// never probe which check rejected the credential.
const invalidCredentialMsg = "invalid refresh credential"

// StatusFromError converts a tokens service error into a gRPC status error.
// Every caller-recoverable validation failure becomes the same
// codes.Unauthenticated response; everything else, including an inconsistent
// store/directory state, is an internal error.
func StatusFromError(err error) error {
	if err == nil {
		return nil
	}

	if tokens.IsValidationError(err) {
		return status.Error(codes.Unauthenticated, invalidCredentialMsg)
	}

	// ErrInconsistentState and any unexpected failure surface as a generic
	// server-side error; the real cause stays in the logs.
	return status.Error(codes.Internal, "internal server error")
}

// ErrorInterceptor returns a unary server interceptor applying
// StatusFromError to handler errors, so a generated service implementation
// can return the service's own error kinds directly.
func ErrorInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		resp, err := handler(ctx, req)
		if err == nil {
			return resp, nil
		}
		if _, ok := status.FromError(err); ok {
			// Already a status error, pass it through untouched.
			return resp, err
		}
		return resp, StatusFromError(err)
	}
}
