package auth

import (
	"context"
	"errors"

	"connectrpc.com/connect"
	"github.com/rs/zerolog"
)

// ImpersonateHeader names the caller when DebugAuthInterceptor is enabled.
const ImpersonateHeader = "X-Debug-Impersonate-User"

// AuthInterceptor requires a verified bearer ID token on every non-public
// procedure and exposes the verified caller through GetUserClaims.
func AuthInterceptor(verifier TokenVerifier, log zerolog.Logger) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			procedure := req.Spec().Procedure
			if isPublicEndpoint(procedure) {
				return next(ctx, req)
			}

			claims, err := authenticate(ctx, verifier, req.Header().Get("Authorization"))
			if err != nil {
				log.Debug().Err(err).Str("procedure", procedure).Msg("caller not authenticated")
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}
			return next(withUserClaims(ctx, claims), req)
		}
	}
}

func authenticate(ctx context.Context, verifier TokenVerifier, header string) (*UserClaims, error) {
	if header == "" {
		return nil, errors.New("authorization header is required")
	}
	token, err := ExtractTokenFromHeader(header)
	if err != nil {
		return nil, err
	}
	return verifier.VerifyToken(ctx, token)
}

// DebugAuthInterceptor trusts ImpersonateHeader as the caller's identity when
// enabled. Never enable it outside local development.
func DebugAuthInterceptor(enabled bool) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if uid := req.Header().Get(ImpersonateHeader); enabled && uid != "" {
				ctx = withUserClaims(ctx, &UserClaims{UID: uid, Email: uid + "@debug.local"})
			}
			return next(ctx, req)
		}
	}
}

func isPublicEndpoint(procedure string) bool {
	switch procedure {
	case "/health", "/ping":
		return true
	}
	return false
}

// Context keys
type contextKey string

const (
	userClaimsKey contextKey = "user_claims"
	callerKey     contextKey = "caller"
)

type callerSlot struct {
	uid string
}

func withUserClaims(ctx context.Context, claims *UserClaims) context.Context {
	if slot, ok := ctx.Value(callerKey).(*callerSlot); ok {
		slot.uid = claims.UID
	}
	return context.WithValue(ctx, userClaimsKey, claims)
}

// TrackCaller lets code wrapping the auth interceptors learn who the caller
// was once the call returns. The returned func reports the UID attached by
// any interceptor further down the chain.
func TrackCaller(ctx context.Context) (context.Context, func() (string, bool)) {
	slot := &callerSlot{}
	return context.WithValue(ctx, callerKey, slot), func() (string, bool) {
		return slot.uid, slot.uid != ""
	}
}

// WithUserClaims is the exported version for testing purposes
func WithUserClaims(ctx context.Context, claims *UserClaims) context.Context {
	return withUserClaims(ctx, claims)
}

// GetUserClaims extracts user claims from context
func GetUserClaims(ctx context.Context) (*UserClaims, bool) {
	claims, ok := ctx.Value(userClaimsKey).(*UserClaims)
	return claims, ok
}

// GetUserID is a convenience function to get the user ID from context
func GetUserID(ctx context.Context) (string, bool) {
	if claims, ok := GetUserClaims(ctx); ok {
		return claims.UID, true
	}
	return "", false
}
