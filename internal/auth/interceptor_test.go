package auth

import (
	"context"
	"errors"
	"testing"

	"connectrpc.com/connect"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTokenFromHeader(t *testing.T) {
	tests := []struct {
		name        string
		authHeader  string
		expectedErr bool
		errContains string
		wantToken   string
	}{
		{
			name:        "empty header",
			authHeader:  "",
			expectedErr: true,
			errContains: "authorization header is required",
		},
		{
			name:        "no bearer prefix",
			authHeader:  "token123",
			expectedErr: true,
			errContains: "must be Bearer token",
		},
		{
			name:        "wrong prefix",
			authHeader:  "Basic token123",
			expectedErr: true,
			errContains: "must be Bearer token",
		},
		{
			name:        "bearer only no token",
			authHeader:  "Bearer",
			expectedErr: true,
			errContains: "must be Bearer token",
		},
		{
			name:        "valid bearer token",
			authHeader:  "Bearer mytoken123",
			expectedErr: false,
			wantToken:   "mytoken123",
		},
		{
			name:        "bearer lowercase",
			authHeader:  "bearer mytoken456",
			expectedErr: false,
			wantToken:   "mytoken456",
		},
		{
			name:        "bearer mixed case",
			authHeader:  "BEARER mytoken789",
			expectedErr: false,
			wantToken:   "mytoken789",
		},
		{
			name:        "token with spaces",
			authHeader:  "Bearer token with spaces",
			expectedErr: false,
			wantToken:   "token with spaces",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := ExtractTokenFromHeader(tt.authHeader)

			if tt.expectedErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				assert.Empty(t, token)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantToken, token)
			}
		})
	}
}

func TestContextUserClaims(t *testing.T) {
	t.Run("WithUserClaims adds claims to context", func(t *testing.T) {
		ctx := context.Background()
		claims := &UserClaims{
			UID:         "test-uid",
			Email:       "test@example.com",
			DisplayName: "Test User",
			Verified:    true,
		}

		newCtx := WithUserClaims(ctx, claims)

		retrievedClaims, ok := GetUserClaims(newCtx)
		require.True(t, ok)
		assert.Equal(t, claims, retrievedClaims)
	})

	t.Run("GetUserClaims returns false for empty context", func(t *testing.T) {
		claims, ok := GetUserClaims(context.Background())
		assert.False(t, ok)
		assert.Nil(t, claims)
	})

	t.Run("GetUserID returns UID when claims exist", func(t *testing.T) {
		ctx := WithUserClaims(context.Background(), &UserClaims{UID: "user-123"})

		uid, ok := GetUserID(ctx)
		assert.True(t, ok)
		assert.Equal(t, "user-123", uid)
	})

	t.Run("GetUserID returns empty for empty context", func(t *testing.T) {
		uid, ok := GetUserID(context.Background())
		assert.False(t, ok)
		assert.Empty(t, uid)
	})
}

func TestIsPublicEndpoint(t *testing.T) {
	tests := []struct {
		name      string
		procedure string
		expected  bool
	}{
		{"health endpoint", "/health", true},
		{"ping endpoint", "/ping", true},
		{"calendar endpoint", "/finassist.v1.CalendarService/GetCalendarReport", false},
		{"other endpoint", "/api/v1/users", false},
		{"empty endpoint", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isPublicEndpoint(tt.procedure))
		})
	}
}

type fakeVerifier struct {
	claims *UserClaims
	err    error
	tokens []string
}

func (f *fakeVerifier) VerifyToken(ctx context.Context, idToken string) (*UserClaims, error) {
	f.tokens = append(f.tokens, idToken)
	return f.claims, f.err
}

type ping struct{}

// capture runs an interceptor and returns the claims seen by the wrapped handler.
func capture(t *testing.T, ctx context.Context, interceptor connect.UnaryInterceptorFunc, header map[string]string) (*UserClaims, error) {
	t.Helper()
	req := connect.NewRequest(&ping{})
	for k, v := range header {
		req.Header().Set(k, v)
	}

	var seen *UserClaims
	next := func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		seen, _ = GetUserClaims(ctx)
		return connect.NewResponse(&ping{}), nil
	}
	_, err := interceptor(next)(ctx, req)
	return seen, err
}

func TestAuthInterceptor(t *testing.T) {
	t.Run("missing header is unauthenticated", func(t *testing.T) {
		verifier := &fakeVerifier{claims: &UserClaims{UID: "user-1"}}

		_, err := capture(t, context.Background(), AuthInterceptor(verifier, zerolog.Nop()), nil)
		require.Error(t, err)
		assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
		assert.Empty(t, verifier.tokens)
	})

	t.Run("malformed header is unauthenticated", func(t *testing.T) {
		verifier := &fakeVerifier{claims: &UserClaims{UID: "user-1"}}

		_, err := capture(t, context.Background(), AuthInterceptor(verifier, zerolog.Nop()),
			map[string]string{"Authorization": "Basic abc"})
		assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
	})

	t.Run("rejected token is unauthenticated", func(t *testing.T) {
		verifier := &fakeVerifier{err: errors.New("token expired")}

		_, err := capture(t, context.Background(), AuthInterceptor(verifier, zerolog.Nop()),
			map[string]string{"Authorization": "Bearer stale"})
		assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
		assert.Equal(t, []string{"stale"}, verifier.tokens)
	})

	t.Run("verified token sets claims", func(t *testing.T) {
		verifier := &fakeVerifier{claims: &UserClaims{UID: "user-1"}}

		seen, err := capture(t, context.Background(), AuthInterceptor(verifier, zerolog.Nop()),
			map[string]string{"Authorization": "Bearer good"})
		require.NoError(t, err)
		require.NotNil(t, seen)
		assert.Equal(t, "user-1", seen.UID)
	})
}

func TestDebugAuthInterceptor(t *testing.T) {
	header := map[string]string{"X-Debug-Impersonate-User": "alice"}

	seen, err := capture(t, context.Background(), DebugAuthInterceptor(true), header)
	require.NoError(t, err)
	require.NotNil(t, seen)
	assert.Equal(t, "alice", seen.UID)
	assert.Equal(t, "alice@debug.local", seen.Email)

	seen, err = capture(t, context.Background(), DebugAuthInterceptor(false), header)
	require.NoError(t, err)
	assert.Nil(t, seen)
}

func TestLocalDevInterceptor(t *testing.T) {
	seen, err := capture(t, context.Background(), LocalDevInterceptor(), nil)
	require.NoError(t, err)
	require.NotNil(t, seen)
	assert.Equal(t, LocalDevUserID, seen.UID)

	ctx := WithUserClaims(context.Background(), &UserClaims{UID: "alice"})
	seen, err = capture(t, ctx, LocalDevInterceptor(), nil)
	require.NoError(t, err)
	assert.Equal(t, "alice", seen.UID)
}

func TestTrackCaller(t *testing.T) {
	t.Run("reports the uid set further down the chain", func(t *testing.T) {
		ctx, caller := TrackCaller(context.Background())

		_, err := capture(t, ctx, DebugAuthInterceptor(true), map[string]string{ImpersonateHeader: "alice"})
		require.NoError(t, err)

		uid, ok := caller()
		assert.True(t, ok)
		assert.Equal(t, "alice", uid)
	})

	t.Run("reports nothing when the call was rejected", func(t *testing.T) {
		ctx, caller := TrackCaller(context.Background())

		_, err := capture(t, ctx, AuthInterceptor(&fakeVerifier{}, zerolog.Nop()), nil)
		require.Error(t, err)

		_, ok := caller()
		assert.False(t, ok)
	})
}
