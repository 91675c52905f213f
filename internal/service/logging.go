package service

import (
	"context"
	"time"

	"connectrpc.com/connect"
	"github.com/aiworkshop/finassist/backend/internal/auth"
	"github.com/aiworkshop/finassist/backend/internal/logger"
	"github.com/rs/zerolog"
)

// LoggingInterceptor writes one access-log line per unary call and makes
// the request-scoped logger available through logger.FromContext.
//
// Install it ahead of the auth interceptors so rejected calls are logged
// too; the caller's UID is picked up through auth.TrackCaller.
func LoggingInterceptor(log zerolog.Logger) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			reqLog := log.With().
				Str("procedure", req.Spec().Procedure).
				Str("method", req.HTTPMethod()).
				Logger()

			ctx, caller := auth.TrackCaller(ctx)
			resp, err := next(logger.WithContext(ctx, reqLog), req)

			event := reqLog.Info()
			if err != nil {
				code := connect.CodeOf(err)
				switch code {
				case connect.CodeInternal, connect.CodeUnknown, connect.CodeUnavailable:
					event = reqLog.Error()
				default:
					event = reqLog.Warn()
				}
				event = event.Str("code", code.String()).Err(err)
			}
			if uid, ok := caller(); ok {
				event = event.Str("user_id", uid)
			}
			event.Dur("duration", time.Since(start)).Msg("rpc")
			return resp, err
		}
	}
}
