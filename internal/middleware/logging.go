package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"
)

// LoggingInterceptor returns a Connect interceptor that logs every RPC call
// to logger, or to the default logger when logger is nil.
// It logs the procedure name, subject, duration, and any error codes/messages.
// The subject is the one set by an auth interceptor further down the chain.
func LoggingInterceptor(logger *slog.Logger) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			log := logger
			if log == nil {
				log = slog.Default()
			}
			start := time.Now()
			procedure := req.Spec().Procedure

			ref := &subjectRef{subject: GetSubject(ctx)}
			resp, err := next(context.WithValue(ctx, subjectRefKey, ref), req)

			duration := time.Since(start).Milliseconds()
			subject := ref.subject // empty for anonymous calls
			if err != nil {
				var connectErr *connect.Error
				if errors.As(err, &connectErr) {
					log.Warn("RPC error",
						"procedure", procedure,
						"code", connectErr.Code(),
						"error", connectErr.Message(),
						"subject", subject,
						"duration_ms", duration,
					)
				} else {
					log.Error("RPC error",
						"procedure", procedure,
						"error", err,
						"subject", subject,
						"duration_ms", duration,
					)
				}
			} else {
				log.Info("RPC ok",
					"procedure", procedure,
					"subject", subject,
					"duration_ms", duration,
				)
			}

			return resp, err
		}
	}
}
