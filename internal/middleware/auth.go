package middleware

import (
	"context"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/dongyar/internal/auth"
	"github.com/mmynk/dongyar/internal/metrics"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// SubjectKey is the context key for storing the authenticated token subject.
const SubjectKey contextKey = "subject"

const subjectRefKey contextKey = "subject_ref"

// subjectRef lets an outer interceptor see the subject set by an inner one.
type subjectRef struct {
	subject string
}

// GetSubject extracts the authenticated subject from the context.
// Returns empty string if not found.
func GetSubject(ctx context.Context) string {
	subject, _ := ctx.Value(SubjectKey).(string)
	return subject
}

// WithSubject returns a copy of ctx carrying subject. It also reports the
// subject to an enclosing LoggingInterceptor.
func WithSubject(ctx context.Context, subject string) context.Context {
	if ref, ok := ctx.Value(subjectRefKey).(*subjectRef); ok {
		ref.subject = subject
	}
	return context.WithValue(ctx, SubjectKey, subject)
}

// RequireAuth returns an interceptor that validates bearer tokens and rejects
// requests without a valid one. The token subject is added to the context.
func RequireAuth(jwtManager *auth.JWTManager, m *metrics.Metrics) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			tokenString, ok := bearerToken(req.Header().Get("Authorization"))
			if !ok {
				m.RecordAuthFailure("missing")
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
			}

			claims, err := jwtManager.Validate(tokenString)
			if err != nil {
				m.RecordAuthFailure("invalid")
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			return next(WithSubject(ctx, claims.Subject), req)
		}
	}
}

// OptionalAuth returns an interceptor that validates bearer tokens if present,
// but lets requests without one through. A present but invalid token is
// still rejected.
func OptionalAuth(jwtManager *auth.JWTManager, m *metrics.Metrics) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			header := req.Header().Get("Authorization")
			if header == "" {
				return next(ctx, req)
			}

			tokenString, ok := bearerToken(header)
			if !ok {
				m.RecordAuthFailure("malformed")
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidToken)
			}

			claims, err := jwtManager.Validate(tokenString)
			if err != nil {
				m.RecordAuthFailure("invalid")
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			return next(WithSubject(ctx, claims.Subject), req)
		}
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
