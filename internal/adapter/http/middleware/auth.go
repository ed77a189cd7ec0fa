package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/iho/govledger/internal/domain"
	"github.com/iho/govledger/internal/infrastructure/auth"
)

// ContextKey is the type for context keys
type ContextKey string

const (
	// OperatorContextKey is the context key for the authenticated operator
	OperatorContextKey ContextKey = "operator"
)

// TokenVerifier validates bearer tokens.
type TokenVerifier interface {
	Verify(tokenString string) (*auth.Claims, error)
}

// AuthMiddleware rejects requests without a valid bearer token. failures
// is labelled by reason and may be nil.
func AuthMiddleware(verifier TokenVerifier, failures *prometheus.CounterVec) func(http.Handler) http.Handler {
	reject := func(w http.ResponseWriter, reason, msg string) {
		if failures != nil {
			failures.WithLabelValues(reason).Inc()
		}
		http.Error(w, msg, http.StatusUnauthorized)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				reject(w, "missing", "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				reject(w, "malformed", "invalid authorization header format")
				return
			}

			claims, err := verifier.Verify(parts[1])
			if err != nil {
				reject(w, "invalid", "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithOperator(r.Context(), claims.Operator())))
		})
	}
}

// StaticOperator attaches op to every request. Used when authentication
// is disabled.
func StaticOperator(op *domain.Operator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithOperator(r.Context(), op)))
		})
	}
}

// RequireRole admits operators holding one of roles. Admin is always
// admitted; with no roles any authenticated operator is.
func RequireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			op, ok := OperatorFromContext(r.Context())
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			if len(roles) > 0 && !op.Role.Allows(roles...) {
				http.Error(w, "insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// WithOperator returns a context carrying op.
func WithOperator(ctx context.Context, op *domain.Operator) context.Context {
	return context.WithValue(ctx, OperatorContextKey, op)
}

// OperatorFromContext extracts the authenticated operator from context
func OperatorFromContext(ctx context.Context) (*domain.Operator, bool) {
	op, ok := ctx.Value(OperatorContextKey).(*domain.Operator)
	return op, ok && op != nil
}
