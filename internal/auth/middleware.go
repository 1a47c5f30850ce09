package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/knowara/portal/internal/models"
	pkghttp "github.com/knowara/portal/pkg/http"
)

// contextKey is a custom type for context keys
type contextKey string

const accountContextKey contextKey = "account"

// AccountFetcher loads the caller's account when a token is presented.
type AccountFetcher interface {
	GetByUsername(ctx context.Context, username string) (*models.Account, error)
}

// Middleware validates the bearer token, loads the caller's account, and
// injects it into the request context. Identity is resolved exactly once per
// request here; handlers pass the account down as an explicit parameter.
func Middleware(tm *TokenManager, accounts AccountFetcher) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				pkghttp.WriteUnauthorized(w, "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				pkghttp.WriteUnauthorized(w, "invalid authorization header format")
				return
			}

			claims, err := tm.ValidateToken(parts[1])
			if err != nil {
				pkghttp.WriteUnauthorized(w, "invalid or expired token")
				return
			}

			// Refresh tokens are only accepted by the refresh endpoint
			if claims.Type != "access" {
				pkghttp.WriteUnauthorized(w, "refresh tokens cannot be used for API access")
				return
			}

			account, err := accounts.GetByUsername(r.Context(), claims.Username)
			if err != nil {
				pkghttp.WriteUnauthorized(w, "account no longer exists")
				return
			}

			// A token outlives neither deactivation nor lockout
			if !account.Active || account.Locked {
				pkghttp.WriteUnauthorized(w, "account is not permitted to access the API")
				return
			}

			ctx := context.WithValue(r.Context(), accountContextKey, account)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates a route group on the caller holding the named role.
func RequireRole(roleName string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			account, ok := AccountFromContext(r.Context())
			if !ok {
				pkghttp.WriteUnauthorized(w, "authentication required")
				return
			}

			if !account.HasRole(roleName) {
				pkghttp.WriteForbidden(w, "you do not have permission to perform this action")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// AccountFromContext returns the authenticated account resolved by the
// middleware, if any.
func AccountFromContext(ctx context.Context) (*models.Account, bool) {
	account, ok := ctx.Value(accountContextKey).(*models.Account)
	return account, ok
}

// ContextWithAccount sets the authenticated account; test helper and
// middleware share the same key.
func ContextWithAccount(ctx context.Context, account *models.Account) context.Context {
	return context.WithValue(ctx, accountContextKey, account)
}
