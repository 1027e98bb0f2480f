package http

import (
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/model/auth"
	"github.com/secmon-lab/themis/pkg/domain/types"
	"github.com/secmon-lab/themis/pkg/usecase"
	"github.com/secmon-lab/themis/pkg/utils/logging"
)

// authMiddleware resolves the bearer token into a principal for protected requests
func authMiddleware(authUC AuthUseCase) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if authUC == nil {
				writeJSON(w, r, http.StatusUnauthorized, envelope{Message: "Authentication required"})
				return
			}

			token := bearerToken(r)
			if token == "" && !authUC.IsNoAuthn() {
				writeJSON(w, r, http.StatusUnauthorized, envelope{Message: "Authentication required"})
				return
			}

			p, err := authUC.Authenticate(r.Context(), token)
			if err != nil {
				logging.From(r.Context()).Info("authentication failed", "error", err.Error())
				writeJSON(w, r, http.StatusUnauthorized, envelope{Message: "Invalid authentication token"})
				return
			}

			ctx := auth.ContextWithPrincipal(r.Context(), p)
			ctx = logging.With(ctx, logging.From(ctx).With("principal", p.ID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// requireRole rejects principals of any other role with 403
func requireRole(role types.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := auth.PrincipalFromContext(r.Context())
			if !ok {
				writeJSON(w, r, http.StatusUnauthorized, envelope{Message: "Authentication required"})
				return
			}
			if p.Role != role {
				writeError(w, r, goerr.Wrap(usecase.ErrRoleDenied, "route requires another role",
					goerr.V(usecase.RoleKey, p.Role),
					goerr.V("required", role)), false)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
