package middleware

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/storerate-backend/api/responses"
	pkgAuth "github.com/angelmondragon/storerate-backend/pkg/auth"
	"github.com/angelmondragon/storerate-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/storerate-backend/pkg/errors"
	"github.com/angelmondragon/storerate-backend/pkg/logger"
)

// Authenticate validates a bearer token and seeds the request context with the
// caller identity. Claims are trusted for the token lifetime; the account row
// is not consulted.
func Authenticate(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			identity, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := WithIdentity(r.Context(), *identity)
			if logg != nil {
				ctx = logg.WithAccountID(ctx, identity.AccountID.String())
				ctx = logg.WithActorRole(ctx, identity.Role.String())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(header string) string {
	token := strings.TrimSpace(header)
	if len(token) >= 7 && strings.EqualFold(token[:7], "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	return token
}
