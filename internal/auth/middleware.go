package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"mip/internal/apperr"
	"mip/internal/logs"
	"mip/internal/models"
)

type ctxKey string

const identityKey ctxKey = "identity"

// Verifier — то, что нужно гейту от TokenService.
type Verifier interface {
	Verify(token string) (Identity, error)
}

// ExtractBearer: ровно две части через пробел, первая — "Bearer".
func ExtractBearer(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// Gate пропускает запрос дальше только с валидным Bearer-токеном
// и кладёт Identity в контекст.
func Gate(v Verifier) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := ExtractBearer(r.Header.Get("Authorization"))
			if !ok {
				models.WriteError(w, apperr.Unauthorized("Access denied. No token provided."))
				return
			}

			id, err := v.Verify(token)
			if err != nil {
				logs.Logger.WithError(err).Debug("auth gate: token rejected")
				msg := "Invalid or expired token"
				if errors.Is(err, ErrTokenExpired) {
					msg = "Token has expired"
				}
				models.WriteError(w, apperr.Unauthorized(msg))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}
