package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	goAccount "github.com/MrEthical07/goAccount"
)

type userContextKey struct{}

// UserFromContext returns the account attached by [RequireAccessToken].
func UserFromContext(ctx context.Context) (*goAccount.User, bool) {
	u, ok := ctx.Value(userContextKey{}).(*goAccount.User)
	return u, ok && u != nil
}

// RequireAccessToken resolves the bearer access token through
// Engine.UserDetail and stores the account in the request context.
// Rejections are written as {"message","code"} with the result's code.
func RequireAccessToken(engine *goAccount.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				writeError(w, http.StatusUnauthorized, "Missing Authorization Header")
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				writeError(w, http.StatusUnauthorized, "Missing Authorization Header")
				return
			}

			res, err := engine.UserDetail(r.Context(), token)
			if err != nil {
				writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
				return
			}
			if !res.OK() || res.User == nil {
				writeError(w, res.Code, res.Message)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey{}, res.User)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if len(value) < len(bearer) || !strings.EqualFold(value[:len(bearer)], bearer) {
		return "", false
	}

	token := strings.TrimSpace(value[len(bearer):])
	if token == "" {
		return "", false
	}

	return token, true
}

func writeError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{"message": message, "code": code})
}
