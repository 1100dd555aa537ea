package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/tokenauth/pkg/jwtx"
	"github.com/aussiebroadwan/tokenauth/pkg/slogx"
)

// AuthnMiddleware rejects requests the guard cannot authenticate.
//
// A request without credentials gets 403 not_authenticated. Every other
// failure gets 401 invalid_token with an RFC 6750 challenge; the specific
// reason is logged but not returned.
func AuthnMiddleware(g *Guard) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			claims, err := g.Authenticate(r)
			if err != nil {
				if errors.Is(err, ErrNoCredential) {
					WriteError(w, http.StatusForbidden, "not_authenticated",
						"Authentication credentials were not provided.")
					return
				}

				log.Info("bearer authentication failed",
					slog.String("reason", authFailureReason(err)),
					slog.Any("err", err),
				)
				writeBearerError(w, "Given token not valid for any token type")
				return
			}

			ctx = contextWithAuth(ctx, claims)
			ctx = slogx.WithUserID(ctx, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authFailureReason(err error) string {
	switch {
	case errors.Is(err, ErrMalformedHeader):
		return "malformed_header"
	case errors.Is(err, jwtx.ErrExpired):
		return "expired"
	case errors.Is(err, jwtx.ErrMalformed):
		return "malformed"
	case errors.Is(err, jwtx.ErrInvalid):
		return "invalid"
	default:
		return "unknown"
	}
}

func contextWithAuth(ctx context.Context, c jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, c.Subject)
	ctx = context.WithValue(ctx, CtxKeyClaims, c)
	return ctx
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteError(w, http.StatusUnauthorized, "invalid_token", desc)
}
