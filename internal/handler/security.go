package handler

import (
	"net/http"
	"strings"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/storefront-api/internal/domain/auth"
	"github.com/xenking/storefront-api/pkg/httpmiddleware"
)

// requireAuth rejects requests without a valid bearer token and stores the
// caller identity in the request context.
func (h *Handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			httpmiddleware.WriteError(w, http.StatusUnauthorized, kindUnauthorized, "missing bearer token")
			return
		}

		id, err := h.tokens.Verify(strings.TrimSpace(token))
		if err != nil {
			zctx.From(r.Context()).Debug("Token rejected", zap.Error(err))
			httpmiddleware.WriteError(w, http.StatusUnauthorized, kindUnauthorized, "invalid token")
			return
		}

		ctx := auth.WithIdentity(r.Context(), *id)
		ctx = zctx.With(ctx, zap.Int64("user_id", id.UserID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// caller returns the identity set by requireAuth.
func caller(r *http.Request) auth.Identity {
	id, _ := auth.FromContext(r.Context())
	return id
}
