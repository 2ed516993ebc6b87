package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/rl1809/storefront/internal/core/domain"
)

type ctxKey int

const identityKey ctxKey = iota

func withIdentity(ctx context.Context, id domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func identityFrom(ctx context.Context) (domain.Identity, bool) {
	id, ok := ctx.Value(identityKey).(domain.Identity)
	return id, ok
}

// bearerToken accepts "Authorization: Bearer <t>" and the legacy
// "x-auth-token" header.
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return strings.TrimSpace(r.Header.Get("x-auth-token"))
}

func (h *HTTPHandler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, domain.KindUnauthorized, "no token, authorization denied")
			return
		}

		id, err := h.tokens.Verify(r.Context(), token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, domain.KindUnauthorized, "token is not valid")
			return
		}

		next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), id)))
	})
}

// storedRole swaps the role carried by the token for the one currently on the
// user record. A demoted admin loses admin routes immediately.
func (h *HTTPHandler) storedRole(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := caller(r)
		user, err := h.users.Profile(r.Context(), id.UserID)
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, domain.KindUnauthorized, "token is not valid")
			return
		}
		if err != nil {
			respondErr(w, r, err)
			return
		}

		id.Role = user.Role
		next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), id)))
	})
}

func requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := identityFrom(r.Context())
		if !ok || !id.IsAdmin() {
			writeError(w, http.StatusForbidden, domain.KindForbidden, "admin access only")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		slog.InfoContext(r.Context(), "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// caller must only be used behind authenticate.
func caller(r *http.Request) domain.Identity {
	id, _ := identityFrom(r.Context())
	return id
}
