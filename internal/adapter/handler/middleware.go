package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/SiraphopSangkrit/yesweb-test-siraphop/internal/adapter/metrics"
	"github.com/SiraphopSangkrit/yesweb-test-siraphop/internal/core/domain"
)

const (
	SessionCookieName = "cart_session"
	SessionHeader     = "X-Session-ID"
	UserIDHeader      = "X-User-ID"
	UserRolesHeader   = "X-User-Roles"

	sessionCookieMaxAge = 7 * 24 * 60 * 60
)

type contextKey string

const (
	sessionKey contextKey = "session"
	actorKey   contextKey = "actor"
)

// SessionMiddleware resolves the cart session from the X-Session-ID header or
// the session cookie, issuing a new cookie on first interaction.
func SessionMiddleware(secureCookies bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := strings.TrimSpace(r.Header.Get(SessionHeader))
			if session == "" {
				if c, err := r.Cookie(SessionCookieName); err == nil && c.Value != "" {
					session = c.Value
				}
			}
			if session == "" {
				session = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookieName,
					Value:    session,
					Path:     "/",
					MaxAge:   sessionCookieMaxAge,
					HttpOnly: true,
					Secure:   secureCookies,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), sessionKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityMiddleware trusts the user headers set by the authenticating proxy.
// Requests without a valid user id are anonymous.
func IdentityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if actor := parseActor(r.Header.Get(UserIDHeader), r.Header.Get(UserRolesHeader)); actor != nil {
			r = r.WithContext(context.WithValue(r.Context(), actorKey, actor))
		}
		next.ServeHTTP(w, r)
	})
}

func parseActor(userID, roles string) *domain.Actor {
	id, err := strconv.ParseInt(strings.TrimSpace(userID), 10, 64)
	if err != nil || id <= 0 {
		return nil
	}

	actor := &domain.Actor{UserID: id}
	for _, role := range strings.Split(roles, ",") {
		if role = strings.TrimSpace(role); role != "" {
			actor.Roles = append(actor.Roles, role)
		}
	}
	return actor
}

// MetricsMiddleware records request counts and latency per route pattern.
func MetricsMiddleware(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			m.Requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
			m.LatencyMS.WithLabelValues(route).Observe(float64(time.Since(start).Milliseconds()))
		})
	}
}

func sessionFromContext(ctx context.Context) string {
	session, _ := ctx.Value(sessionKey).(string)
	return session
}

func actorFromContext(ctx context.Context) *domain.Actor {
	actor, _ := ctx.Value(actorKey).(*domain.Actor)
	return actor
}
