package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/matzehuels/chartdeck/pkg/observability"
	"github.com/matzehuels/chartdeck/pkg/session"
)

type ctxKey struct{}

// controllerFrom returns the controller attached by withSession.
func controllerFrom(ctx context.Context) *session.Controller {
	c, _ := ctx.Value(ctxKey{}).(*session.Controller)
	return c
}

// withSession resolves the session cookie, creating a new session when the
// cookie is missing, malformed or expired.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var ctrl *session.Controller
		if cookie, err := r.Cookie(CookieName); err == nil {
			if id, err := uuid.Parse(cookie.Value); err == nil {
				ctrl, _ = s.store.Get(ctx, id)
			}
		}
		if ctrl == nil {
			ctrl = s.newController()
			if err := s.store.Put(ctx, ctrl); err != nil {
				s.writeError(w, r, err)
				return
			}
			http.SetCookie(w, &http.Cookie{
				Name:     CookieName,
				Value:    ctrl.ID().String(),
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
			s.logger.Debug("session created", "id", ctrl.ID())
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, ctxKey{}, ctrl)))
	})
}

// observe reports requests to the HTTP hooks and logs them at debug level.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hooks := observability.HTTP()
		ctx := r.Context()
		start := time.Now()

		hooks.OnRequest(ctx, r.Method, r.URL.Path)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		dur := time.Since(start)
		hooks.OnResponse(ctx, r.Method, r.URL.Path, status, dur)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", dur,
			"request_id", middleware.GetReqID(ctx))
	})
}
