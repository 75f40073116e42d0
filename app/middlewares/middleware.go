package middlewares

import (
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/Rakhulsr/go-storefront/app/helpers"
	"github.com/Rakhulsr/go-storefront/app/services"
	"github.com/Rakhulsr/go-storefront/app/utils/sessions"
	"github.com/unrolled/render"
	"go.uber.org/zap"
)

// Authenticate resolves the caller from a bearer token, falling back to the cookie session, and
// stores it in the request context. A bearer token that fails verification is rejected outright.
func Authenticate(auth *services.AuthService, store sessions.SessionStore, rnd *render.Render, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var userID uint

			if header := r.Header.Get("Authorization"); header != "" {
				scheme, token, found := strings.Cut(header, " ")
				if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
					helpers.WriteError(rnd, logger, w, r, services.ErrUnauthenticated)
					return
				}
				id, err := auth.ParseToken(token)
				if err != nil {
					logger.Debug("Authenticate: rejected bearer token", zap.Error(err))
					helpers.WriteError(rnd, logger, w, r, err)
					return
				}
				userID = id
			} else {
				userID = store.GetUserID(r)
			}

			caller, err := auth.ResolveCaller(r.Context(), userID)
			if err != nil {
				helpers.WriteError(rnd, logger, w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(helpers.WithCaller(r.Context(), caller)))
		})
	}
}

func RequireAuth(rnd *render.Render, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !helpers.CallerFromContext(r.Context()).IsAuthenticated() {
				helpers.WriteError(rnd, logger, w, r, services.ErrUnauthenticated)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func RequireStaff(rnd *render.Render, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller := helpers.CallerFromContext(r.Context())
			if !caller.IsAuthenticated() {
				helpers.WriteError(rnd, logger, w, r, services.ErrUnauthenticated)
				return
			}
			if !caller.IsStaff {
				logger.Info("RequireStaff: non-staff caller refused",
					zap.Uint("user_id", caller.UserID), zap.String("path", r.URL.Path))
				helpers.WriteError(rnd, logger, w, r, services.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

func RequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			if rec.status == 0 {
				rec.status = http.StatusOK
			}
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Int("bytes", rec.bytes),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}

// Recovery turns a panic into a 500 response so one bad request cannot stop the server.
func Recovery(rnd *render.Render, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logger.Error("Recovery: panic while serving request",
						zap.Any("panic", rec),
						zap.String("path", r.URL.Path),
						zap.ByteString("stack", debug.Stack()))
					rnd.JSON(w, http.StatusInternalServerError, map[string]string{"detail": "A server error occurred."})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
