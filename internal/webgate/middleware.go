package webgate

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog/log"

	"github.com/hienao/openlist-strm/internal/guard"
)

// Protected gates every application route. The navigation proceeds,
// redirects to an auth entry point, or proceeds while a background
// refresh runs; it never waits for the refresh network call.
func (s *Server) Protected(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		st := s.storeFor(w, r)
		verdict := s.guardFor(st).EvalProtected(r.Context())

		log.Ctx(r.Context()).Debug().
			Stringer("verdict", verdict).
			Msg("protected gate evaluated")

		switch verdict {
		case guard.RedirectSignIn:
			http.Redirect(w, r, SignInPath, http.StatusFound)
		case guard.RedirectRegister:
			http.Redirect(w, r, RegisterPath, http.StatusFound)
		default:
			next.ServeHTTP(w, r)
		}
	})
}

// GuestOnly gates the sign-in and registration pages: authenticated
// visitors go home, and the existence check steers between the two
// entry points so a fresh install cannot land on a sign-in form with
// nothing to sign in to.
func (s *Server) GuestOnly(target guard.Destination, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		st := s.storeFor(w, r)
		verdict := s.guardFor(st).EvalGuest(r.Context(), target)

		log.Ctx(r.Context()).Debug().
			Stringer("verdict", verdict).
			Msg("guest gate evaluated")

		switch verdict {
		case guard.RedirectHome:
			http.Redirect(w, r, HomePath, http.StatusFound)
		case guard.RedirectSignIn:
			http.Redirect(w, r, SignInPath, http.StatusFound)
		case guard.RedirectRegister:
			http.Redirect(w, r, RegisterPath, http.StatusFound)
		default:
			next.ServeHTTP(w, r)
		}
	})
}

func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		reqID := r.Header.Get("X-Correlation-ID")
		if reqID == "" {
			reqID = xid.New().String()
		}

		l := log.With().
			Str("correlation_id", reqID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote", r.RemoteAddr).
			Logger()

		ctx := l.WithContext(r.Context())
		ww := &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(ww, r.WithContext(ctx))

		l.Info().
			Int("status", ww.statusCode).
			Dur("duration", time.Since(start)).
			Msg("request.handled")
	})
}

func RecoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Ctx(r.Context()).Error().
					Interface("panic", err).
					Bytes("stack", debug.Stack()).
					Msg("panic.recovered")

				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error": "internal server error"}`))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}
