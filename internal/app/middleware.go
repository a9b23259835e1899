package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

type contextKey string

const loggerContextKey = contextKey("logger")

func (app *Application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")

				app.serverErrorResponse(w, r, fmt.Errorf("%s", err))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// ensureGuestSession commits a fresh session for first-time visitors so a
// hold token has a session to live in before the first write.
func (app *Application) ensureGuestSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionId := app.sessionManager.Token(r.Context())

		if sessionId == "" {
			app.sessionManager.Put(r.Context(), "guest", true)

			_, _, err := app.sessionManager.Commit(r.Context())
			if err != nil {
				app.serverErrorResponse(w, r, err)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

// requestLogger stashes a request-scoped logger in the context so handlers
// log with the request ID attached.
func (app *Application) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := app.logger.With("request_id", middleware.GetReqID(r.Context()))

		ctx := context.WithValue(r.Context(), loggerContextKey, logger)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (app *Application) contextGetLogger(r *http.Request) *slog.Logger {
	logger, ok := r.Context().Value(loggerContextKey).(*slog.Logger)
	if !ok {
		return app.logger
	}

	return logger
}
