package router

import (
	"net/http"
	"time"

	mem "nursery-care-log/internal/adapters/storage/memory"
	"nursery-care-log/internal/domain/actions"
	"nursery-care-log/internal/middleware"
	"nursery-care-log/internal/platform/logger"
	"nursery-care-log/internal/ports/auth"

	_ "nursery-care-log/docs"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene nil se usa el store in-memory.
	Store actions.Store

	Logger logger.Logger

	// Huso que define el día de una presencia o siesta abierta.
	Location *time.Location

	// Una sola actividad abierta por niño y día.
	ExclusiveActivities bool
}

func NewRouter(opts Options) http.Handler {
	log := logger.OrNop(opts.Logger)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(accessLog(log))
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	store := opts.Store
	if store == nil {
		store = mem.NewActionStore()
	}

	actionsSvc := actions.NewService(store).
		WithLocation(opts.Location).
		WithExclusiveActivities(opts.ExclusiveActivities)
	actions.RegisterRoutes(r, actionsSvc)

	return r
}

func accessLog(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			fields := map[string]any{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      ww.Status(),
				"duration_ms": time.Since(start).Milliseconds(),
				"request_id":  chimw.GetReqID(r.Context()),
			}
			if ww.Status() >= 500 {
				log.Error("http request", fields)
				return
			}
			log.Debug("http request", fields)
		})
	}
}
