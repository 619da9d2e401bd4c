package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"mip/internal/logs"
)

const pingTimeout = 2 * time.Second

// RegisterRoutes — liveness и readiness. db == nil — режим без БД, всегда готов.
func RegisterRoutes(r *mux.Router, db *gorm.DB) {
	r.HandleFunc("/healthz", liveness).Methods(http.MethodGet)
	r.HandleFunc("/readyz", readiness(db)).Methods(http.MethodGet)
}

func readiness(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db == nil {
			writeText(w, http.StatusOK, "ok (memory)\n")
			return
		}
		sqlDB, err := db.DB()
		if err != nil {
			writeText(w, http.StatusServiceUnavailable, "db handle error\n")
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		defer cancel()
		if err := sqlDB.PingContext(ctx); err != nil {
			logs.Logger.WithError(err).Warn("readyz: db ping failed")
			writeText(w, http.StatusServiceUnavailable, "db unreachable\n")
			return
		}
		writeText(w, http.StatusOK, "ok\n")
	}
}

func liveness(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusOK, "ok\n")
}

func writeText(w http.ResponseWriter, code int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(body))
}
