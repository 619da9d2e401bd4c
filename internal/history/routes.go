package history

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"mip/internal/apperr"
	"mip/internal/auth"
	"mip/internal/models"
)

// Store — контракт хранилища истории.
type Store interface {
	Create(ctx context.Context, h *models.History) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.History, error)
	Get(ctx context.Context, id uuid.UUID) (*models.History, error)
	DeleteOwned(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error)
}

// RegisterRoutes вешает /history за гейт токенов. Последний маршрут ловит
// всё остальное под /history, чтобы неизвестные пути тоже проходили гейт.
func RegisterRoutes(r *mux.Router, h *Handler, tokens auth.Verifier) {
	sub := r.PathPrefix("/history").Subrouter()
	sub.Use(auth.Gate(tokens))
	sub.HandleFunc("", h.Create).Methods(http.MethodPost)
	sub.HandleFunc("", h.List).Methods(http.MethodGet)
	sub.HandleFunc("", h.Delete).Methods(http.MethodDelete)
	sub.HandleFunc("/single/{historyId}", h.GetOne).Methods(http.MethodGet)
	sub.PathPrefix("").HandlerFunc(notFound)
}

func notFound(w http.ResponseWriter, r *http.Request) {
	models.WriteError(w, apperr.NotFound("Route "+r.Method+" "+r.URL.Path+" not found"))
}
