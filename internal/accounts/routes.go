package accounts

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"mip/internal/auth"
	"mip/internal/models"
)

// Store — минимальный контракт хранилища пользователей.
type Store interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
}

// Issuer выпускает токен для вошедшего пользователя.
type Issuer interface {
	Issue(id auth.Identity) (string, error)
}

// RegisterRoutes — открытые маршруты входа и регистрации.
func RegisterRoutes(r *mux.Router, h *Handler) {
	sub := r.PathPrefix("/api").Subrouter()
	sub.HandleFunc("/login", h.SignIn).Methods(http.MethodPost)
	sub.HandleFunc("/signup", h.SignUp).Methods(http.MethodPost)
}
