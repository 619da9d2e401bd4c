package accounts

import (
	"errors"
	"net/http"

	"mip/internal/apperr"
	"mip/internal/auth"
	"mip/internal/logs"
	"mip/internal/middleware"
	"mip/internal/models"
	"mip/internal/repo"
	"mip/internal/validation"
)

const (
	msgMissingFields = "Missing required fields: email, or password"
	msgUserExists    = "User already exists"
	msgUserNotFound  = "User not found"
	msgBadPassword   = "Invalid password"
	msgSignupFailed  = "An unexpected error occurred during signup. Please try again"
	msgSigninFailed  = "An unexpected error occurred during signin. Please try again"
)

type Handler struct {
	users  Store
	hasher auth.Hasher
	tokens Issuer
}

func NewHandler(users Store, hasher auth.Hasher, tokens Issuer) *Handler {
	return &Handler{users: users, hasher: hasher, tokens: tokens}
}

type signUpResponse struct {
	User models.PublicUser `json:"user"`
}

type signInResponse struct {
	Token string            `json:"token"`
	User  models.PublicUser `json:"user"`
}

func readCredentials(w http.ResponseWriter, r *http.Request) (validation.Credentials, error) {
	var in validation.Credentials
	if err := models.ReadJSON(w, r, &in); err != nil {
		return in, err
	}
	// email сравнивается как есть, без нормализации
	return in, validation.Struct(in)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, e *apperr.Error) {
	if e.Kind == apperr.KindInternal {
		logs.Logger.WithField("reqid", middleware.GetRequestID(r)).
			WithError(e.Err).Error(e.Message)
	}
	models.WriteError(w, e)
}

// SignUp — POST /api/signup.
func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	in, err := readCredentials(w, r)
	if err != nil {
		h.fail(w, r, apperr.BadRequest(msgMissingFields))
		return
	}

	_, err = h.users.FindByEmail(r.Context(), in.Email)
	switch {
	case err == nil:
		h.fail(w, r, apperr.Conflict(msgUserExists))
		return
	case !errors.Is(err, repo.ErrNotFound):
		h.fail(w, r, apperr.Internal(msgSignupFailed, err))
		return
	}

	hash, err := h.hasher.Hash(in.Password)
	if err != nil {
		h.fail(w, r, apperr.Internal(msgSignupFailed, err))
		return
	}

	u := &models.User{Email: in.Email, Password: hash}
	if err := h.users.Create(r.Context(), u); err != nil {
		// параллельная регистрация проиграла уникальному индексу
		if errors.Is(err, repo.ErrDuplicate) {
			h.fail(w, r, apperr.Conflict(msgUserExists))
			return
		}
		h.fail(w, r, apperr.Internal(msgSignupFailed, err))
		return
	}

	logs.Logger.WithField("user_id", u.ID).Info("user signed up")
	models.WriteData(w, "Signup successful", signUpResponse{User: u.Public()})
}

// SignIn — POST /api/login.
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	in, err := readCredentials(w, r)
	if err != nil {
		h.fail(w, r, apperr.BadRequest(msgMissingFields))
		return
	}

	u, err := h.users.FindByEmail(r.Context(), in.Email)
	if errors.Is(err, repo.ErrNotFound) {
		h.fail(w, r, apperr.NotFound(msgUserNotFound))
		return
	}
	if err != nil {
		h.fail(w, r, apperr.Internal(msgSigninFailed, err))
		return
	}

	ok, err := h.hasher.Compare(u.Password, in.Password)
	if err != nil {
		h.fail(w, r, apperr.Internal(msgSigninFailed, err))
		return
	}
	if !ok {
		h.fail(w, r, apperr.Unauthorized(msgBadPassword))
		return
	}

	token, err := h.tokens.Issue(auth.Identity{ID: u.ID, Email: u.Email})
	if err != nil {
		h.fail(w, r, apperr.Internal(msgSigninFailed, err))
		return
	}
	models.WriteData(w, "Login successful", signInResponse{Token: token, User: u.Public()})
}
