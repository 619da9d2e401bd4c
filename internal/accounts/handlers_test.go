package accounts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"mip/internal/auth"
	"mip/internal/models"
	"mip/internal/repo"
)

type envelope struct {
	Message    string          `json:"message"`
	Error      string          `json:"error"`
	Data       json.RawMessage `json:"data"`
	StatusCode int             `json:"statusCode"`
}

type fixture struct {
	router *mux.Router
	store  *repo.MemStore
	tokens *auth.TokenService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tokens, err := auth.NewTokenService("test-secret", time.Hour)
	require.NoError(t, err)
	store := repo.NewMemStore()
	r := mux.NewRouter()
	RegisterRoutes(r, NewHandler(store.Users(), &auth.BcryptHasher{Cost: bcrypt.MinCost}, tokens))
	return &fixture{router: r, store: store, tokens: tokens}
}

func (f *fixture) post(t *testing.T, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	f.router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	assert.Equal(t, rec.Code, env.StatusCode)
	return rec, env
}

func TestSignUp_Success(t *testing.T) {
	f := newFixture(t)
	rec, env := f.post(t, "/api/signup", `{"email":"a@example.com","password":"pw"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Signup successful", env.Message)
	assert.NotContains(t, rec.Body.String(), "password")
	assert.NotContains(t, rec.Body.String(), "$2a$")

	var data signUpResponse
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "a@example.com", data.User.Email)

	stored, err := f.store.Users().FindByEmail(context.Background(), "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, data.User.ID, stored.ID)
	assert.NotEqual(t, "pw", stored.Password)
}

func TestSignUp_Duplicate(t *testing.T) {
	f := newFixture(t)
	f.post(t, "/api/signup", `{"email":"a@example.com","password":"pw"}`)

	rec, env := f.post(t, "/api/signup", `{"email":"a@example.com","password":"other"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "User already exists", env.Message)
	assert.Equal(t, "Conflict", env.Error)
}

func TestSignUp_MissingFields(t *testing.T) {
	f := newFixture(t)
	for _, body := range []string{`{}`, `{"email":"a@example.com"}`, `{"password":"pw"}`, `{"email":"","password":"pw"}`, `not json`} {
		rec, env := f.post(t, "/api/signup", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, msgMissingFields, env.Message)
	}
}

type racingStore struct{ Store }

func (racingStore) FindByEmail(context.Context, string) (*models.User, error) {
	return nil, repo.ErrNotFound
}
func (racingStore) Create(context.Context, *models.User) error { return repo.ErrDuplicate }

func TestSignUp_LostRaceIsConflict(t *testing.T) {
	tokens, err := auth.NewTokenService("k", 0)
	require.NoError(t, err)
	r := mux.NewRouter()
	RegisterRoutes(r, NewHandler(racingStore{}, &auth.BcryptHasher{Cost: bcrypt.MinCost}, tokens))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/signup", strings.NewReader(`{"email":"a@b.c","password":"x"}`)))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

type brokenStore struct{ Store }

func (brokenStore) FindByEmail(context.Context, string) (*models.User, error) {
	return nil, errors.New("connection refused")
}

func TestStoreFailureIsInternal(t *testing.T) {
	tokens, err := auth.NewTokenService("k", 0)
	require.NoError(t, err)
	r := mux.NewRouter()
	RegisterRoutes(r, NewHandler(brokenStore{}, &auth.BcryptHasher{Cost: bcrypt.MinCost}, tokens))

	for path, msg := range map[string]string{"/api/signup": msgSignupFailed, "/api/login": msgSigninFailed} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{"email":"a@b.c","password":"x"}`)))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), msg)
		assert.NotContains(t, rec.Body.String(), "connection refused")
	}
}

func TestSignIn(t *testing.T) {
	f := newFixture(t)
	f.post(t, "/api/signup", `{"email":"a@example.com","password":"pw"}`)

	rec, env := f.post(t, "/api/login", `{"email":"a@example.com","password":"pw"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Login successful", env.Message)

	var data signInResponse
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "a@example.com", data.User.Email)

	id, err := f.tokens.Verify(data.Token)
	require.NoError(t, err)
	assert.Equal(t, data.User.ID, id.ID)
	assert.Equal(t, "a@example.com", id.Email)
}

func TestSignIn_Failures(t *testing.T) {
	f := newFixture(t)
	f.post(t, "/api/signup", `{"email":"a@example.com","password":"pw"}`)

	rec, env := f.post(t, "/api/login", `{"email":"nobody@example.com","password":"pw"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found", env.Message)

	rec, env = f.post(t, "/api/login", `{"email":"a@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid password", env.Message)
	assert.NotContains(t, rec.Body.String(), "token")

	rec, _ = f.post(t, "/api/login", `{"email":"a@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// Токен из /api/login открывает закрытый гейтом маршрут.
func TestLoginTokenPassesGate(t *testing.T) {
	f := newFixture(t)
	f.post(t, "/api/signup", `{"email":"a@example.com","password":"pw"}`)
	_, env := f.post(t, "/api/login", `{"email":"a@example.com","password":"pw"}`)
	var data signInResponse
	require.NoError(t, json.Unmarshal(env.Data, &data))

	var got auth.Identity
	protected := auth.Gate(f.tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.IdentityFrom(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/history", nil)
	req.Header.Set("Authorization", "Bearer "+data.Token)
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, data.User.ID, got.ID)
}

// bcrypt видит только 72 байта: длинный пароль обрезается одинаково при регистрации и входе.
func TestLongPassword(t *testing.T) {
	f := newFixture(t)
	long := strings.Repeat("p", 80)

	rec, env := f.post(t, "/api/signup", `{"email":"long@example.com","password":"`+long+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, env.Message)

	rec, env = f.post(t, "/api/login", `{"email":"long@example.com","password":"`+long+`"}`)
	assert.Equal(t, http.StatusOK, rec.Code, env.Message)

	rec, _ = f.post(t, "/api/login", `{"email":"long@example.com","password":"`+long[:71]+`"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestEmailMatchedExactly(t *testing.T) {
	f := newFixture(t)
	f.post(t, "/api/signup", `{"email":"a@example.com","password":"pw"}`)

	for _, email := range []string{" a@example.com", "a@example.com ", "A@example.com"} {
		rec, env := f.post(t, "/api/login", `{"email":"`+email+`","password":"pw"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code, email)
		assert.Equal(t, "User not found", env.Message)
	}

	rec, _ := f.post(t, "/api/signup", `{"email":" a@example.com","password":"pw"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}
