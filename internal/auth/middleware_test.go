package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mip/internal/models"
)

func TestExtractBearer(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"", "", false},
		{"Bearer", "", false},
		{"Bearer ", "", false},
		{"bearer abc", "", false},
		{"Basic abc", "", false},
		{"Bearer abc def", "", false},
		{"Bearer  abc", "", false},
	}
	for _, tt := range tests {
		tok, ok := ExtractBearer(tt.header)
		assert.Equal(t, tt.ok, ok, tt.header)
		assert.Equal(t, tt.token, tok, tt.header)
	}
}

func serveGate(t *testing.T, s *TokenService, header string) (*httptest.ResponseRecorder, *Identity) {
	t.Helper()
	var seen *Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFrom(r.Context())
		require.True(t, ok)
		seen = &id
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/history", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	Gate(s)(next).ServeHTTP(rec, req)
	return rec, seen
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) models.ErrorBody {
	t.Helper()
	var body models.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestGate_MissingHeader(t *testing.T) {
	rec, seen := serveGate(t, newTestService(t, "k"), "")

	assert.Nil(t, seen)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "Access denied. No token provided.", body.Message)
	assert.Equal(t, "Unauthorized", body.Error)
	assert.Equal(t, 401, body.StatusCode)
}

func TestGate_MalformedHeader(t *testing.T) {
	rec, seen := serveGate(t, newTestService(t, "k"), "Token abc")

	assert.Nil(t, seen)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGate_InvalidToken(t *testing.T) {
	rec, seen := serveGate(t, newTestService(t, "k"), "Bearer not.a.jwt")

	assert.Nil(t, seen)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid or expired token", decodeError(t, rec).Message)
}

func TestGate_ExpiredToken(t *testing.T) {
	s := newTestService(t, "k")
	s.now = func() time.Time { return time.Now().Add(-30 * 24 * time.Hour) }
	tok, err := s.Issue(Identity{ID: uuid.New(), Email: "a@x.com"})
	require.NoError(t, err)
	s.now = time.Now

	rec, seen := serveGate(t, s, "Bearer "+tok)

	assert.Nil(t, seen)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Token has expired", decodeError(t, rec).Message)
}

func TestGate_ValidToken_SetsIdentity(t *testing.T) {
	s := newTestService(t, "k")
	want := Identity{ID: uuid.New(), Email: "a@x.com"}
	tok, err := s.Issue(want)
	require.NoError(t, err)

	rec, seen := serveGate(t, s, "Bearer "+tok)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, want, *seen)
}

func TestIdentityFrom_Empty(t *testing.T) {
	_, ok := IdentityFrom(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	assert.False(t, ok)
}
