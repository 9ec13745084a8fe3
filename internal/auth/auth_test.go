package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/internal/domain"
)

var testSecret = []byte("test-secret")

func signToken(t *testing.T, subject, name string, staff bool) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Name:  name,
		Staff: staff,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString(testSecret)
	require.NoError(t, err)
	return signed
}

func TestVerifyToken_Valid(t *testing.T) {
	tokenString := signToken(t, "42", "Jane", true)

	actor, err := VerifyToken(tokenString, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "42", actor.UserID)
	assert.Equal(t, "Jane", actor.Name)
	assert.True(t, actor.Staff)
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	tokenString := signToken(t, "42", "Jane", false)

	actor, err := VerifyToken(tokenString, []byte("other-secret"))
	assert.Error(t, err)
	assert.Nil(t, actor)
}

func TestVerifyToken_MissingSubject(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Name: "NoSub"})
	signed, err := token.SignedString(testSecret)
	require.NoError(t, err)

	actor, err := VerifyToken(signed, testSecret)
	assert.Error(t, err)
	assert.Nil(t, actor)
}

func TestMiddleware_InjectsActor(t *testing.T) {
	var got domain.Actor
	var ok bool

	handler := Middleware(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = ActorFrom(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "7", "Bob", false))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, ok)
	assert.Equal(t, "7", got.UserID)
	assert.False(t, got.Staff)
}

func TestMiddleware_MissingHeader(t *testing.T) {
	handler := Middleware(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddleware_InvalidToken(t *testing.T) {
	handler := Middleware(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
