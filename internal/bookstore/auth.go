package bookstore

import (
	"net/http"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
)

// TokenStore holds the access tokens handed out by the login endpoint.
// It is safe for concurrent use.
type TokenStore struct {
	tokens mapset.Set[string]
}

// NewTokenStore creates an empty TokenStore.
func NewTokenStore() *TokenStore {
	return &TokenStore{tokens: mapset.NewSet[string]()}
}

// Issue creates and remembers a new access token.
func (s *TokenStore) Issue() string {
	token := uuid.New().String()
	s.tokens.Add(token)
	return token
}

// Valid reports whether token was issued by this store.
func (s *TokenStore) Valid(token string) bool {
	return token != "" && s.tokens.Contains(token)
}

// Revoke forgets token.
func (s *TokenStore) Revoke(token string) {
	s.tokens.Remove(token)
}

// RequireToken returns middleware that rejects requests without a bearer
// token issued by tokens.
func RequireToken(tokens *TokenStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				w.Header().Set("WWW-Authenticate", "Bearer")
				writeError(w, http.StatusUnauthorized, "not authenticated")
				return
			}
			if !tokens.Valid(token) {
				w.Header().Set("WWW-Authenticate", "Bearer")
				writeError(w, http.StatusUnauthorized, "invalid access token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
