// internal/httpserver/auth.go
//
// Launch-token guard for the local board UI.
// The server signs one HS256 JWT at startup and prints a URL carrying it.
// The browser presents it once as ?token=…, after which it rides in an
// HttpOnly cookie. Other local processes and pages cannot drive the board
// without it.

package httpserver

import (
	"crypto/rand"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	cookieName = "bingo_token"
	tokenTTL   = 30 * 24 * time.Hour
)

// Launcher issues and verifies the launch token.
type Launcher struct {
	secret []byte
	token  string
	exp    time.Time
}

// NewLauncher signs a launch token. An empty secret selects a random one,
// which invalidates tokens of previous runs.
func NewLauncher(secret string) (*Launcher, error) {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, err
		}
	}
	now := time.Now()
	exp := now.Add(tokenTTL)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "bingo",
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	ss, err := t.SignedString(key)
	if err != nil {
		return nil, err
	}
	return &Launcher{secret: key, token: ss, exp: exp}, nil
}

// Token returns the signed launch token.
func (l *Launcher) Token() string { return l.token }

// URL returns the page address carrying the token.
func (l *Launcher) URL(addr string) string {
	return "http://" + addr + "/?token=" + url.QueryEscape(l.token)
}

// Verify checks signature, algorithm and expiry of tok.
func (l *Launcher) Verify(tok string) error {
	if tok == "" {
		return errors.New("missing token")
	}
	claims := jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(tok, &claims, func(t *jwt.Token) (interface{}, error) {
		return l.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithSubject("bingo"))
	if err != nil {
		return err
	}
	if !parsed.Valid {
		return errors.New("invalid token")
	}
	return nil
}

// requireToken enforces a valid launch token from the query string, the
// Authorization header or the cookie. A valid query token is moved into
// the cookie.
func (s *Server) requireToken() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if q := r.URL.Query().Get("token"); q != "" {
				if err := s.auth.Verify(q); err != nil {
					writeJSONError(w, http.StatusUnauthorized, "invalid_token", err.Error())
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     cookieName,
					Value:    q,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteStrictMode,
					Expires:  s.auth.exp,
				})
				next.ServeHTTP(w, r)
				return
			}
			if err := s.auth.Verify(bearerOrCookie(r)); err != nil {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", err.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// bearerOrCookie extracts a bearer token from Authorization header or the cookie.
func bearerOrCookie(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return c.Value
	}
	return ""
}
