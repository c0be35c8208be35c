package httpserver

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const (
	sessionCookie = "sid"
	sessionMaxAge = 60 * 60 * 24 * 7
)

func (s *Server) sign(payload []byte) string {
	h := hmac.New(sha256.New, s.sessionKey)
	h.Write(payload)
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

// readSession returns the session id carried by a correctly signed cookie.
func (s *Server) readSession(r *http.Request) (string, bool) {
	c, err := r.Cookie(sessionCookie)
	if err != nil || c.Value == "" {
		return "", false
	}
	parts := strings.SplitN(c.Value, ".", 2)
	if len(parts) != 2 {
		return "", false
	}
	sig, _ := base64.RawURLEncoding.DecodeString(parts[0])
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return "", false
	}
	h := hmac.New(sha256.New, s.sessionKey)
	h.Write(payload)
	if !hmac.Equal(sig, h.Sum(nil)) {
		return "", false
	}
	id, err := uuid.ParseBytes(payload)
	if err != nil {
		return "", false
	}
	return id.String(), true
}

func (s *Server) writeSession(w http.ResponseWriter, id string) {
	b := []byte(id)
	val := s.sign(b) + "." + base64.RawURLEncoding.EncodeToString(b)
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: val, Path: "/", MaxAge: sessionMaxAge, HttpOnly: true, Secure: s.secureCookie, SameSite: http.SameSiteLaxMode})
}

// ensureSession must run before anything is written to w.
func (s *Server) ensureSession(w http.ResponseWriter, r *http.Request) string {
	if id, ok := s.readSession(r); ok {
		return id
	}
	id := uuid.NewString()
	s.writeSession(w, id)
	return id
}
