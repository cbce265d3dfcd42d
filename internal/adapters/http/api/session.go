package api

import (
	"net/http"

	"github.com/google/uuid"
)

// SessionCookie carries the opaque session id.
const SessionCookie = "stylepulse_session"

func validSessionID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// sessionID returns the id from the request cookie, if any.
func sessionID(r *http.Request) (string, bool) {
	c, err := r.Cookie(SessionCookie)
	if err != nil || !validSessionID(c.Value) {
		return "", false
	}
	return c.Value, true
}

// ensureSession returns the request's session id, starting a new session
// and setting its cookie when the request has none.
func ensureSession(w http.ResponseWriter, r *http.Request) string {
	if id, ok := sessionID(r); ok {
		return id
	}
	id := uuid.NewString()
	setSessionCookie(w, id)
	return id
}

func setSessionCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
