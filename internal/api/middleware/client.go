package middleware

import (
	"context"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

type contextKey string

const (
	// ClientIDKey holds the dashboard client id in the request context
	ClientIDKey contextKey = "client_id"

	clientSessionName = "monitor_client"
	clientSessionID   = "client_id"

	// clientSessionMaxAge keeps the client id for a year
	clientSessionMaxAge = 365 * 24 * 60 * 60
)

// ClientSession identifies a dashboard browser by a random id kept in a
// signed cookie, issuing a new id on first visit. Preferences are stored
// against that id; there is no login.
type ClientSession struct {
	store  sessions.Store
	secure bool
}

// NewClientSession creates the client session middleware
func NewClientSession(store sessions.Store, secure bool) *ClientSession {
	return &ClientSession{store: store, secure: secure}
}

// Middleware attaches the client id to the request context
func (c *ClientSession) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := c.store.Get(r, clientSessionName)
		if err != nil {
			// A cookie signed with a rotated secret fails to decode; start over
			log.Printf("Failed to decode client session, issuing a new one: %v", err)
			session = sessions.NewSession(c.store, clientSessionName)
		}
		if session.Options == nil {
			session.Options = &sessions.Options{}
		}

		clientID, _ := session.Values[clientSessionID].(string)
		if _, parseErr := uuid.Parse(clientID); parseErr != nil {
			clientID = uuid.NewString()
			session.Values[clientSessionID] = clientID
			session.Options.MaxAge = clientSessionMaxAge
			session.Options.HttpOnly = true
			session.Options.Secure = c.secure
			session.Options.SameSite = http.SameSiteLaxMode
			session.Options.Path = "/"

			if err := session.Save(r, w); err != nil {
				log.Printf("ERROR: Failed to save client session: %v", err)
				http.Error(w, "Failed to create session", http.StatusInternalServerError)
				return
			}
		}

		next.ServeHTTP(w, r.WithContext(SetClientID(r.Context(), clientID)))
	})
}

// GetClientID extracts the dashboard client id from the request context
func GetClientID(r *http.Request) string {
	id, _ := r.Context().Value(ClientIDKey).(string)
	return id
}

// SetClientID stores a client id in the context
func SetClientID(ctx context.Context, clientID string) context.Context {
	return context.WithValue(ctx, ClientIDKey, clientID)
}
