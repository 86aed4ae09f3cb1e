package middleware

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

const (
	clientSessionName = "search-session"
	clientIDKey       = "client_id"

	// ClientIDContextKey holds the client id on the echo context.
	ClientIDContextKey = "client_id"
)

// ClientID makes sure every visitor carries a random client id in its cookie
// session and exposes it on the echo context. It must run after the session
// middleware.
func ClientID(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess, err := session.Get(clientSessionName, c)
		if sess == nil {
			return fmt.Errorf("client session unavailable: %w", err)
		}
		if err != nil {
			// A cookie we cannot decode gets a fresh session.
			slog.Debug("Discarding unreadable session", "error", err)
		}

		id, _ := sess.Values[clientIDKey].(string)
		if id == "" {
			id = uuid.NewString()
			sess.Values[clientIDKey] = id
			if err := sess.Save(c.Request(), c.Response()); err != nil {
				FromContext(c.Request().Context()).Warn("Failed to save client session", "error", err)
			}
		}

		c.Set(ClientIDContextKey, id)
		return next(c)
	}
}

// GetClientID returns the client id set by ClientID, or "" when absent.
func GetClientID(c echo.Context) string {
	id, _ := c.Get(ClientIDContextKey).(string)
	return id
}
