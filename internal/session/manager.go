package session

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/obutuz/Miley/internal/utils"
	"github.com/sirupsen/logrus"
)

const (
	// CookieName carries the signed session token.
	CookieName = "sessionid"
	contextKey = "session"
)

// Manager binds sessions to gin requests.
type Manager struct {
	store  *Store
	secret string
	secure bool
}

// NewManager creates a Manager signing cookies with secret.
func NewManager(store *Store, secret string, secure bool) *Manager {
	return &Manager{store: store, secret: secret, secure: secure}
}

// Middleware loads the visitor's session before the handler runs and saves
// it afterwards when the handler changed it. Visitors without a valid
// cookie get a new session and cookie up front, since headers cannot be
// changed once the handler has written its response. A correctly signed
// cookie whose session is gone from Redis keeps its id and cookie.
func (m *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		sess, id := m.load(c)
		if sess == nil {
			if id != "" {
				sess = &Session{ID: id, Values: map[string]json.RawMessage{}}
			} else {
				sess = New()
				m.setCookie(c, sess)
			}
		}
		c.Set(contextKey, sess)

		c.Next()

		if !sess.Modified() {
			return
		}
		if err := m.store.Save(ctx, sess); err != nil {
			logrus.WithFields(logrus.Fields{
				"session": sess.ID,
				"error":   err.Error(),
			}).Error("Failed to save session")
		}
	}
}

// load returns the stored session and the id carried by a validly signed
// cookie. The id is empty when the cookie is missing or forged.
func (m *Manager) load(c *gin.Context) (*Session, string) {
	raw, err := c.Cookie(CookieName)
	if err != nil || raw == "" {
		return nil, ""
	}
	claims, err := utils.ParseSessionToken(raw, m.secret)
	if err != nil || claims.SessionID == "" {
		return nil, "" // Tampered or expired cookie, start over
	}
	sess, err := m.store.Load(c.Request.Context(), claims.SessionID)
	if err != nil {
		logrus.WithField("error", err.Error()).Warn("Failed to load session")
		return nil, ""
	}
	return sess, claims.SessionID
}

// Cycle moves the session data to a new id, used on login.
func (m *Manager) Cycle(c *gin.Context) *Session {
	sess := FromContext(c)
	if err := m.store.Destroy(c.Request.Context(), sess.ID); err != nil {
		logrus.WithField("error", err.Error()).Warn("Failed to drop old session")
	}
	sess.ID = newID()
	sess.modified = true
	m.setCookie(c, sess)
	return sess
}

// Flush deletes the session and starts an empty one, used on logout.
func (m *Manager) Flush(c *gin.Context) *Session {
	sess := FromContext(c)
	if err := m.store.Destroy(c.Request.Context(), sess.ID); err != nil {
		logrus.WithField("error", err.Error()).Warn("Failed to destroy session")
	}
	fresh := New()
	*sess = *fresh
	m.setCookie(c, sess)
	return sess
}

func (m *Manager) setCookie(c *gin.Context, sess *Session) {
	token, err := utils.GenerateSessionToken(sess.ID, m.secret, m.store.TTL())
	if err != nil {
		logrus.WithField("error", err.Error()).Error("Failed to sign session cookie")
		return
	}
	// Only the latest session cookie is sent
	header := c.Writer.Header()
	var kept []string
	for _, v := range header.Values("Set-Cookie") {
		if !strings.HasPrefix(v, CookieName+"=") {
			kept = append(kept, v)
		}
	}
	header.Del("Set-Cookie")
	for _, v := range kept {
		header.Add("Set-Cookie", v)
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, token, int(m.store.TTL().Seconds()), "/", "", m.secure, true)
}

// FromContext returns the session attached by Middleware.
func FromContext(c *gin.Context) *Session {
	return c.MustGet(contextKey).(*Session)
}
