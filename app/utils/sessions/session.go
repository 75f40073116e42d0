package sessions

import (
	"net/http"
	"time"

	"github.com/gorilla/sessions"
)

const (
	sessionCookieName = "storefront-session"

	userIDSessionKey = "userID"
	cartIDSessionKey = "cartID"
)

type SessionStore interface {
	HasSession(r *http.Request) bool

	GetUserID(r *http.Request) uint
	SetUserID(w http.ResponseWriter, r *http.Request, userID uint) error

	GetCartID(r *http.Request) string
	SetCartID(w http.ResponseWriter, r *http.Request, cartID string) error
	ClearCartID(w http.ResponseWriter, r *http.Request) error

	ClearSession(w http.ResponseWriter, r *http.Request) error
}

type CookieSessionStore struct {
	store *sessions.CookieStore
}

func NewCookieSessionStore(secure bool, keyPairs ...[]byte) *CookieSessionStore {
	store := sessions.NewCookieStore(keyPairs...)

	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(30 * 24 * time.Hour / time.Second),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &CookieSessionStore{store: store}
}

// getSession never fails: a cookie that cannot be decoded yields a fresh session.
func (c *CookieSessionStore) getSession(r *http.Request) *sessions.Session {
	session, err := c.store.Get(r, sessionCookieName)
	if err != nil {
		session, _ = c.store.New(r, sessionCookieName)
		session.IsNew = true
	}
	return session
}

func (c *CookieSessionStore) HasSession(r *http.Request) bool {
	_, err := r.Cookie(sessionCookieName)
	return err == nil
}

func (c *CookieSessionStore) GetUserID(r *http.Request) uint {
	userID, ok := c.getSession(r).Values[userIDSessionKey].(uint)
	if !ok {
		return 0
	}
	return userID
}

func (c *CookieSessionStore) SetUserID(w http.ResponseWriter, r *http.Request, userID uint) error {
	session := c.getSession(r)
	session.Values[userIDSessionKey] = userID
	return session.Save(r, w)
}

func (c *CookieSessionStore) GetCartID(r *http.Request) string {
	cartID, ok := c.getSession(r).Values[cartIDSessionKey].(string)
	if !ok {
		return ""
	}
	return cartID
}

func (c *CookieSessionStore) SetCartID(w http.ResponseWriter, r *http.Request, cartID string) error {
	session := c.getSession(r)
	session.Values[cartIDSessionKey] = cartID
	return session.Save(r, w)
}

func (c *CookieSessionStore) ClearCartID(w http.ResponseWriter, r *http.Request) error {
	session := c.getSession(r)
	delete(session.Values, cartIDSessionKey)
	return session.Save(r, w)
}

func (c *CookieSessionStore) ClearSession(w http.ResponseWriter, r *http.Request) error {
	session := c.getSession(r)
	session.Values = make(map[interface{}]interface{})
	session.Options.MaxAge = -1
	return session.Save(r, w)
}
