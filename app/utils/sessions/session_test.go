package sessions

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/securecookie"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore() *CookieSessionStore {
	return NewCookieSessionStore(false, securecookie.GenerateRandomKey(64), securecookie.GenerateRandomKey(32))
}

// replay copies the cookies set on rec onto a new request.
func replay(rec *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestCookieSessionStore_UserAndCart(t *testing.T) {
	store := newStore()

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	assert.False(t, store.HasSession(req))
	assert.Zero(t, store.GetUserID(req))

	rec := httptest.NewRecorder()
	require.NoError(t, store.SetUserID(rec, req, 42))

	next := replay(rec)
	assert.True(t, store.HasSession(next))
	assert.Equal(t, uint(42), store.GetUserID(next))

	rec = httptest.NewRecorder()
	require.NoError(t, store.SetCartID(rec, next, "cart-1"))
	next = replay(rec)
	assert.Equal(t, "cart-1", store.GetCartID(next))
	assert.Equal(t, uint(42), store.GetUserID(next))
}

func TestCookieSessionStore_TamperedCookie(t *testing.T) {
	store := newStore()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "garbage"})

	assert.Zero(t, store.GetUserID(req))
	assert.Empty(t, store.GetCartID(req))
}

func TestCookieSessionStore_ClearSession(t *testing.T) {
	store := newStore()
	rec := httptest.NewRecorder()
	require.NoError(t, store.SetUserID(rec, httptest.NewRequest(http.MethodGet, "/", nil), 7))

	cleared := httptest.NewRecorder()
	require.NoError(t, store.ClearSession(cleared, replay(rec)))

	cookies := cleared.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Less(t, cookies[0].MaxAge, 0)
}
