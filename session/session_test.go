package session

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"sohbet-lite/core"

	"github.com/stretchr/testify/require"
)

func TestLinks(t *testing.T) {
	req := require.New(t)
	issuer := NewIssuer("")
	user := &core.User{Name: "ayse", Token: "abc123"}

	links := issuer.Links(user, "genel oda", "1234")
	req.Equal("/room/genel%20oda", links.Modern)

	lite, err := url.Parse(links.Lite)
	req.NoError(err)
	req.Equal("/lite", lite.Path)
	req.Equal("ayse", lite.Query().Get("u"))
	req.Equal("abc123", lite.Query().Get("k"))
	req.Equal("genel oda", lite.Query().Get("room"))
	req.Equal("1234", lite.Query().Get("rp"))

	share, err := url.Parse(links.Share)
	req.NoError(err)
	req.Equal("/share/genel oda", share.Path)
	req.Equal("1234", share.Query().Get("rp"))
	req.False(share.Query().Has("room"))
}

func TestLinksWithBaseURL(t *testing.T) {
	issuer := NewIssuer("https://sohbet.example/")
	require.Equal(t, "https://sohbet.example/room/genel", issuer.ModernURL("genel"))
	require.True(t, strings.HasPrefix(issuer.LiteURL("a", "b", "c", ""), "https://sohbet.example/lite?"))
}

func TestRoomCookieAttributes(t *testing.T) {
	req := require.New(t)
	c := RoomCookie("genel", "digest")

	req.Equal(RoomCookieName("genel"), c.Name)
	req.Equal("digest", c.Value)
	req.Equal(31536000, c.MaxAge)
	req.True(c.HttpOnly)
	req.False(c.Secure)
	req.Equal(http.SameSiteLaxMode, c.SameSite)
	req.Equal("/", c.Path)
}

func TestRoomCookieNameIsValidForAnyRoom(t *testing.T) {
	for _, room := range []string{"genel", "çay ocağı", "a;b=c", "odа/1"} {
		t.Run(room, func(t *testing.T) {
			rec := httptest.NewRecorder()
			http.SetCookie(rec, RoomCookie(room, "d"))
			require.NotEmpty(t, rec.Header().Get("Set-Cookie"))

			r := httptest.NewRequest(http.MethodGet, "/", nil)
			for _, c := range rec.Result().Cookies() {
				r.AddCookie(c)
			}
			require.Equal(t, core.Digest("d"), RoomDigest(r, room))
		})
	}
}

func TestRoomCookiesAreScopedPerRoom(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(RoomCookie("a", "d"))
	require.Equal(t, core.Digest(""), RoomDigest(r, "b"))
}

func TestIdentityRoundTrip(t *testing.T) {
	req := require.New(t)
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range IdentityCookies(&core.User{Name: "şükrü", Token: "tok"}) {
		r.AddCookie(c)
	}

	name, token := Identity(r)
	req.Equal("şükrü", name)
	req.Equal("tok", token)

	name, token = Identity(httptest.NewRequest(http.MethodGet, "/", nil))
	req.Empty(name)
	req.Empty(token)
}
