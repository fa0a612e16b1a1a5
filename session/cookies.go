package session

import (
	"encoding/base64"
	"net/http"
	"net/url"
	"time"

	"sohbet-lite/core"
)

const (
	UserCookie  = "chat_user"
	TokenCookie = "chat_token"

	roomCookiePrefix = "room_"
)

// CookieMaxAge is one year.
const CookieMaxAge = 365 * 24 * time.Hour

func newCookie(name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(CookieMaxAge / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		// Deployments behind plain HTTP must keep working.
		Secure: false,
	}
}

// IdentityCookies returns the user name and token cookies for user.
func IdentityCookies(user *core.User) []*http.Cookie {
	return []*http.Cookie{
		newCookie(UserCookie, url.QueryEscape(user.Name)),
		newCookie(TokenCookie, user.Token),
	}
}

// Identity reads the identity cookies. Missing cookies yield empty strings.
func Identity(r *http.Request) (name, token string) {
	if c, err := r.Cookie(UserCookie); err == nil {
		if v, err := url.QueryUnescape(c.Value); err == nil {
			name = v
		}
	}
	if c, err := r.Cookie(TokenCookie); err == nil {
		token = c.Value
	}
	return name, token
}

// RoomCookieName is the cookie holding the credential for room. Room names may
// contain characters that are not allowed in cookie names, so they are encoded.
func RoomCookieName(room string) string {
	return roomCookiePrefix + base64.RawURLEncoding.EncodeToString([]byte(room))
}

// RoomCookie proves that the holder once entered room with the password whose
// digest is given.
func RoomCookie(room string, digest core.Digest) *http.Cookie {
	return newCookie(RoomCookieName(room), string(digest))
}

// RoomDigest returns the room credential presented with r, or the zero Digest.
func RoomDigest(r *http.Request, room string) core.Digest {
	c, err := r.Cookie(RoomCookieName(room))
	if err != nil {
		return ""
	}
	return core.Digest(c.Value)
}
