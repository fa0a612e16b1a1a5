// Package session issues the entry links handed out after registration and the
// long-lived cookies that identify a returning browser.
package session

import (
	"net/url"
	"strings"

	"sohbet-lite/core"
)

// Issuer builds entry URLs. With an empty base URL the links are relative.
//
// Lite and share links carry the room password in cleartext so that clients
// without cookie support can enter protected rooms. Whoever holds such a link
// holds the password.
type Issuer struct {
	baseURL string
}

func NewIssuer(baseURL string) *Issuer {
	return &Issuer{baseURL: strings.TrimRight(baseURL, "/")}
}

// Links is the set of URLs shown to a freshly registered user.
type Links struct {
	Modern string
	Lite   string
	Share  string
}

// ModernURL is the cookie-based entry for full browsers.
func (i *Issuer) ModernURL(room string) string {
	return i.baseURL + "/room/" + url.PathEscape(room)
}

// LiteURL is the parameter-based entry for XHTML Mobile clients.
func (i *Issuer) LiteURL(name, token, room, password string) string {
	q := url.Values{}
	q.Set("u", name)
	q.Set("k", token)
	q.Set("room", room)
	q.Set("rp", password)
	return i.baseURL + "/lite?" + q.Encode()
}

// ShareURL points at a landing page exposing both entries for forwarding.
func (i *Issuer) ShareURL(name, token, room, password string) string {
	q := url.Values{}
	q.Set("u", name)
	q.Set("k", token)
	q.Set("rp", password)
	return i.baseURL + "/share/" + url.PathEscape(room) + "?" + q.Encode()
}

func (i *Issuer) Links(user *core.User, room, password string) Links {
	return Links{
		Modern: i.ModernURL(room),
		Lite:   i.LiteURL(user.Name, user.Token, room, password),
		Share:  i.ShareURL(user.Name, user.Token, room, password),
	}
}
