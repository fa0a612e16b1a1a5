package views

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sohbet-lite/core"
	"sohbet-lite/session"

	"github.com/stretchr/testify/require"
)

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	v, err := New("Sohbet")
	require.NoError(t, err)
	return v
}

func sampleMessages() []Message {
	at := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	return Messages([]*core.Message{
		{Author: "ali", Content: core.Text{Body: "&lt;b&gt;merhaba"}, CreatedAt: at},
		{Author: "ayse", Content: core.Image{Handle: "01HXAMPLE00000000000000000.png"}, CreatedAt: at},
	})
}

func TestMessages(t *testing.T) {
	req := require.New(t)
	msgs := sampleMessages()
	req.Len(msgs, 2)
	req.Equal("2024-05-01 12:30:00", msgs[0].Time)
	req.Empty(msgs[0].MediaURL)
	req.Equal(core.KindImage, msgs[1].Kind)
	req.Equal("/media/01HXAMPLE00000000000000000.png", msgs[1].MediaURL)
}

func TestRoomPageEmbedsEscapedBodiesVerbatim(t *testing.T) {
	req := require.New(t)
	rec := httptest.NewRecorder()
	newRenderer(t).HTML(rec, http.StatusOK, "room.html", RoomPage{
		Room:        "genel",
		User:        "ayse",
		Messages:    sampleMessages(),
		Refresh:     12,
		MaxUploadMB: 10,
	})

	req.Equal(http.StatusOK, rec.Code)
	req.Equal("text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	req.Contains(body, "&lt;b&gt;merhaba")
	req.NotContains(body, "&amp;lt;b")
	req.Contains(body, `<img src="/media/01HXAMPLE00000000000000000.png"`)
	req.Contains(body, `content="12"`)
	req.Contains(body, "10MB")
}

func TestLitePage(t *testing.T) {
	req := require.New(t)
	rec := httptest.NewRecorder()
	newRenderer(t).XHTML(rec, http.StatusOK, "lite.xhtml", LitePage{
		Room:         "genel",
		User:         "ayse",
		Token:        "tok",
		RoomPassword: "1234",
		Messages:     sampleMessages(),
		Refresh:      20,
	})

	req.Equal("application/xhtml+xml; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	req.True(strings.HasPrefix(body, `<!DOCTYPE html PUBLIC "-//WAPFORUM//DTD XHTML Mobile 1.2//EN"`))
	req.Contains(body, "[Resim/Video] <a href=\"/media/01HXAMPLE00000000000000000.png\">")
	req.Contains(body, `name="rp" value="1234"`)
	req.Contains(body, `content="20"`)
	req.NotContains(body, "<img")
}

func TestLitePageEmpty(t *testing.T) {
	rec := httptest.NewRecorder()
	newRenderer(t).XHTML(rec, http.StatusOK, "lite.xhtml", LitePage{Room: "genel", Refresh: 20})
	require.Contains(t, rec.Body.String(), "Henüz mesaj yok.")
}

func TestNoticePage(t *testing.T) {
	rec := httptest.NewRecorder()
	newRenderer(t).XHTML(rec, http.StatusForbidden, "notice.xhtml", NoticePage{Title: "Şifre gerekli", Text: "rp"})
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Contains(t, rec.Body.String(), "<h3>Şifre gerekli</h3>")
}

func TestLinksPageEscapesUserInput(t *testing.T) {
	req := require.New(t)
	rec := httptest.NewRecorder()
	issuer := session.NewIssuer("")
	newRenderer(t).HTML(rec, http.StatusOK, "links.html", LinksPage{
		User:  "ayse",
		Room:  "<x>",
		Links: issuer.Links(&core.User{Name: "ayse", Token: "tok"}, "<x>", "1234"),
		// shows the notice that renders Room
		PasswordIgnored: true,
	})
	body := rec.Body.String()
	req.Contains(body, "&lt;x&gt;")
	req.NotContains(body, "<x>")
	req.Contains(body, "Tek tık paylaşım")
}

func TestErrorPage(t *testing.T) {
	rec := httptest.NewRecorder()
	newRenderer(t).Error(rec, http.StatusConflict, "name taken")
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), "name taken")
	require.Contains(t, rec.Body.String(), "Conflict")
}

func TestUnknownTemplate(t *testing.T) {
	rec := httptest.NewRecorder()
	newRenderer(t).HTML(rec, http.StatusOK, "missing.html", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
