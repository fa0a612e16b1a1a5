// Package lite serves the XHTML Mobile client. It keeps no cookies: identity and
// the room password travel as parameters on every request.
package lite

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"sohbet-lite/access"
	"sohbet-lite/chat"
	"sohbet-lite/core"
	"sohbet-lite/handlers"
	"sohbet-lite/registry"
	"sohbet-lite/session"
	"sohbet-lite/views"

	"github.com/sirupsen/logrus"
)

const (
	maxTokenLength = 64
	maxFormBytes   = 64 << 10
)

type Handlers struct {
	Users   *registry.Users
	Rooms   *registry.Rooms
	Guard   *access.Guard
	Chat    *chat.Service
	Issuer  *session.Issuer
	Views   *views.Renderer
	Window  int
	Refresh time.Duration
}

func (h *Handlers) notice(w http.ResponseWriter, status int, title, text string) {
	h.Views.XHTML(w, status, "notice.xhtml", views.NoticePage{Title: title, Text: text})
}

func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := handlers.StatusFor(err)
	if status == http.StatusInternalServerError {
		logrus.WithError(err).WithField("path", r.URL.Path).Error("Request failed")
	}
	h.notice(w, status, http.StatusText(status), handlers.PublicMessage(err))
}

// HandleLite renders the room on GET and appends a text message on POST. Access is
// decided by the rp parameter alone.
func (h *Handlers) HandleLite() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
		if err := r.ParseForm(); err != nil {
			h.fail(w, r, fmt.Errorf("%w: %w", core.ErrInvalidInput, err))
			return
		}

		name := core.Truncate(strings.TrimSpace(r.FormValue("u")), core.MaxAuthorLength)
		token := core.Truncate(strings.TrimSpace(r.FormValue("k")), maxTokenLength)
		room := h.Rooms.Normalize(r.FormValue("room"))
		password := r.FormValue("rp")

		if err := h.Guard.Authorize(ctx, room, access.Proof{Password: password}); err != nil {
			if errors.Is(err, core.ErrNotAuthorized) {
				h.notice(w, http.StatusForbidden, "Şifre gerekli", "Oda şifreli. rp parametresiyle doğru şifreyi ekleyin.")
				return
			}
			h.fail(w, r, err)
			return
		}

		if r.Method == http.MethodPost {
			author := handlers.Author(ctx, h.Users, token, name)
			if _, err := h.Chat.PostText(ctx, room, author, r.PostFormValue("msg")); err != nil {
				h.fail(w, r, err)
				return
			}
			http.Redirect(w, r, h.Issuer.LiteURL(name, token, room, password), http.StatusSeeOther)
			return
		}

		messages, err := h.Chat.Recent(ctx, room, h.Window)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		h.Views.XHTML(w, http.StatusOK, "lite.xhtml", views.LitePage{
			Room:         room,
			User:         name,
			Token:        token,
			RoomPassword: password,
			Messages:     views.Messages(messages),
			Refresh:      int(h.Refresh / time.Second),
		})
	}
}
