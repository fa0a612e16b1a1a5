// Package web serves the cookie-based modern client.
package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"sohbet-lite/access"
	"sohbet-lite/chat"
	"sohbet-lite/core"
	"sohbet-lite/handlers"
	"sohbet-lite/middleware"
	"sohbet-lite/registry"
	"sohbet-lite/session"
	"sohbet-lite/views"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sirupsen/logrus"
)

// formMemory is how much of a multipart body is kept in memory before spilling
// to temporary files.
const formMemory = 1 << 20

type Handlers struct {
	Users   *registry.Users
	Rooms   *registry.Rooms
	Guard   *access.Guard
	Chat    *chat.Service
	Issuer  *session.Issuer
	Views   *views.Renderer
	Guest   string
	Window  int
	Refresh time.Duration
}

func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := handlers.StatusFor(err)
	if status == http.StatusInternalServerError {
		logrus.WithError(err).WithField("path", r.URL.Path).Error("Request failed")
	}
	h.Views.Error(w, status, handlers.PublicMessage(err))
}

func (h *Handlers) prompt(w http.ResponseWriter, room string, failed bool) {
	h.Views.HTML(w, http.StatusForbidden, "prompt.html", views.PromptPage{
		Room:   room,
		Action: "/enter/" + url.PathEscape(room),
		Failed: failed,
	})
}

func (h *Handlers) HandleHome() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.Views.HTML(w, http.StatusOK, "home.html", views.HomePage{DefaultRoom: h.Rooms.Normalize("")})
	}
}

// HandleRegister creates the user, registers the room on first use and hands out
// the entry links. A password given for an already existing room does not
// change that room.
func (h *Handlers) HandleRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := r.ParseForm(); err != nil {
			h.fail(w, r, fmt.Errorf("%w: %v", core.ErrInvalidInput, err))
			return
		}

		user, err := h.Users.Register(ctx, r.PostFormValue("username"))
		if err != nil {
			h.fail(w, r, err)
			return
		}

		password := r.PostFormValue("room_pass")
		room, err := h.Rooms.GetOrCreate(ctx, r.PostFormValue("room"), password)
		if err != nil {
			h.fail(w, r, err)
			return
		}

		for _, c := range session.IdentityCookies(user) {
			http.SetCookie(w, c)
		}
		digest := h.Rooms.Digest(password)
		if password != "" {
			http.SetCookie(w, session.RoomCookie(room.Name, digest))
		}

		h.Views.HTML(w, http.StatusOK, "links.html", views.LinksPage{
			User:            user.Name,
			Room:            room.Name,
			Links:           h.Issuer.Links(user, room.Name, password),
			PasswordIgnored: password != "" && room.PasswordDigest != digest,
		})
	}
}

func (h *Handlers) HandleShare() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		room := h.Rooms.Normalize(middleware.URLParam(r, "room"))
		q := r.URL.Query()
		h.Views.HTML(w, http.StatusOK, "share.html", views.SharePage{
			Room:   room,
			Modern: h.Issuer.ModernURL(room),
			Lite:   h.Issuer.LiteURL(q.Get("u"), q.Get("k"), room, q.Get("rp")),
		})
	}
}

// HandleEnter checks a submitted room password and, when it is right, stores the
// room credential in a cookie.
func (h *Handlers) HandleEnter() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		room := h.Rooms.Normalize(middleware.URLParam(r, "room"))
		if err := r.ParseForm(); err != nil {
			h.fail(w, r, fmt.Errorf("%w: %v", core.ErrInvalidInput, err))
			return
		}

		digest, err := h.Guard.Enter(r.Context(), room, r.PostFormValue("room_pass"))
		if errors.Is(err, core.ErrNotAuthorized) {
			h.prompt(w, room, true)
			return
		}
		if err != nil {
			h.fail(w, r, err)
			return
		}

		if !digest.IsZero() {
			http.SetCookie(w, session.RoomCookie(room, digest))
		}
		http.Redirect(w, r, h.Issuer.ModernURL(room), http.StatusSeeOther)
	}
}

func (h *Handlers) HandleRoom() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		room := h.Rooms.Normalize(middleware.URLParam(r, "room"))

		ok, err := h.Guard.CanEnter(ctx, room, access.Proof{CookieDigest: session.RoomDigest(r, room)})
		if err != nil {
			h.fail(w, r, err)
			return
		}
		if !ok {
			h.prompt(w, room, false)
			return
		}

		messages, err := h.Chat.Recent(ctx, room, h.Window)
		if err != nil {
			h.fail(w, r, err)
			return
		}

		name, token := session.Identity(r)
		if user := middleware.UserFrom(ctx); user != nil {
			name, token = user.Name, user.Token
		}
		if name == "" {
			name = h.Guest
		}

		h.Views.HTML(w, http.StatusOK, "room.html", views.RoomPage{
			Room:        room,
			User:        name,
			Token:       token,
			Messages:    views.Messages(messages),
			Refresh:     int(h.Refresh / time.Second),
			MaxUploadMB: h.Chat.MaxUpload() >> 20,
		})
	}
}

// HandleSend posts the modern client's form. An attached file makes the post a
// media upload, otherwise msg is posted as text.
func (h *Handlers) HandleSend() http.HandlerFunc {
	return h.post(false)
}

// HandleUpload accepts media posts only.
func (h *Handlers) HandleUpload() http.HandlerFunc {
	return h.post(true)
}

func (h *Handlers) post(mediaOnly bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		r.Body = http.MaxBytesReader(w, r.Body, int64(h.Chat.MaxUpload())+formMemory)
		if err := handlers.ParseForm(r, formMemory); err != nil {
			h.fail(w, r, fmt.Errorf("%w: %w", core.ErrInvalidInput, err))
			return
		}

		room := h.Rooms.Normalize(r.FormValue("room"))
		proof := access.Proof{
			CookieDigest: session.RoomDigest(r, room),
			Password:     r.FormValue("rp"),
		}
		if err := h.Guard.Authorize(ctx, room, proof); err != nil {
			if errors.Is(err, core.ErrNotAuthorized) {
				h.prompt(w, room, false)
				return
			}
			h.fail(w, r, err)
			return
		}

		author := handlers.Author(ctx, h.Users, r.FormValue("token"), r.FormValue("username"))

		var err error
		file, header, ferr := r.FormFile("file")
		switch {
		case ferr == nil && header.Filename != "":
			defer file.Close()
			err = h.upload(r, room, author, header.Filename, file)
		case mediaOnly:
			err = fmt.Errorf("%w: no file uploaded", core.ErrInvalidInput)
		default:
			_, err = h.Chat.PostText(ctx, room, author, r.FormValue("msg"))
		}
		if err != nil {
			h.fail(w, r, err)
			return
		}

		http.Redirect(w, r, h.Issuer.ModernURL(room), http.StatusSeeOther)
	}
}

func (h *Handlers) upload(r *http.Request, room, author, filename string, file io.Reader) error {
	// one byte over the limit is enough to reject
	data, err := io.ReadAll(io.LimitReader(file, int64(h.Chat.MaxUpload())+1))
	if err != nil {
		return err
	}
	_, err = h.Chat.Upload(r.Context(), room, author, filename, data)
	return err
}

// HandleMedia serves an uploaded blob with a Content-Type sniffed from its bytes.
func (h *Handlers) HandleMedia() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		handle := core.MediaHandle(middleware.URLParam(r, "handle"))
		data, err := h.Chat.ReadMedia(r.Context(), handle)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				http.NotFound(w, r)
				return
			}
			logrus.WithError(err).WithField("handle", handle).Error("Failed to read media")
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", mimetype.Detect(data).String())
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		if _, err := w.Write(data); err != nil {
			logrus.WithError(err).Debug("Failed to write media")
		}
	}
}
