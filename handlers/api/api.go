// Package api is the JSON surface: health, the room list and message windows.
package api

import (
	"net/http"
	"strconv"
	"time"

	"sohbet-lite/access"
	"sohbet-lite/chat"
	"sohbet-lite/core"
	"sohbet-lite/handlers"
	"sohbet-lite/middleware"
	"sohbet-lite/registry"
	"sohbet-lite/session"

	"github.com/go-chi/render"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// MaxLimit caps the limit query parameter of the message window.
const MaxLimit = 500

// RoomPasswordHeader carries a candidate room password for API clients.
const RoomPasswordHeader = "X-Room-Password"

type (
	Health struct {
		OK   bool   `json:"ok"`
		Time string `json:"time"`
	}

	Room struct {
		Name      string    `json:"name"`
		Protected bool      `json:"protected"`
		CreatedAt time.Time `json:"created_at"`
	}

	Message struct {
		ID        int64     `json:"id"`
		Room      string    `json:"room"`
		Author    string    `json:"author"`
		Kind      core.Kind `json:"kind"`
		Body      string    `json:"body,omitempty"`
		MediaURL  string    `json:"media_url,omitempty"`
		CreatedAt time.Time `json:"created_at"`
	}
)

func renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := handlers.StatusFor(err)
	if status == http.StatusInternalServerError {
		logrus.WithError(err).WithField("path", r.URL.Path).Error("API request failed")
	}
	render.Status(r, status)
	render.JSON(w, r, map[string]string{"error": handlers.PublicMessage(err)})
}

func HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, Health{OK: true, Time: time.Now().UTC().Format(time.RFC3339)})
	}
}

func HandleListRooms(rooms *registry.Rooms) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := rooms.List(r.Context())
		if err != nil {
			renderError(w, r, err)
			return
		}
		render.JSON(w, r, lo.Map(list, func(room *core.Room, _ int) Room {
			return Room{Name: room.Name, Protected: room.Protected(), CreatedAt: room.CreatedAt}
		}))
	}
}

// HandleMessages returns the newest messages of a room, oldest first. Access is
// decided like the modern client's, with the password optionally supplied in
// the X-Room-Password header.
func HandleMessages(rooms *registry.Rooms, guard *access.Guard, svc *chat.Service, defaultLimit int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		room := rooms.Normalize(middleware.URLParam(r, "room"))

		limit := defaultLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, map[string]string{"error": "limit must be a number"})
				return
			}
			limit = n
		}
		limit = lo.Clamp(limit, 1, MaxLimit)

		proof := access.Proof{
			CookieDigest: session.RoomDigest(r, room),
			Password:     r.Header.Get(RoomPasswordHeader),
		}
		if err := guard.Authorize(ctx, room, proof); err != nil {
			renderError(w, r, err)
			return
		}

		messages, err := svc.Recent(ctx, room, limit)
		if err != nil {
			renderError(w, r, err)
			return
		}
		render.JSON(w, r, lo.Map(messages, func(m *core.Message, _ int) Message {
			out := Message{
				ID:        m.ID,
				Room:      m.Room,
				Author:    m.Author,
				Kind:      m.Content.Kind(),
				Body:      m.Body(),
				CreatedAt: m.CreatedAt,
			}
			if h := m.Media(); h != "" {
				out.MediaURL = "/media/" + string(h)
			}
			return out
		}))
	}
}
