// Package handlers holds what the web, lite and api handlers share: mapping
// errors to statuses and attributing posts to an author.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"sohbet-lite/chat"
	"sohbet-lite/core"
	"sohbet-lite/middleware"
)

// StatusFor maps an error to the HTTP status reported to the client.
func StatusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge), errors.Is(err, chat.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, core.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// PublicMessage is the error text safe to show to a client. Internal errors are
// not described.
func PublicMessage(err error) string {
	if StatusFor(err) == http.StatusInternalServerError {
		return http.StatusText(http.StatusInternalServerError)
	}
	return err.Error()
}

// Author picks the name a post is attributed to: the user identified by the
// request, else the user holding token, else the submitted name. An empty
// result leaves the choice of a guest name to the chat service.
func Author(ctx context.Context, users middleware.UserLookup, token, submitted string) string {
	if user := middleware.UserFrom(ctx); user != nil {
		return user.Name
	}
	if token != "" {
		if user, err := users.Lookup(ctx, token); err == nil {
			return user.Name
		}
	}
	return submitted
}

// ParseForm parses urlencoded and multipart bodies alike.
func ParseForm(r *http.Request, maxMemory int64) error {
	err := r.ParseMultipartForm(maxMemory)
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return err
	}
	return nil
}
