// Package views renders the HTML pages of the modern client and the XHTML Mobile
// pages of the lite client.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"sohbet-lite/core"
	"sohbet-lite/session"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

//go:embed templates/*
var templateFS embed.FS

const (
	htmlContentType  = "text/html; charset=utf-8"
	xhtmlContentType = "application/xhtml+xml; charset=utf-8"
)

type (
	// Message is a stored message prepared for display. Author and Body were
	// escaped when the message was written and are emitted verbatim.
	Message struct {
		Author   template.HTML
		Body     template.HTML
		Kind     core.Kind
		MediaURL string
		Time     string
	}

	HomePage struct {
		DefaultRoom string
	}

	LinksPage struct {
		User  string
		Room  string
		Links session.Links
		// PasswordIgnored is set when the room already existed with a different
		// password than the one submitted.
		PasswordIgnored bool
	}

	SharePage struct {
		Room   string
		Modern string
		Lite   string
	}

	PromptPage struct {
		Room   string
		Action string
		Failed bool
	}

	RoomPage struct {
		Room        string
		User        string
		Token       string
		Messages    []Message
		Refresh     int
		MaxUploadMB int
	}

	LitePage struct {
		Room         string
		User         string
		Token        string
		RoomPassword string
		Messages     []Message
		Refresh      int
	}

	NoticePage struct {
		Title string
		Text  string
	}

	ErrorPage struct {
		Status  int
		Message string
	}
)

// Renderer executes the embedded templates.
type Renderer struct {
	site string
	tmpl *template.Template
}

func New(siteName string) (*Renderer, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"statusText": http.StatusText,
	}).ParseFS(templateFS, "templates/*.html", "templates/*.xhtml")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{site: siteName, tmpl: tmpl}, nil
}

// Messages converts stored messages for display.
func Messages(messages []*core.Message) []Message {
	return lo.Map(messages, func(m *core.Message, _ int) Message {
		view := Message{
			Author: template.HTML(m.Author),
			Body:   template.HTML(m.Body()),
			Kind:   m.Content.Kind(),
			Time:   m.CreatedAt.UTC().Format(time.DateTime),
		}
		if h := m.Media(); h != "" {
			view.MediaURL = "/media/" + string(h)
		}
		return view
	})
}

// HTML renders a modern client page.
func (v *Renderer) HTML(w http.ResponseWriter, status int, name string, page any) {
	v.render(w, status, htmlContentType, name, page)
}

// XHTML renders a lite client page.
func (v *Renderer) XHTML(w http.ResponseWriter, status int, name string, page any) {
	v.render(w, status, xhtmlContentType, name, page)
}

// Error renders an error page in the modern client's style.
func (v *Renderer) Error(w http.ResponseWriter, status int, message string) {
	v.HTML(w, status, "error.html", ErrorPage{Status: status, Message: message})
}

func (v *Renderer) render(w http.ResponseWriter, status int, contentType, name string, page any) {
	data := struct {
		Site string
		Page any
	}{Site: v.site, Page: page}

	var buf bytes.Buffer
	if err := v.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		logrus.WithError(err).WithField("template", name).Error("Failed to render template")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		logrus.WithError(err).Debug("Failed to write response")
	}
}
