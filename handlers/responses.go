package handlers

import (
	"errors"
	"net/http"

	"cafe-directory/auth"
	"cafe-directory/directory"
	"cafe-directory/session"
	"cafe-directory/views"

	"go.uber.org/zap"
)

// responder holds what every HTML handler needs to answer a request.
type responder struct {
	views    *views.Renderer
	sessions *session.Manager
}

// render fills in the user and pops pending flashes before writing the page.
func (rs responder) render(w http.ResponseWriter, r *http.Request, status int, name string, data views.Page) {
	data.User = currentUser(r)
	flashes, err := rs.sessions.Flashes(w, r)
	if err != nil {
		logRequest(r, "error", "Failed to consume flashes", zap.Error(err))
	}
	data.Flashes = flashes

	err = rs.views.Render(w, status, name, data)
	if err == nil {
		return
	}
	logRequest(r, "error", "Failed to render page", zap.String("template", name), zap.Error(err))
	if !errors.Is(err, views.ErrWriteFailed) {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// redirect sends the browser to url, showing message on the next page.
func (rs responder) redirect(w http.ResponseWriter, r *http.Request, url, message string) {
	if message != "" {
		if err := rs.sessions.AddFlash(w, r, message); err != nil {
			logRequest(r, "error", "Failed to store flash", zap.Error(err))
		}
	}
	http.Redirect(w, r, url, http.StatusFound)
}

func (rs responder) errorPage(w http.ResponseWriter, r *http.Request, status int, message string) {
	data := views.Page{Title: http.StatusText(status), Status: status, Message: message}
	rs.render(w, r, status, "error.html", data)
}

// NotFound renders the 404 page; it also serves unmatched routes.
func (rs responder) NotFound(w http.ResponseWriter, r *http.Request) {
	rs.errorPage(w, r, http.StatusNotFound, "The page you were looking for does not exist.")
}

func (rs responder) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	logRequest(r, "error", "Malformed request", zap.Error(err))
	rs.errorPage(w, r, http.StatusBadRequest, "The request could not be understood.")
}

// fail answers with the page matching err: 404, 403 or a logged 500.
func (rs responder) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, directory.ErrNotFound):
		rs.NotFound(w, r)
	case errors.Is(err, auth.ErrForbidden):
		logRequest(r, "info", "Forbidden")
		rs.errorPage(w, r, http.StatusForbidden, "Only the administrator can do that.")
	default:
		logRequest(r, "error", "Request failed", zap.Error(err))
		rs.errorPage(w, r, http.StatusInternalServerError, "Something went wrong on our side.")
	}
}
