package handlers

import (
	"net/http"
	"strings"

	"cafe-directory/models"
	"cafe-directory/notify"
	"cafe-directory/session"
	"cafe-directory/views"
)

// PageHandler serves the static pages and the contact form.
type PageHandler struct {
	responder
	sender notify.NotificationSender
}

func NewPageHandler(sender notify.NotificationSender, sessions *session.Manager, renderer *views.Renderer) *PageHandler {
	return &PageHandler{
		responder: responder{views: renderer, sessions: sessions},
		sender:    sender,
	}
}

// About handles GET/POST /about_us
func (h *PageHandler) About(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "about_us.html", views.Page{Title: "About us"})
}

// Contact handles GET/POST /contact. A POST hands the message to the
// notification sender and shows the confirmation.
func (h *PageHandler) Contact(w http.ResponseWriter, r *http.Request) {
	data := views.Page{Title: "Contact"}
	if r.Method != http.MethodPost {
		h.render(w, r, http.StatusOK, "contact.html", data)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.badRequest(w, r, err)
		return
	}

	data.Contact = models.ContactMessage{
		Name:    strings.TrimSpace(r.PostForm.Get("name")),
		Email:   strings.TrimSpace(r.PostForm.Get("email")),
		Phone:   strings.TrimSpace(r.PostForm.Get("phone")),
		Message: strings.TrimSpace(r.PostForm.Get("message")),
	}
	if data.Contact.Name == "" || data.Contact.Email == "" || data.Contact.Message == "" {
		data.Errors = map[string]string{"form": "Please fill in your name, email and message."}
		h.render(w, r, http.StatusOK, "contact.html", data)
		return
	}

	if err := h.sender.Send(r.Context(), data.Contact); err != nil {
		h.fail(w, r, err)
		return
	}

	logRequest(r, "info", "Contact message sent")
	data.MsgSent = true
	h.render(w, r, http.StatusOK, "contact.html", data)
}
