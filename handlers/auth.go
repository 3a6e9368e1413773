package handlers

import (
	"errors"
	"net/http"
	"strings"

	"cafe-directory/auth"
	"cafe-directory/models"
	"cafe-directory/session"
	"cafe-directory/views"

	"go.uber.org/zap"
)

const requiredMessage = "This field is required."

// AuthHandler serves registration, login and logout.
type AuthHandler struct {
	responder
	auth *auth.Service
}

func NewAuthHandler(service *auth.Service, sessions *session.Manager, renderer *views.Renderer) *AuthHandler {
	return &AuthHandler{
		responder: responder{views: renderer, sessions: sessions},
		auth:      service,
	}
}

// Register handles GET/POST /register. A successful sign-up logs the new
// user in and redirects to the directory.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	data := views.Page{Title: "Register"}
	if r.Method != http.MethodPost {
		h.render(w, r, http.StatusOK, "register.html", data)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.badRequest(w, r, err)
		return
	}

	req := models.RegisterRequest{
		Email:    strings.TrimSpace(r.PostForm.Get("email")),
		Password: r.PostForm.Get("password"),
		Name:     strings.TrimSpace(r.PostForm.Get("name")),
	}
	data.Email, data.Name = req.Email, req.Name

	user, err := h.auth.Register(r.Context(), req)
	var verr *auth.ValidationError
	switch {
	case errors.As(err, &verr):
		data.Errors = requiredErrors(verr.Fields)
		h.render(w, r, http.StatusOK, "register.html", data)
		return
	case errors.Is(err, auth.ErrPasswordTooLong):
		data.Errors = map[string]string{"password": "Password must be at most 72 bytes long."}
		h.render(w, r, http.StatusOK, "register.html", data)
		return
	case errors.Is(err, auth.ErrDuplicateEmail):
		logRequest(r, "info", "Sign-up with registered email")
		data.Errors = map[string]string{"form": "You've already signed up with that email, log in instead!"}
		h.render(w, r, http.StatusOK, "register.html", data)
		return
	case err != nil:
		h.fail(w, r, err)
		return
	}

	if err := h.sessions.Establish(w, r, user.ID); err != nil {
		h.fail(w, r, err)
		return
	}
	logRequest(r, "info", "User registered", zap.Int("user_id", user.ID), zap.Bool("admin", user.IsAdmin()))
	h.redirect(w, r, "/", "Welcome, "+user.Name+"!")
}

// Login handles GET/POST /login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	data := views.Page{Title: "Log in"}
	if r.Method != http.MethodPost {
		h.render(w, r, http.StatusOK, "login.html", data)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.badRequest(w, r, err)
		return
	}

	req := models.LoginRequest{
		Email:    strings.TrimSpace(r.PostForm.Get("email")),
		Password: r.PostForm.Get("password"),
	}
	data.Email = req.Email

	user, err := h.auth.Login(r.Context(), req)
	var verr *auth.ValidationError
	switch {
	case errors.As(err, &verr):
		data.Errors = requiredErrors(verr.Fields)
	case errors.Is(err, auth.ErrUnknownEmail):
		data.Errors = map[string]string{"form": "That email does not exist, please try again."}
	case errors.Is(err, auth.ErrBadPassword):
		data.Errors = map[string]string{"form": "Password incorrect, please try again."}
	case err != nil:
		h.fail(w, r, err)
		return
	}
	if err != nil {
		logRequest(r, "info", "Login rejected", zap.Error(err))
		h.render(w, r, http.StatusOK, "login.html", data)
		return
	}

	if err := h.sessions.Establish(w, r, user.ID); err != nil {
		h.fail(w, r, err)
		return
	}
	logRequest(r, "info", "Login successful", zap.Int("user_id", user.ID))
	http.Redirect(w, r, "/", http.StatusFound)
}

// Logout handles GET /logout. Logging out twice is harmless.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Clear(w, r); err != nil {
		logRequest(r, "error", "Failed to clear session", zap.Error(err))
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func requiredErrors(fields []string) map[string]string {
	errs := make(map[string]string, len(fields))
	for _, f := range fields {
		errs[f] = requiredMessage
	}
	return errs
}
