package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"cafe-directory/directory"
	"cafe-directory/models"
	"cafe-directory/session"
	"cafe-directory/views"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// CafeHandler serves the directory pages.
type CafeHandler struct {
	responder
	cafes *directory.Service
}

// NewCafeHandler creates a new café handler
func NewCafeHandler(cafes *directory.Service, sessions *session.Manager, renderer *views.Renderer) *CafeHandler {
	return &CafeHandler{
		responder: responder{views: renderer, sessions: sessions},
		cafes:     cafes,
	}
}

// Home handles GET/POST / - list all cafés
func (h *CafeHandler) Home(w http.ResponseWriter, r *http.Request) {
	logRequest(r, "debug", "Listing cafes")

	cafes, err := h.cafes.ListAll(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "index.html", views.Page{Cafes: cafes})
}

// Show handles GET /cafe/{id}
func (h *CafeHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.NotFound(w, r)
		return
	}

	cafe, err := h.cafes.GetOne(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "cafe.html", views.Page{Title: cafe.Name, Cafe: cafe})
}

// New handles GET/POST /new-cafe
func (h *CafeHandler) New(w http.ResponseWriter, r *http.Request) {
	data := views.Page{Title: "Add a café"}
	if r.Method != http.MethodPost {
		h.render(w, r, http.StatusOK, "cafe_form.html", data)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.badRequest(w, r, err)
		return
	}

	data.Form = directory.ParseCafeForm(r.PostForm)
	cafe, err := h.cafes.Create(r.Context(), data.Form)
	if err != nil {
		h.rejectForm(w, r, data, err)
		return
	}

	logRequest(r, "info", "Cafe created", zap.Int("cafe_id", cafe.ID), zap.String("name", cafe.Name))
	h.redirect(w, r, "/", "Added "+cafe.Name+".")
}

// Edit handles GET/POST /edit-cafe/{id}. GET pre-fills the form from the
// stored café; a successful POST redirects to the café page.
func (h *CafeHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.NotFound(w, r)
		return
	}
	data := views.Page{Title: "Edit café", Editing: true}

	if r.Method != http.MethodPost {
		cafe, err := h.cafes.GetOne(r.Context(), id)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		data.Form = models.FormFromCafe(cafe)
		h.render(w, r, http.StatusOK, "cafe_form.html", data)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.badRequest(w, r, err)
		return
	}

	data.Form = directory.ParseCafeForm(r.PostForm)
	cafe, err := h.cafes.Update(r.Context(), id, data.Form)
	if err != nil {
		h.rejectForm(w, r, data, err)
		return
	}

	logRequest(r, "info", "Cafe updated", zap.Int("cafe_id", cafe.ID))
	h.redirect(w, r, "/cafe/"+strconv.Itoa(cafe.ID), "Saved your changes.")
}

// Delete handles GET /delete/{id}; only the administrator may delete.
func (h *CafeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.NotFound(w, r)
		return
	}

	if err := h.cafes.Delete(r.Context(), currentUser(r), id); err != nil {
		h.fail(w, r, err)
		return
	}

	logRequest(r, "info", "Cafe deleted", zap.Int("cafe_id", id))
	h.redirect(w, r, "/", "Café deleted.")
}

// Locations handles GET/POST /search - one link per known location
func (h *CafeHandler) Locations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.cafes.DistinctLocations(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "search_by_cities.html", views.Page{Title: "Search", Locations: locations})
}

// Search handles GET/POST /search/{location}
func (h *CafeHandler) Search(w http.ResponseWriter, r *http.Request) {
	// The router matches on the escaped path so a location may contain '/'.
	location, err := url.PathUnescape(mux.Vars(r)["location"])
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	logRequest(r, "debug", "Searching cafes", zap.String("location", location))

	cafes, err := h.cafes.ByLocation(r.Context(), location)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "search_results.html", views.Page{Title: location, Location: location, Cafes: cafes})
}

// rejectForm re-renders the café form for recoverable failures and falls
// back to the error pages otherwise.
func (h *CafeHandler) rejectForm(w http.ResponseWriter, r *http.Request, data views.Page, err error) {
	var verr *directory.ValidationError
	switch {
	case errors.As(err, &verr):
		data.Errors = make(map[string]string, len(verr.Fields))
		for _, f := range verr.Fields {
			data.Errors[f.Field] = f.Message
		}
	case errors.Is(err, directory.ErrDuplicateName):
		data.Errors = map[string]string{"name": "A café with this name already exists."}
	default:
		h.fail(w, r, err)
		return
	}

	logRequest(r, "info", "Cafe form rejected", zap.Error(err))
	h.render(w, r, http.StatusOK, "cafe_form.html", data)
}
