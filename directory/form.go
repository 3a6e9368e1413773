package directory

import (
	"net/url"
	"strings"

	"cafe-directory/models"
)

// ParseCafeForm reads the add/edit form fields.
func ParseCafeForm(values url.Values) models.CafeForm {
	get := func(key string) string { return strings.TrimSpace(values.Get(key)) }
	return models.CafeForm{
		Name:        get("name"),
		MapURL:      get("map_url"),
		ImgURL:      get("img_url"),
		Location:    get("location"),
		Seats:       get("seats"),
		HasToilet:   get("has_toilet"),
		HasWifi:     get("has_wifi"),
		HasSockets:  get("has_sockets"),
		Rating:      get("rating"),
		CoffeePrice: get("coffee_price"),
	}
}

// parseFlag reads an amenity flag. An empty value is an unchecked box.
func parseFlag(raw string) (bool, bool) {
	switch strings.ToLower(raw) {
	case "", "0", "false", "no", "n", "off":
		return false, true
	case "1", "true", "yes", "y", "on":
		return true, true
	}
	return false, false
}

// toCafe validates the form and converts it into a record.
func toCafe(form models.CafeForm) (*models.Cafe, error) {
	verr := &ValidationError{}
	required := []struct {
		field, value string
	}{
		{"name", form.Name},
		{"map_url", form.MapURL},
		{"img_url", form.ImgURL},
		{"location", form.Location},
		{"seats", form.Seats},
		{"rating", form.Rating},
	}
	for _, r := range required {
		if r.value == "" {
			verr.add(r.field, "This field is required.")
		}
	}

	cafe := &models.Cafe{
		Name:        form.Name,
		MapURL:      form.MapURL,
		ImgURL:      form.ImgURL,
		Location:    form.Location,
		Seats:       form.Seats,
		Rating:      form.Rating,
		CoffeePrice: form.CoffeePrice,
	}
	flags := []struct {
		field string
		raw   string
		dst   *bool
	}{
		{"has_sockets", form.HasSockets, &cafe.HasSockets},
		{"has_toilet", form.HasToilet, &cafe.HasToilet},
		{"has_wifi", form.HasWifi, &cafe.HasWifi},
	}
	for _, f := range flags {
		v, ok := parseFlag(f.raw)
		if !ok {
			verr.add(f.field, "Expected yes or no.")
			continue
		}
		*f.dst = v
	}

	if len(verr.Fields) > 0 {
		return nil, verr
	}
	return cafe, nil
}
