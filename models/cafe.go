package models

// Cafe is a directory entry. Rating is kept as free text.
type Cafe struct {
	ID          int    `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	MapURL      string `json:"map_url" db:"map_url"`
	ImgURL      string `json:"img_url" db:"img_url"`
	Location    string `json:"location" db:"location"`
	Seats       string `json:"seats" db:"seats"`
	HasToilet   bool   `json:"has_toilet" db:"has_toilet"`
	HasWifi     bool   `json:"has_wifi" db:"has_wifi"`
	HasSockets  bool   `json:"has_sockets" db:"has_sockets"`
	Rating      string `json:"rating" db:"rating"`
	CoffeePrice string `json:"coffee_price" db:"coffee_price"`
}

// CafeForm carries the raw values submitted by the add/edit form.
// Amenity flags arrive as text and are parsed by the directory service.
type CafeForm struct {
	Name        string
	MapURL      string
	ImgURL      string
	Location    string
	Seats       string
	HasToilet   string
	HasWifi     string
	HasSockets  string
	Rating      string
	CoffeePrice string
}

// FormFromCafe pre-fills an edit form from a stored record.
func FormFromCafe(c *Cafe) CafeForm {
	return CafeForm{
		Name:        c.Name,
		MapURL:      c.MapURL,
		ImgURL:      c.ImgURL,
		Location:    c.Location,
		Seats:       c.Seats,
		HasToilet:   boolText(c.HasToilet),
		HasWifi:     boolText(c.HasWifi),
		HasSockets:  boolText(c.HasSockets),
		Rating:      c.Rating,
		CoffeePrice: c.CoffeePrice,
	}
}

func boolText(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// ContactMessage is a submission of the contact form.
type ContactMessage struct {
	Name    string
	Email   string
	Phone   string
	Message string
}
