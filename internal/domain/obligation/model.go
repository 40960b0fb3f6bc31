package obligation

import (
	"time"
)

// DateLayout is the layout of Obligation.Date. Dates are compared as strings.
const DateLayout = "2006-01-02"

// Sphere constants. Other values are stored as-is and rendered with the default style.
const (
	SphereFederal   = "Federal"
	SphereEstadual  = "Estadual"
	SphereMunicipal = "Municipal"
)

// Spheres lists the recognised spheres in display order.
var Spheres = []string{SphereFederal, SphereEstadual, SphereMunicipal}

// Obligation is a fiscal due-date record.
// INVARIANT: ID is assigned by the store on creation and never changes.
type Obligation struct {
	ID     string `json:"id" yaml:"id,omitempty"`
	Title  string `json:"title" yaml:"title"`
	Date   string `json:"date" yaml:"date"` // YYYY-MM-DD, no time component
	Sphere string `json:"sphere" yaml:"sphere"`
}

// Fields carries the editable fields of an obligation.
type Fields struct {
	Title  string
	Date   string
	Sphere string
}

// Valid reports whether the fields may be written.
// Only title and date are checked; sphere is free-form.
// PRE: none
// POST: returns true iff Title and Date are non-empty
func (f Fields) Valid() bool {
	return f.Title != "" && f.Date != ""
}

// Fields returns the editable fields of o.
func (o Obligation) Fields() Fields {
	return Fields{Title: o.Title, Date: o.Date, Sphere: o.Sphere}
}

// Style is the visual treatment of a sphere.
type Style struct {
	Label string
	Class string // CSS class suffix
	Color string // hex colour for text renderings and email
}

var sphereStyles = map[string]Style{
	SphereFederal:   {Label: "Federal", Class: "federal", Color: "#1d4ed8"},
	SphereEstadual:  {Label: "Estadual", Class: "estadual", Color: "#15803d"},
	SphereMunicipal: {Label: "Municipal", Class: "municipal", Color: "#b45309"},
}

// DefaultStyle is used for empty or unrecognised spheres.
var DefaultStyle = Style{Label: "Outra", Class: "default", Color: "#4b5563"}

// StyleFor returns the style for sphere, falling back to DefaultStyle.
// PRE: none
// POST: never panics; unknown and empty spheres map to DefaultStyle
func StyleFor(sphere string) Style {
	if s, ok := sphereStyles[sphere]; ok {
		return s
	}
	return DefaultStyle
}

// Placeholders returns the fixed demo dataset: three obligations in the month of now.
func Placeholders(now time.Time) []Obligation {
	y, m, _ := now.Date()
	day := func(d int) string {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Format(DateLayout)
	}
	return []Obligation{
		{ID: "demo-1", Title: "DCTFWeb", Date: day(15), Sphere: SphereFederal},
		{ID: "demo-2", Title: "ICMS", Date: day(20), Sphere: SphereEstadual},
		{ID: "demo-3", Title: "ISS", Date: day(10), Sphere: SphereMunicipal},
	}
}
