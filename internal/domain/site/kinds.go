package site

// SectionKind is an entry of the section picker.
type SectionKind struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

var sectionKinds = []SectionKind{
	{ID: "header", Label: "Header"},
	{ID: "hero", Label: "Hero Section"},
	{ID: "features", Label: "Features"},
	{ID: "testimonials", Label: "Testimonials"},
	{ID: "booking", Label: "Booking"},
	{ID: "chat", Label: "Chat"},
	{ID: "cta", Label: "Call to Action"},
	{ID: "footer", Label: "Footer"},
}

var defaultSectionKinds = []string{"header", "hero", "features", "cta", "footer"}

func SectionKinds() []SectionKind {
	out := make([]SectionKind, len(sectionKinds))
	copy(out, sectionKinds)
	return out
}

func DefaultSectionKinds() []string {
	out := make([]string, len(defaultSectionKinds))
	copy(out, defaultSectionKinds)
	return out
}

func IsSectionKind(id string) bool {
	for _, k := range sectionKinds {
		if k.ID == id {
			return true
		}
	}
	return false
}
