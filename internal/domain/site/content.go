package site

// Section is one structured content block of a generated page.
type Section struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	ImagePrompt string `json:"imagePrompt"`
}

// WebsiteContent is replaced wholesale on every generation or edit; callers never mutate a value they
// did not just build.
type WebsiteContent struct {
	Sections []Section `json:"sections"`
	Parallax bool      `json:"parallax"`
}

// SectionByID returns the index of the section with id, or -1.
func (w WebsiteContent) SectionByID(id string) int {
	for i := range w.Sections {
		if w.Sections[i].ID == id {
			return i
		}
	}
	return -1
}

// WithSection returns a copy whose sections slice is new and whose i-th section is s.
func (w WebsiteContent) WithSection(i int, s Section) WebsiteContent {
	sections := make([]Section, len(w.Sections))
	copy(sections, w.Sections)
	sections[i] = s
	return WebsiteContent{Sections: sections, Parallax: w.Parallax}
}

// GenerateParams is the input of the generate action.
type GenerateParams struct {
	Prompt   string   `json:"prompt"`
	Sections []string `json:"sections"`
	Parallax bool     `json:"parallax"`
}
