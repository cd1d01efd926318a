package site

import "time"

type EditState string

const (
	EditIdle      EditState = "idle"
	EditSelecting EditState = "selecting"
	EditRewriting EditState = "rewriting"
)

// SelectionState is the captured text selection inside one rendered section.
type SelectionState struct {
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Text      string    `json:"text"`
	SectionID string    `json:"sectionId"`
	CreatedAt time.Time `json:"createdAt"`
}
