package site

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Draft is a generated site owned by one user. Content holds the JSON encoded WebsiteContent.
type Draft struct {
	ID      uuid.UUID `gorm:"type:varchar(36);primaryKey" json:"id"`
	OwnerID string    `gorm:"column:owner_id;not null;index" json:"owner_id"`

	Prompt   string         `gorm:"type:text;not null" json:"prompt"`
	Kinds    datatypes.JSON `gorm:"column:kinds" json:"kinds"`
	Content  datatypes.JSON `gorm:"column:content;not null" json:"-"`
	Revision int            `gorm:"not null;default:1" json:"revision"`

	CustomDomain string     `gorm:"column:custom_domain" json:"custom_domain,omitempty"`
	PublishedURL string     `gorm:"column:published_url" json:"published_url,omitempty"`
	PublishedAt  *time.Time `gorm:"column:published_at" json:"published_at,omitempty"`

	CreatedAt time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Draft) TableName() string { return "site_draft" }

func (d *Draft) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

func (d *Draft) WebsiteContent() (WebsiteContent, error) {
	var wc WebsiteContent
	if len(d.Content) == 0 {
		return wc, nil
	}
	err := json.Unmarshal(d.Content, &wc)
	return wc, err
}

func (d *Draft) SetWebsiteContent(wc WebsiteContent) error {
	if wc.Sections == nil {
		wc.Sections = []Section{}
	}
	b, err := json.Marshal(wc)
	if err != nil {
		return err
	}
	d.Content = datatypes.JSON(b)
	return nil
}

func (d *Draft) SectionKinds() []string {
	var out []string
	if len(d.Kinds) > 0 {
		_ = json.Unmarshal(d.Kinds, &out)
	}
	return out
}

func (d *Draft) SetSectionKinds(kinds []string) {
	b, _ := json.Marshal(kinds)
	d.Kinds = datatypes.JSON(b)
}

// DraftView is the API representation of a Draft with its decoded content.
type DraftView struct {
	*Draft
	Kinds   []string       `json:"kinds"`
	Content WebsiteContent `json:"content"`
}

func (d *Draft) View() (DraftView, error) {
	wc, err := d.WebsiteContent()
	if err != nil {
		return DraftView{}, err
	}
	return DraftView{Draft: d, Kinds: d.SectionKinds(), Content: wc}, nil
}
