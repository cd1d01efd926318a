package sites

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/pagehub-backend/internal/domain/site"
	"github.com/yungbote/pagehub-backend/internal/platform/dbctx"
	"github.com/yungbote/pagehub-backend/internal/platform/logger"
)

var (
	ErrNotFound      = errors.New("draft not found")
	ErrStaleRevision = errors.New("draft was modified concurrently")
)

type DraftRepo interface {
	Create(dbc dbctx.Context, d *site.Draft) error
	Get(dbc dbctx.Context, ownerID string, id uuid.UUID) (*site.Draft, error)
	ListByOwner(dbc dbctx.Context, ownerID string) ([]*site.Draft, error)
	// SaveContent replaces the content wholesale if d.Revision is still current and bumps it.
	SaveContent(dbc dbctx.Context, d *site.Draft) error
	MarkPublished(dbc dbctx.Context, d *site.Draft, url, domain string, at time.Time) error
	Delete(dbc dbctx.Context, ownerID string, id uuid.UUID) error
}

type draftRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDraftRepo(db *gorm.DB, baseLog *logger.Logger) DraftRepo {
	return &draftRepo{db: db, log: baseLog.With("repo", "DraftRepo")}
}

func (r *draftRepo) Create(dbc dbctx.Context, d *site.Draft) error {
	if d == nil {
		return nil
	}
	if d.Revision == 0 {
		d.Revision = 1
	}
	return dbc.DB(r.db).Create(d).Error
}

func (r *draftRepo) Get(dbc dbctx.Context, ownerID string, id uuid.UUID) (*site.Draft, error) {
	if ownerID == "" || id == uuid.Nil {
		return nil, ErrNotFound
	}
	var row site.Draft
	err := dbc.DB(r.db).Where("id = ? AND owner_id = ?", id, ownerID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *draftRepo) ListByOwner(dbc dbctx.Context, ownerID string) ([]*site.Draft, error) {
	var rows []*site.Draft
	if ownerID == "" {
		return rows, nil
	}
	err := dbc.DB(r.db).
		Where("owner_id = ?", ownerID).
		Order("updated_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *draftRepo) SaveContent(dbc dbctx.Context, d *site.Draft) error {
	now := time.Now().UTC()
	res := dbc.DB(r.db).
		Model(&site.Draft{}).
		Where("id = ? AND owner_id = ? AND revision = ?", d.ID, d.OwnerID, d.Revision).
		Updates(map[string]any{
			"content":    d.Content,
			"revision":   d.Revision + 1,
			"updated_at": now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.Get(dbc, d.OwnerID, d.ID); err != nil {
			return err
		}
		return ErrStaleRevision
	}
	d.Revision++
	d.UpdatedAt = now
	return nil
}

func (r *draftRepo) MarkPublished(dbc dbctx.Context, d *site.Draft, url, domain string, at time.Time) error {
	at = at.UTC()
	res := dbc.DB(r.db).
		Model(&site.Draft{}).
		Where("id = ? AND owner_id = ?", d.ID, d.OwnerID).
		Updates(map[string]any{
			"published_url": url,
			"custom_domain": domain,
			"published_at":  at,
			"updated_at":    at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	d.PublishedURL = url
	d.CustomDomain = domain
	d.PublishedAt = &at
	d.UpdatedAt = at
	return nil
}

func (r *draftRepo) Delete(dbc dbctx.Context, ownerID string, id uuid.UUID) error {
	res := dbc.DB(r.db).Where("id = ? AND owner_id = ?", id, ownerID).Delete(&site.Draft{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
