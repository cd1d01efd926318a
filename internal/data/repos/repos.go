package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/pagehub-backend/internal/data/repos/sites"
	"github.com/yungbote/pagehub-backend/internal/platform/logger"
)

type DraftRepo = sites.DraftRepo

var (
	ErrNotFound      = sites.ErrNotFound
	ErrStaleRevision = sites.ErrStaleRevision
)

func NewDraftRepo(db *gorm.DB, baseLog *logger.Logger) DraftRepo { return sites.NewDraftRepo(db, baseLog) }
