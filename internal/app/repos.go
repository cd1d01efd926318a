package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/pagehub-backend/internal/data/repos"
	"github.com/yungbote/pagehub-backend/internal/platform/logger"
)

type Repos struct {
	Draft repos.DraftRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Draft: repos.NewDraftRepo(db, log),
	}
}
