package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/accessly-backend/internal/data/repos"
	"github.com/yungbote/accessly-backend/internal/platform/logger"
)

type Repos struct {
	User repos.UserRepo
	Scan repos.ScanResultRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User: repos.NewUserRepo(db, log),
		Scan: repos.NewScanResultRepo(db, log),
	}
}
