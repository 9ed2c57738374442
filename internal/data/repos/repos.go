package repos

import (
	"github.com/yungbote/accessly-backend/internal/data/repos/scan"
	"github.com/yungbote/accessly-backend/internal/data/repos/user"
	"github.com/yungbote/accessly-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type UserRepo = user.UserRepo
type ScanResultRepo = scan.ScanResultRepo

func NewUserRepo(db *gorm.DB, log *logger.Logger) UserRepo {
	return user.NewUserRepo(db, log)
}

func NewScanResultRepo(db *gorm.DB, log *logger.Logger) ScanResultRepo {
	return scan.NewScanResultRepo(db, log)
}
