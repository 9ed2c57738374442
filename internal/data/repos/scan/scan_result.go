package scan

import (
	"context"
	"errors"

	"github.com/google/uuid"
	types "github.com/yungbote/accessly-backend/internal/domain"
	"github.com/yungbote/accessly-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type ScanResultRepo interface {
	Create(ctx context.Context, tx *gorm.DB, results []*types.ScanResult) ([]*types.ScanResult, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ScanResult, error)
	ListSummaries(ctx context.Context, tx *gorm.DB) ([]types.ScanSummary, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]types.UserScan, error)
	ListIDsByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]uuid.UUID, error)
	UpdateSnapshotKey(ctx context.Context, tx *gorm.DB, id uuid.UUID, key string) error
	DeleteOwned(ctx context.Context, tx *gorm.DB, id, userID uuid.UUID) (bool, error)
}

type scanResultRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewScanResultRepo(db *gorm.DB, baseLog *logger.Logger) ScanResultRepo {
	repoLog := baseLog.With("repo", "ScanResultRepo")
	return &scanResultRepo{db: db, log: repoLog}
}

func (r *scanResultRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *scanResultRepo) Create(ctx context.Context, tx *gorm.DB, results []*types.ScanResult) ([]*types.ScanResult, error) {
	if len(results) == 0 {
		return []*types.ScanResult{}, nil
	}
	for _, sr := range results {
		if sr != nil && sr.ID == uuid.Nil {
			sr.ID = uuid.New()
		}
	}
	if err := r.conn(tx).WithContext(ctx).Create(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// GetByID returns (nil, nil) when the id does not resolve.
func (r *scanResultRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ScanResult, error) {
	var out types.ScanResult
	err := r.conn(tx).WithContext(ctx).
		Where("id = ?", id).
		Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *scanResultRepo) ListSummaries(ctx context.Context, tx *gorm.DB) ([]types.ScanSummary, error) {
	var out []types.ScanSummary
	if err := r.conn(tx).WithContext(ctx).
		Model(&types.ScanResult{}).
		Select("id", "url").
		Order("scan_date DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *scanResultRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]types.UserScan, error) {
	var out []types.UserScan
	if err := r.conn(tx).WithContext(ctx).
		Model(&types.ScanResult{}).
		Select("id", "url", "scan_date", "violations").
		Where("user_id = ?", userID).
		Order("scan_date DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *scanResultRepo) ListIDsByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.conn(tx).WithContext(ctx).
		Model(&types.ScanResult{}).
		Where("user_id = ?", userID).
		Order("scan_date DESC").
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *scanResultRepo) UpdateSnapshotKey(ctx context.Context, tx *gorm.DB, id uuid.UUID, key string) error {
	return r.conn(tx).WithContext(ctx).
		Model(&types.ScanResult{}).
		Where("id = ?", id).
		Update("snapshot_key", key).Error
}

// DeleteOwned removes the scan in one statement scoped to its owner. The
// bool reports whether a row was removed.
func (r *scanResultRepo) DeleteOwned(ctx context.Context, tx *gorm.DB, id, userID uuid.UUID) (bool, error) {
	res := r.conn(tx).WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&types.ScanResult{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
