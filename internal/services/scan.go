package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/yungbote/accessly-backend/internal/data/repos"
	types "github.com/yungbote/accessly-backend/internal/domain"
	"github.com/yungbote/accessly-backend/internal/domain/scan"
	"github.com/yungbote/accessly-backend/internal/observability"
	"github.com/yungbote/accessly-backend/internal/platform/apierr"
	"github.com/yungbote/accessly-backend/internal/platform/logger"
	"github.com/yungbote/accessly-backend/internal/platform/objectstore"
	"github.com/yungbote/accessly-backend/internal/report"
)

// Scanner produces an audit report for a URL. The chromedp scanner
// satisfies it.
type Scanner interface {
	Run(ctx context.Context, url string) (*types.AuditReport, error)
}

type ScanService interface {
	Submit(ctx context.Context, userID uuid.UUID, url string) (*types.ScanResult, error)
	List(ctx context.Context) ([]types.ScanSummary, error)
	Get(ctx context.Context, id uuid.UUID) (*types.ScanResult, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]types.UserScan, error)
	Summary(ctx context.Context, userID uuid.UUID) (*DashboardSummary, error)
	RenderChart(ctx context.Context, id uuid.UUID) ([]byte, error)
	Snapshot(ctx context.Context, id uuid.UUID) ([]byte, error)
}

type scanService struct {
	db        *gorm.DB
	log       *logger.Logger
	scanRepo  repos.ScanResultRepo
	scanner   Scanner
	snapshots objectstore.Store
	now       func() time.Time
}

// NewScanService accepts a nil snapshot store; archiving is then skipped.
func NewScanService(
	db *gorm.DB,
	log *logger.Logger,
	scanRepo repos.ScanResultRepo,
	scanner Scanner,
	snapshots objectstore.Store,
) ScanService {
	return &scanService{
		db:        db,
		log:       log.With("service", "ScanService"),
		scanRepo:  scanRepo,
		scanner:   scanner,
		snapshots: snapshots,
		now:       time.Now,
	}
}

func SnapshotKey(userID, scanID uuid.UUID) string {
	return fmt.Sprintf("snapshots/%s/%s.html.gz", userID, scanID)
}

func (ss *scanService) Submit(ctx context.Context, userID uuid.UUID, url string) (*types.ScanResult, error) {
	url = strings.TrimSpace(url)
	// Reject before any browser is launched.
	if err := scan.ValidateURL(url); err != nil {
		return nil, err
	}

	ctx, span := observability.StartSpan(ctx, "scan.Submit", attribute.String("scan.url", url))
	defer span.End()

	rep, err := ss.scanner.Run(ctx, url)
	if err != nil {
		span.RecordError(err)
		var failed *scan.ScanFailedError
		if !errors.As(err, &failed) {
			err = &scan.ScanFailedError{Stage: scan.StageAudit, URL: url, Err: err}
		}
		return nil, apierr.ScanFailed(err)
	}
	if rep.URL == "" {
		rep.URL = url
	}

	sr := scan.NewScanResult(userID, rep, ss.now())
	if err := sr.Validate(); err != nil {
		ss.log.Warn("Audit produced an invalid document", "url", url, "error", err)
		return nil, err
	}
	if _, err := ss.scanRepo.Create(ctx, nil, []*types.ScanResult{sr}); err != nil {
		return nil, apierr.Internal(fmt.Errorf("save scan result: %w", err))
	}
	ss.log.Info("Scan stored",
		"scan_id", sr.ID,
		"user_id", userID,
		"total_violations", sr.TotalViolations,
	)

	ss.archiveSnapshot(ctx, sr, rep.PageHTML)
	return sr, nil
}

// archiveSnapshot is best-effort; failures are logged and the scan stands.
func (ss *scanService) archiveSnapshot(ctx context.Context, sr *types.ScanResult, html string) {
	if ss.snapshots == nil || html == "" {
		return
	}
	key := SnapshotKey(sr.UserID, sr.ID)
	if err := objectstore.PutCompressed(ctx, ss.snapshots, key, []byte(html)); err != nil {
		ss.log.Warn("Snapshot archive failed", "scan_id", sr.ID, "error", err)
		return
	}
	if err := ss.scanRepo.UpdateSnapshotKey(ctx, nil, sr.ID, key); err != nil {
		ss.log.Warn("Snapshot key update failed", "scan_id", sr.ID, "error", err)
		return
	}
	sr.SnapshotKey = key
}

func (ss *scanService) List(ctx context.Context) ([]types.ScanSummary, error) {
	out, err := ss.scanRepo.ListSummaries(ctx, nil)
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("list scans: %w", err))
	}
	if len(out) == 0 {
		return nil, apierr.NotFound("no scan results found")
	}
	return out, nil
}

func (ss *scanService) Get(ctx context.Context, id uuid.UUID) (*types.ScanResult, error) {
	sr, err := ss.scanRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("load scan: %w", err))
	}
	if sr == nil {
		return nil, apierr.NotFound("scan result not found")
	}
	return sr, nil
}

// Delete removes the scan only if userID owns it. Anything else, including a
// scan owned by someone else, is NotFound.
func (ss *scanService) Delete(ctx context.Context, id, userID uuid.UUID) error {
	existing, err := ss.scanRepo.GetByID(ctx, nil, id)
	if err != nil {
		return apierr.Internal(fmt.Errorf("load scan: %w", err))
	}
	deleted, err := ss.scanRepo.DeleteOwned(ctx, nil, id, userID)
	if err != nil {
		return apierr.Internal(fmt.Errorf("delete scan: %w", err))
	}
	if !deleted {
		return apierr.NotFound("scan result not found")
	}
	if existing != nil && existing.SnapshotKey != "" && ss.snapshots != nil {
		if err := ss.snapshots.Delete(ctx, existing.SnapshotKey); err != nil {
			ss.log.Warn("Snapshot delete failed", "scan_id", id, "error", err)
		}
	}
	return nil
}

func (ss *scanService) ListByUser(ctx context.Context, userID uuid.UUID) ([]types.UserScan, error) {
	out, err := ss.scanRepo.ListByUser(ctx, nil, userID)
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("list user scans: %w", err))
	}
	if out == nil {
		out = []types.UserScan{}
	}
	return out, nil
}

func (ss *scanService) RenderChart(ctx context.Context, id uuid.UUID) ([]byte, error) {
	sr, err := ss.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	png, err := report.RenderImpactChart(sr.URL, sr.IssuesByImpact)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return png, nil
}

// Snapshot returns the archived page HTML of a scan.
func (ss *scanService) Snapshot(ctx context.Context, id uuid.UUID) ([]byte, error) {
	sr, err := ss.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if ss.snapshots == nil || sr.SnapshotKey == "" {
		return nil, apierr.NotFound("snapshot not found")
	}
	html, err := objectstore.GetCompressed(ctx, ss.snapshots, sr.SnapshotKey)
	if errors.Is(err, objectstore.ErrNotFound) {
		return nil, apierr.NotFound("snapshot not found")
	}
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return html, nil
}
