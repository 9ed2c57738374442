package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/accessly-backend/internal/domain"
	"github.com/yungbote/accessly-backend/internal/domain/scan"
)

const recentWindow = 30 * 24 * time.Hour

type TrendPoint struct {
	ID            uuid.UUID `json:"_id"`
	URL           string    `json:"url"`
	ScanDate      time.Time `json:"scanDate"`
	AffectedNodes int       `json:"affectedNodes"`
}

type LatestScan struct {
	ID            uuid.UUID            `json:"_id"`
	URL           string               `json:"url"`
	ScanDate      time.Time            `json:"scanDate"`
	NodesByImpact types.IssuesByImpact `json:"nodesByImpact"`
}

// DashboardSummary aggregates a user's scans. Counts are in affected nodes,
// matching how the dashboard reports issues.
type DashboardSummary struct {
	TotalScans         int          `json:"totalScans"`
	RecentScans        int          `json:"recentScans"`
	TotalViolations    int          `json:"totalViolations"`
	TotalAffectedNodes int          `json:"totalAffectedNodes"`
	Latest             *LatestScan  `json:"latest,omitempty"`
	Trend              []TrendPoint `json:"trend"`
}

func (ss *scanService) Summary(ctx context.Context, userID uuid.UUID) (*DashboardSummary, error) {
	scans, err := ss.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return buildSummary(scans, ss.now()), nil
}

// buildSummary expects scans newest first; the trend is returned oldest first.
func buildSummary(scans []types.UserScan, now time.Time) *DashboardSummary {
	out := &DashboardSummary{
		TotalScans: len(scans),
		Trend:      make([]TrendPoint, 0, len(scans)),
	}
	for i := len(scans) - 1; i >= 0; i-- {
		s := scans[i]
		violations := s.Violations.Data()
		nodes := scan.AffectedNodes(violations)
		out.TotalViolations += len(violations)
		out.TotalAffectedNodes += nodes
		if now.Sub(s.ScanDate) <= recentWindow {
			out.RecentScans++
		}
		out.Trend = append(out.Trend, TrendPoint{
			ID:            s.ID,
			URL:           s.URL,
			ScanDate:      s.ScanDate,
			AffectedNodes: nodes,
		})
	}
	if len(scans) > 0 {
		latest := scans[0]
		out.Latest = &LatestScan{
			ID:            latest.ID,
			URL:           latest.URL,
			ScanDate:      latest.ScanDate,
			NodesByImpact: scan.CountNodesByImpact(latest.Violations.Data()),
		}
	}
	return out
}
