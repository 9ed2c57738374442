package scan

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/accessly-backend/internal/domain/user"
)

type ScanResult struct {
	ID              uuid.UUID                       `gorm:"type:uuid;primaryKey" json:"_id"`
	URL             string                          `gorm:"not null;column:url" json:"url"`
	ScanDate        time.Time                       `gorm:"not null;index;column:scan_date" json:"scanDate"`
	TotalViolations int                             `gorm:"not null;default:0;column:total_violations" json:"totalViolations"`
	IssuesByImpact  IssuesByImpact                  `gorm:"embedded" json:"issuesByImpact"`
	Violations      datatypes.JSONType[[]Violation] `gorm:"not null;column:violations" json:"violations"`
	UserID          uuid.UUID                       `gorm:"type:uuid;index;not null;column:user_id" json:"userId"`
	User            *user.User                      `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	TestEngine      string                          `gorm:"column:test_engine" json:"testEngine,omitempty"`
	SnapshotKey     string                          `gorm:"column:snapshot_key" json:"snapshotKey,omitempty"`
	CreatedAt       time.Time                       `gorm:"not null" json:"createdAt"`
	UpdatedAt       time.Time                       `gorm:"not null" json:"updatedAt"`
}

func (ScanResult) TableName() string { return "scan_result" }

// NewScanResult builds the stored document from an audit report. The total
// and the aggregate are derived here and nowhere else.
func NewScanResult(userID uuid.UUID, report *AuditReport, now time.Time) *ScanResult {
	violations := []Violation{}
	url, engine := "", ""
	if report != nil {
		url, engine = report.URL, report.TestEngine
		if report.Violations != nil {
			violations = report.Violations
		}
	}
	return &ScanResult{
		ID:              uuid.New(),
		URL:             url,
		ScanDate:        now.UTC(),
		TotalViolations: len(violations),
		IssuesByImpact:  CountByImpact(violations),
		Violations:      datatypes.NewJSONType(violations),
		UserID:          userID,
		TestEngine:      engine,
	}
}

func (sr *ScanResult) ViolationList() []Violation {
	if sr == nil {
		return nil
	}
	return sr.Violations.Data()
}

// Summary is the id+url projection used for administrative listing.
type Summary struct {
	ID  uuid.UUID `gorm:"column:id" json:"_id"`
	URL string    `gorm:"column:url" json:"url"`
}

// UserScan is the dashboard projection of a user's scans.
type UserScan struct {
	ID         uuid.UUID                       `gorm:"column:id" json:"_id"`
	URL        string                          `gorm:"column:url" json:"url"`
	ScanDate   time.Time                       `gorm:"column:scan_date" json:"scanDate"`
	Violations datatypes.JSONType[[]Violation] `gorm:"column:violations" json:"violations"`
}
