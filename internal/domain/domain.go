package domain

import (
	"github.com/yungbote/accessly-backend/internal/domain/scan"
	"github.com/yungbote/accessly-backend/internal/domain/user"
)

type (
	User       = user.User
	PublicUser = user.Public

	ScanResult     = scan.ScanResult
	ScanSummary    = scan.Summary
	UserScan       = scan.UserScan
	Violation      = scan.Violation
	ViolationNode  = scan.ViolationNode
	IssuesByImpact = scan.IssuesByImpact
	Impact         = scan.Impact
	AuditReport    = scan.AuditReport
)

// Models lists every persisted type in migration order.
func Models() []any {
	return []any{
		&User{},
		&ScanResult{},
	}
}
