package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	types "github.com/yungbote/accessly-backend/internal/domain"
	"github.com/yungbote/accessly-backend/internal/domain/scan"
	"gorm.io/gorm"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:        uuid.New(),
		Email:     email,
		Password:  "pw",
		FirstName: "Alice",
		LastName:  "Li",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func Violation(id string, impact types.Impact, nodes int) types.Violation {
	v := types.Violation{
		ID:          id,
		Impact:      impact,
		Description: "Ensures " + id + " passes",
		Help:        id + " must pass",
		HelpURL:     "https://dequeuniversity.com/rules/axe/4.10/" + id,
		Tags:        []string{"cat.aria", "wcag2a", "wcag412"},
		Nodes:       []types.ViolationNode{},
	}
	for i := 0; i < nodes; i++ {
		v.Nodes = append(v.Nodes, types.ViolationNode{
			HTML:           `<button class="icon"></button>`,
			Target:         []string{"#main", "button.icon"},
			FailureSummary: "Fix any of the following:\n  Element does not have inner text",
		})
	}
	return v
}

func SeedScan(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, url string, at time.Time, violations ...types.Violation) *types.ScanResult {
	tb.Helper()
	sr := scan.NewScanResult(userID, &types.AuditReport{URL: url, Violations: violations}, at)
	if err := tx.WithContext(ctx).Create(sr).Error; err != nil {
		tb.Fatalf("seed scan: %v", err)
	}
	return sr
}
