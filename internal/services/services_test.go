package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/accessly-backend/internal/clients/redis"
	"github.com/yungbote/accessly-backend/internal/data/repos"
	"github.com/yungbote/accessly-backend/internal/data/repos/testutil"
	types "github.com/yungbote/accessly-backend/internal/domain"
	"github.com/yungbote/accessly-backend/internal/domain/scan"
	"github.com/yungbote/accessly-backend/internal/platform/apierr"
	"github.com/yungbote/accessly-backend/internal/platform/objectstore"
)

const testSecret = "test-secret"

type fakeScanner struct {
	calls  atomic.Int32
	report func(url string) *types.AuditReport
	err    error
}

func (f *fakeScanner) Run(ctx context.Context, url string) (*types.AuditReport, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	if f.report == nil {
		return &types.AuditReport{URL: url, Violations: []types.Violation{}}, nil
	}
	return f.report(url), nil
}

type fixture struct {
	db        *gorm.DB
	mr        *miniredis.Miniredis
	auth      AuthService
	users     UserService
	scans     ScanService
	scanner   *fakeScanner
	snapshots objectstore.Store
}

func newFixture(t *testing.T, withSnapshots bool) *fixture {
	t.Helper()
	log := testutil.Logger(t)
	db := testutil.DB(t)
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	userRepo := repos.NewUserRepo(db, log)
	scanRepo := repos.NewScanResultRepo(db, log)
	sc := &fakeScanner{}

	var store objectstore.Store
	if withSnapshots {
		s, err := objectstore.NewLocalStore(log, t.TempDir())
		if err != nil {
			t.Fatalf("NewLocalStore: %v", err)
		}
		store = s
	}

	return &fixture{
		db:        db,
		mr:        mr,
		auth:      NewAuthService(db, log, userRepo, redis.NewRevocationStore(log, rdb), testSecret, time.Hour),
		users:     NewUserService(db, log, userRepo, scanRepo),
		scans:     NewScanService(db, log, scanRepo, sc, store),
		scanner:   sc,
		snapshots: store,
	}
}

func (f *fixture) register(t *testing.T, email string) (*types.User, string) {
	t.Helper()
	u, token, err := f.auth.Register(context.Background(), RegisterInput{
		FirstName: "Alice",
		LastName:  "Li",
		Email:     email,
		Password:  "Str0ng!pass",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return u, token
}

func violation(id string, impact scan.Impact, nodes int) types.Violation {
	return testutil.Violation(id, impact, nodes)
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	if !apierr.Is(err, code) {
		t.Fatalf("expected %s, got %v", code, err)
	}
}

func TestScanEndToEndSeriousAndCritical(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	u, _ := f.register(t, "owner@example.com")

	f.scanner.report = func(url string) *types.AuditReport {
		return &types.AuditReport{URL: url, Violations: []types.Violation{
			violation("color-contrast", scan.ImpactSerious, 2),
			violation("image-alt", scan.ImpactCritical, 1),
		}, TestEngine: "axe-core@4.10.2"}
	}

	sr, err := f.scans.Submit(ctx, u.ID, "https://example.com")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if sr.TotalViolations != 2 {
		t.Fatalf("totalViolations: got=%d want=2", sr.TotalViolations)
	}
	want := types.IssuesByImpact{Serious: 1, Critical: 1}
	if sr.IssuesByImpact != want {
		t.Fatalf("issuesByImpact: got=%+v want=%+v", sr.IssuesByImpact, want)
	}

	got, err := f.scans.Get(ctx, sr.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.URL != "https://example.com" || len(got.ViolationList()) != 2 || got.ViolationList()[0].ID != "color-contrast" {
		t.Fatalf("unexpected stored scan: %+v", got)
	}
	if got.TestEngine != "axe-core@4.10.2" {
		t.Fatalf("testEngine: got=%q", got.TestEngine)
	}

	profile, err := f.users.GetProfile(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if len(profile.ScansAll) != 1 || profile.ScansAll[0] != sr.ID {
		t.Fatalf("scansAll: got=%v want=[%s]", profile.ScansAll, sr.ID)
	}

	list, err := f.scans.ListByUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(list) != 1 || list[0].ID != sr.ID {
		t.Fatalf("ListByUser: got=%v", list)
	}
}

func TestSubmitRejectsBadURLWithoutScanning(t *testing.T) {
	f := newFixture(t, false)
	u, _ := f.register(t, "u@example.com")

	for _, raw := range []string{"", "example.com", "ftp://example.com", "https://"} {
		_, err := f.scans.Submit(context.Background(), u.ID, raw)
		requireCode(t, err, apierr.CodeValidation)
	}
	if n := f.scanner.calls.Load(); n != 0 {
		t.Fatalf("scanner calls: got=%d want=0", n)
	}
}

func TestSubmitScannerFailure(t *testing.T) {
	f := newFixture(t, false)
	u, _ := f.register(t, "u@example.com")
	f.scanner.err = &scan.ScanFailedError{Stage: scan.StageNavigate, URL: "https://down.test", Err: context.DeadlineExceeded}

	_, err := f.scans.Submit(context.Background(), u.ID, "https://down.test")
	requireCode(t, err, apierr.CodeScanFailed)
	var sfe *scan.ScanFailedError
	if !errors.As(err, &sfe) || sfe.Stage != scan.StageNavigate {
		t.Fatalf("expected wrapped ScanFailedError at navigate, got %v", err)
	}

	profile, err := f.users.GetProfile(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if len(profile.ScansAll) != 0 {
		t.Fatalf("failed scan must not be recorded: %v", profile.ScansAll)
	}
}

func TestSubmitRejectsInvalidImpact(t *testing.T) {
	f := newFixture(t, false)
	u, _ := f.register(t, "u@example.com")
	f.scanner.report = func(url string) *types.AuditReport {
		return &types.AuditReport{URL: url, Violations: []types.Violation{violation("x", "urgent", 1)}}
	}
	_, err := f.scans.Submit(context.Background(), u.ID, "https://example.com")
	requireCode(t, err, apierr.CodeValidation)
}

func TestSubmitRejectsViolationWithoutID(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	u, _ := f.register(t, "u@example.com")
	f.scanner.report = func(url string) *types.AuditReport {
		return &types.AuditReport{URL: url, Violations: []types.Violation{violation("", scan.ImpactMinor, 1)}}
	}
	_, err := f.scans.Submit(ctx, u.ID, "https://example.com")
	requireCode(t, err, apierr.CodeValidation)

	scans, err := f.scans.ListByUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(scans) != 0 {
		t.Fatalf("rejected scan was stored: %d rows", len(scans))
	}
}

func TestConcurrentSubmitMembership(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	u, _ := f.register(t, "busy@example.com")

	const n = 8
	ids := make(chan uuid.UUID, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sr, err := f.scans.Submit(ctx, u.ID, "https://example.com/page")
			if err != nil {
				t.Errorf("Submit: %v", err)
				return
			}
			ids <- sr.ID
		}()
	}
	wg.Wait()
	close(ids)

	want := map[uuid.UUID]bool{}
	for id := range ids {
		want[id] = true
	}
	profile, err := f.users.GetProfile(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if len(profile.ScansAll) != n || len(want) != n {
		t.Fatalf("scansAll: got=%d ids, submitted=%d", len(profile.ScansAll), len(want))
	}
	for _, id := range profile.ScansAll {
		if !want[id] {
			t.Fatalf("scansAll contains unexpected id %s", id)
		}
	}
}

func TestDeleteOwnership(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	owner, _ := f.register(t, "owner@example.com")
	other, _ := f.register(t, "other@example.com")

	sr, err := f.scans.Submit(ctx, owner.ID, "https://example.com")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	requireCode(t, f.scans.Delete(ctx, sr.ID, other.ID), apierr.CodeNotFound)
	if _, err := f.scans.Get(ctx, sr.ID); err != nil {
		t.Fatalf("scan must survive a foreign delete: %v", err)
	}

	if err := f.scans.Delete(ctx, sr.ID, owner.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	_, err = f.scans.Get(ctx, sr.ID)
	requireCode(t, err, apierr.CodeNotFound)
	requireCode(t, f.scans.Delete(ctx, sr.ID, owner.ID), apierr.CodeNotFound)
	requireCode(t, f.scans.Delete(ctx, uuid.New(), owner.ID), apierr.CodeNotFound)

	profile, err := f.users.GetProfile(ctx, owner.ID)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if len(profile.ScansAll) != 0 {
		t.Fatalf("scansAll after delete: %v", profile.ScansAll)
	}
}

func TestListEmptyIsNotFound(t *testing.T) {
	f := newFixture(t, false)
	_, err := f.scans.List(context.Background())
	requireCode(t, err, apierr.CodeNotFound)

	u, _ := f.register(t, "u@example.com")
	if _, err := f.scans.Submit(context.Background(), u.ID, "https://a.test"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	list, err := f.scans.List(context.Background())
	if err != nil || len(list) != 1 || list[0].URL != "https://a.test" {
		t.Fatalf("List: got=%v err=%v", list, err)
	}
}

func TestSnapshotArchive(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	u, _ := f.register(t, "u@example.com")
	f.scanner.report = func(url string) *types.AuditReport {
		return &types.AuditReport{URL: url, Violations: []types.Violation{}, PageHTML: "<html><body>hi</body></html>"}
	}

	sr, err := f.scans.Submit(ctx, u.ID, "https://example.com")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if sr.SnapshotKey != SnapshotKey(u.ID, sr.ID) {
		t.Fatalf("snapshot key: got=%q", sr.SnapshotKey)
	}
	html, err := f.scans.Snapshot(ctx, sr.ID)
	if err != nil || string(html) != "<html><body>hi</body></html>" {
		t.Fatalf("Snapshot: got=%q err=%v", html, err)
	}

	if err := f.scans.Delete(ctx, sr.ID, u.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := f.snapshots.Get(ctx, sr.SnapshotKey); !errors.Is(err, objectstore.ErrNotFound) {
		t.Fatalf("snapshot should be removed with the scan, got %v", err)
	}
}

func TestRenderChart(t *testing.T) {
	f := newFixture(t, false)
	u, _ := f.register(t, "u@example.com")
	sr, err := f.scans.Submit(context.Background(), u.ID, "https://example.com")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	png, err := f.scans.RenderChart(context.Background(), sr.ID)
	if err != nil {
		t.Fatalf("RenderChart: %v", err)
	}
	if len(png) < 8 || string(png[1:4]) != "PNG" {
		t.Fatalf("expected PNG bytes")
	}
	_, err = f.scans.RenderChart(context.Background(), uuid.New())
	requireCode(t, err, apierr.CodeNotFound)
}
