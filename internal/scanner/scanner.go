package scanner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/semaphore"

	"github.com/yungbote/accessly-backend/internal/domain/scan"
	"github.com/yungbote/accessly-backend/internal/observability"
	"github.com/yungbote/accessly-backend/internal/platform/logger"
)

const (
	DefaultNavTimeout    = 60 * time.Second
	DefaultSettle        = 5 * time.Second
	DefaultMaxConcurrent = 2
)

type Config struct {
	ChromePath    string
	AxeScriptURL  string
	NavTimeout    time.Duration
	Settle        time.Duration
	MaxConcurrent int
}

// Scanner loads a page in headless Chrome and runs the axe audit on it.
type Scanner interface {
	Run(ctx context.Context, url string) (*scan.AuditReport, error)
}

type chromeScanner struct {
	log  *logger.Logger
	cfg  Config
	axe  *axeLoader
	sema *semaphore.Weighted
}

func New(log *logger.Logger, cfg Config) Scanner {
	if cfg.NavTimeout <= 0 {
		cfg.NavTimeout = DefaultNavTimeout
	}
	if cfg.Settle < 0 {
		cfg.Settle = 0
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = DefaultMaxConcurrent
	}
	return &chromeScanner{
		log:  log.With("service", "Scanner"),
		cfg:  cfg,
		axe:  newAxeLoader(cfg.AxeScriptURL),
		sema: semaphore.NewWeighted(int64(cfg.MaxConcurrent)),
	}
}

func (s *chromeScanner) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.Headless,
		chromedp.NoSandbox,
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if s.cfg.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(s.cfg.ChromePath))
	}
	return opts
}

func (s *chromeScanner) Run(ctx context.Context, url string) (*scan.AuditReport, error) {
	ctx, span := observability.StartSpan(ctx, "scanner.Run", attribute.String("scan.url", url))
	defer span.End()

	// The axe bundle is resolved before a browser is started.
	script, err := s.axe.Script(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, &scan.ScanFailedError{Stage: scan.StageInject, URL: url, Err: err}
	}

	if err := s.sema.Acquire(ctx, 1); err != nil {
		return nil, &scan.ScanFailedError{Stage: scan.StageLaunch, URL: url, Err: err}
	}
	defer s.sema.Release(1)

	m := observability.Current()
	m.ScanStarted()
	start := time.Now()
	report, err := s.run(ctx, url, script)
	status := "ok"
	if err != nil {
		status = "failed"
		span.RecordError(err)
	}
	m.ScanFinished(status, time.Since(start))
	if err != nil {
		s.log.Warn("scan failed", "url", url, "error", err)
		return nil, err
	}
	for _, impact := range scan.Impacts {
		m.AddViolations(string(impact), scan.CountByImpact(report.Violations).Get(impact))
	}
	s.log.Info("scan completed", "url", url, "violations", len(report.Violations), "took", time.Since(start).String())
	return report, nil
}

// run owns one browser session. The session is detached from ctx's
// cancellation: a scan that has started runs until it finishes or hits the
// navigation or audit timeout, even if the caller goes away.
func (s *chromeScanner) run(ctx context.Context, url, script string) (*scan.AuditReport, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.WithoutCancel(ctx), s.allocatorOptions()...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	fail := func(stage string, err error) error {
		return &scan.ScanFailedError{Stage: stage, URL: url, Err: err}
	}

	// Start the browser on the untimed context so the navigation timeout
	// below does not tear the browser down with it.
	if err := chromedp.Run(browserCtx); err != nil {
		return nil, fail(scan.StageLaunch, err)
	}

	navCtx, cancelNav := context.WithTimeout(browserCtx, s.cfg.NavTimeout)
	err := chromedp.Run(navCtx, navigateDOMReady(url), chromedp.WaitReady("body", chromedp.ByQuery))
	cancelNav()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("navigation timed out after %s: %w", s.cfg.NavTimeout, err)
		}
		return nil, fail(scan.StageNavigate, err)
	}

	if s.cfg.Settle > 0 {
		if err := chromedp.Run(browserCtx, chromedp.Sleep(s.cfg.Settle)); err != nil {
			return nil, fail(scan.StageSettle, err)
		}
	}

	if err := chromedp.Run(browserCtx, chromedp.Evaluate(script+"\n;true", nil)); err != nil {
		return nil, fail(scan.StageInject, err)
	}

	var raw []byte
	auditCtx, cancelAudit := context.WithTimeout(browserCtx, s.cfg.NavTimeout)
	err = chromedp.Run(auditCtx, chromedp.Evaluate(auditExpr, &raw, awaitPromise))
	cancelAudit()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("audit timed out after %s: %w", s.cfg.NavTimeout, err)
		}
		return nil, fail(scan.StageAudit, err)
	}

	violations, engine, err := decodeAxeResult(raw)
	if err != nil {
		return nil, fail(scan.StageDecode, err)
	}

	var html string
	if err := chromedp.Run(browserCtx, chromedp.Evaluate(outerHTMLExpr, &html)); err != nil {
		// The snapshot is optional; an audit without it is still a result.
		s.log.Warn("capture page html failed", "url", url, "error", err)
		html = ""
	}

	return &scan.AuditReport{
		URL:        url,
		Violations: violations,
		PageHTML:   html,
		TestEngine: engine,
	}, nil
}

// navigateDOMReady navigates the current tab and returns once the new
// document has fired DOMContentLoaded. Unlike chromedp.Navigate it does not
// wait for the load event, so a hanging image or tracker cannot hold the
// scan until the navigation timeout.
func navigateDOMReady(url string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		lctx, cancel := context.WithCancel(ctx)
		defer cancel()

		var (
			mu    sync.Mutex
			want  cdp.LoaderID
			fired = map[cdp.LoaderID]bool{}
			ready = make(chan struct{})
			done  bool
		)
		signal := func() {
			if !done {
				done = true
				close(ready)
			}
		}
		chromedp.ListenTarget(lctx, func(ev any) {
			e, ok := ev.(*page.EventLifecycleEvent)
			if !ok || e.Name != "DOMContentLoaded" {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			// the event can arrive before Navigate returns its loader id
			fired[e.LoaderID] = true
			if want != "" && e.LoaderID == want {
				signal()
			}
		})

		if err := page.SetLifecycleEventsEnabled(true).Do(ctx); err != nil {
			return err
		}
		_, loaderID, errorText, _, err := page.Navigate(url).Do(ctx)
		switch {
		case err != nil:
			return err
		case errorText != "":
			return fmt.Errorf("page load error %s", errorText)
		case loaderID == "":
			// same-document navigation, nothing new to parse
			return nil
		}

		mu.Lock()
		want = loaderID
		if fired[loaderID] {
			signal()
		}
		mu.Unlock()

		select {
		case <-ready:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
}

func awaitPromise(p *runtime.EvaluateParams) *runtime.EvaluateParams {
	return p.WithAwaitPromise(true)
}
