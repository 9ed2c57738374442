package scanner

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

const DefaultAxeScriptURL = "https://cdnjs.cloudflare.com/ajax/libs/axe-core/4.10.2/axe.min.js"

// axeLoader fetches the axe-core bundle once per process. Failed fetches are
// not cached so a later scan can try again.
type axeLoader struct {
	url    string
	client *http.Client

	mu     sync.Mutex
	script string
}

func newAxeLoader(url string) *axeLoader {
	if strings.TrimSpace(url) == "" {
		url = DefaultAxeScriptURL
	}
	return &axeLoader{url: url, client: &http.Client{Timeout: 30 * time.Second}}
}

func (l *axeLoader) Script(ctx context.Context) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.script != "" {
		return l.script, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return "", err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch axe script: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch axe script: status %d", resp.StatusCode)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read axe script: %w", err)
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return "", fmt.Errorf("fetch axe script: empty body")
	}
	l.script = string(raw)
	return l.script, nil
}
