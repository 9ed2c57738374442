package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/yungbote/accessly-backend/internal/domain/scan"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func parseFormat(raw string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(raw))); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown format %q (want text, json or yaml)", raw)
	}
}

// resultView is the printable form of a scan; the stored document keeps its
// violations in a JSON column wrapper that yaml cannot see through.
type resultView struct {
	URL             string              `json:"url" yaml:"url"`
	ScanDate        time.Time           `json:"scanDate" yaml:"scanDate"`
	TestEngine      string              `json:"testEngine,omitempty" yaml:"testEngine,omitempty"`
	TotalViolations int                 `json:"totalViolations" yaml:"totalViolations"`
	AffectedNodes   int                 `json:"affectedNodes" yaml:"affectedNodes"`
	IssuesByImpact  scan.IssuesByImpact `json:"issuesByImpact" yaml:"issuesByImpact"`
	Violations      []scan.Violation    `json:"violations" yaml:"violations"`
}

func newResultView(sr *scan.ScanResult) resultView {
	violations := sr.ViolationList()
	if violations == nil {
		violations = []scan.Violation{}
	}
	return resultView{
		URL:             sr.URL,
		ScanDate:        sr.ScanDate,
		TestEngine:      sr.TestEngine,
		TotalViolations: sr.TotalViolations,
		AffectedNodes:   scan.AffectedNodes(violations),
		IssuesByImpact:  sr.IssuesByImpact,
		Violations:      violations,
	}
}

func writeResult(w io.Writer, format Format, sr *scan.ScanResult) error {
	view := newResultView(sr)
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(view); err != nil {
			return err
		}
		return enc.Close()
	default:
		return writeText(w, view)
	}
}

var impactColor = map[scan.Impact]*color.Color{
	scan.ImpactCritical: color.New(color.FgRed, color.Bold),
	scan.ImpactSerious:  color.New(color.FgRed),
	scan.ImpactModerate: color.New(color.FgYellow),
	scan.ImpactMinor:    color.New(color.FgBlue),
}

func colorFor(impact scan.Impact) *color.Color {
	if c, ok := impactColor[impact]; ok {
		return c
	}
	return color.New(color.FgWhite)
}

func writeText(w io.Writer, view resultView) error {
	bold := color.New(color.Bold)
	bold.Fprintf(w, "%s\n", view.URL)
	if view.TestEngine != "" {
		fmt.Fprintf(w, "scanned %s with %s\n\n", view.ScanDate.Format(time.RFC3339), view.TestEngine)
	} else {
		fmt.Fprintf(w, "scanned %s\n\n", view.ScanDate.Format(time.RFC3339))
	}

	if view.TotalViolations == 0 {
		color.New(color.FgGreen).Fprintln(w, "No accessibility violations found.")
		return nil
	}

	fmt.Fprintf(w, "%d violations, %d affected elements\n", view.TotalViolations, view.AffectedNodes)
	for i := len(scan.Impacts) - 1; i >= 0; i-- {
		impact := scan.Impacts[i]
		colorFor(impact).Fprintf(w, "  %-9s", impact)
		fmt.Fprintf(w, " %d\n", view.IssuesByImpact.Get(impact))
	}
	fmt.Fprintln(w)

	sorted := append([]scan.Violation(nil), view.Violations...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Impact.Rank() > sorted[j].Impact.Rank()
	})
	for _, v := range sorted {
		colorFor(v.Impact).Fprintf(w, "[%s]", v.Impact)
		fmt.Fprintf(w, " %s: %s (%d elements)\n", v.ID, v.Help, len(v.Nodes))
		if v.HelpURL != "" {
			fmt.Fprintf(w, "    %s\n", v.HelpURL)
		}
		for _, n := range v.Nodes {
			fmt.Fprintf(w, "    - %s\n", strings.Join(n.Target, " "))
		}
	}
	return nil
}

func writeFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}
